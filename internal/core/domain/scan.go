package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ScanPayload is the structure encoded in a site's attendance QR code.
type ScanPayload struct {
	IntegrityHash  string `json:"integrityHash"`
	SiteCoordinate string `json:"siteCoordinate"`
}

// scanWire accepts the current keys and the hash / lat_lon keys printed
// by the first generation of site codes.
type scanWire struct {
	IntegrityHash  string `json:"integrityHash"`
	SiteCoordinate string `json:"siteCoordinate"`
	Hash           string `json:"hash"`
	LatLon         string `json:"lat_lon"`
}

// ParseScanPayload decodes a QR string. Unknown fields are ignored; both
// required fields must be present and non-empty.
func ParseScanPayload(raw string) (ScanPayload, error) {
	var w scanWire
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &w); err != nil {
		return ScanPayload{}, fmt.Errorf("%w: %v", ErrInvalidScanPayload, err)
	}

	p := ScanPayload{
		IntegrityHash:  firstNonEmpty(w.IntegrityHash, w.Hash),
		SiteCoordinate: firstNonEmpty(w.SiteCoordinate, w.LatLon),
	}
	if p.IntegrityHash == "" || p.SiteCoordinate == "" {
		return ScanPayload{}, fmt.Errorf("%w: missing integrityHash or siteCoordinate", ErrInvalidScanPayload)
	}
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
