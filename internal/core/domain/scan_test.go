package domain

import (
	"errors"
	"testing"
)

func TestParseScanPayload_Valid(t *testing.T) {
	p, err := ParseScanPayload(`{"integrityHash":"h1","siteCoordinate":"1.0,2.0"}`)
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
	if p.IntegrityHash != "h1" || p.SiteCoordinate != "1.0,2.0" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestParseScanPayload_LegacyKeysAndExtraFields(t *testing.T) {
	p, err := ParseScanPayload(`{"hash":"abc","lat_lon":"-6.2,106.8","branch":"JKT-01"}`)
	if err != nil {
		t.Fatalf("expected legacy payload to parse, got %v", err)
	}
	if p.IntegrityHash != "abc" || p.SiteCoordinate != "-6.2,106.8" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestParseScanPayload_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":         `hello`,
		"missing fields":   `{"foo":"bar"}`,
		"missing hash":     `{"siteCoordinate":"1,2"}`,
		"missing site":     `{"integrityHash":"h1"}`,
		"blank hash":       `{"integrityHash":"  ","siteCoordinate":"1,2"}`,
		"wrong type":       `{"integrityHash":7,"siteCoordinate":"1,2"}`,
		"array":            `["h1","1,2"]`,
		"null":             `null`,
		"empty":            ``,
		"truncated object": `{"integrityHash":"h1",`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScanPayload(raw)
			if !errors.Is(err, ErrInvalidScanPayload) {
				t.Fatalf("expected ErrInvalidScanPayload, got %v", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("scan format errors must be validation errors, got %v", err)
			}
		})
	}
}
