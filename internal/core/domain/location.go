package domain

import (
	"fmt"
	"strconv"
)

// DeviceCoordinate is one geolocation fix of the kiosk device.
type DeviceCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String renders the coordinate in the "lat,lon" form the remote service expects.
func (c DeviceCoordinate) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Validate rejects coordinates outside the WGS84 range.
func (c DeviceCoordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, c.Latitude, c.Longitude)
	}
	return nil
}
