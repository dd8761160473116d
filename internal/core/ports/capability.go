package ports

import (
	"context"
	"time"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
)

// ScanSignal is one callback from a camera decoder: either decoded text
// or an error. domain.ErrNothingDecoded marks the benign empty-frame
// signal; Fatal marks a capability failure that ends the stream.
type ScanSignal struct {
	Text  string
	Err   error
	Fatal bool
}

// CameraStream is an open camera with a running decoder.
type CameraStream interface {
	Signals() <-chan ScanSignal
	// Close releases the camera. Callers must call it exactly once.
	Close() error
}

// Camera is the raw QR-decoding capability.
type Camera interface {
	// Open fails with an error wrapping domain.ErrCameraUnavailable when
	// the camera is denied or missing.
	Open(ctx context.Context) (CameraStream, error)
}

// Geolocator is the raw device geolocation capability.
type Geolocator interface {
	CurrentPosition(ctx context.Context, highAccuracy bool) (domain.DeviceCoordinate, error)
}

// ScanResult is the single outcome of a scanning session: decoded text or
// a capability failure.
type ScanResult struct {
	Text string
	Err  error
}

// ScanAcquirer turns a camera into a single-shot scan.
type ScanAcquirer interface {
	// Start opens the camera. The returned channel yields at most one
	// result and is closed afterwards or when Stop is called.
	Start(ctx context.Context) (<-chan ScanResult, error)
	// Stop releases the camera. Idempotent and safe before Start.
	Stop()
}

// LocationOptions bounds one location acquisition.
type LocationOptions struct {
	Timeout      time.Duration
	MaxCacheAge  time.Duration
	HighAccuracy bool
}

// LocationAcquirer yields one coordinate or a capability error. It never
// retries.
type LocationAcquirer interface {
	Acquire(ctx context.Context, opts LocationOptions) (domain.DeviceCoordinate, error)
}
