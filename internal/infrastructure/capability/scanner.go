// Package capability turns the raw camera and geolocation capabilities
// into the single-shot acquirers the workflow consumes.
package capability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
)

// Scanner yields the first decoded text of a camera session. Empty-frame
// signals are filtered out; a fatal camera signal ends the session with a
// capability error.
type Scanner struct {
	camera ports.Camera
	log    zerolog.Logger

	mu     sync.Mutex
	stream ports.CameraStream
	stop   chan struct{}
}

// NewScanner wraps camera.
func NewScanner(camera ports.Camera, log zerolog.Logger) *Scanner {
	return &Scanner{camera: camera, log: log}
}

// Start opens the camera. Only one session may run at a time.
func (s *Scanner) Start(ctx context.Context) (<-chan ports.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		return nil, domain.ErrScannerBusy
	}
	stream, err := s.camera.Open(ctx)
	if err != nil {
		return nil, capabilityError("open camera", err, domain.ErrCameraUnavailable)
	}

	s.stream = stream
	s.stop = make(chan struct{})
	results := make(chan ports.ScanResult, 1)
	go s.pump(stream.Signals(), s.stop, results)
	return results, nil
}

// Stop releases the camera. Safe to call repeatedly and before Start.
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return
	}
	close(s.stop)
	if err := s.stream.Close(); err != nil {
		s.log.Warn().Err(err).Msg("camera close failed")
	}
	s.stream = nil
	s.stop = nil
}

func (s *Scanner) pump(signals <-chan ports.ScanSignal, stop <-chan struct{}, results chan<- ports.ScanResult) {
	defer close(results)
	for {
		select {
		case <-stop:
			return
		case sig, ok := <-signals:
			if !ok {
				select {
				case <-stop:
				default:
					results <- ports.ScanResult{Err: fmt.Errorf("camera stream ended: %w", domain.ErrCameraUnavailable)}
				}
				return
			}
			switch {
			case sig.Err != nil && sig.Fatal:
				results <- ports.ScanResult{Err: capabilityError("camera", sig.Err, domain.ErrCameraUnavailable)}
				return
			case sig.Err != nil:
				if !errors.Is(sig.Err, domain.ErrNothingDecoded) {
					s.log.Debug().Err(sig.Err).Msg("decoder error ignored")
				}
			case sig.Text != "":
				results <- ports.ScanResult{Text: sig.Text}
				return
			}
		}
	}
}

// capabilityError keeps err if it already carries a capability class and
// otherwise files it under fallback.
func capabilityError(op string, err, fallback error) error {
	if errors.Is(err, domain.ErrCapability) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, fallback, err)
}
