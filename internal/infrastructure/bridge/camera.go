// Package bridge implements the camera and geolocation capabilities on
// top of signals pushed through the control API by the kiosk front end.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/99minutos/attendance-kiosk/internal/core/ports"
)

// ErrNoActiveStream is returned when a signal arrives while no scanning
// session holds the camera.
var ErrNoActiveStream = errors.New("no active camera stream")

const defaultSignalBuffer = 16

// Camera is a ports.Camera fed by Push.
type Camera struct {
	buffer int

	mu      sync.Mutex
	active  *stream
	dropped uint64
}

// NewCamera returns a camera whose streams buffer up to buffer signals.
func NewCamera(buffer int) *Camera {
	if buffer <= 0 {
		buffer = defaultSignalBuffer
	}
	return &Camera{buffer: buffer}
}

// Open starts a stream. An earlier stream that was never closed is
// replaced.
func (c *Camera) Open(ctx context.Context) (ports.CameraStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open camera: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.closeLocked()
	}
	s := &stream{camera: c, signals: make(chan ports.ScanSignal, c.buffer)}
	c.active = s
	return s, nil
}

// Push forwards sig to the open stream. A full buffer drops sig; the
// decoder will report the code again on the next frame.
func (c *Camera) Push(sig ports.ScanSignal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNoActiveStream
	}
	select {
	case c.active.signals <- sig:
	default:
		c.dropped++
	}
	return nil
}

// Dropped reports how many signals were discarded on a full buffer.
func (c *Camera) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Active reports whether a stream is open.
func (c *Camera) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

type stream struct {
	camera  *Camera
	signals chan ports.ScanSignal
	once    sync.Once
}

func (s *stream) Signals() <-chan ports.ScanSignal { return s.signals }

func (s *stream) Close() error {
	s.camera.mu.Lock()
	defer s.camera.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *stream) closeLocked() {
	s.once.Do(func() {
		close(s.signals)
		if s.camera.active == s {
			s.camera.active = nil
		}
	})
}
