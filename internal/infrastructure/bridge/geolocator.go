package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/pkg/clock"
)

const defaultFixMaxAge = 5 * time.Minute

// ErrNoPendingRequest is returned by Fail when nobody is waiting for a
// position.
var ErrNoPendingRequest = errors.New("no pending location request")

type fix struct {
	coord domain.DeviceCoordinate
	err   error
}

type storedFix struct {
	coord domain.DeviceCoordinate
	at    time.Time
}

// Geolocator is a ports.Geolocator fed by Supply and Fail.
type Geolocator struct {
	clock  clock.Clock
	maxAge time.Duration

	mu          sync.Mutex
	pending     *storedFix
	unsupported bool
	waiters     map[chan fix]struct{}
}

// NewGeolocator returns a geolocator with no fix. A fix supplied ahead of
// a request is dropped once it is older than maxAge.
func NewGeolocator(clk clock.Clock, maxAge time.Duration) *Geolocator {
	if clk == nil {
		clk = clock.Real()
	}
	if maxAge <= 0 {
		maxAge = defaultFixMaxAge
	}
	return &Geolocator{clock: clk, maxAge: maxAge, waiters: make(map[chan fix]struct{})}
}

// CurrentPosition consumes a fix supplied ahead of time or waits for the
// next Supply or Fail.
func (g *Geolocator) CurrentPosition(ctx context.Context, _ bool) (domain.DeviceCoordinate, error) {
	g.mu.Lock()
	if g.unsupported {
		g.mu.Unlock()
		return domain.DeviceCoordinate{}, domain.ErrLocationUnavailable
	}
	if g.freshLocked() {
		coord := g.pending.coord
		g.pending = nil
		g.mu.Unlock()
		return coord, nil
	}
	ch := make(chan fix, 1)
	g.waiters[ch] = struct{}{}
	g.mu.Unlock()

	select {
	case f := <-ch:
		return f.coord, f.err
	case <-ctx.Done():
		g.mu.Lock()
		delete(g.waiters, ch)
		g.mu.Unlock()
		return domain.DeviceCoordinate{}, ctx.Err()
	}
}

// Supply hands coord to every waiting request, or keeps it for the next
// one. It also clears an earlier unsupported mark. Reports whether a
// request was waiting.
func (g *Geolocator) Supply(coord domain.DeviceCoordinate) (bool, error) {
	if err := coord.Validate(); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.unsupported = false
	if len(g.waiters) == 0 {
		g.pending = &storedFix{coord: coord, at: g.clock.Now()}
		return false, nil
	}
	g.broadcastLocked(fix{coord: coord})
	return true, nil
}

// Fail ends every waiting request with err. ErrLocationUnavailable also
// marks the device as unsupported until the next Supply.
func (g *Geolocator) Fail(err error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if errors.Is(err, domain.ErrLocationUnavailable) {
		g.unsupported = true
		g.pending = nil
	}
	if len(g.waiters) == 0 {
		if g.unsupported {
			return nil
		}
		return ErrNoPendingRequest
	}
	g.broadcastLocked(fix{err: err})
	return nil
}

// HasFix reports whether a fix supplied ahead of time is waiting to be
// consumed.
func (g *Geolocator) HasFix() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.freshLocked()
}

// freshLocked drops a stored fix that has gone stale.
func (g *Geolocator) freshLocked() bool {
	if g.pending == nil {
		return false
	}
	if g.clock.Now().Sub(g.pending.at) > g.maxAge {
		g.pending = nil
		return false
	}
	return true
}

// Waiting reports how many requests are blocked on a fix.
func (g *Geolocator) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}

func (g *Geolocator) broadcastLocked(f fix) {
	for ch := range g.waiters {
		ch <- f
		delete(g.waiters, ch)
	}
}
