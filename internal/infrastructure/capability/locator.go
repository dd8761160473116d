package capability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
	"github.com/99minutos/attendance-kiosk/internal/pkg/clock"
)

// Locator bounds a Geolocator with a timeout and serves recent fixes from
// a cache.
type Locator struct {
	geo   ports.Geolocator
	clock clock.Clock

	mu      sync.Mutex
	last    domain.DeviceCoordinate
	lastAt  time.Time
	hasLast bool
}

// fixHolder is a Geolocator that may already hold a fix supplied for the
// request about to be made. Such a fix wins over the cache.
type fixHolder interface {
	HasFix() bool
}

// NewLocator wraps geo. A nil clk uses the wall clock.
func NewLocator(geo ports.Geolocator, clk clock.Clock) *Locator {
	if clk == nil {
		clk = clock.Real()
	}
	return &Locator{geo: geo, clock: clk}
}

// Acquire returns one coordinate. A cached fix younger than
// opts.MaxCacheAge is returned without asking the device, unless the
// device already holds a newer one.
func (l *Locator) Acquire(ctx context.Context, opts ports.LocationOptions) (domain.DeviceCoordinate, error) {
	if h, ok := l.geo.(fixHolder); !ok || !h.HasFix() {
		if coord, ok := l.cached(opts.MaxCacheAge); ok {
			return coord, nil
		}
	}
	if l.geo == nil {
		return domain.DeviceCoordinate{}, domain.ErrLocationUnavailable
	}

	reqCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	coord, err := l.geo.CurrentPosition(reqCtx, opts.HighAccuracy)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapability):
			return domain.DeviceCoordinate{}, err
		case ctx.Err() != nil:
			return domain.DeviceCoordinate{}, fmt.Errorf("current position: %w", ctx.Err())
		case errors.Is(err, context.DeadlineExceeded):
			return domain.DeviceCoordinate{}, fmt.Errorf("current position after %s: %w", opts.Timeout, domain.ErrLocationTimeout)
		default:
			return domain.DeviceCoordinate{}, fmt.Errorf("current position: %w: %w", domain.ErrCapability, err)
		}
	}
	if err := coord.Validate(); err != nil {
		return domain.DeviceCoordinate{}, err
	}

	l.mu.Lock()
	l.last, l.lastAt, l.hasLast = coord, l.clock.Now(), true
	l.mu.Unlock()
	return coord, nil
}

func (l *Locator) cached(maxAge time.Duration) (domain.DeviceCoordinate, bool) {
	if maxAge <= 0 {
		return domain.DeviceCoordinate{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.hasLast || l.clock.Now().Sub(l.lastAt) > maxAge {
		return domain.DeviceCoordinate{}, false
	}
	return l.last, true
}
