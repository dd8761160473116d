// Package display implements the workflow's screen surface as an
// in-memory hub that control API clients poll or subscribe to.
package display

import (
	"sync"
	"time"

	"github.com/99minutos/attendance-kiosk/internal/core/ports"
	"github.com/99minutos/attendance-kiosk/internal/metrics"
	"github.com/99minutos/attendance-kiosk/internal/pkg/clock"
)

const (
	defaultNoticeTTL  = 5 * time.Second
	subscriberBuffer  = 32
	maxRetainedNotice = 20
)

// EventType tags an Event.
type EventType string

const (
	EventView   EventType = "view"
	EventNotice EventType = "notice"
)

// Event is one update delivered to subscribers.
type Event struct {
	Type   EventType     `json:"type"`
	View   *ports.View   `json:"view,omitempty"`
	Notice *ports.Notice `json:"notice,omitempty"`
}

// Hub keeps the latest view and the live notices and fans updates out to
// subscribers. Sends never block: a subscriber that falls behind loses
// events and should resynchronise from Snapshot.
type Hub struct {
	ttl   time.Duration
	clock clock.Clock

	mu      sync.Mutex
	view    ports.View
	notices []ports.Notice
	subs    map[*Subscription]struct{}
}

var _ ports.Display = (*Hub)(nil)

// NewHub returns a hub that drops notices older than ttl.
func NewHub(ttl time.Duration, clk clock.Clock) *Hub {
	if ttl <= 0 {
		ttl = defaultNoticeTTL
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Hub{ttl: ttl, clock: clk, subs: make(map[*Subscription]struct{})}
}

// Render replaces the current view.
func (h *Hub) Render(view ports.View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.view = view
	h.broadcastLocked(Event{Type: EventView, View: &view})
}

// Notify records a notice for ttl.
func (h *Hub) Notify(notice ports.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if notice.At.IsZero() {
		notice.At = h.clock.Now()
	}
	h.pruneLocked()
	h.notices = append(h.notices, notice)
	if len(h.notices) > maxRetainedNotice {
		h.notices = h.notices[len(h.notices)-maxRetainedNotice:]
	}
	h.broadcastLocked(Event{Type: EventNotice, Notice: &notice})
}

// Snapshot returns the current view and the notices still live.
func (h *Hub) Snapshot() (ports.View, []ports.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pruneLocked()
	return h.view, append([]ports.Notice(nil), h.notices...)
}

// Subscribe registers a subscriber. The current view is queued as its
// first event.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	view := h.view
	sub := &Subscription{hub: h, events: make(chan Event, subscriberBuffer)}
	sub.events <- Event{Type: EventView, View: &view}
	h.subs[sub] = struct{}{}
	metrics.SSESubscribers.Inc()
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.events)
	metrics.SSESubscribers.Dec()
}

func (h *Hub) broadcastLocked(ev Event) {
	for sub := range h.subs {
		select {
		case sub.events <- ev:
		default:
			sub.dropped++
		}
	}
}

func (h *Hub) pruneLocked() {
	cutoff := h.clock.Now().Add(-h.ttl)
	live := h.notices[:0]
	for _, n := range h.notices {
		if n.At.After(cutoff) {
			live = append(live, n)
		}
	}
	h.notices = live
}

// Subscription is one subscriber's event feed.
type Subscription struct {
	hub     *Hub
	events  chan Event
	dropped uint64
}

// Events is closed by Close.
func (s *Subscription) Events() <-chan Event { return s.events }

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() { s.hub.unsubscribe(s) }

// Dropped reports how many events were lost because the feed was full.
func (s *Subscription) Dropped() uint64 {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.dropped
}
