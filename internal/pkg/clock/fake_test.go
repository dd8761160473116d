package clock

import (
	"testing"
	"time"
)

func TestFakeClock_AdvanceFiresInDeadlineOrder(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	c := Fake(start)

	var order []string
	c.AfterFunc(3*time.Second, func() { order = append(order, "late") })
	c.AfterFunc(1*time.Second, func() { order = append(order, "early") })

	c.Advance(500 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("nothing should fire before its deadline, got %v", order)
	}

	c.Advance(3 * time.Second)
	if len(order) != 2 || order[0] != "early" || order[1] != "late" {
		t.Fatalf("unexpected firing order: %v", order)
	}
	if got := c.Now(); !got.Equal(start.Add(3500 * time.Millisecond)) {
		t.Fatalf("unexpected now: %v", got)
	}
}

func TestFakeClock_StopPreventsFiring(t *testing.T) {
	c := Fake(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatalf("first Stop should report true")
	}
	if timer.Stop() {
		t.Fatalf("second Stop should report false")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", c.Pending())
	}
}

func TestFakeClock_ZeroDelayWaitsForAdvance(t *testing.T) {
	c := Fake(time.Unix(0, 0))
	fired := false
	c.AfterFunc(0, func() { fired = true })
	if fired {
		t.Fatalf("zero-delay callback must not run inside AfterFunc")
	}
	c.Advance(0)
	if !fired {
		t.Fatalf("zero-delay callback should run on Advance(0)")
	}
}
