package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAttendanceStatus_Projection(t *testing.T) {
	var s AttendanceStatus
	if !s.CanCheckIn() || s.CanCheckOut() {
		t.Fatalf("fresh status: check-in must be enabled and check-out disabled")
	}

	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	if err := s.Record(DirectionCheckIn, at); err != nil {
		t.Fatalf("record check-in: %v", err)
	}
	if !s.CheckedIn || s.CheckInTime == nil || s.CheckOutTime != nil {
		t.Fatalf("unexpected status after check-in: %+v", s)
	}
	if s.CanCheckIn() || !s.CanCheckOut() {
		t.Fatalf("after check-in only check-out must be enabled")
	}

	if err := s.Record(DirectionCheckOut, at.Add(8*time.Hour)); err != nil {
		t.Fatalf("record check-out: %v", err)
	}
	if !s.CheckedIn || s.CheckOutTime == nil {
		t.Fatalf("unexpected status after check-out: %+v", s)
	}
	if s.CanCheckIn() || s.CanCheckOut() {
		t.Fatalf("after check-out both actions must be disabled")
	}
}

func TestAttendanceStatus_RecordRejectsOutOfOrder(t *testing.T) {
	var s AttendanceStatus
	if err := s.Record(DirectionCheckOut, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("check-out before check-in must fail, got %v", err)
	}
	if s.CheckOutTime != nil {
		t.Fatalf("status must be untouched on failure")
	}

	_ = s.Record(DirectionCheckIn, time.Now())
	if err := s.Record(DirectionCheckIn, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second check-in must fail, got %v", err)
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("check-out"); err != nil || d != DirectionCheckOut {
		t.Fatalf("unexpected result: %v %v", d, err)
	}
	if _, err := ParseDirection("checkout"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if DirectionCheckOut.Progressive() != "Checking out" || DirectionCheckIn.Progressive() != "Checking in" {
		t.Fatalf("unexpected progressive verbs")
	}
}
