package domain

import (
	"fmt"
	"time"
)

// Direction says whether an attempt records a check-in or a check-out.
// The value doubles as the remote endpoint path segment.
type Direction string

const (
	DirectionCheckIn  Direction = "check-in"
	DirectionCheckOut Direction = "check-out"
)

// ParseDirection validates a direction received from the control API.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionCheckIn, DirectionCheckOut:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown direction %q", ErrValidation, s)
	}
}

// Progressive is the user-facing verb for an in-flight submission.
func (d Direction) Progressive() string {
	if d == DirectionCheckOut {
		return "Checking out"
	}
	return "Checking in"
}

// AttendanceStatus is the per-session record of check-in/check-out
// completion. CheckOutTime is only ever set after a check-in.
type AttendanceStatus struct {
	CheckedIn    bool       `json:"checked_in"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
}

// CanCheckIn reports whether the check-in action is enabled.
func (s AttendanceStatus) CanCheckIn() bool { return !s.CheckedIn }

// CanCheckOut reports whether the check-out action is enabled.
func (s AttendanceStatus) CanCheckOut() bool { return s.CheckedIn && s.CheckOutTime == nil }

// Allows reports whether an attempt in direction d may start.
func (s AttendanceStatus) Allows(d Direction) bool {
	switch d {
	case DirectionCheckIn:
		return s.CanCheckIn()
	case DirectionCheckOut:
		return s.CanCheckOut()
	default:
		return false
	}
}

// Record applies a successful submission in direction d at time at.
func (s *AttendanceStatus) Record(d Direction, at time.Time) error {
	if !s.Allows(d) {
		return fmt.Errorf("record %s: %w", d, ErrInvalidTransition)
	}
	t := at
	switch d {
	case DirectionCheckIn:
		s.CheckedIn = true
		s.CheckInTime = &t
	case DirectionCheckOut:
		s.CheckOutTime = &t
	}
	return nil
}

// SubmissionRecord is built fresh for every submission and never stored.
type SubmissionRecord struct {
	ScanTime          time.Time
	OperatorID        string
	IntegrityHash     string
	SiteCoordinate    string
	ClientIP          string
	CurrentCoordinate string
	Direction         Direction
}
