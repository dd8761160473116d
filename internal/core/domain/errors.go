package domain

import (
	"errors"
	"fmt"
)

// Error classes. Specific errors wrap one of these so callers can branch
// with errors.Is on the class.
var (
	ErrValidation     = errors.New("validation failed")
	ErrCapability     = errors.New("capability unavailable")
	ErrAuthFailure    = errors.New("authentication failed")
	ErrRejected       = errors.New("rejected by remote service")
	ErrNetwork        = errors.New("network failure")
	ErrSessionInvalid = errors.New("session credential missing or invalid")
)

var (
	ErrEmptyLoginField    = fmt.Errorf("%w: code and phone are required", ErrValidation)
	ErrInvalidScanPayload = fmt.Errorf("%w: invalid scan payload", ErrValidation)
	ErrActionDisabled     = fmt.Errorf("%w: action not available", ErrValidation)
	ErrInvalidCoordinate  = fmt.Errorf("%w: coordinate out of range", ErrValidation)

	ErrCameraUnavailable   = fmt.Errorf("%w: camera access denied or not available", ErrCapability)
	ErrLocationUnavailable = fmt.Errorf("%w: geolocation is not supported", ErrCapability)
	ErrLocationDenied      = fmt.Errorf("%w: geolocation permission denied", ErrCapability)
	ErrLocationTimeout     = fmt.Errorf("%w: geolocation timed out", ErrCapability)

	ErrNoToken    = fmt.Errorf("%w: no token received", ErrAuthFailure)
	ErrNoIdentity = fmt.Errorf("%w: no employee profile received", ErrAuthFailure)
)

var (
	// ErrNothingDecoded is the benign "no code in view yet" signal a camera
	// emits on every empty frame.
	ErrNothingDecoded = errors.New("no code in view")

	ErrScannerBusy       = errors.New("scanner already running")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// RemoteError is a non-2xx answer from the remote service. It matches
// ErrRejected under errors.Is.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote service returned status %d", e.Status)
	}
	return fmt.Sprintf("remote service returned status %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Is(target error) bool { return target == ErrRejected }

// RemoteMessage extracts the server-supplied message from err, or returns
// fallback when err carries none.
func RemoteMessage(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}
