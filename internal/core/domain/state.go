package domain

// State is the workflow's screen-level state.
type State string

const (
	StateUnauthenticated  State = "unauthenticated"
	StateAuthenticating   State = "authenticating"
	StateDashboard        State = "dashboard"
	StateScanning         State = "scanning"
	StateAwaitingLocation State = "awaiting_location"
	StateSubmitting       State = "submitting"
)

// validTransitions defines the allowed state machine transitions. Every
// state except Unauthenticated can be left through logout.
var validTransitions = map[State][]State{
	StateUnauthenticated:  {StateAuthenticating},
	StateAuthenticating:   {StateDashboard, StateUnauthenticated},
	StateDashboard:        {StateScanning, StateUnauthenticated},
	StateScanning:         {StateAwaitingLocation, StateDashboard, StateUnauthenticated},
	StateAwaitingLocation: {StateSubmitting, StateDashboard, StateUnauthenticated},
	StateSubmitting:       {StateDashboard, StateUnauthenticated},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InAttempt reports whether s belongs to a scan → location → submit attempt.
func (s State) InAttempt() bool {
	return s == StateScanning || s == StateAwaitingLocation || s == StateSubmitting
}

// Authenticated reports whether s implies a logged-in session.
func (s State) Authenticated() bool {
	return s != StateUnauthenticated && s != StateAuthenticating
}
