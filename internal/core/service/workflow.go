package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
	"github.com/99minutos/attendance-kiosk/internal/metrics"
	"github.com/99minutos/attendance-kiosk/internal/pkg/clock"
	"github.com/99minutos/attendance-kiosk/pkg/logger"
)

// User-facing messages.
const (
	msgFillAllFields    = "Please fill in all fields"
	msgLoginSuccess     = "Login successful!"
	msgLoginFailed      = "Login failed"
	msgNoToken          = "Login failed: No token received"
	msgNoIdentity       = "Login failed: No employee profile received"
	msgNetworkError     = "Network error. Please try again."
	msgLoggedOut        = "Logged out successfully"
	msgCameraFailure    = "Camera access denied or not available"
	msgInvalidQR        = "Invalid QR code format. Please scan a valid attendance QR code."
	msgScanAccepted     = "QR code scanned successfully"
	msgLocationFailed   = "Unable to get your location. Please try again."
	msgNoGeolocation    = "Geolocation is not supported by this device"
	msgTokenMissing     = "Authentication token missing. Please login again."
	msgCheckInSuccess   = "Check-in successful!"
	msgCheckOutSuccess  = "Check-out successful!"
	msgCheckInDisabled  = "You have already checked in"
	msgCheckOutDisabled = "Check-out is not available"
)

// Options tunes the workflow. Zero holds return to the dashboard at once.
type Options struct {
	// OperatorID is sent as the submitting operator; the employee id is
	// used when empty.
	OperatorID string
	Location   ports.LocationOptions
	// AutoLocate starts location acquisition as soon as a scan is accepted.
	AutoLocate        bool
	CameraFailureHold time.Duration
	ScanRejectHold    time.Duration
	Clock             clock.Clock
	// BaseContext bounds work the workflow starts on its own, such as
	// automatic location requests.
	BaseContext context.Context
}

// Workflow is the attendance session state machine. All state is guarded
// by mu; remote calls, the location wait and hold timers run outside it
// and re-check the generation they were started under before applying
// their outcome.
type Workflow struct {
	store   ports.SessionStore
	gateway ports.Gateway
	scanner ports.ScanAcquirer
	locator ports.LocationAcquirer
	display ports.Display
	opts    Options
	clock   clock.Clock
	log     zerolog.Logger
	baseCtx context.Context

	mu         sync.Mutex
	state      domain.State
	identity   *domain.Identity
	credential domain.Credential
	status     domain.AttendanceStatus
	revision   uint64

	// session is bumped on every login/logout so late auth responses are dropped.
	session uint64
	// attempt is bumped whenever an attempt starts or is abandoned.
	attempt   uint64
	direction domain.Direction
	payload   *domain.ScanPayload
	scanning  bool
	locating  bool
	holding   bool
	hold      clock.Timer
	// cancelLocate aborts an in-flight location wait when the attempt is
	// abandoned.
	cancelLocate context.CancelFunc
}

var _ ports.AttendanceWorkflow = (*Workflow)(nil)

// NewWorkflow wires a workflow in the Unauthenticated state. Call Init
// before serving user actions.
func NewWorkflow(
	store ports.SessionStore,
	gateway ports.Gateway,
	scanner ports.ScanAcquirer,
	locator ports.LocationAcquirer,
	display ports.Display,
	opts Options,
	log zerolog.Logger,
) *Workflow {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	base := opts.BaseContext
	if base == nil {
		base = context.Background()
	}
	return &Workflow{
		store:   store,
		gateway: gateway,
		scanner: scanner,
		locator: locator,
		display: display,
		opts:    opts,
		clock:   clk,
		log:     log,
		baseCtx: base,
		state:   domain.StateUnauthenticated,
	}
}

// Init restores a persisted session. Anything unusable in the store is
// cleared and the workflow starts at the login screen; storage failures
// fail open the same way.
func (w *Workflow) Init(ctx context.Context) ports.View {
	w.mu.Lock()
	defer w.mu.Unlock()

	identity, cred, err := w.store.Load(ctx)
	if err == nil && cred.Usable(w.clock.Now()) {
		w.identity = &identity
		w.credential = cred
		w.status = domain.AttendanceStatus{}
		w.state = domain.StateDashboard
		w.log.Info().
			Int64("employee_id", identity.EmployeeID).
			Str("token", logger.TokenPreview(string(cred))).
			Msg("session restored")
		w.render()
		return w.viewLocked()
	}

	switch {
	case err == nil:
		w.log.Info().Msg("stored credential no longer usable")
	case errors.Is(err, domain.ErrSessionNotFound):
		w.log.Debug().Msg("no stored session")
	default:
		w.log.Warn().Err(err).Msg("session store unavailable, starting logged out")
	}
	if cerr := w.store.Clear(ctx); cerr != nil {
		w.log.Warn().Err(cerr).Msg("failed to clear invalid session")
	}
	w.state = domain.StateUnauthenticated
	w.render()
	return w.viewLocked()
}

// View returns the current display projection.
func (w *Workflow) View() ports.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

// Login authenticates with the remote service and, on success, persists the
// session and shows the dashboard.
func (w *Workflow) Login(ctx context.Context, code, phone string) error {
	code, phone = strings.TrimSpace(code), strings.TrimSpace(phone)

	w.mu.Lock()
	if code == "" || phone == "" {
		w.notify(ports.NoticeError, msgFillAllFields)
		w.mu.Unlock()
		metrics.LoginsTotal.WithLabelValues("validation").Inc()
		return fmt.Errorf("login: %w", domain.ErrEmptyLoginField)
	}
	if err := w.transition(domain.StateAuthenticating); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("login: %w", err)
	}
	w.session++
	gen := w.session
	w.render()
	w.mu.Unlock()

	res, err := w.gateway.Authenticate(ctx, code, phone)
	var cred domain.Credential
	if err == nil {
		var ok bool
		switch cred, ok = domain.ParseCredential(res.Token); {
		case !ok:
			err = domain.ErrNoToken
		case res.Identity == nil:
			err = domain.ErrNoIdentity
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.session || w.state != domain.StateAuthenticating {
		w.log.Debug().Msg("login response ignored, session changed meanwhile")
		return fmt.Errorf("login: %w", domain.ErrInvalidTransition)
	}

	if err != nil {
		w.failLogin(err)
		_ = w.transition(domain.StateUnauthenticated)
		w.render()
		if errors.Is(err, domain.ErrRejected) {
			return fmt.Errorf("login: %w: %w", domain.ErrAuthFailure, err)
		}
		return fmt.Errorf("login: %w", err)
	}

	identity := *res.Identity
	w.identity = &identity
	w.credential = cred
	w.status = domain.AttendanceStatus{}
	if serr := w.store.Save(ctx, identity, cred); serr != nil {
		w.log.Warn().Err(serr).Msg("failed to persist session, continuing in memory")
	}
	_ = w.transition(domain.StateDashboard)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	w.log.Info().
		Int64("employee_id", identity.EmployeeID).
		Str("token", logger.TokenPreview(string(cred))).
		Msg("login succeeded")
	w.render()
	w.notify(ports.NoticeSuccess, msgLoginSuccess)
	return nil
}

func (w *Workflow) failLogin(err error) {
	switch {
	case errors.Is(err, domain.ErrNoToken):
		metrics.LoginsTotal.WithLabelValues("no_token").Inc()
		w.notify(ports.NoticeError, msgNoToken)
	case errors.Is(err, domain.ErrNoIdentity):
		metrics.LoginsTotal.WithLabelValues("no_token").Inc()
		w.notify(ports.NoticeError, msgNoIdentity)
	case errors.Is(err, domain.ErrRejected):
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		w.notify(ports.NoticeError, domain.RemoteMessage(err, msgLoginFailed))
	default:
		metrics.LoginsTotal.WithLabelValues("network").Inc()
		w.notify(ports.NoticeError, msgNetworkError)
	}
	w.log.Warn().Err(err).Msg("login failed")
}

// Logout clears the persisted session and resets attendance status. It is
// valid from every state and idempotent.
func (w *Workflow) Logout(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logoutLocked(ctx, "user")
	w.notify(ports.NoticeInfo, msgLoggedOut)
	return nil
}

func (w *Workflow) logoutLocked(ctx context.Context, reason string) {
	w.stopScanner()
	w.abandonAttempt()
	w.session++
	w.identity = nil
	w.credential = ""
	w.status = domain.AttendanceStatus{}
	if err := w.store.Clear(ctx); err != nil {
		w.log.Warn().Err(err).Msg("failed to clear session store")
	}
	if w.state != domain.StateUnauthenticated {
		_ = w.transition(domain.StateUnauthenticated)
		metrics.LogoutsTotal.WithLabelValues(reason).Inc()
		w.log.Info().Str("reason", reason).Msg("logged out")
	}
	w.render()
}

// operatorID returns the id reported as the submitting operator.
func (w *Workflow) operatorID() string {
	if w.opts.OperatorID != "" {
		return w.opts.OperatorID
	}
	if w.identity != nil {
		return strconv.FormatInt(w.identity.EmployeeID, 10)
	}
	return ""
}

// transition moves to next if the state table allows it.
func (w *Workflow) transition(next domain.State) error {
	if !w.state.CanTransitionTo(next) {
		return fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, w.state, next)
	}
	metrics.TransitionsTotal.WithLabelValues(string(w.state), string(next)).Inc()
	w.log.Debug().Str("from", string(w.state)).Str("to", string(next)).Msg("transition")
	w.state = next
	return nil
}

func (w *Workflow) notify(level ports.NoticeLevel, msg string) {
	w.display.Notify(ports.Notice{Level: level, Message: msg, At: w.clock.Now()})
}

func (w *Workflow) render() {
	w.revision++
	w.display.Render(w.viewLocked())
}
