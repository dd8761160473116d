package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
	"github.com/99minutos/attendance-kiosk/internal/metrics"
)

// StartCheckIn starts a scanning session for a check-in.
func (w *Workflow) StartCheckIn(ctx context.Context) error {
	return w.StartScan(ctx, domain.DirectionCheckIn)
}

// StartCheckOut starts a scanning session for a check-out.
func (w *Workflow) StartCheckOut(ctx context.Context) error {
	return w.StartScan(ctx, domain.DirectionCheckOut)
}

// StartScan opens the scanner for a new attempt. The direction is fixed
// here and carried unchanged to submission. ctx bounds opening the camera
// only; the scanning session lives until a result, CancelScan or Logout.
func (w *Workflow) StartScan(ctx context.Context, dir domain.Direction) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != domain.StateDashboard {
		return fmt.Errorf("start scan: %w (from %s)", domain.ErrInvalidTransition, w.state)
	}
	if !w.status.Allows(dir) {
		if dir == domain.DirectionCheckIn {
			w.notify(ports.NoticeError, msgCheckInDisabled)
		} else {
			w.notify(ports.NoticeError, msgCheckOutDisabled)
		}
		return fmt.Errorf("start scan: %w: %s", domain.ErrActionDisabled, dir)
	}
	if err := w.transition(domain.StateScanning); err != nil {
		return fmt.Errorf("start scan: %w", err)
	}

	w.attempt++
	gen := w.attempt
	w.direction = dir
	w.payload = nil

	results, err := w.scanner.Start(ctx)
	if err != nil {
		w.scanner.Stop()
		w.failScan(gen, err)
		return fmt.Errorf("start scan: %w", err)
	}
	w.scanning = true
	w.log.Info().Str("direction", string(dir)).Uint64("attempt", gen).Msg("scanner started")
	w.render()

	go w.awaitScan(gen, results)
	return nil
}

// awaitScan forwards scan results for attempt gen until the acquirer
// closes the channel.
func (w *Workflow) awaitScan(gen uint64, results <-chan ports.ScanResult) {
	for res := range results {
		w.handleScanResult(gen, res)
	}
}

// handleScanResult accepts at most one result per attempt. The scanner is
// stopped before the result is looked at, so nothing decoded afterwards
// can reach the workflow.
func (w *Workflow) handleScanResult(gen uint64, res ports.ScanResult) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.attempt || w.state != domain.StateScanning || w.holding {
		w.log.Debug().Uint64("attempt", gen).Msg("scan result ignored")
		return
	}
	w.stopScanner()

	if res.Err != nil {
		w.failScan(gen, res.Err)
		return
	}

	payload, err := domain.ParseScanPayload(res.Text)
	if err != nil {
		metrics.ScansTotal.WithLabelValues(string(w.direction), "rejected").Inc()
		w.log.Warn().Err(err).Int("raw_len", len(res.Text)).Msg("scan rejected")
		w.notify(ports.NoticeError, msgInvalidQR)
		w.holdThenDashboard(gen, w.opts.ScanRejectHold)
		return
	}

	w.payload = &payload
	_ = w.transition(domain.StateAwaitingLocation)
	metrics.ScansTotal.WithLabelValues(string(w.direction), "accepted").Inc()
	w.log.Info().Str("site", payload.SiteCoordinate).Msg("scan accepted")
	w.notify(ports.NoticeSuccess, msgScanAccepted)
	w.render()

	if w.opts.AutoLocate {
		go func() {
			if err := w.GrantLocation(w.baseCtx); err != nil {
				w.log.Debug().Err(err).Msg("automatic location attempt ended")
			}
		}()
	}
}

// failScan handles a camera that could not start or failed mid-session.
func (w *Workflow) failScan(gen uint64, err error) {
	metrics.ScansTotal.WithLabelValues(string(w.direction), "capability_error").Inc()
	w.log.Warn().Err(err).Msg("scanner failed")
	w.notify(ports.NoticeError, msgCameraFailure)
	w.holdThenDashboard(gen, w.opts.CameraFailureHold)
}

// holdThenDashboard closes the attempt, keeps the scanner screen up for d
// and then returns to the dashboard unless the attempt moved on.
func (w *Workflow) holdThenDashboard(gen uint64, d time.Duration) {
	if d <= 0 {
		w.returnToDashboard()
		return
	}
	w.holding = true
	w.render()
	w.hold = w.clock.AfterFunc(d, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.attempt || !w.holding {
			return
		}
		w.returnToDashboard()
	})
}

func (w *Workflow) returnToDashboard() {
	w.abandonAttempt()
	_ = w.transition(domain.StateDashboard)
	w.render()
}

// CancelScan stops the scanner and returns to the dashboard.
func (w *Workflow) CancelScan(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != domain.StateScanning {
		return fmt.Errorf("cancel scan: %w (from %s)", domain.ErrInvalidTransition, w.state)
	}
	if !w.holding {
		metrics.ScansTotal.WithLabelValues(string(w.direction), "cancelled").Inc()
	}
	w.stopScanner()
	w.returnToDashboard()
	return nil
}

// CancelLocation abandons the accepted scan and returns to the dashboard.
func (w *Workflow) CancelLocation(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != domain.StateAwaitingLocation {
		return fmt.Errorf("cancel location: %w (from %s)", domain.ErrInvalidTransition, w.state)
	}
	w.returnToDashboard()
	return nil
}

// GrantLocation acquires the device coordinate for the accepted scan and
// submits the attempt. A failed acquisition discards the scan; the user
// has to scan again.
func (w *Workflow) GrantLocation(ctx context.Context) error {
	w.mu.Lock()
	if w.state != domain.StateAwaitingLocation || w.locating {
		state := w.state
		w.mu.Unlock()
		return fmt.Errorf("grant location: %w (from %s)", domain.ErrInvalidTransition, state)
	}
	gen := w.attempt
	w.locating = true
	locCtx, cancel := context.WithCancel(ctx)
	w.cancelLocate = cancel
	w.render()
	w.mu.Unlock()

	coord, err := w.locator.Acquire(locCtx, w.opts.Location)
	cancel()

	w.mu.Lock()
	if gen != w.attempt || w.state != domain.StateAwaitingLocation {
		w.mu.Unlock()
		return fmt.Errorf("grant location: %w (attempt abandoned)", domain.ErrInvalidTransition)
	}
	w.locating = false
	w.cancelLocate = nil

	if err != nil {
		metrics.LocationFailuresTotal.WithLabelValues(locationFailureReason(err)).Inc()
		w.log.Warn().Err(err).Msg("location acquisition failed")
		if errors.Is(err, domain.ErrLocationUnavailable) {
			w.notify(ports.NoticeError, msgNoGeolocation)
		} else {
			w.notify(ports.NoticeError, msgLocationFailed)
		}
		w.returnToDashboard()
		w.mu.Unlock()
		return fmt.Errorf("grant location: %w", err)
	}

	_ = w.transition(domain.StateSubmitting)
	if !w.credential.Usable(w.clock.Now()) {
		metrics.SubmissionsTotal.WithLabelValues(string(w.direction), "session_invalid").Inc()
		w.log.Warn().Msg("credential missing or expired at submission, forcing logout")
		w.logoutLocked(ctx, "session_invalid")
		w.notify(ports.NoticeError, msgTokenMissing)
		w.mu.Unlock()
		return fmt.Errorf("submit: %w", domain.ErrSessionInvalid)
	}

	sub := pendingSubmission{
		gen:        gen,
		direction:  w.direction,
		payload:    *w.payload,
		coord:      coord,
		credential: w.credential,
		operatorID: w.operatorID(),
	}
	w.render()
	w.mu.Unlock()

	return w.submit(ctx, sub)
}

// pendingSubmission is the attempt data captured under the lock before the
// remote call.
type pendingSubmission struct {
	gen        uint64
	direction  domain.Direction
	payload    domain.ScanPayload
	coord      domain.DeviceCoordinate
	credential domain.Credential
	operatorID string
}

func (w *Workflow) submit(ctx context.Context, sub pendingSubmission) error {
	scanTime := w.clock.Now()
	record := domain.SubmissionRecord{
		ScanTime:          scanTime,
		OperatorID:        sub.operatorID,
		IntegrityHash:     sub.payload.IntegrityHash,
		SiteCoordinate:    sub.payload.SiteCoordinate,
		ClientIP:          w.gateway.ResolveClientAddress(ctx),
		CurrentCoordinate: sub.coord.String(),
		Direction:         sub.direction,
	}

	started := time.Now()
	var err error
	if sub.direction == domain.DirectionCheckOut {
		err = w.gateway.CheckOut(ctx, sub.credential, record)
	} else {
		err = w.gateway.CheckIn(ctx, sub.credential, record)
	}
	metrics.SubmissionDuration.WithLabelValues(string(sub.direction)).Observe(time.Since(started).Seconds())

	w.mu.Lock()
	defer w.mu.Unlock()
	if sub.gen != w.attempt || w.state != domain.StateSubmitting {
		w.log.Warn().Err(err).Str("direction", string(sub.direction)).Msg("submission finished after the attempt was abandoned")
		return fmt.Errorf("submit: %w (attempt abandoned)", domain.ErrInvalidTransition)
	}

	switch {
	case err == nil:
		if rerr := w.status.Record(sub.direction, scanTime); rerr != nil {
			w.log.Error().Err(rerr).Msg("accepted submission does not fit attendance status")
		}
		metrics.SubmissionsTotal.WithLabelValues(string(sub.direction), "success").Inc()
		w.log.Info().Str("direction", string(sub.direction)).Str("site", record.SiteCoordinate).Msg("attendance recorded")
		if sub.direction == domain.DirectionCheckOut {
			w.notify(ports.NoticeSuccess, msgCheckOutSuccess)
		} else {
			w.notify(ports.NoticeSuccess, msgCheckInSuccess)
		}
	case errors.Is(err, domain.ErrRejected):
		metrics.SubmissionsTotal.WithLabelValues(string(sub.direction), "rejected").Inc()
		w.log.Warn().Err(err).Str("direction", string(sub.direction)).Msg("submission rejected")
		w.notify(ports.NoticeError, domain.RemoteMessage(err, sub.direction.Progressive()+" failed"))
	default:
		metrics.SubmissionsTotal.WithLabelValues(string(sub.direction), "network").Inc()
		w.log.Warn().Err(err).Str("direction", string(sub.direction)).Msg("submission failed")
		w.notify(ports.NoticeError, msgNetworkError)
	}

	w.returnToDashboard()
	if err != nil {
		return fmt.Errorf("submit %s: %w", sub.direction, err)
	}
	return nil
}

// stopScanner releases the camera if this workflow started it.
func (w *Workflow) stopScanner() {
	if w.scanning {
		w.scanner.Stop()
		w.scanning = false
	}
}

// abandonAttempt drops every trace of the in-progress attempt and
// invalidates its pending continuations.
func (w *Workflow) abandonAttempt() {
	if w.hold != nil {
		w.hold.Stop()
		w.hold = nil
	}
	if w.cancelLocate != nil {
		w.cancelLocate()
		w.cancelLocate = nil
	}
	w.attempt++
	w.holding = false
	w.locating = false
	w.direction = ""
	w.payload = nil
}

func locationFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrLocationTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrLocationDenied):
		return "denied"
	case errors.Is(err, domain.ErrLocationUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}
