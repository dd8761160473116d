package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
)

// SignalSink receives camera decoder callbacks.
type SignalSink interface {
	Push(sig ports.ScanSignal) error
}

// FixSink receives geolocation results.
type FixSink interface {
	Supply(coord domain.DeviceCoordinate) (bool, error)
	Fail(err error) error
}

// CapabilityHandler feeds camera and geolocation results from the kiosk
// front end into the workflow.
type CapabilityHandler struct {
	workflow ports.AttendanceWorkflow
	camera   SignalSink
	geo      FixSink
	baseCtx  context.Context
	log      zerolog.Logger
}

// NewCapabilityHandler builds the handler. Grants without a fix run on
// baseCtx so they outlive the request.
func NewCapabilityHandler(ctx context.Context, workflow ports.AttendanceWorkflow, camera SignalSink, geo FixSink, log zerolog.Logger) *CapabilityHandler {
	return &CapabilityHandler{workflow: workflow, camera: camera, geo: geo, baseCtx: ctx, log: log}
}

// ScanSignal forwards one decoder callback to the open camera stream.
//
// @Summary      Push scan signal
// @Tags         capability
// @Accept       json
// @Param        body  body  scanSignalRequest  true  "Decoded text or decoder error"
// @Success      202
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/scan/signals [post]
func (h *CapabilityHandler) ScanSignal(c echo.Context) error {
	var req scanSignalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sig := ports.ScanSignal{Text: req.Text}
	switch {
	case req.Error != "" && req.Benign:
		sig = ports.ScanSignal{Err: domain.ErrNothingDecoded}
	case req.Error != "":
		sig = ports.ScanSignal{Err: errors.New(req.Error), Fatal: true}
	}
	if err := h.camera.Push(sig); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// GrantLocation accepts the location prompt. With a fix in the body the
// attempt is submitted before responding; without one the grant waits in
// the background for /v1/location/fix.
//
// @Summary      Grant location
// @Tags         capability
// @Accept       json
// @Produce      json
// @Param        body  body      grantLocationRequest  false  "Optional device fix"
// @Success      200   {object}  viewResponse
// @Success      202   {object}  viewResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /v1/location [post]
func (h *CapabilityHandler) GrantLocation(c echo.Context) error {
	var req grantLocationRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if err := c.Validate(&req); err != nil {
			return err
		}
	}

	view := h.workflow.View()
	if view.State != domain.StateAwaitingLocation {
		return domain.ErrInvalidTransition
	}
	hasFix := req.Latitude != nil && req.Longitude != nil

	// A grant already waiting for a fix only needs the fix.
	if view.Locating {
		if hasFix {
			if _, err := h.geo.Supply(domain.DeviceCoordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}); err != nil {
				return err
			}
		}
		return c.JSON(http.StatusAccepted, viewResponse{View: h.workflow.View(), Notices: []ports.Notice{}})
	}

	if hasFix {
		if _, err := h.geo.Supply(domain.DeviceCoordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}); err != nil {
			return err
		}
		if err := h.workflow.GrantLocation(c.Request().Context()); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, viewResponse{View: h.workflow.View(), Notices: []ports.Notice{}})
	}

	go func() {
		if err := h.workflow.GrantLocation(h.baseCtx); err != nil {
			h.log.Debug().Err(err).Msg("background location grant ended")
		}
	}()
	return c.JSON(http.StatusAccepted, viewResponse{View: h.workflow.View(), Notices: []ports.Notice{}})
}

// LocationFix supplies a fix to a pending or upcoming acquisition.
//
// @Summary      Supply location fix
// @Tags         capability
// @Accept       json
// @Produce      json
// @Param        body  body      coordinateRequest  true  "Device fix"
// @Success      200   {object}  fixResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/location/fix [post]
func (h *CapabilityHandler) LocationFix(c echo.Context) error {
	var req coordinateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	delivered, err := h.geo.Supply(domain.DeviceCoordinate{Latitude: *req.Latitude, Longitude: *req.Longitude})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fixResponse{Delivered: delivered})
}

// LocationError reports a geolocation failure.
//
// @Summary      Report location failure
// @Tags         capability
// @Accept       json
// @Param        body  body  locationErrorRequest  true  "Failure reason"
// @Success      202
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/location/error [post]
func (h *CapabilityHandler) LocationError(c echo.Context) error {
	var req locationErrorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var cause error
	switch req.Reason {
	case "denied":
		cause = domain.ErrLocationDenied
	case "timeout":
		cause = domain.ErrLocationTimeout
	default:
		cause = domain.ErrLocationUnavailable
	}
	if err := h.geo.Fail(cause); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}
