package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
)

// NoticeSource exposes the notices still on screen.
type NoticeSource interface {
	Snapshot() (ports.View, []ports.Notice)
}

// WorkflowHandler serves the user actions of the attendance workflow.
type WorkflowHandler struct {
	workflow ports.AttendanceWorkflow
	notices  NoticeSource
}

func NewWorkflowHandler(workflow ports.AttendanceWorkflow, notices NoticeSource) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow, notices: notices}
}

func (h *WorkflowHandler) respond(c echo.Context, status int) error {
	resp := viewResponse{View: h.workflow.View(), Notices: []ports.Notice{}}
	if h.notices != nil {
		if _, n := h.notices.Snapshot(); n != nil {
			resp.Notices = n
		}
	}
	return c.JSON(status, resp)
}

// View returns the current screen.
//
// @Summary      Current view
// @Tags         session
// @Produce      json
// @Success      200  {object}  viewResponse
// @Router       /v1/view [get]
func (h *WorkflowHandler) View(c echo.Context) error {
	return h.respond(c, http.StatusOK)
}

// Login authenticates an employee.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Employee code and phone"
// @Success      200   {object}  viewResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/session/login [post]
func (h *WorkflowHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	// Empty fields are left to the workflow so the user gets its notice.
	if err := h.workflow.Login(c.Request().Context(), req.Code, req.Phone); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK)
}

// Logout ends the session.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  viewResponse
// @Router       /v1/session/logout [post]
func (h *WorkflowHandler) Logout(c echo.Context) error {
	if err := h.workflow.Logout(c.Request().Context()); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK)
}

// CheckIn opens the scanner for a check-in.
//
// @Summary      Start check-in
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /v1/attendance/check-in [post]
func (h *WorkflowHandler) CheckIn(c echo.Context) error {
	return h.startScan(c, domain.DirectionCheckIn)
}

// CheckOut opens the scanner for a check-out.
//
// @Summary      Start check-out
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /v1/attendance/check-out [post]
func (h *WorkflowHandler) CheckOut(c echo.Context) error {
	return h.startScan(c, domain.DirectionCheckOut)
}

func (h *WorkflowHandler) startScan(c echo.Context, dir domain.Direction) error {
	if err := h.workflow.StartScan(c.Request().Context(), dir); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK)
}

// CancelScan closes the scanner.
//
// @Summary      Cancel scan
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      409  {object}  map[string]string
// @Router       /v1/scan/cancel [post]
func (h *WorkflowHandler) CancelScan(c echo.Context) error {
	if err := h.workflow.CancelScan(c.Request().Context()); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK)
}

// CancelLocation abandons the accepted scan.
//
// @Summary      Cancel location
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      409  {object}  map[string]string
// @Router       /v1/location/cancel [post]
func (h *WorkflowHandler) CancelLocation(c echo.Context) error {
	if err := h.workflow.CancelLocation(c.Request().Context()); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK)
}
