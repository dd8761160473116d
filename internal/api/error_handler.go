package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/infrastructure/bridge"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Order matters: a
	// rejected login is both an auth failure and a remote rejection.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrSessionInvalid):
		return http.StatusUnauthorized, "session expired, please login again"
	case errors.Is(err, domain.ErrAuthFailure):
		return http.StatusUnauthorized, domain.RemoteMessage(err, "login failed")
	case errors.Is(err, domain.ErrRejected):
		return http.StatusUnprocessableEntity, domain.RemoteMessage(err, "rejected by remote service")
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway, "remote service unreachable"
	case errors.Is(err, domain.ErrCapability):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrScannerBusy),
		errors.Is(err, bridge.ErrNoActiveStream),
		errors.Is(err, bridge.ErrNoPendingRequest):
		return http.StatusConflict, err.Error()
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "request cancelled"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
