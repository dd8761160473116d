package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/attendance-kiosk/internal/infrastructure/display"
)

const heartbeatInterval = 15 * time.Second

// Subscriber hands out event feeds.
type Subscriber interface {
	Subscribe() *display.Subscription
}

// EventsHandler streams views and notices as server-sent events.
type EventsHandler struct {
	hub       Subscriber
	heartbeat time.Duration
}

func NewEventsHandler(hub Subscriber) *EventsHandler {
	return &EventsHandler{hub: hub, heartbeat: heartbeatInterval}
}

// Stream keeps the connection open until the client goes away.
//
// @Summary      Event stream
// @Tags         session
// @Produce      text/event-stream
// @Success      200
// @Router       /v1/events [get]
func (h *EventsHandler) Stream(c echo.Context) error {
	sub := h.hub.Subscribe()
	defer sub.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
