package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
)

type stubSignals struct {
	pushed []ports.ScanSignal
	err    error
}

func (s *stubSignals) Push(sig ports.ScanSignal) error {
	if s.err != nil {
		return s.err
	}
	s.pushed = append(s.pushed, sig)
	return nil
}

type stubFixes struct {
	supplied []domain.DeviceCoordinate
	failed   []error
}

func (s *stubFixes) Supply(coord domain.DeviceCoordinate) (bool, error) {
	s.supplied = append(s.supplied, coord)
	return true, nil
}

func (s *stubFixes) Fail(err error) error {
	s.failed = append(s.failed, err)
	return nil
}

func newCapabilityHandler(wf *stubWorkflow, cam *stubSignals, geo *stubFixes) *CapabilityHandler {
	return NewCapabilityHandler(context.Background(), wf, cam, geo, zerolog.Nop())
}

func TestCapabilityHandler_ScanSignalMapping(t *testing.T) {
	cases := []struct {
		body  string
		check func(ports.ScanSignal) bool
	}{
		{`{"text":"{\"integrityHash\":\"h\"}"}`, func(s ports.ScanSignal) bool { return s.Text != "" && s.Err == nil }},
		{`{"error":"No QR code found","benign":true}`, func(s ports.ScanSignal) bool { return errors.Is(s.Err, domain.ErrNothingDecoded) && !s.Fatal }},
		{`{"error":"NotAllowedError"}`, func(s ports.ScanSignal) bool { return s.Err != nil && s.Fatal }},
	}
	for _, tc := range cases {
		cam := &stubSignals{}
		h := newCapabilityHandler(&stubWorkflow{}, cam, &stubFixes{})
		c, rec := newContext(http.MethodPost, "/v1/scan/signals", tc.body)
		if err := h.ScanSignal(c); err != nil {
			t.Fatalf("body %s: handler error: %v", tc.body, err)
		}
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		if len(cam.pushed) != 1 || !tc.check(cam.pushed[0]) {
			t.Fatalf("body %s: unexpected signal %+v", tc.body, cam.pushed)
		}
	}
}

func TestCapabilityHandler_ScanSignalValidation(t *testing.T) {
	for _, body := range []string{`{}`, `{"text":"a","error":"b"}`} {
		h := newCapabilityHandler(&stubWorkflow{}, &stubSignals{}, &stubFixes{})
		c, _ := newContext(http.MethodPost, "/v1/scan/signals", body)
		if err := h.ScanSignal(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("body %s: expected validation error, got %v", body, err)
		}
	}
}

func TestCapabilityHandler_GrantLocationWithFix(t *testing.T) {
	granted := false
	wf := &stubWorkflow{
		view:    ports.View{State: domain.StateAwaitingLocation},
		grantFn: func(context.Context) error { granted = true; return nil },
	}
	geo := &stubFixes{}
	h := newCapabilityHandler(wf, &stubSignals{}, geo)

	c, rec := newContext(http.MethodPost, "/v1/location", `{"latitude":19.4326,"longitude":-99.1332}`)
	if err := h.GrantLocation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !granted {
		t.Fatalf("expected synchronous grant, code=%d granted=%v", rec.Code, granted)
	}
	if len(geo.supplied) != 1 || geo.supplied[0].Longitude != -99.1332 {
		t.Fatalf("fix not supplied: %+v", geo.supplied)
	}
}

func TestCapabilityHandler_GrantLocationWithoutFixRunsInBackground(t *testing.T) {
	done := make(chan struct{})
	wf := &stubWorkflow{
		view:    ports.View{State: domain.StateAwaitingLocation},
		grantFn: func(context.Context) error { close(done); return nil },
	}
	h := newCapabilityHandler(wf, &stubSignals{}, &stubFixes{})

	c, rec := newContext(http.MethodPost, "/v1/location", "")
	if err := h.GrantLocation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("background grant never ran")
	}
}

func TestCapabilityHandler_GrantLocationRequiresPrompt(t *testing.T) {
	h := newCapabilityHandler(&stubWorkflow{view: ports.View{State: domain.StateDashboard}}, &stubSignals{}, &stubFixes{})
	c, _ := newContext(http.MethodPost, "/v1/location", "")
	if err := h.GrantLocation(c); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCapabilityHandler_GrantLocationHalfFix(t *testing.T) {
	h := newCapabilityHandler(&stubWorkflow{view: ports.View{State: domain.StateAwaitingLocation}}, &stubSignals{}, &stubFixes{})
	c, _ := newContext(http.MethodPost, "/v1/location", `{"latitude":10}`)
	if err := h.GrantLocation(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCapabilityHandler_LocationFixValidation(t *testing.T) {
	h := newCapabilityHandler(&stubWorkflow{}, &stubSignals{}, &stubFixes{})
	for _, body := range []string{`{}`, `{"latitude":91,"longitude":0}`, `{"latitude":0,"longitude":-181}`} {
		c, _ := newContext(http.MethodPost, "/v1/location/fix", body)
		if err := h.LocationFix(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("body %s: expected validation error, got %v", body, err)
		}
	}
}

func TestCapabilityHandler_LocationError(t *testing.T) {
	cases := map[string]error{
		"denied":      domain.ErrLocationDenied,
		"timeout":     domain.ErrLocationTimeout,
		"unavailable": domain.ErrLocationUnavailable,
	}
	for reason, want := range cases {
		geo := &stubFixes{}
		h := newCapabilityHandler(&stubWorkflow{}, &stubSignals{}, geo)
		c, rec := newContext(http.MethodPost, "/v1/location/error", `{"reason":"`+reason+`"}`)
		if err := h.LocationError(c); err != nil {
			t.Fatalf("%s: handler error: %v", reason, err)
		}
		if rec.Code != http.StatusAccepted || len(geo.failed) != 1 || !errors.Is(geo.failed[0], want) {
			t.Fatalf("%s: unexpected result code=%d failed=%v", reason, rec.Code, geo.failed)
		}
	}

	h := newCapabilityHandler(&stubWorkflow{}, &stubSignals{}, &stubFixes{})
	c, _ := newContext(http.MethodPost, "/v1/location/error", `{"reason":"bored"}`)
	if err := h.LocationError(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
