package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{BaseURL: srv.URL + "/api/", IPLookupURL: srv.URL + "/ip", Timeout: time.Second}, nil, zerolog.Nop())
}

func TestClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/employee-login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "E-1" || body["phone"] != "555" {
			t.Errorf("unexpected body: %v", body)
		}
		_, _ = w.Write([]byte(`{"token":"tok-1","employee":{"id":12,"full_name":"Ana Ruiz","position":"picker"}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Authenticate(context.Background(), "E-1", "555")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Token != "tok-1" || res.Identity == nil || res.Identity.EmployeeID != 12 || res.Identity.DisplayName != "Ana Ruiz" {
		t.Fatalf("unexpected result: %+v %+v", res, res.Identity)
	}
}

func TestClient_AuthenticateMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Authenticate(context.Background(), "E-1", "555")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.Token != "" || res.Identity != nil {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestClient_RemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid employee code"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Authenticate(context.Background(), "E-1", "555")
	if !errors.Is(err, domain.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	var re *domain.RemoteError
	if !errors.As(err, &re) || re.Status != http.StatusUnauthorized || re.Message != "Invalid employee code" {
		t.Fatalf("unexpected remote error: %+v", re)
	}
}

func TestClient_RejectionWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	err := newTestClient(srv).CheckIn(context.Background(), "tok", domain.SubmissionRecord{})
	if got := domain.RemoteMessage(err, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback message, got %q", got)
	}
}

func TestClient_MalformedSuccessBodyIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).Authenticate(context.Background(), "E-1", "555"); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := newTestClient(srv)
	srv.Close()

	if err := c.CheckOut(context.Background(), "tok", domain.SubmissionRecord{}); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if ip := c.ResolveClientAddress(context.Background()); ip != FallbackClientIP {
		t.Fatalf("expected fallback ip, got %q", ip)
	}
}

func TestClient_Submit(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	rec := domain.SubmissionRecord{
		ScanTime:          time.Date(2026, 3, 2, 8, 5, 9, 0, time.UTC),
		OperatorID:        "12",
		IntegrityHash:     "h-1",
		SiteCoordinate:    "19.43,-99.13",
		ClientIP:          "203.0.113.9",
		CurrentCoordinate: "19.4326,-99.1332",
		Direction:         domain.DirectionCheckOut,
	}
	if err := newTestClient(srv).CheckOut(context.Background(), "tok-abc", rec); err != nil {
		t.Fatalf("CheckOut returned error: %v", err)
	}
	if gotPath != "/api/attendance/check-out" || gotAuth != "Bearer tok-abc" {
		t.Fatalf("unexpected request: %s %s", gotPath, gotAuth)
	}
	want := map[string]string{
		"scan_time":       "08:05:09",
		"tg_id":           "12",
		"hash":            "h-1",
		"lat_lon":         "19.43,-99.13",
		"ipv4":            "203.0.113.9",
		"current_lat_lon": "19.4326,-99.1332",
	}
	for k, v := range want {
		if gotBody[k] != v {
			t.Fatalf("field %s: expected %q, got %q", k, v, gotBody[k])
		}
	}
}

func TestClient_ResolveClientAddress(t *testing.T) {
	cases := map[string]string{
		`{"ip":"198.51.100.7"}`: "198.51.100.7",
		`{"ip":"2001:db8::1"}`:  FallbackClientIP,
		`{"ip":""}`:             FallbackClientIP,
		`garbage`:               FallbackClientIP,
	}
	for body, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		if got := newTestClient(srv).ResolveClientAddress(context.Background()); got != want {
			t.Fatalf("body %s: expected %q, got %q", body, want, got)
		}
		srv.Close()
	}
}
