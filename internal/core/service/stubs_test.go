package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
	"github.com/99minutos/attendance-kiosk/internal/pkg/clock"
)

var testStart = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type stubStore struct {
	mu       sync.Mutex
	identity *domain.Identity
	cred     domain.Credential
	loadErr  error
	saves    int
	clears   int
}

func (s *stubStore) Load(_ context.Context) (domain.Identity, domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.Identity{}, "", s.loadErr
	}
	if s.identity == nil {
		return domain.Identity{}, "", domain.ErrSessionNotFound
	}
	return *s.identity, s.cred, nil
}

func (s *stubStore) Save(_ context.Context, identity domain.Identity, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.identity = &identity
	s.cred = cred
	return nil
}

func (s *stubStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.identity = nil
	s.cred = ""
	return nil
}

func (s *stubStore) snapshot() (*domain.Identity, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.saves, s.clears
}

type stubGateway struct {
	mu        sync.Mutex
	authFn    func(code, phone string) (*ports.AuthResult, error)
	submitFn  func(cred domain.Credential, rec domain.SubmissionRecord) error
	authCalls int
	records   []domain.SubmissionRecord
}

func (g *stubGateway) Authenticate(_ context.Context, code, phone string) (*ports.AuthResult, error) {
	g.mu.Lock()
	g.authCalls++
	fn := g.authFn
	g.mu.Unlock()
	if fn == nil {
		return &ports.AuthResult{Token: "token-abcdefghij", Identity: &domain.Identity{EmployeeID: 7, DisplayName: "Ana Ruiz"}}, nil
	}
	return fn(code, phone)
}

func (g *stubGateway) CheckIn(_ context.Context, cred domain.Credential, rec domain.SubmissionRecord) error {
	return g.submit(cred, rec)
}

func (g *stubGateway) CheckOut(_ context.Context, cred domain.Credential, rec domain.SubmissionRecord) error {
	return g.submit(cred, rec)
}

func (g *stubGateway) submit(cred domain.Credential, rec domain.SubmissionRecord) error {
	g.mu.Lock()
	g.records = append(g.records, rec)
	fn := g.submitFn
	g.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(cred, rec)
}

func (g *stubGateway) ResolveClientAddress(_ context.Context) string { return "203.0.113.9" }

func (g *stubGateway) submissions() []domain.SubmissionRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.SubmissionRecord(nil), g.records...)
}

type stubScanner struct {
	mu       sync.Mutex
	startErr error
	results  chan ports.ScanResult
	starts   int
	stops    int
}

func (s *stubScanner) Start(_ context.Context) (<-chan ports.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	if s.startErr != nil {
		return nil, s.startErr
	}
	s.results = make(chan ports.ScanResult)
	return s.results, nil
}

func (s *stubScanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

// deliver hands a result to the workflow goroutine waiting on the channel.
func (s *stubScanner) deliver(t *testing.T, res ports.ScanResult) {
	t.Helper()
	s.mu.Lock()
	ch := s.results
	s.mu.Unlock()
	if ch == nil {
		t.Fatalf("scanner was never started")
	}
	select {
	case ch <- res:
	case <-time.After(2 * time.Second):
		t.Fatalf("workflow is not reading scan results")
	}
}

func (s *stubScanner) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

type stubLocator struct {
	coord domain.DeviceCoordinate
	err   error
	// block, when set, makes Acquire wait until it is closed or ctx ends.
	block chan struct{}
}

func (l *stubLocator) Acquire(ctx context.Context, _ ports.LocationOptions) (domain.DeviceCoordinate, error) {
	if l.block != nil {
		select {
		case <-l.block:
		case <-ctx.Done():
			return domain.DeviceCoordinate{}, ctx.Err()
		}
	}
	return l.coord, l.err
}

type stubDisplay struct {
	mu      sync.Mutex
	views   []ports.View
	notices []ports.Notice
}

func (d *stubDisplay) Render(v ports.View) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.views = append(d.views, v)
}

func (d *stubDisplay) Notify(n ports.Notice) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notices = append(d.notices, n)
}

func (d *stubDisplay) lastNotice() ports.Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.notices) == 0 {
		return ports.Notice{}
	}
	return d.notices[len(d.notices)-1]
}

type fixture struct {
	wf      *Workflow
	store   *stubStore
	gateway *stubGateway
	scanner *stubScanner
	locator *stubLocator
	display *stubDisplay
	clock   *clock.FakeClock
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		store:   &stubStore{},
		gateway: &stubGateway{},
		scanner: &stubScanner{},
		locator: &stubLocator{coord: domain.DeviceCoordinate{Latitude: 19.4326, Longitude: -99.1332}},
		display: &stubDisplay{},
		clock:   clock.Fake(testStart),
	}
	opts := Options{
		Location:          ports.LocationOptions{Timeout: 10 * time.Second, MaxCacheAge: 5 * time.Minute, HighAccuracy: true},
		CameraFailureHold: 2 * time.Second,
		ScanRejectHold:    3 * time.Second,
		Clock:             f.clock,
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.wf = NewWorkflow(f.store, f.gateway, f.scanner, f.locator, f.display, opts, zerolog.Nop())
	return f
}

// loggedIn returns a fixture already on the dashboard.
func loggedIn(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	f := newFixture(t, mutate...)
	f.wf.Init(context.Background())
	if err := f.wf.Login(context.Background(), "E-100", "5550001"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	return f
}

func waitForState(t *testing.T, wf *Workflow, want domain.State) ports.View {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		v := wf.View()
		if v.State == want {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for state %s, still %s", want, v.State)
		}
		time.Sleep(time.Millisecond)
	}
}

const validPayload = `{"integrityHash":"h-123","siteCoordinate":"19.43,-99.13"}`

// scanned drives a fixture from the dashboard to AwaitingLocation.
func scanned(t *testing.T, f *fixture, dir domain.Direction) {
	t.Helper()
	if err := f.wf.StartScan(context.Background(), dir); err != nil {
		t.Fatalf("StartScan returned error: %v", err)
	}
	f.scanner.deliver(t, ports.ScanResult{Text: validPayload})
	waitForState(t, f.wf, domain.StateAwaitingLocation)
}
