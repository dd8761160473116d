// Command attendance-kiosk runs the attendance workflow behind a local
// control API that the kiosk front end drives.
//
//	@title						Attendance Kiosk Control API
//	@version					1.0
//	@description				Drives the employee attendance session: login, QR scan, geolocation and check-in/check-out submission.
//	@BasePath					/
//	@securityDefinitions.apikey	ControlToken
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/attendance-kiosk/internal/api"
	"github.com/99minutos/attendance-kiosk/internal/api/handler"
	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
	"github.com/99minutos/attendance-kiosk/internal/core/service"
	"github.com/99minutos/attendance-kiosk/internal/infrastructure/bridge"
	"github.com/99minutos/attendance-kiosk/internal/infrastructure/capability"
	mongodb "github.com/99minutos/attendance-kiosk/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/attendance-kiosk/internal/infrastructure/db/redis"
	"github.com/99minutos/attendance-kiosk/internal/infrastructure/display"
	"github.com/99minutos/attendance-kiosk/internal/infrastructure/filestore"
	"github.com/99minutos/attendance-kiosk/internal/infrastructure/gateway"
	"github.com/99minutos/attendance-kiosk/internal/pkg/clock"
	"github.com/99minutos/attendance-kiosk/internal/pkg/config"
	"github.com/99minutos/attendance-kiosk/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// sessionBackend is a session store the readiness probe can ping.
type sessionBackend interface {
	ports.SessionStore
	handler.Pinger
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "attendance-kiosk",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("kiosk stopped")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, closeStore := openSessionStore(ctx, cfg, log)
	defer closeStore()
	log.Info().Str("backend", cfg.Session.Backend).Msg("session store configured")

	clk := clock.Real()
	camera := bridge.NewCamera(0)
	geo := bridge.NewGeolocator(clk, cfg.Workflow.LocationMaxAge)
	hub := display.NewHub(cfg.Workflow.NoticeTTL, clk)

	gw := gateway.NewClient(gateway.Config{
		BaseURL:     cfg.Gateway.BaseURL,
		IPLookupURL: cfg.Gateway.IPLookupURL,
		Timeout:     cfg.Gateway.Timeout,
	}, nil, logger.For("gateway"))

	wf := service.NewWorkflow(
		store,
		gw,
		capability.NewScanner(camera, logger.For("scanner")),
		capability.NewLocator(geo, clk),
		hub,
		service.Options{
			OperatorID: cfg.OperatorID,
			Location: ports.LocationOptions{
				Timeout:      cfg.Workflow.LocationTimeout,
				MaxCacheAge:  cfg.Workflow.LocationMaxAge,
				HighAccuracy: cfg.Workflow.HighAccuracy,
			},
			AutoLocate:        cfg.Workflow.AutoLocate,
			CameraFailureHold: cfg.Workflow.CameraFailureHold,
			ScanRejectHold:    cfg.Workflow.ScanRejectHold,
			Clock:             clk,
			BaseContext:       ctx,
		},
		logger.For("workflow"),
	)
	view := wf.Init(ctx)
	log.Info().Str("state", string(view.State)).Msg("workflow initialised")

	e := api.NewRouter(api.RouterConfig{
		BaseContext:   ctx,
		Workflow:      wf,
		Hub:           hub,
		Camera:        camera,
		Geolocator:    geo,
		Dependencies:  map[string]handler.Pinger{"session_store": store},
		ControlSecret: cfg.ControlToken,
		Log:           logger.For("http"),
	})
	if cfg.ControlToken == "" {
		log.Warn().Msg("CONTROL_TOKEN not set, control API is unauthenticated")
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("env", cfg.Env).Msg("control API listening")
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openSessionStore builds the configured backend. It never fails: an
// unreachable server is logged and the store reports its errors on use,
// which the workflow treats as no session. The returned func releases
// the connection.
func openSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (sessionBackend, func()) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			log.Warn().Err(err).Msg("session store unreachable, continuing logged out")
		}
		return redisdb.NewSessionStore(client, cfg.Session.Key), func() { _ = client.Close() }

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if client == nil {
			log.Error().Err(err).Msg("session store disabled")
			return unavailableStore{err: err}, func() {}
		}
		if err != nil {
			log.Warn().Err(err).Msg("session store unreachable, continuing logged out")
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return mongodb.NewSessionStore(db, cfg.Session.Key), closeFn

	default:
		store, err := openFileStore(cfg.Session)
		if err != nil {
			log.Error().Err(err).Msg("session store disabled")
			return unavailableStore{err: err}, func() {}
		}
		return store, func() {}
	}
}

func openFileStore(cfg config.SessionConfig) (*filestore.Store, error) {
	path := cfg.FilePath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("session file: %w", err)
		}
		path = filepath.Join(dir, "attendance-kiosk", "session.json")
	}
	return filestore.New(path, cfg.FileKey)
}

// unavailableStore stands in for a backend that could not be built at
// all. Every call reports why.
type unavailableStore struct {
	err error
}

func (s unavailableStore) Load(context.Context) (domain.Identity, domain.Credential, error) {
	return domain.Identity{}, "", fmt.Errorf("load session: %w", s.err)
}

func (s unavailableStore) Save(context.Context, domain.Identity, domain.Credential) error {
	return fmt.Errorf("save session: %w", s.err)
}

func (s unavailableStore) Clear(context.Context) error {
	return fmt.Errorf("clear session: %w", s.err)
}

func (s unavailableStore) Ping(context.Context) error { return s.err }
