package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// ErrUnavailable is returned by Connect when no server answers the ping.
var ErrUnavailable = errors.New("mongo session backend unavailable")

// Config captures the settings of the database holding kiosk sessions.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect builds a client for the session database and pings it. Only a
// malformed URI fails outright. When the ping fails the client and
// database are still returned together with ErrUnavailable; the driver
// keeps selecting servers on later operations.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo session client: %w", err)
	}
	db := client.Database(cfg.Database)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return client, db, fmt.Errorf("%w (%s): %w", ErrUnavailable, cfg.Database, err)
	}
	return client, db, nil
}
