package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
)

// SessionStore keeps the kiosk session in two Redis keys written in one
// MULTI/EXEC block.
// Key format: <prefix>:employee_token and <prefix>:employee_data
type SessionStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore under prefix.
func NewSessionStore(client *redis.Client, prefix string) *SessionStore {
	if prefix == "" {
		prefix = "kiosk"
	}
	return &SessionStore{client: client, prefix: prefix, now: time.Now}
}

func (s *SessionStore) tokenKey() string    { return s.prefix + ":employee_token" }
func (s *SessionStore) identityKey() string { return s.prefix + ":employee_data" }

// Load reads both keys. Either one missing means there is no session.
func (s *SessionStore) Load(ctx context.Context) (domain.Identity, domain.Credential, error) {
	vals, err := s.client.MGet(ctx, s.tokenKey(), s.identityKey()).Result()
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("load session: %w", err)
	}
	return decodeSession(vals)
}

// Save writes both keys atomically. JWT credentials expire with their
// exp claim.
func (s *SessionStore) Save(ctx context.Context, identity domain.Identity, credential domain.Credential) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	ttl := sessionTTL(credential, s.now())

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(), string(credential), ttl)
		pipe.Set(ctx, s.identityKey(), data, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear deletes both keys.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.identityKey()).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decodeSession(vals []any) (domain.Identity, domain.Credential, error) {
	if len(vals) != 2 {
		return domain.Identity{}, "", domain.ErrSessionNotFound
	}
	token, ok := vals[0].(string)
	if !ok {
		return domain.Identity{}, "", domain.ErrSessionNotFound
	}
	raw, ok := vals[1].(string)
	if !ok {
		return domain.Identity{}, "", domain.ErrSessionNotFound
	}
	cred, ok := domain.ParseCredential(token)
	if !ok {
		return domain.Identity{}, "", domain.ErrSessionNotFound
	}
	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return domain.Identity{}, "", errors.Join(domain.ErrSessionNotFound, fmt.Errorf("decode identity: %w", err))
	}
	return identity, cred, nil
}

// sessionTTL returns 0 (no expiry) unless the credential carries an exp
// claim in the future.
func sessionTTL(credential domain.Credential, now time.Time) time.Duration {
	exp, ok := credential.ExpiresAt()
	if !ok {
		return 0
	}
	if ttl := exp.Sub(now); ttl > 0 {
		return ttl
	}
	return time.Second
}
