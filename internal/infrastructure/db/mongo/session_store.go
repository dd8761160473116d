package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
)

const sessionCollection = "kiosk_sessions"

// SessionStore keeps one document per kiosk holding both the token and the
// employee profile, so they are replaced and removed together.
type SessionStore struct {
	coll *mongo.Collection
	key  string
	now  func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore for the kiosk identified by key.
func NewSessionStore(db *mongo.Database, key string) *SessionStore {
	if key == "" {
		key = "kiosk"
	}
	return &SessionStore{coll: db.Collection(sessionCollection), key: key, now: time.Now}
}

type sessionDoc struct {
	Key       string           `bson:"_id"`
	Token     string           `bson:"employee_token"`
	Employee  *domain.Identity `bson:"employee_data"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

func (s *SessionStore) Load(ctx context.Context) (domain.Identity, domain.Credential, error) {
	var doc sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Identity{}, "", domain.ErrSessionNotFound
		}
		return domain.Identity{}, "", fmt.Errorf("find session: %w", err)
	}
	cred, ok := domain.ParseCredential(doc.Token)
	if !ok || doc.Employee == nil {
		return domain.Identity{}, "", domain.ErrSessionNotFound
	}
	return *doc.Employee, cred, nil
}

func (s *SessionStore) Save(ctx context.Context, identity domain.Identity, credential domain.Credential) error {
	doc := sessionDoc{
		Key:       s.key,
		Token:     string(credential),
		Employee:  &identity,
		UpdatedAt: s.now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}
