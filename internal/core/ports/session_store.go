package ports

import (
	"context"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
)

// SessionStore persists the authenticated identity and its credential
// across process restarts.
type SessionStore interface {
	// Load returns domain.ErrSessionNotFound when no usable session is
	// stored: missing or placeholder token, or missing identity.
	Load(ctx context.Context) (domain.Identity, domain.Credential, error)
	// Save atomically overwrites both entries.
	Save(ctx context.Context, identity domain.Identity, credential domain.Credential) error
	// Clear removes both entries. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
