package ports

import (
	"context"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
)

// AuthResult is the body of a successful login response. Token may be
// empty and Identity nil; the workflow decides what that means.
type AuthResult struct {
	Token    string
	Identity *domain.Identity
}

// Gateway is the request/response contract with the remote
// authentication and attendance-recording service.
//
// Non-2xx answers are *domain.RemoteError; transport failures wrap
// domain.ErrNetwork.
type Gateway interface {
	Authenticate(ctx context.Context, code, phone string) (*AuthResult, error)
	CheckIn(ctx context.Context, credential domain.Credential, record domain.SubmissionRecord) error
	CheckOut(ctx context.Context, credential domain.Credential, record domain.SubmissionRecord) error
	// ResolveClientAddress never fails; it falls back to a loopback address.
	ResolveClientAddress(ctx context.Context) string
}
