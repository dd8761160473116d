package domain

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated employee profile returned at login.
type Identity struct {
	EmployeeID  int64  `json:"id" bson:"id"`
	Code        string `json:"code,omitempty" bson:"code,omitempty"`
	DisplayName string `json:"full_name" bson:"full_name"`
	Phone       string `json:"phone,omitempty" bson:"phone,omitempty"`
	Position    string `json:"position,omitempty" bson:"position,omitempty"`
}

// Credential is the opaque bearer token authorising attendance calls.
type Credential string

// placeholderTokens are values left behind by clients that stringified a
// missing token; they are never valid.
var placeholderTokens = map[string]struct{}{
	"undefined": {},
	"null":      {},
}

// ParseCredential normalises a stored token and reports whether one is
// actually present.
func ParseCredential(raw string) (Credential, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if _, ok := placeholderTokens[raw]; ok {
		return "", false
	}
	return Credential(raw), true
}

// Present reports whether c holds a real token.
func (c Credential) Present() bool {
	_, ok := ParseCredential(string(c))
	return ok
}

// ExpiresAt returns the exp claim when c is a JWT that carries one. The
// signature is not checked: the remote service is the verifier.
func (c Credential) ExpiresAt() (time.Time, bool) {
	tok, _, err := jwt.NewParser().ParseUnverified(string(c), jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Usable reports whether c is present and, if it is a JWT with an exp
// claim, not yet expired at now.
func (c Credential) Usable(now time.Time) bool {
	if !c.Present() {
		return false
	}
	if exp, ok := c.ExpiresAt(); ok && !now.Before(exp) {
		return false
	}
	return true
}
