// Package filestore persists the kiosk session in a local file, optionally
// sealed with a key derived from a passphrase.
package filestore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
)

const (
	keySize   = 32
	nonceSize = 24
	hkdfInfo  = "attendance-kiosk session"
)

// ErrCorrupt is returned when the session file cannot be opened or decoded.
var ErrCorrupt = errors.New("session file corrupt")

// record is the on-disk layout. Both entries are written and removed
// together.
type record struct {
	Token    string           `json:"employee_token"`
	Identity *domain.Identity `json:"employee_data"`
}

// Store is a ports.SessionStore backed by a single file.
type Store struct {
	path string
	key  *[keySize]byte

	mu sync.Mutex
}

var _ ports.SessionStore = (*Store)(nil)

// New returns a store writing to path. A non-empty passphrase seals the
// file with NaCl secretbox.
func New(path, passphrase string) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	s := &Store{path: path}
	if passphrase != "" {
		key, err := deriveKey(passphrase)
		if err != nil {
			return nil, err
		}
		s.key = key
	}
	return s, nil
}

func deriveKey(passphrase string) (*[keySize]byte, error) {
	var key [keySize]byte
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &key, nil
}

// Load reads the session. A missing file, placeholder token or missing
// identity is reported as domain.ErrSessionNotFound.
func (s *Store) Load(_ context.Context) (domain.Identity, domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Identity{}, "", domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("read session: %w", err)
	}
	if s.key != nil {
		if data, err = s.open(data); err != nil {
			return domain.Identity{}, "", err
		}
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Identity{}, "", fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	cred, ok := domain.ParseCredential(rec.Token)
	if !ok || rec.Identity == nil {
		return domain.Identity{}, "", domain.ErrSessionNotFound
	}
	return *rec.Identity, cred, nil
}

// Save replaces the session file atomically.
func (s *Store) Save(_ context.Context, identity domain.Identity, credential domain.Credential) error {
	data, err := json.Marshal(record{Token: string(credential), Identity: &identity})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}
	return writeAtomic(s.path, data)
}

// Clear removes the session file.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Ping reports whether the session directory is usable.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("session dir %s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, s.key), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: sealed payload too short", ErrCorrupt)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, s.key)
	if !ok {
		return nil, fmt.Errorf("%w: authentication failed", ErrCorrupt)
	}
	return plain, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
