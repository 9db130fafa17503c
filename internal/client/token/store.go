// Package token holds the bearer token used to sign API requests. The
// in-memory value is the single source of truth; it is mirrored into a file
// so a restarted process (or a second one) can pick it up, and a watcher can
// adopt changes made by other processes.
package token

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	value string
	path  string
}

// NewStore returns a Store mirroring the token into the file at path.
// The store starts empty; call Bootstrap to load a previously persisted
// token.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the current in-memory token. No I/O.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates memory and the durable mirror. An empty token is equivalent
// to Clear.
func (s *Store) Set(tok string) error {
	if tok == "" {
		return s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(tok), 0o600); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.value = tok
	return nil
}

// Clear removes the token from memory and the durable mirror.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// Bootstrap loads a previously persisted token into memory. Called once at
// process start; a missing mirror file just leaves the store empty.
func (s *Store) Bootstrap() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}

	s.mu.Lock()
	s.value = strings.TrimSpace(string(data))
	s.mu.Unlock()
	return nil
}

// adopt replaces the in-memory value without touching the mirror. Used by
// the watcher when another process changed the file.
func (s *Store) adopt(tok string) {
	s.mu.Lock()
	s.value = tok
	s.mu.Unlock()
}

// Claims is the display-relevant subset of the access token payload.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Claims decodes the current token without verifying its signature. The
// client never trusts these values for anything but display; the server is
// the authority on token validity.
func (s *Store) Claims() (*Claims, error) {
	tok := s.Get()
	if tok == "" {
		return nil, errors.New("no token")
	}

	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	c := &Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
