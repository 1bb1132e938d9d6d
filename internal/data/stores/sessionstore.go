package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/kv"
)

const (
	authNamespace = "auth"
	sessionKey    = "session"

	// SessionTTL bounds how long an unused session is remembered. Every
	// sign-in and token refresh saves the session again and restarts it.
	SessionTTL = 30 * 24 * time.Hour
)

// SessionStore persists the signed-in session in the KV store.
type SessionStore struct {
	kv *kv.TypedKV[identity.Session]
}

var _ identity.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore on top of store.
func NewSessionStore(store kv.KV) *SessionStore {
	return &SessionStore{kv: kv.Scoped[identity.Session](store, authNamespace)}
}

// Load returns identity.ErrNoSession when nothing is stored.
func (s *SessionStore) Load(ctx context.Context) (identity.Session, error) {
	session, ok, err := s.kv.Lookup(ctx, sessionKey)
	if err != nil {
		return identity.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return identity.Session{}, identity.ErrNoSession
	}
	return session, nil
}

// Save replaces the stored session and restarts its SessionTTL.
func (s *SessionStore) Save(ctx context.Context, session identity.Session) error {
	return s.kv.SetTTL(ctx, sessionKey, session, SessionTTL)
}

// Clear removes the stored session.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, sessionKey)
}
