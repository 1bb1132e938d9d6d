// Package identity manages the signed-in user: sign-up, sign-in, sign-out,
// token refresh, and notifying observers when the current user changes.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotSignedIn is returned by operations that need a session.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrNoSession is returned by a SessionStore with nothing persisted.
	ErrNoSession = errors.New("no stored session")
	// ErrUnavailable wraps network failures talking to the provider.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// User is the public profile of a signed-in account.
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photo_url"`
}

// Name returns the display name, falling back to the email.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Session is a signed-in user together with the tokens issued for it.
type Session struct {
	User         User      `json:"user"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the ID token is expired at now, with a small
// skew so tokens are refreshed shortly before they lapse.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt.Add(-expirySkew))
}

const expirySkew = 30 * time.Second

// Profile holds the mutable parts of a user's profile.
type Profile struct {
	DisplayName string
	PhotoURL    string
}

// Provider is the remote identity collaborator.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	UpdateProfile(ctx context.Context, idToken string, p Profile) (User, error)
}

// SessionStore persists the session between runs.
type SessionStore interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// AuthError is a rejection from the identity provider such as bad
// credentials or an email already in use. Message is safe to show.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed: %s", e.Code)
	}
	return e.Message
}
