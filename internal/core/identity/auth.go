package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Observer receives the current user, or nil once signed out.
type Observer func(*User)

// Auth is the explicit authentication state shared by the screens. It owns
// the current session and fans changes out to observers.
type Auth struct {
	provider Provider
	store    SessionStore
	log      zerolog.Logger
	timeout  time.Duration
	now      func() time.Time

	mu        sync.Mutex
	session   *Session
	observers map[int]Observer
	nextID    int
}

// Option configures an Auth.
type Option func(*Auth)

// WithTimeout bounds every provider call.
func WithTimeout(d time.Duration) Option {
	return func(a *Auth) { a.timeout = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Auth) { a.now = now }
}

// NewAuth creates an Auth. store may be nil, in which case sessions only
// live for the life of the process.
func NewAuth(provider Provider, store SessionStore, log zerolog.Logger, opts ...Option) *Auth {
	a := &Auth{
		provider:  provider,
		store:     store,
		log:       log,
		timeout:   15 * time.Second,
		now:       time.Now,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Restore loads a persisted session, if any, and notifies observers. A
// missing session is not an error.
func (a *Auth) Restore(ctx context.Context) error {
	if a.store == nil {
		return nil
	}

	s, err := a.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return fmt.Errorf("load session: %w", err)
	}

	a.log.Debug().Str("uid", s.User.UID).Msg("restored session")
	a.setSession(ctx, &s)
	return nil
}

// SignUp creates an account, sets its display name, and signs it in.
func (a *Auth) SignUp(ctx context.Context, c Credentials) (User, error) {
	c.SignUp = true
	if err := c.Validate(); err != nil {
		return User{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	s, err := a.provider.SignUp(ctx, strings.TrimSpace(c.Email), c.Password)
	if err != nil {
		return User{}, err
	}

	user, err := a.provider.UpdateProfile(ctx, s.IDToken, Profile{DisplayName: strings.TrimSpace(c.DisplayName)})
	if err != nil {
		// The account exists at this point; keep the session so the user
		// is signed in even though the profile is incomplete.
		a.log.Warn().Err(err).Str("uid", s.User.UID).Msg("set display name after sign-up")
	} else {
		s.User = user
	}

	a.setSession(ctx, &s)
	return s.User, nil
}

// SignIn authenticates with email and password.
func (a *Auth) SignIn(ctx context.Context, c Credentials) (User, error) {
	c.SignUp = false
	if err := c.Validate(); err != nil {
		return User{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	s, err := a.provider.SignIn(ctx, strings.TrimSpace(c.Email), c.Password)
	if err != nil {
		return User{}, err
	}

	a.setSession(ctx, &s)
	return s.User, nil
}

// SignOut forgets the session locally and in the store.
func (a *Auth) SignOut(ctx context.Context) error {
	a.setSession(ctx, nil)
	return nil
}

// UpdateProfile changes the signed-in user's display name or photo.
func (a *Auth) UpdateProfile(ctx context.Context, p Profile) (User, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return User{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	user, err := a.provider.UpdateProfile(ctx, token, p)
	if err != nil {
		return User{}, err
	}

	a.mu.Lock()
	if a.session == nil {
		a.mu.Unlock()
		return User{}, ErrNotSignedIn
	}
	s := *a.session
	a.mu.Unlock()

	s.User = user
	a.setSession(ctx, &s)
	return user, nil
}

// CurrentUser returns the signed-in user, or nil.
func (a *Auth) CurrentUser() *User {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return nil
	}
	u := a.session.User
	return &u
}

// Token returns a valid ID token, refreshing it first when expired.
func (a *Auth) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.session == nil {
		a.mu.Unlock()
		return "", ErrNotSignedIn
	}
	s := *a.session
	a.mu.Unlock()

	if !s.Expired(a.now()) {
		return s.IDToken, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	refreshed, err := a.provider.Refresh(ctx, s.RefreshToken)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			a.log.Info().Str("code", authErr.Code).Msg("refresh rejected, signing out")
			a.setSession(ctx, nil)
		}
		return "", fmt.Errorf("refresh token: %w", err)
	}

	// Refresh responses do not carry the profile.
	refreshed.User = s.User
	a.setSession(ctx, &refreshed)
	return refreshed.IDToken, nil
}

// Observe registers fn and immediately calls it with the current user. The
// returned function unregisters fn and is safe to call more than once.
func (a *Auth) Observe(fn Observer) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.observers[id] = fn
	var current *User
	if a.session != nil {
		u := a.session.User
		current = &u
	}
	a.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.observers, id)
			a.mu.Unlock()
		})
	}
}

func (a *Auth) setSession(ctx context.Context, s *Session) {
	a.mu.Lock()
	a.session = s
	observers := make([]Observer, 0, len(a.observers))
	for _, fn := range a.observers {
		observers = append(observers, fn)
	}
	a.mu.Unlock()

	if a.store != nil {
		ctx := context.WithoutCancel(ctx)
		var err error
		if s == nil {
			err = a.store.Clear(ctx)
		} else {
			err = a.store.Save(ctx, *s)
		}
		if err != nil {
			a.log.Error().Err(err).Msg("persist session")
		}
	}

	var user *User
	if s != nil {
		u := s.User
		user = &u
	}
	for _, fn := range observers {
		fn(user)
	}
}
