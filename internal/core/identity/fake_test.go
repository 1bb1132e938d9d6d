package identity

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeProvider struct {
	mu        sync.Mutex
	accounts  map[string]string
	refreshes int
	expiresIn time.Duration
	now       func() time.Time
	failNext  error
}

func newFakeProvider(now func() time.Time) *fakeProvider {
	return &fakeProvider{
		accounts:  map[string]string{},
		expiresIn: time.Hour,
		now:       now,
	}
}

func (f *fakeProvider) session(email string) Session {
	return Session{
		User:         User{UID: "uid-" + email, Email: email},
		IDToken:      "token-" + email,
		RefreshToken: "refresh-" + email,
		ExpiresAt:    f.now().Add(f.expiresIn),
	}
}

func (f *fakeProvider) takeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeProvider) SignUp(_ context.Context, email, password string) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return Session{}, err
	}
	if _, ok := f.accounts[email]; ok {
		return Session{}, &AuthError{Code: "EMAIL_EXISTS", Message: "The email address is already in use by another account."}
	}
	f.accounts[email] = password
	return f.session(email), nil
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return Session{}, err
	}
	if pw, ok := f.accounts[email]; !ok || pw != password {
		return Session{}, &AuthError{Code: "INVALID_LOGIN_CREDENTIALS", Message: "Invalid email or password."}
	}
	return f.session(email), nil
}

func (f *fakeProvider) Refresh(_ context.Context, refreshToken string) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return Session{}, err
	}
	f.refreshes++
	return Session{
		IDToken:      "refreshed-token",
		RefreshToken: refreshToken,
		ExpiresAt:    f.now().Add(f.expiresIn),
	}, nil
}

func (f *fakeProvider) UpdateProfile(_ context.Context, idToken string, p Profile) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return User{}, err
	}
	email := idToken[len("token-"):]
	return User{UID: "uid-" + email, Email: email, DisplayName: p.DisplayName, PhotoURL: p.PhotoURL}, nil
}

type memorySessionStore struct {
	session *Session
}

func (m *memorySessionStore) Load(context.Context) (Session, error) {
	if m.session == nil {
		return Session{}, ErrNoSession
	}
	return *m.session, nil
}

func (m *memorySessionStore) Save(_ context.Context, s Session) error {
	m.session = &s
	return nil
}

func (m *memorySessionStore) Clear(context.Context) error {
	m.session = nil
	return nil
}

var errNetwork = errors.New("dial tcp: connection refused")
