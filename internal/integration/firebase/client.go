// Package firebase is an identity.Provider backed by the Firebase Identity
// Toolkit and Secure Token REST APIs.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/roster/internal/core/identity"
	"github.com/rs/zerolog"
)

const (
	DefaultIdentityURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultTokenURL    = "https://securetoken.googleapis.com/v1"
)

// Config configures the client. Empty URLs fall back to the public
// endpoints.
type Config struct {
	APIKey      string
	IdentityURL string
	TokenURL    string
	HTTPClient  *http.Client
}

// Client talks to Firebase Auth over REST.
type Client struct {
	apiKey      string
	identityURL string
	tokenURL    string
	http        *http.Client
	log         zerolog.Logger
	now         func() time.Time
}

var _ identity.Provider = (*Client)(nil)

// New creates a Client.
func New(cfg Config, log zerolog.Logger) *Client {
	c := &Client{
		apiKey:      cfg.APIKey,
		identityURL: strings.TrimRight(cfg.IdentityURL, "/"),
		tokenURL:    strings.TrimRight(cfg.TokenURL, "/"),
		http:        cfg.HTTPClient,
		log:         log,
		now:         time.Now,
	}
	if c.identityURL == "" {
		c.identityURL = DefaultIdentityURL
	}
	if c.tokenURL == "" {
		c.tokenURL = DefaultTokenURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type authResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (c *Client) session(r authResponse) identity.Session {
	return identity.Session{
		User: identity.User{
			UID:         r.LocalID,
			DisplayName: r.DisplayName,
			Email:       r.Email,
			PhotoURL:    r.PhotoURL,
		},
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    c.expiry(r.IDToken, r.ExpiresIn),
	}
}

// expiry prefers the token's own exp claim and falls back to expiresIn.
func (c *Client) expiry(idToken, expiresIn string) time.Time {
	if exp, ok := identity.TokenExpiry(idToken); ok {
		return exp
	}
	if secs, err := strconv.Atoi(expiresIn); err == nil {
		return c.now().Add(time.Duration(secs) * time.Second)
	}
	return time.Time{}
}

// SignUp creates a password account.
func (c *Client) SignUp(ctx context.Context, email, password string) (identity.Session, error) {
	var resp authResponse
	err := c.postJSON(ctx, c.identityURL+"/accounts:signUp", passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return identity.Session{}, fmt.Errorf("sign up: %w", err)
	}
	return c.session(resp), nil
}

// SignIn verifies a password and returns a fresh session.
func (c *Client) SignIn(ctx context.Context, email, password string) (identity.Session, error) {
	var resp authResponse
	err := c.postJSON(ctx, c.identityURL+"/accounts:signInWithPassword", passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return identity.Session{}, fmt.Errorf("sign in: %w", err)
	}
	return c.session(resp), nil
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName,omitempty"`
	PhotoURL          string `json:"photoUrl,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// UpdateProfile sets the display name and photo URL of the token's user.
// Empty values are left unchanged.
func (c *Client) UpdateProfile(ctx context.Context, idToken string, p identity.Profile) (identity.User, error) {
	var resp authResponse
	err := c.postJSON(ctx, c.identityURL+"/accounts:update", updateRequest{
		IDToken:     idToken,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
	}, &resp)
	if err != nil {
		return identity.User{}, fmt.Errorf("update profile: %w", err)
	}

	return identity.User{
		UID:         resp.LocalID,
		DisplayName: resp.DisplayName,
		Email:       resp.Email,
		PhotoURL:    resp.PhotoURL,
	}, nil
}

type lookupResponse struct {
	Users []authResponse `json:"users"`
}

// Lookup returns the profile of the token's user.
func (c *Client) Lookup(ctx context.Context, idToken string) (identity.User, error) {
	var resp lookupResponse
	if err := c.postJSON(ctx, c.identityURL+"/accounts:lookup", map[string]string{"idToken": idToken}, &resp); err != nil {
		return identity.User{}, fmt.Errorf("lookup: %w", err)
	}
	if len(resp.Users) == 0 {
		return identity.User{}, &identity.AuthError{Code: "USER_NOT_FOUND", Message: friendlyMessage("USER_NOT_FOUND")}
	}

	u := resp.Users[0]
	return identity.User{UID: u.LocalID, DisplayName: u.DisplayName, Email: u.Email, PhotoURL: u.PhotoURL}, nil
}

type tokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

// Refresh exchanges a refresh token for a new ID token. The returned
// session carries only the UID; callers keep the profile they had.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (identity.Session, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.tokenURL+"/token"), strings.NewReader(form.Encode()))
	if err != nil {
		return identity.Session{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp tokenResponse
	if err := c.do(req, &resp); err != nil {
		return identity.Session{}, fmt.Errorf("refresh: %w", err)
	}

	return identity.Session{
		User:         identity.User{UID: resp.UserID},
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.expiry(resp.IDToken, resp.ExpiresIn),
	}, nil
}

func (c *Client) endpoint(base string) string {
	return base + "?key=" + url.QueryEscape(c.apiKey)
}

func (c *Client) postJSON(ctx context.Context, u string, body, dest any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(u), bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(identity.ErrUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Join(identity.ErrUnavailable, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
