package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/colonyops/roster/internal/core/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "test-key", IdentityURL: srv.URL + "/v1", TokenURL: srv.URL + "/token/v1"}, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_SignIn(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := testToken(t, exp)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/accounts:signInWithPassword", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req passwordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ann@x.io", req.Email)
		assert.True(t, req.ReturnSecureToken)

		writeJSON(w, http.StatusOK, map[string]any{
			"localId":      "uid-1",
			"email":        "ann@x.io",
			"displayName":  "Ann",
			"idToken":      token,
			"refreshToken": "refresh-1",
			"expiresIn":    "3600",
		})
	})

	s, err := newTestClient(t, mux).SignIn(context.Background(), "ann@x.io", "secret1")
	require.NoError(t, err)

	assert.Equal(t, identity.User{UID: "uid-1", Email: "ann@x.io", DisplayName: "Ann"}, s.User)
	assert.Equal(t, "refresh-1", s.RefreshToken)
	assert.True(t, exp.Equal(s.ExpiresAt))
}

func TestClient_SignUpEmailExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/accounts:signUp", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": 400, "message": "EMAIL_EXISTS"},
		})
	})

	_, err := newTestClient(t, mux).SignUp(context.Background(), "ann@x.io", "secret1")

	var authErr *identity.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "EMAIL_EXISTS", authErr.Code)
	assert.Equal(t, "The email address is already in use by another account.", authErr.Message)
}

func TestClient_UpdateProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/accounts:update", func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "id-token", req.IDToken)
		assert.Equal(t, "Ann Lee", req.DisplayName)

		writeJSON(w, http.StatusOK, map[string]any{
			"localId":     "uid-1",
			"email":       "ann@x.io",
			"displayName": req.DisplayName,
		})
	})

	u, err := newTestClient(t, mux).UpdateProfile(context.Background(), "id-token", identity.Profile{DisplayName: "Ann Lee"})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", u.DisplayName)
}

func TestClient_Refresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token/v1/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))

		writeJSON(w, http.StatusOK, map[string]any{
			"id_token":      "opaque",
			"refresh_token": "refresh-2",
			"expires_in":    "3600",
			"user_id":       "uid-1",
		})
	})

	c := newTestClient(t, mux)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	s, err := c.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", s.RefreshToken)
	assert.Equal(t, "uid-1", s.User.UID)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt, "falls back to expires_in for opaque tokens")
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(Config{APIKey: "k", IdentityURL: srv.URL}, zerolog.Nop())
	_, err := c.SignIn(context.Background(), "a@x.io", "secret1")
	require.ErrorIs(t, err, identity.ErrUnavailable)
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "known code",
			status:   400,
			body:     `{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`,
			wantCode: "INVALID_LOGIN_CREDENTIALS",
			wantMsg:  "Invalid email or password.",
		},
		{
			name:     "code with detail",
			status:   400,
			body:     `{"error":{"code":400,"message":"WEAK_PASSWORD : Password should be at least 6 characters"}}`,
			wantCode: "WEAK_PASSWORD",
			wantMsg:  "Password should be at least 6 characters.",
		},
		{
			name:     "unknown code keeps detail",
			status:   400,
			body:     `{"error":{"code":400,"message":"SOMETHING_NEW : Details here"}}`,
			wantCode: "SOMETHING_NEW",
			wantMsg:  "Details here",
		},
		{
			name:     "not json",
			status:   502,
			body:     `bad gateway`,
			wantCode: "HTTP_502",
			wantMsg:  "Authentication service returned status 502.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeError(tt.status, []byte(tt.body))

			var authErr *identity.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantCode, authErr.Code)
			assert.Equal(t, tt.wantMsg, authErr.Message)
		})
	}
}
