package studentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/colonyops/roster/internal/core/student"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, mutate ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL + "/api/students", Timeout: 2 * time.Second}
	for _, fn := range mutate {
		fn(&cfg)
	}

	c, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestClient_List(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/students", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "Ann", "age": 20, "email": "ann@x.io", "course": "Math"},
			{"id": "b2", "name": "Bob", "age": "21", "email": "bob@x.io", "course": "Art"}
		]`))
	})

	got, err := newTestClient(t, mux).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []student.Record{
		{ID: "1", Name: "Ann", Age: 20, Email: "ann@x.io", Course: "Math"},
		{ID: "b2", Name: "Bob", Age: 21, Email: "bob@x.io", Course: "Art"},
	}, got)
}

func TestClient_ListRejectsRecordWithoutID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/students", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name": "Ann"}]`))
	})

	_, err := newTestClient(t, mux).List(context.Background())
	assert.ErrorContains(t, err, "decode record 0")
}

func TestClient_CreateMergesIDOnlyResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/students", func(w http.ResponseWriter, r *http.Request) {
		var body writeBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ann", body.Name)
		writeJSON(w, http.StatusCreated, map[string]int64{"id": 42})
	})

	rec, err := newTestClient(t, mux).Create(context.Background(), student.Record{Name: "Ann", Age: 20, Email: "ann@x.io", Course: "Math"})
	require.NoError(t, err)
	assert.Equal(t, student.Record{ID: "42", Name: "Ann", Age: 20, Email: "ann@x.io", Course: "Math"}, rec)
}

func TestClient_UpdateAndDelete(t *testing.T) {
	var deleted string
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body writeBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "name": body.Name, "age": body.Age, "email": body.Email, "course": body.Course})
	})
	mux.HandleFunc("DELETE /api/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = r.PathValue("id")
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	rec, err := c.Update(ctx, "7", student.Record{Name: "Ann", Age: 22, Email: "ann@x.io", Course: "Math"})
	require.NoError(t, err)
	assert.Equal(t, "7", rec.ID)
	assert.Equal(t, 22, rec.Age)

	require.NoError(t, c.Delete(ctx, "7"))
	assert.Equal(t, "7", deleted)
}

func TestClient_GetNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "student not found"})
	})

	_, err := newTestClient(t, mux).Get(context.Background(), "9")
	require.ErrorIs(t, err, student.ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "student not found", apiErr.Message)
	assert.False(t, apiErr.IsValidation())
}

func TestClient_FieldValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{
			name: "errors object",
			body: `{"message": "invalid", "errors": {"Email": "already taken"}}`,
			want: map[string]string{"email": "already taken"},
		},
		{
			name: "errors list",
			body: `{"errors": [{"field": "age", "message": "too old"}]}`,
			want: map[string]string{"age": "too old"},
		},
		{
			name: "validator sentences",
			body: `{"status": "error", "error": "field Name is required, field Age is required"}`,
			want: map[string]string{"name": "Name is required", "age": "Age is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/students", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := newTestClient(t, mux).Create(context.Background(), student.Record{Name: "A"})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.True(t, apiErr.IsValidation())
			assert.Equal(t, tt.want, apiErr.Fields)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.List(context.Background())
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "list", tErr.Op)
	assert.False(t, tErr.Timeout())
}

func TestClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/students", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})

	c := newTestClient(t, mux, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })

	_, err := c.List(context.Background())
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.True(t, tErr.Timeout())
}

func TestClient_BearerTokenAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/students", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	})

	c := newTestClient(t, mux, func(cfg *Config) {
		cfg.Token = func(context.Context) (string, error) { return "tok-1", nil }
		cfg.Metrics = NewMetrics(reg)
	})

	got, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.requests.WithLabelValues("list", "ok")), 0)
}
