// Package studentapi is the HTTP client for the remote students CRUD API.
package studentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/colonyops/roster/internal/core/logging"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenSource supplies a bearer token for each request.
type TokenSource func(ctx context.Context) (string, error)

// Config configures a Client.
type Config struct {
	// BaseURL is the collection endpoint, e.g. https://host/api/students.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// Token, when set, adds "Authorization: Bearer <token>" to requests.
	Token   TokenSource
	Metrics *Metrics
}

// Client implements student.Store over REST.
type Client struct {
	base     string
	timeout  time.Duration
	http     *http.Client
	token    TokenSource
	metrics  *Metrics
	log      zerolog.Logger
	validate *validator.Validate
}

var _ student.Store = (*Client)(nil)

// New creates a Client.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	c := &Client{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		timeout:  cfg.Timeout,
		http:     cfg.HTTPClient,
		token:    cfg.Token,
		metrics:  cfg.Metrics,
		log:      log,
		validate: validator.New(),
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c, nil
}

// List fetches the full collection.
func (c *Client) List(ctx context.Context) ([]student.Record, error) {
	var wire []wireRecord
	if err := c.do(ctx, "list", http.MethodGet, c.base, nil, &wire); err != nil {
		return nil, err
	}

	records := make([]student.Record, 0, len(wire))
	for i, w := range wire {
		if err := c.validate.Struct(w); err != nil {
			return nil, fmt.Errorf("list: decode record %d: %w", i, err)
		}
		records = append(records, w.record())
	}
	return records, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, id string) (student.Record, error) {
	var w wireRecord
	if err := c.do(ctx, "get", http.MethodGet, c.itemURL(id), nil, &w); err != nil {
		return student.Record{}, err
	}
	if err := c.validate.Struct(w); err != nil {
		return student.Record{}, fmt.Errorf("get: decode record: %w", err)
	}
	return w.record(), nil
}

// Create posts a new record. Servers that answer with only {"id": ...}
// get the submitted fields merged back in.
func (c *Client) Create(ctx context.Context, rec student.Record) (student.Record, error) {
	var w wireRecord
	if err := c.do(ctx, "create", http.MethodPost, c.base, newWriteBody(rec), &w); err != nil {
		return student.Record{}, err
	}
	return merge(rec, w, ""), nil
}

// Update replaces the mutable fields of record id.
func (c *Client) Update(ctx context.Context, id string, rec student.Record) (student.Record, error) {
	var w wireRecord
	if err := c.do(ctx, "update", http.MethodPut, c.itemURL(id), newWriteBody(rec), &w); err != nil {
		return student.Record{}, err
	}
	return merge(rec, w, id), nil
}

// Delete removes record id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id string) string {
	return c.base + "/" + url.PathEscape(id)
}

// merge prefers the server's copy and falls back to what was sent.
func merge(sent student.Record, got wireRecord, id string) student.Record {
	out := sent
	out.ID = id
	if got.ID != "" {
		out.ID = string(got.ID)
	}
	if got.Name != "" {
		out.Name = got.Name
	}
	if got.Age != 0 {
		out.Age = int(got.Age)
	}
	if got.Email != "" {
		out.Email = got.Email
	}
	if got.Course != "" {
		out.Course = got.Course
	}
	return out
}

func (c *Client) do(ctx context.Context, op, method, u string, body, dest any) (err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	start := time.Now()
	outcome := "ok"
	defer func() {
		c.metrics.observe(op, outcome, time.Since(start).Seconds())
		c.log.Debug().Ctx(ctx).
			Str("op", op).
			Str("outcome", outcome).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("students api call")
	}()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			outcome = "encode_error"
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		outcome = "encode_error"
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			outcome = "auth_error"
			return fmt.Errorf("%s: %w", op, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "transport_error"
		return &TransportError{Op: op, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "transport_error"
		return &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = fmt.Sprintf("status_%d", resp.StatusCode)
		return decodeAPIError(op, resp.StatusCode, respBody)
	}

	if dest == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		outcome = "decode_error"
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("%s: response is not JSON: %w", op, err)
		}
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
