package studentapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/colonyops/roster/internal/core/student"
)

// APIError is a non-2xx response from the students API. Fields holds
// field-level validation messages when the server reported any.
type APIError struct {
	Op      string
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, msg)
}

// Is makes a 404 match student.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == student.ErrNotFound && e.Status == http.StatusNotFound
}

// IsValidation reports whether the server rejected specific fields.
func (e *APIError) IsValidation() bool {
	return len(e.Fields) > 0
}

// TransportError means the request never produced an HTTP response: the
// connection failed, the body could not be read, or the call timed out.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran out of time.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

type fieldErrorItem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// "field Email is required, field Age is required"
var fieldSentence = regexp.MustCompile(`(?i)^field (\w+) (.+)$`)

func decodeAPIError(op string, status int, body []byte) *APIError {
	apiErr := &APIError{Op: op, Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Message = eb.Message
	if apiErr.Message == "" {
		apiErr.Message = eb.Error
	}

	apiErr.Fields = decodeFieldErrors(eb.Errors)
	if apiErr.Fields == nil && status == http.StatusBadRequest {
		apiErr.Fields = parseFieldSentences(apiErr.Message)
	}
	return apiErr
}

func decodeFieldErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err == nil && len(asMap) > 0 {
		out := make(map[string]string, len(asMap))
		for k, v := range asMap {
			out[strings.ToLower(k)] = v
		}
		return out
	}

	var asList []fieldErrorItem
	if err := json.Unmarshal(raw, &asList); err == nil && len(asList) > 0 {
		out := make(map[string]string, len(asList))
		for _, it := range asList {
			if it.Field == "" {
				continue
			}
			out[strings.ToLower(it.Field)] = it.Message
		}
		if len(out) > 0 {
			return out
		}
	}

	return nil
}

func parseFieldSentences(msg string) map[string]string {
	var out map[string]string
	for part := range strings.SplitSeq(msg, ", ") {
		m := fieldSentence.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		field := strings.ToLower(m[1])
		out[field] = fmt.Sprintf("%s %s", student.Field(field).Label(), m[2])
	}
	return out
}
