package roster

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/integration/studentapi"
)

// ErrorKind is the user-facing category of an error.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindValidation blocks submission and is shown next to the fields.
	KindValidation
	// KindRejected is a collaborator refusing a well-formed request.
	KindRejected
	// KindTransport means the collaborator could not be reached in time.
	KindTransport
	// KindAuth is a sign-in or sign-up failure shown on the login form.
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindRejected:
		return "rejected"
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

const (
	msgFallback = "Something went wrong. Please try again."
	msgNetwork  = "Network error. Check your connection and try again."
	msgTimeout  = "The server took too long to respond. Please try again."
	msgFixForm  = "Please fix the highlighted fields."
	msgSignIn   = "Please sign in again."
)

// Classify maps err onto the error taxonomy. Server-side field errors count
// as validation so they can be shown inline.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return KindValidation
	}

	var apiErr *studentapi.APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsValidation() {
			return KindValidation
		}
		return KindRejected
	}

	var authErr *identity.AuthError
	if errors.As(err, &authErr) || errors.Is(err, identity.ErrNotSignedIn) {
		return KindAuth
	}

	var transportErr *studentapi.TransportError
	if errors.As(err, &transportErr) ||
		errors.Is(err, identity.ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}

	return KindRejected
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindValidation:
		if IsDuplicateEmail(err) {
			return student.ErrDuplicateEmail.Error()
		}
		var apiErr *studentapi.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return msgFixForm
	case KindAuth:
		var authErr *identity.AuthError
		if errors.As(err, &authErr) && authErr.Message != "" {
			return authErr.Message
		}
		return msgSignIn
	case KindTransport:
		if isTimeout(err) {
			return msgTimeout
		}
		return msgNetwork
	default:
		var apiErr *studentapi.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return msgFallback
	}
}

// FieldErrors merges client-side and server-side field messages from err
// into a single per-field map for inline display.
func FieldErrors(err error) map[student.Field]string {
	out := student.FieldMessages(err)

	var apiErr *studentapi.APIError
	if errors.As(err, &apiErr) && apiErr.IsValidation() {
		if out == nil {
			out = make(map[student.Field]string, len(apiErr.Fields))
		}
		for name, msg := range apiErr.Fields {
			field := student.Field(name)
			if _, ok := out[field]; !ok {
				out[field] = msg
			}
		}
	}

	return out
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var transportErr *studentapi.TransportError
	return errors.As(err, &transportErr) && transportErr.Timeout()
}

// IsDuplicateEmail reports whether err is the duplicate-email check failing.
func IsDuplicateEmail(err error) bool {
	return student.FieldMessages(err)[student.FieldEmail] == student.ErrDuplicateEmail.Error()
}
