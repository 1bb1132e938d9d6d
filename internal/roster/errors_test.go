package roster

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/integration/studentapi"
)

func TestClassifyAndUserMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    ErrorKind
		message string
	}{
		{
			name: "nil",
			err:  nil,
			kind: KindNone,
		},
		{
			name:    "client field errors",
			err:     criterio.NewFieldErrors("name", errors.New("Name is required")),
			kind:    KindValidation,
			message: msgFixForm,
		},
		{
			name:    "duplicate email",
			err:     fmt.Errorf("create: %w", student.CheckUniqueEmail([]student.Record{{ID: "1", Email: "a@b.co"}}, "a@b.co", "")),
			kind:    KindValidation,
			message: "A student with this email already exists.",
		},
		{
			name:    "server field errors",
			err:     &studentapi.APIError{Op: "create", Status: 400, Message: "invalid body", Fields: map[string]string{"age": "age must be a number"}},
			kind:    KindValidation,
			message: "invalid body",
		},
		{
			name:    "server rejection",
			err:     fmt.Errorf("update: %w", &studentapi.APIError{Op: "update", Status: 500}),
			kind:    KindRejected,
			message: msgFallback,
		},
		{
			name:    "server rejection with message",
			err:     &studentapi.APIError{Op: "delete", Status: 409, Message: "student is enrolled"},
			kind:    KindRejected,
			message: "student is enrolled",
		},
		{
			name:    "transport",
			err:     &studentapi.TransportError{Op: "list", Err: errors.New("connection refused")},
			kind:    KindTransport,
			message: msgNetwork,
		},
		{
			name:    "timeout",
			err:     &studentapi.TransportError{Op: "list", Err: context.DeadlineExceeded},
			kind:    KindTransport,
			message: msgTimeout,
		},
		{
			name:    "identity provider down",
			err:     errors.Join(identity.ErrUnavailable, errors.New("dial tcp")),
			kind:    KindTransport,
			message: msgNetwork,
		},
		{
			name:    "auth error",
			err:     &identity.AuthError{Code: "INVALID_PASSWORD", Message: "Incorrect email or password."},
			kind:    KindAuth,
			message: "Incorrect email or password.",
		},
		{
			name:    "not signed in",
			err:     identity.ErrNotSignedIn,
			kind:    KindAuth,
			message: msgSignIn,
		},
		{
			name:    "anything else",
			err:     errors.New("mystery"),
			kind:    KindRejected,
			message: msgFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Classify(tt.err))
			assert.Equal(t, tt.message, UserMessage(tt.err))
		})
	}
}

func TestFieldErrors_mergesServerFields(t *testing.T) {
	err := &studentapi.APIError{Status: 422, Fields: map[string]string{"email": "email taken", "age": "too old"}}

	got := FieldErrors(err)
	assert.Equal(t, map[student.Field]string{
		student.FieldEmail: "email taken",
		student.FieldAge:   "too old",
	}, got)

	assert.Nil(t, FieldErrors(errors.New("plain")))
}

func TestPage(t *testing.T) {
	about, err := Page(PageAbout)
	assert.NoError(t, err)
	assert.Contains(t, about, "# roster")

	contact, err := Page("Contact")
	assert.NoError(t, err)
	assert.Contains(t, contact, "Call us")

	_, err = Page("faq")
	assert.Error(t, err)
}
