package firebase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/colonyops/roster/internal/core/identity"
)

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeError turns a Firebase error body into an *identity.AuthError.
// Messages look like "EMAIL_EXISTS" or "WEAK_PASSWORD : Password should be
// at least 6 characters".
func decodeError(status int, body []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Message == "" {
		return &identity.AuthError{
			Code:    fmt.Sprintf("HTTP_%d", status),
			Message: fmt.Sprintf("Authentication service returned status %d.", status),
		}
	}

	code, detail, _ := strings.Cut(env.Error.Message, " : ")
	code = strings.TrimSpace(code)

	msg := friendlyMessage(code)
	if msg == "" {
		msg = strings.TrimSpace(detail)
	}
	if msg == "" {
		msg = code
	}

	return &identity.AuthError{Code: code, Message: msg}
}

func friendlyMessage(code string) string {
	switch code {
	case "EMAIL_EXISTS":
		return "The email address is already in use by another account."
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return "Invalid email or password."
	case "INVALID_EMAIL":
		return "The email address is badly formatted."
	case "WEAK_PASSWORD":
		return "Password should be at least 6 characters."
	case "USER_DISABLED":
		return "This account has been disabled."
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return "Too many attempts. Try again later."
	case "OPERATION_NOT_ALLOWED":
		return "Password sign-in is disabled for this project."
	case "TOKEN_EXPIRED", "INVALID_ID_TOKEN", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND":
		return "Your session has expired. Sign in again."
	default:
		return ""
	}
}
