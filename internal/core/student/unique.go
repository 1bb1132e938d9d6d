package student

import (
	"errors"
	"strings"

	"github.com/hay-kot/criterio"
)

// ErrDuplicateEmail is reported when another record already uses an email.
var ErrDuplicateEmail = errors.New("A student with this email already exists.")

// CheckUniqueEmail returns a field error on email when a record in existing
// other than selfID already uses email. Pass an empty selfID for a new
// record. Emails are compared case-insensitively.
func CheckUniqueEmail(existing []Record, email, selfID string) error {
	email = strings.TrimSpace(email)
	for _, r := range existing {
		if selfID != "" && r.ID == selfID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(r.Email), email) {
			return criterio.NewFieldErrors(string(FieldEmail), ErrDuplicateEmail)
		}
	}
	return nil
}
