// Package validate provides shared validation functions for command input.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"
)

// Required returns a validator that rejects blank input with
// "<label> is required".
func Required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// StudentID validates a record id taken from the command line. Ids become a
// URL path segment, so whitespace and slashes are rejected.
func StudentID(id string) error {
	if id == "" {
		return fmt.Errorf("student id is required")
	}
	for _, r := range id {
		if unicode.IsSpace(r) || r == '/' || r == '?' || r == '#' {
			return fmt.Errorf("invalid student id %q", id)
		}
	}
	return nil
}

// StudentIDs validates every id and reports each bad one as a field error
// keyed by its argument position.
func StudentIDs(ids []string) error {
	var errs criterio.FieldErrorsBuilder
	for i, id := range ids {
		if err := StudentID(id); err != nil {
			errs = errs.Append(fmt.Sprintf("arg[%d]", i), err)
		}
	}
	return errs.ToError()
}
