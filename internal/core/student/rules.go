package student

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hay-kot/criterio"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Rule is the declarative constraint set for one form field. Zero values
// disable a check. Min and Max only apply when Numeric is set.
type Rule struct {
	Required       bool
	MinLength      int
	MaxLength      int
	Numeric        bool
	Min            int
	Max            int
	Pattern        *regexp.Regexp
	PatternMessage string
}

// Check validates value against the rule. The returned error text is shown
// to the user verbatim.
func (r Rule) Check(field Field, value string) error {
	label := field.Label()

	if strings.TrimSpace(value) == "" {
		if r.Required {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}

	n := utf8.RuneCountInString(value)
	if r.MinLength > 0 && n < r.MinLength {
		return fmt.Errorf("%s must be at least %d characters", label, r.MinLength)
	}
	if r.MaxLength > 0 && n > r.MaxLength {
		return fmt.Errorf("%s must be at most %d characters", label, r.MaxLength)
	}

	if r.Numeric {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a whole number", label)
		}
		if r.Min > 0 && v < r.Min {
			return fmt.Errorf("%s must be at least %d", label, r.Min)
		}
		if r.Max > 0 && v > r.Max {
			return fmt.Errorf("%s must be at most %d", label, r.Max)
		}
	}

	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		if r.PatternMessage != "" {
			return errors.New(r.PatternMessage)
		}
		return fmt.Errorf("%s is not valid", label)
	}

	return nil
}

// RuleTable maps each form field to its rule.
type RuleTable map[Field]Rule

// Rules is the rule table for the student form.
var Rules = RuleTable{
	FieldName:   {Required: true, MinLength: 2, MaxLength: 20},
	FieldAge:    {Required: true, Numeric: true, Min: 1, Max: 110},
	FieldEmail:  {Required: true, Pattern: emailPattern, PatternMessage: "Invalid email address"},
	FieldCourse: {Required: true, MinLength: 2},
}

// Validate checks every field of f (after trimming) and returns
// criterio.FieldErrors keyed by field name, or nil.
func (t RuleTable) Validate(f Fields) error {
	f = f.Trimmed()

	var errs criterio.FieldErrorsBuilder
	for _, field := range FieldOrder {
		rule, ok := t[field]
		if !ok {
			continue
		}
		if err := rule.Check(field, f.Get(field)); err != nil {
			errs = errs.Append(string(field), err)
		}
	}

	return errs.ToError()
}

// Parse validates f and converts it into a Record with an empty ID.
func (t RuleTable) Parse(f Fields) (Record, error) {
	if err := t.Validate(f); err != nil {
		return Record{}, err
	}

	f = f.Trimmed()
	age, err := strconv.Atoi(f.Age)
	if err != nil {
		return Record{}, criterio.NewFieldErrors(string(FieldAge), fmt.Errorf("Age must be a whole number"))
	}

	return Record{
		Name:   f.Name,
		Age:    age,
		Email:  f.Email,
		Course: f.Course,
	}, nil
}

// FieldMessages flattens field errors from err into a per-field message map
// for inline display. It returns nil when err carries no field errors.
func FieldMessages(err error) map[Field]string {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make(map[Field]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := Field(fe.Field)
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = fe.Err.Error()
	}
	return out
}
