package student

import "strings"

// Field names a single form input.
type Field string

const (
	FieldName   Field = "name"
	FieldAge    Field = "age"
	FieldEmail  Field = "email"
	FieldCourse Field = "course"
)

// FieldOrder is the display and export order of the form inputs.
var FieldOrder = []Field{FieldName, FieldAge, FieldEmail, FieldCourse}

// Fields is the raw, unparsed state of the student form. It is a value:
// editing a field produces a new Fields rather than mutating the old one.
type Fields struct {
	Name   string
	Age    string
	Email  string
	Course string
}

// Get returns the raw value of field.
func (f Fields) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldAge:
		return f.Age
	case FieldEmail:
		return f.Email
	case FieldCourse:
		return f.Course
	default:
		return ""
	}
}

// With returns a copy of f with field set to value.
func (f Fields) With(field Field, value string) Fields {
	switch field {
	case FieldName:
		f.Name = value
	case FieldAge:
		f.Age = value
	case FieldEmail:
		f.Email = value
	case FieldCourse:
		f.Course = value
	}
	return f
}

// Trimmed returns f with surrounding whitespace removed from every value.
func (f Fields) Trimmed() Fields {
	return Fields{
		Name:   strings.TrimSpace(f.Name),
		Age:    strings.TrimSpace(f.Age),
		Email:  strings.TrimSpace(f.Email),
		Course: strings.TrimSpace(f.Course),
	}
}

// IsZero reports whether every field is empty.
func (f Fields) IsZero() bool {
	return f == Fields{}
}

// Label is the human readable name of a field.
func (field Field) Label() string {
	switch field {
	case FieldName:
		return "Name"
	case FieldAge:
		return "Age"
	case FieldEmail:
		return "Email"
	case FieldCourse:
		return "Course"
	default:
		return string(field)
	}
}
