package tui

import (
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/roster"
	"github.com/colonyops/roster/internal/tui/components/form"
)

var fieldPlaceholders = map[student.Field]string{
	student.FieldName:   "Ann Lee",
	student.FieldAge:    "21",
	student.FieldEmail:  "ann@example.com",
	student.FieldCourse: "Mathematics",
}

// newStudentForm builds the create/update dialog pre-filled with f.
func newStudentForm(title string, f student.Fields) *form.Dialog {
	fields := make([]form.Field, 0, len(student.FieldOrder))
	names := make([]string, 0, len(student.FieldOrder))
	for _, field := range student.FieldOrder {
		fields = append(fields, form.NewTextField(field.Label(), fieldPlaceholders[field], f.Get(field)))
		names = append(names, string(field))
	}

	d := form.NewDialog(title, fields, names)
	d.Help = "tab next • enter/ctrl+s save • esc cancel"
	return d
}

// studentFormFields reads the dialog back into a Fields value.
func studentFormFields(d *form.Dialog) student.Fields {
	var f student.Fields
	for name, value := range d.Values() {
		f = f.With(student.Field(name), value)
	}
	return f
}

// studentFormErrors maps err onto dialog field names.
func studentFormErrors(err error) map[string]string {
	fieldErrs := roster.FieldErrors(err)
	out := make(map[string]string, len(fieldErrs))
	for field, msg := range fieldErrs {
		out[string(field)] = msg
	}
	return out
}
