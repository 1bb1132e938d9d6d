package studentapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/colonyops/roster/internal/core/student"
)

// flexString decodes a JSON string or number into its string form. APIs
// disagree on whether ids are numeric.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt decodes a JSON number or numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("age %q is not a number", s)
		}
		*f = flexInt(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type wireRecord struct {
	ID     flexString `json:"id" validate:"required"`
	Name   string     `json:"name"`
	Age    flexInt    `json:"age"`
	Email  string     `json:"email"`
	Course string     `json:"course"`
}

func (w wireRecord) record() student.Record {
	return student.Record{
		ID:     string(w.ID),
		Name:   w.Name,
		Age:    int(w.Age),
		Email:  w.Email,
		Course: w.Course,
	}
}

type writeBody struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Email  string `json:"email"`
	Course string `json:"course"`
}

func newWriteBody(r student.Record) writeBody {
	return writeBody{Name: r.Name, Age: r.Age, Email: r.Email, Course: r.Course}
}
