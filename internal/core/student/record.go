// Package student defines the student record, its form value, and the
// client-side rules a record must satisfy before it is sent to the API.
package student

import (
	"context"
	"errors"
	"strconv"
)

// ErrNotFound is returned when a record id is unknown to the store.
var ErrNotFound = errors.New("student not found")

// Record is a single student as held by the remote API. ID is assigned by
// the API and never changes.
type Record struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Email  string `json:"email"`
	Course string `json:"course"`
}

// Fields returns the form value for r, used to pre-fill an edit.
func (r Record) Fields() Fields {
	return Fields{
		Name:   r.Name,
		Age:    strconv.Itoa(r.Age),
		Email:  r.Email,
		Course: r.Course,
	}
}

// Store is the remote CRUD collaborator for student records.
type Store interface {
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
	// Create ignores rec.ID and returns the record as stored.
	Create(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, id string, rec Record) (Record, error)
	Delete(ctx context.Context, id string) error
}
