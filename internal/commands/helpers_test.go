package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/listview"
	"github.com/colonyops/roster/internal/core/student"
)

func testRecords(n int) []student.Record {
	out := make([]student.Record, 0, n)
	for i := range n {
		out = append(out, student.Record{
			ID:     fmt.Sprintf("s%02d", i+1),
			Name:   fmt.Sprintf("Student %02d", n-i),
			Age:    18 + i,
			Email:  fmt.Sprintf("s%02d@example.com", i+1),
			Course: "Math",
		})
	}
	return out
}

func TestListFlags_State(t *testing.T) {
	defaults := config.DefaultConfig()
	cfg := &defaults

	tests := []struct {
		name      string
		flags     listFlags
		wantErr   error
		wantPage  int
		wantSize  int
		wantFirst string
		wantLen   int
	}{
		{
			name:      "defaults",
			flags:     listFlags{page: 1, sort: student.DefaultSort},
			wantPage:  1,
			wantSize:  5,
			wantFirst: "Student 01",
			wantLen:   5,
		},
		{
			name:      "second page of ten",
			flags:     listFlags{page: 2, pageSize: 10, sort: student.DefaultSort},
			wantPage:  2,
			wantSize:  10,
			wantFirst: "Student 11",
			wantLen:   2,
		},
		{
			name:      "page past the end is clamped",
			flags:     listFlags{page: 99, pageSize: 5, sort: student.DefaultSort},
			wantPage:  3,
			wantSize:  5,
			wantFirst: "Student 11",
			wantLen:   2,
		},
		{
			name:      "age descending",
			flags:     listFlags{page: 1, sort: "age", desc: true},
			wantPage:  1,
			wantSize:  5,
			wantFirst: "Student 01",
			wantLen:   5,
		},
		{
			name:    "page size outside the allowed set",
			flags:   listFlags{page: 1, pageSize: 7, sort: student.DefaultSort},
			wantErr: listview.ErrInvalidPageSize,
		},
		{
			name:    "unknown sort key",
			flags:   listFlags{page: 1, sort: "gpa"},
			wantErr: listview.ErrUnknownSortKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := tt.flags.state(cfg, testRecords(12))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantPage, list.Page())
			assert.Equal(t, tt.wantSize, list.PageSize())
			visible := list.Visible()
			require.Len(t, visible, tt.wantLen)
			assert.Equal(t, tt.wantFirst, visible[0].Name)
		})
	}
}

func TestPrintFieldErrors(t *testing.T) {
	t.Run("field errors in form order", func(t *testing.T) {
		err := student.Rules.Validate(student.Fields{Name: "A", Age: "abc", Email: "x@y.zz", Course: "Art"})

		var buf bytes.Buffer
		require.True(t, printFieldErrors(&buf, err))
		assert.Equal(t, "  Name: Name must be at least 2 characters\n  Age: Age must be a whole number\n", buf.String())
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		assert.False(t, printFieldErrors(&buf, errors.New("boom")))
		assert.Empty(t, buf.String())
	})
}

func TestFlattenValidation(t *testing.T) {
	assert.Nil(t, flattenValidation(nil))

	got := flattenValidation(errors.New("read config: permission denied"))
	assert.Equal(t, []validationError{{Message: "read config: permission denied"}}, got)

	var b criterio.FieldErrorsBuilder
	b = b.Append("api.base_url", errors.New("must be an absolute URL"))
	b = b.Append("tui.theme", errors.New("unknown theme \"neon\""))

	got = flattenValidation(b.ToError())
	assert.Equal(t, []validationError{
		{Field: "api.base_url", Message: "must be an absolute URL"},
		{Field: "tui.theme", Message: "unknown theme \"neon\""},
	}, got)
}

func TestStudentInput_Fields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    student.Fields
	}{
		{
			name:    "numeric age",
			payload: `{"name":"Ann","age":21,"email":"ann@example.com","course":"Math"}`,
			want:    student.Fields{Name: "Ann", Age: "21", Email: "ann@example.com", Course: "Math"},
		},
		{
			name:    "string age",
			payload: `{"name":"Bob","age":"30","email":"bob@example.com","course":"Art"}`,
			want:    student.Fields{Name: "Bob", Age: "30", Email: "bob@example.com", Course: "Art"},
		},
		{
			name:    "missing age",
			payload: `{"name":"Cy","email":"cy@example.com","course":"Art"}`,
			want:    student.Fields{Name: "Cy", Email: "cy@example.com", Course: "Art"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in studentInput
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &in))
			assert.Equal(t, tt.want, in.fields())
		})
	}
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 student", plural(1, "student"))
	assert.Equal(t, "2 students", plural(2, "student"))
}
