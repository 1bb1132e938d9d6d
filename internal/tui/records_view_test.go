package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/roster/internal/core/listview"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/pkg/tuitest"
)

func newRecordList(n int) *listview.State[student.Record] {
	list := listview.New(listview.Options[student.Record]{
		ID:          func(r student.Record) string { return r.ID },
		Comparators: student.Comparators(),
		Sort:        listview.Sort{Key: student.DefaultSort},
	})

	records := make([]student.Record, 0, n)
	for i := range n {
		records = append(records, student.Record{
			ID:     fmt.Sprintf("s%d", i+1),
			Name:   fmt.Sprintf("Student %d", i+1),
			Age:    18 + i,
			Email:  fmt.Sprintf("s%d@example.com", i+1),
			Course: "Math",
		})
	}
	list.SetCollection(records)
	return list
}

func TestComputeColumnWidths(t *testing.T) {
	for _, width := range []int{10, 40, 80, 200} {
		t.Run(fmt.Sprint(width), func(t *testing.T) {
			cols := computeColumnWidths(width)
			total := checkboxWidth + cols.name + cols.age + cols.email + cols.course + 3
			assert.Equal(t, max(width, minTableWidth), total)
			assert.Greater(t, cols.course, 0)
		})
	}
}

func TestHeaderCheckbox(t *testing.T) {
	list := newRecordList(3)
	assert.Equal(t, "[ ]", headerCheckbox(list))

	list.ToggleSelect("s1", true)
	assert.Equal(t, "[-]", headerCheckbox(list))

	list.ToggleSelectAll(true)
	assert.Equal(t, "[x]", headerCheckbox(list))
}

func TestRenderTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := tuitest.StripANSI(renderTable(newRecordList(0), 0, 80))
		assert.Contains(t, out, "No students yet.")
	})

	t.Run("rows and sort marker", func(t *testing.T) {
		list := newRecordList(2)
		list.ToggleSelect("s2", true)

		out := tuitest.StripANSI(renderTable(list, 0, 80))
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 3)

		assert.Contains(t, lines[0], "Name ▲")
		assert.Contains(t, lines[1], "[ ]")
		assert.Contains(t, lines[1], "Student 1")
		assert.Contains(t, lines[2], "[x]")
		assert.Contains(t, lines[2], "s2@example.com")
	})

	t.Run("long values are truncated", func(t *testing.T) {
		list := newRecordList(0)
		list.SetCollection([]student.Record{{ID: "s1", Name: strings.Repeat("n", 100), Age: 20, Email: "a@b.co", Course: "Art"}})

		out := tuitest.StripANSI(renderTable(list, 0, 60))
		assert.Contains(t, out, "…")
		assert.NotContains(t, out, strings.Repeat("n", 100))
	})
}

func TestRenderPager(t *testing.T) {
	list := newRecordList(12)
	list.SetPage(2)
	list.ToggleSelect("s1", true)

	out := tuitest.StripANSI(renderPager(list))
	assert.Contains(t, out, "‹")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "12 students • 5 per page • 1 selected")
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 student", plural(1, "student"))
	assert.Equal(t, "0 students", plural(0, "student"))
	assert.Equal(t, "3 students", plural(3, "student"))
}
