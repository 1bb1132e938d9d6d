package tui

import (
	"fmt"
	"strconv"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/roster/internal/core/listview"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/core/styles"
	"github.com/colonyops/roster/internal/tui/components"
)

const (
	checkboxWidth = 4
	ageWidth      = 5
	minTableWidth = 40

	pagerSiblings = 1
	pagerBoundary = 1
)

// columnWidths splits the table width between the text columns.
type columnWidths struct {
	name, age, email, course int
}

func computeColumnWidths(width int) columnWidths {
	width = max(width, minTableWidth)
	rest := width - checkboxWidth - ageWidth - 3 // column gaps
	name := rest * 30 / 100
	email := rest * 40 / 100
	return columnWidths{
		name:   name,
		age:    ageWidth,
		email:  email,
		course: rest - name - email,
	}
}

func (c columnWidths) row(check, name, age, email, course string) string {
	return strings.Join([]string{
		components.Cell(check, checkboxWidth-1),
		components.Cell(name, c.name),
		components.Cell(age, c.age),
		components.Cell(email, c.email),
		components.Cell(course, c.course),
	}, " ")
}

func headerCheckbox(list *listview.State[student.Record]) string {
	switch {
	case list.IsAllVisibleSelected():
		return styles.IconChecked
	case list.IsSomeVisibleSelected():
		return styles.IconPartial
	default:
		return styles.IconUnchecked
	}
}

func headerLabel(key, label string, sort listview.Sort) string {
	if sort.Key != key {
		return label
	}
	if sort.Desc {
		return label + " " + styles.IconSortDesc
	}
	return label + " " + styles.IconSortAsc
}

// renderTable draws the visible page with a checkbox column and the cursor.
func renderTable(list *listview.State[student.Record], cursor, width int) string {
	cols := computeColumnWidths(width)
	sort := list.Sort()

	header := cols.row(
		headerCheckbox(list),
		headerLabel(student.SortName, "Name", sort),
		headerLabel(student.SortAge, "Age", sort),
		headerLabel(student.SortEmail, "Email", sort),
		headerLabel(student.SortCourse, "Course", sort),
	)

	lines := []string{styles.TableHeaderStyle.Render(header)}

	visible := list.Visible()
	if len(visible) == 0 {
		lines = append(lines, styles.MutedStyle.Render("No students yet."))
		return strings.Join(lines, "\n")
	}

	for i, rec := range visible {
		check := styles.IconUnchecked
		if list.IsSelected(rec.ID) {
			check = styles.IconChecked
		}

		row := cols.row(check, rec.Name, strconv.Itoa(rec.Age), rec.Email, rec.Course)

		switch {
		case i == cursor:
			row = styles.TableCursorStyle.Render(row)
		case list.IsSelected(rec.ID):
			row = styles.TableSelectedStyle.Render(row)
		default:
			row = styles.TableRowStyle.Render(row)
		}
		lines = append(lines, row)
	}

	return strings.Join(lines, "\n")
}

// renderPager draws the pagination window and collection counts.
func renderPager(list *listview.State[student.Record]) string {
	items := listview.Window(list.Page(), list.TotalPages(), pagerSiblings, pagerBoundary)

	buttons := make([]string, 0, len(items)+2)
	buttons = append(buttons, styles.PageStyle.Render("‹"))
	for _, it := range items {
		switch {
		case it.Ellipsis:
			buttons = append(buttons, styles.PageStyle.Render("…"))
		case it.Current:
			buttons = append(buttons, styles.PageCurrentStyle.Render(strconv.Itoa(it.Page)))
		default:
			buttons = append(buttons, styles.PageStyle.Render(strconv.Itoa(it.Page)))
		}
	}
	buttons = append(buttons, styles.PageStyle.Render("›"))

	summary := fmt.Sprintf("%s • %d per page", plural(list.Total(), "student"), list.PageSize())
	if n := list.SelectedCount(); n > 0 {
		summary += fmt.Sprintf(" • %d selected", n)
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		lipgloss.JoinHorizontal(lipgloss.Center, buttons...),
		"  ",
		styles.MutedStyle.Render(summary),
	)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
