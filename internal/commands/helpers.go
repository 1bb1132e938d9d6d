package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/listview"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/roster"
)

// errNotSignedIn is returned by record commands run without a session.
var errNotSignedIn = errors.New("not signed in; run 'roster auth login' first")

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth returns the width of stdout, or fallback when it is not a
// terminal.
func terminalWidth(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

func requireUser(app *roster.App) (*identity.User, error) {
	u := app.Auth.CurrentUser()
	if u == nil {
		return nil, errNotSignedIn
	}
	return u, nil
}

// listFlags selects a page of the collection the same way the records
// screen does.
type listFlags struct {
	page     int
	pageSize int
	sort     string
	desc     bool
}

func (lf *listFlags) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "page",
			Aliases:     []string{"p"},
			Usage:       "page number (1-indexed)",
			Value:       1,
			Destination: &lf.page,
		},
		&cli.IntFlag{
			Name:        "page-size",
			Aliases:     []string{"n"},
			Usage:       "rows per page (one of the configured page sizes)",
			Destination: &lf.pageSize,
		},
		&cli.StringFlag{
			Name:        "sort",
			Usage:       fmt.Sprintf("sort key (%v)", student.SortKeys()),
			Value:       student.DefaultSort,
			Destination: &lf.sort,
		},
		&cli.BoolFlag{
			Name:        "desc",
			Usage:       "sort descending",
			Destination: &lf.desc,
		},
	}
}

// state builds the presentation state for records. An unknown page size or
// sort key is an error rather than a silent fallback.
func (lf *listFlags) state(cfg *config.Config, records []student.Record) (*listview.State[student.Record], error) {
	list := listview.New(listview.Options[student.Record]{
		ID:          func(r student.Record) string { return r.ID },
		Comparators: student.Comparators(),
		PageSizes:   cfg.TUI.PageSizes,
		PageSize:    cfg.TUI.PageSize,
		Sort:        listview.Sort{Key: student.DefaultSort},
	})

	if lf.pageSize != 0 {
		if err := list.SetPageSize(lf.pageSize); err != nil {
			return nil, err
		}
	}
	if err := list.SetSort(listview.Sort{Key: lf.sort, Desc: lf.desc}); err != nil {
		return nil, err
	}

	list.SetCollection(records)
	list.SetPage(lf.page)
	return list, nil
}

// fetchStudents loads the full collection for a signed-in user.
func fetchStudents(ctx context.Context, app *roster.App) ([]student.Record, error) {
	if _, err := requireUser(app); err != nil {
		return nil, err
	}
	records, err := app.Students.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", roster.UserMessage(err), err)
	}
	return records, nil
}

// printFieldErrors writes one line per invalid field in form order and
// reports whether err carried any.
func printFieldErrors(w io.Writer, err error) bool {
	fieldErrs := roster.FieldErrors(err)
	if len(fieldErrs) == 0 {
		return false
	}
	for _, field := range student.FieldOrder {
		if msg, ok := fieldErrs[field]; ok {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", field.Label(), msg)
		}
	}
	return true
}
