package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roster/internal/roster"
	"github.com/colonyops/roster/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *roster.App

	// flags
	list       listFlags
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *roster.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List students",
		UsageText: "roster ls [--page N] [--page-size N] [--sort KEY] [--desc] [--json]",
		Description: `Fetches the collection and prints one page of it, sorted the same way
as the records screen. Use --json for one JSON object per line.`,
		Flags: append(cmd.list.Flags(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		),
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	records, err := fetchStudents(ctx, cmd.app)
	if err != nil {
		return err
	}

	list, err := cmd.list.state(cmd.app.Config, records)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	visible := list.Visible()

	if cmd.jsonOutput {
		for _, r := range visible {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode student: %w", err)
			}
		}
		return nil
	}

	if len(visible) == 0 {
		fmt.Fprintf(os.Stderr, "No students found\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tAGE\tEMAIL\tCOURSE")
	for _, r := range visible {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, strconv.Itoa(r.Age), r.Email, r.Course)
	}
	_ = w.Flush()

	fmt.Fprintf(os.Stderr, "\npage %d/%d • %d students • %d per page\n",
		list.Page(), list.TotalPages(), list.Total(), list.PageSize())
	return nil
}

