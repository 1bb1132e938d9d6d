package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/export"
	"github.com/colonyops/roster/internal/roster"
)

type ExportCmd struct {
	flags *Flags
	app   *roster.App

	// flags
	list   listFlags
	format string
	out    string
	all    bool
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, app *roster.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	formats := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		formats = append(formats, string(f))
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export students to CSV, XLSX or PDF",
		UsageText: "roster export [--format csv|xlsx|pdf] [--out DIR] [--all] [--page N] [--page-size N] [--sort KEY]",
		Description: `Writes the selected page (or the whole sorted collection with --all) to a
timestamped file and prints its path. Defaults come from the export section
of the config file.`,
		Flags: append(cmd.list.Flags(),
			&cli.StringFlag{
				Name:        "format",
				Usage:       "export format (" + strings.Join(formats, ", ") + ")",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output directory",
				Destination: &cmd.out,
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "export every student instead of one page",
				Destination: &cmd.all,
			},
		),
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.app.Config

	name := cmd.format
	if name == "" {
		name = cfg.Export.DefaultFormat
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	dir := cmd.out
	if dir == "" {
		dir = cfg.Export.Dir
	}

	records, err := fetchStudents(ctx, cmd.app)
	if err != nil {
		return err
	}

	list, err := cmd.list.state(cfg, records)
	if err != nil {
		return err
	}

	rows := list.Visible()
	if cmd.all || (!c.IsSet("all") && !c.IsSet("page") && cfg.Export.Scope == config.ScopeAll) {
		rows = list.Items()
	}

	path, err := cmd.app.Students.Export(rows, format, dir, time.Now())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, path)
	return nil
}
