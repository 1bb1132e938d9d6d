package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roster/internal/roster"
)

// PagesCmd prints the static about and contact pages.
type PagesCmd struct{}

func NewPagesCmd() *PagesCmd { return &PagesCmd{} }

func (cmd *PagesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:   roster.PageAbout,
			Usage:  "Show information about roster",
			Action: cmd.action(roster.PageAbout),
		},
		&cli.Command{
			Name:   roster.PageContact,
			Usage:  "Show contact information",
			Action: cmd.action(roster.PageContact),
		},
	)
	return app
}

func (cmd *PagesCmd) action(name string) cli.ActionFunc {
	return func(_ context.Context, c *cli.Command) error {
		out, err := roster.RenderPage(name, terminalWidth(80))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(c.Root().Writer, out)
		return nil
	}
}
