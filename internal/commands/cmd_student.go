package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/core/validate"
	"github.com/colonyops/roster/internal/roster"
	"github.com/colonyops/roster/pkg/iojson"
)

// studentInput is the JSON accepted by add -f. Age may be a number or a
// string so files exported from other tools load without massaging.
type studentInput struct {
	Name   string      `json:"name"`
	Age    json.Number `json:"age"`
	Email  string      `json:"email"`
	Course string      `json:"course"`
}

func (in studentInput) fields() student.Fields {
	return student.Fields{Name: in.Name, Age: in.Age.String(), Email: in.Email, Course: in.Course}
}

type StudentCmd struct {
	flags *Flags
	app   *roster.App

	// flags
	fields     student.Fields
	file       iojson.FileReader[studentInput]
	jsonOutput bool
	yes        bool
}

// NewStudentCmd creates the add, edit, get and rm commands.
func NewStudentCmd(flags *Flags, app *roster.App) *StudentCmd {
	return &StudentCmd{flags: flags, app: app}
}

func (cmd *StudentCmd) fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "student name", Destination: &cmd.fields.Name},
		&cli.StringFlag{Name: "age", Usage: "student age", Destination: &cmd.fields.Age},
		&cli.StringFlag{Name: "email", Usage: "student email", Destination: &cmd.fields.Email},
		&cli.StringFlag{Name: "course", Usage: "course name", Destination: &cmd.fields.Course},
	}
}

// Register adds the student commands to the application
func (cmd *StudentCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:        "json",
			Usage:       "output as JSON",
			Destination: &cmd.jsonOutput,
		}
	}

	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "add",
			Usage:     "Create a student",
			UsageText: "roster add [--name N --age A --email E --course C] [-f file.json]",
			Description: `Creates a student. Without flags in a terminal an interactive form is shown.
Use -f to read a JSON object with name, age, email and course.`,
			Flags:  append(cmd.fieldFlags(), cmd.file.Flag(), jsonFlag()),
			Action: cmd.runAdd,
		},
		&cli.Command{
			Name:      "edit",
			Usage:     "Update a student",
			UsageText: "roster edit <id> [--name N] [--age A] [--email E] [--course C]",
			Description: `Updates a student. Flags override the stored values; without flags in a
terminal an interactive form prefilled with the current values is shown.`,
			Flags:  append(cmd.fieldFlags(), jsonFlag()),
			Action: cmd.runEdit,
		},
		&cli.Command{
			Name:      "get",
			Usage:     "Show one student",
			UsageText: "roster get <id> [--json]",
			Flags:     []cli.Flag{jsonFlag()},
			Action:    cmd.runGet,
		},
		&cli.Command{
			Name:      "rm",
			Usage:     "Delete students",
			UsageText: "roster rm <id>... [--yes]",
			Description: `Deletes one or more students. Every id is attempted even when some fail;
the command exits non-zero if any deletion failed.`,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "yes",
					Aliases:     []string{"y"},
					Usage:       "skip the confirmation prompt",
					Destination: &cmd.yes,
				},
			},
			Action: cmd.runRm,
		},
	)

	return app
}

func (cmd *StudentCmd) runAdd(ctx context.Context, c *cli.Command) error {
	if _, err := requireUser(cmd.app); err != nil {
		return err
	}

	fields := cmd.fields
	switch {
	case cmd.file.Provided():
		in, err := cmd.file.Read()
		if err != nil {
			return err
		}
		fields = in.fields()
	case fields.IsZero() && isInteractive():
		if err := runStudentForm("New student", &fields); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	rec, err := cmd.app.Students.Create(ctx, fields)
	if err != nil {
		return cmd.saveError(c, err)
	}

	return cmd.printSaved(c, rec, "Student created successfully!")
}

func (cmd *StudentCmd) runEdit(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if err := validate.StudentID(id); err != nil {
		return err
	}
	if _, err := requireUser(cmd.app); err != nil {
		return err
	}

	current, err := cmd.app.Students.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", roster.UserMessage(err), err)
	}

	fields := current.Fields()
	overridden := false
	for _, f := range student.FieldOrder {
		if c.IsSet(string(f)) {
			fields = fields.With(f, cmd.fields.Get(f))
			overridden = true
		}
	}

	if !overridden {
		if !isInteractive() {
			return errors.New("nothing to change; pass at least one of --name, --age, --email, --course")
		}
		if err := runStudentForm("Edit student", &fields); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	rec, err := cmd.app.Students.Update(ctx, id, fields)
	if err != nil {
		return cmd.saveError(c, err)
	}

	return cmd.printSaved(c, rec, "Student updated successfully!")
}

func (cmd *StudentCmd) runGet(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if err := validate.StudentID(id); err != nil {
		return err
	}
	if _, err := requireUser(cmd.app); err != nil {
		return err
	}

	rec, err := cmd.app.Students.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", roster.UserMessage(err), err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, rec)
	}

	for _, f := range student.FieldOrder {
		_, _ = fmt.Fprintf(out, "%-7s %s\n", f.Label()+":", rec.Fields().Get(f))
	}
	_, _ = fmt.Fprintf(out, "%-7s %s\n", "ID:", rec.ID)
	return nil
}

func (cmd *StudentCmd) runRm(ctx context.Context, c *cli.Command) error {
	ids := c.Args().Slice()
	if len(ids) == 0 {
		return errors.New("at least one student id is required")
	}
	if err := validate.StudentIDs(ids); err != nil {
		return err
	}
	if _, err := requireUser(cmd.app); err != nil {
		return err
	}

	if !cmd.yes {
		if !isInteractive() {
			return errors.New("refusing to delete without confirmation; pass --yes")
		}
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s?", plural(len(ids), "student"))).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			WithTheme(huh.ThemeCharm()).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			return nil
		}
	}

	report := cmd.app.Students.BulkDelete(ctx, ids)

	out := c.Root().Writer
	for _, id := range report.Deleted {
		_, _ = fmt.Fprintf(out, "deleted %s\n", id)
	}
	for _, f := range report.Failed {
		_, _ = fmt.Fprintf(c.Root().ErrWriter, "failed  %s: %s\n", f.ID, roster.UserMessage(f.Err))
	}

	if len(report.Failed) > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d deletions failed", len(report.Failed), report.Total()), 1)
	}
	return nil
}

func (cmd *StudentCmd) saveError(c *cli.Command, err error) error {
	if printFieldErrors(c.Root().ErrWriter, err) {
		return cli.Exit("validation failed", 1)
	}
	return fmt.Errorf("%s: %w", roster.UserMessage(err), err)
}

func (cmd *StudentCmd) printSaved(c *cli.Command, rec student.Record, msg string) error {
	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, rec)
	}
	_, _ = fmt.Fprintf(out, "%s (%s)\n", msg, rec.ID)
	return nil
}

// runStudentForm edits fields in place with a huh form. Each input is
// checked against the same rules the service applies.
func runStudentForm(title string, fields *student.Fields) error {
	input := func(f student.Field, value *string) *huh.Input {
		return huh.NewInput().
			Title(f.Label()).
			Value(value).
			Validate(func(s string) error {
				return student.Rules[f].Check(f, s)
			})
	}

	return huh.NewForm(
		huh.NewGroup(
			input(student.FieldName, &fields.Name),
			input(student.FieldAge, &fields.Age),
			input(student.FieldEmail, &fields.Email),
			input(student.FieldCourse, &fields.Course),
		).Title(title),
	).WithTheme(huh.ThemeCharm()).WithOutput(os.Stderr).Run()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
