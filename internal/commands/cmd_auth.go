package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/validate"
	"github.com/colonyops/roster/internal/roster"
	"github.com/colonyops/roster/pkg/iojson"
)

type AuthCmd struct {
	flags *Flags
	app   *roster.App

	// flags
	creds      identity.Credentials
	photoURL   string
	jsonOutput bool
}

// NewAuthCmd creates the auth command group.
func NewAuthCmd(flags *Flags, app *roster.App) *AuthCmd {
	return &AuthCmd{flags: flags, app: app}
}

// Register adds the auth commands to the application
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	credentialFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Usage:       "account email",
				Destination: &cmd.creds.Email,
			},
			&cli.StringFlag{
				Name:        "password",
				Usage:       "account password (prompted when omitted in a terminal)",
				Sources:     cli.EnvVars("ROSTER_PASSWORD"),
				Destination: &cmd.creds.Password,
			},
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in account",
		Commands: []*cli.Command{
			{
				Name:      "signup",
				Usage:     "Create an account and sign in",
				UsageText: "roster auth signup [--name N --email E --password P]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:        "name",
						Usage:       "display name",
						Destination: &cmd.creds.DisplayName,
					},
				}, credentialFlags()...),
				Action: cmd.runSignUp,
			},
			{
				Name:      "login",
				Usage:     "Sign in",
				UsageText: "roster auth login [--email E --password P]",
				Flags:     credentialFlags(),
				Action:    cmd.runLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the stored session",
				Action: cmd.runLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runWhoami,
			},
			{
				Name:      "profile",
				Usage:     "Update the display name or photo",
				UsageText: "roster auth profile [--name N] [--photo-url URL]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "name",
						Usage:       "display name",
						Destination: &cmd.creds.DisplayName,
					},
					&cli.StringFlag{
						Name:        "photo-url",
						Usage:       "profile photo URL",
						Destination: &cmd.photoURL,
					},
				},
				Action: cmd.runProfile,
			},
		},
	})

	return app
}

func (cmd *AuthCmd) runSignUp(ctx context.Context, c *cli.Command) error {
	cmd.creds.SignUp = true
	if err := cmd.promptCredentials(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	u, err := cmd.app.Auth.SignUp(ctx, cmd.creds)
	if err != nil {
		return cmd.authError(c, err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Signed up as %s\n", u.Name())
	return nil
}

func (cmd *AuthCmd) runLogin(ctx context.Context, c *cli.Command) error {
	if err := cmd.promptCredentials(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	u, err := cmd.app.Auth.SignIn(ctx, cmd.creds)
	if err != nil {
		return cmd.authError(c, err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Signed in as %s\n", u.Name())
	return nil
}

func (cmd *AuthCmd) runLogout(ctx context.Context, c *cli.Command) error {
	if cmd.app.Auth.CurrentUser() == nil {
		_, _ = fmt.Fprintln(c.Root().Writer, "Not signed in")
		return nil
	}
	if err := cmd.app.Auth.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	_, _ = fmt.Fprintln(c.Root().Writer, "Signed out")
	return nil
}

func (cmd *AuthCmd) runWhoami(_ context.Context, c *cli.Command) error {
	u, err := requireUser(cmd.app)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, u)
	}

	_, _ = fmt.Fprintf(out, "Name:  %s\n", u.Name())
	_, _ = fmt.Fprintf(out, "Email: %s\n", u.Email)
	_, _ = fmt.Fprintf(out, "UID:   %s\n", u.UID)
	if u.PhotoURL != "" {
		_, _ = fmt.Fprintf(out, "Photo: %s\n", u.PhotoURL)
	}
	return nil
}

func (cmd *AuthCmd) runProfile(ctx context.Context, c *cli.Command) error {
	current, err := requireUser(cmd.app)
	if err != nil {
		return err
	}

	p := identity.Profile{DisplayName: current.DisplayName, PhotoURL: current.PhotoURL}
	if c.IsSet("name") {
		p.DisplayName = cmd.creds.DisplayName
	}
	if c.IsSet("photo-url") {
		p.PhotoURL = cmd.photoURL
	}
	if !c.IsSet("name") && !c.IsSet("photo-url") {
		return errors.New("nothing to change; pass --name or --photo-url")
	}

	u, err := cmd.app.Auth.UpdateProfile(ctx, p)
	if err != nil {
		return cmd.authError(c, err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Profile updated for %s\n", u.Name())
	return nil
}

// promptCredentials fills any missing credential with a huh form when
// running in a terminal. Outside a terminal the flags must be complete.
func (cmd *AuthCmd) promptCredentials() error {
	missing := cmd.creds.Email == "" || cmd.creds.Password == "" ||
		(cmd.creds.SignUp && cmd.creds.DisplayName == "")
	if !missing || !isInteractive() {
		return nil
	}

	var fields []huh.Field
	if cmd.creds.SignUp {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Value(&cmd.creds.DisplayName).
			Validate(validate.Required("Name")))
	}
	fields = append(fields,
		huh.NewInput().
			Title("Email").
			Value(&cmd.creds.Email).
			Validate(validate.Required("Email")),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&cmd.creds.Password).
			Validate(validate.Required("Password")),
	)

	title := "Sign in"
	if cmd.creds.SignUp {
		title = "Sign up"
	}

	return huh.NewForm(huh.NewGroup(fields...).Title(title)).
		WithTheme(huh.ThemeCharm()).
		WithOutput(os.Stderr).
		Run()
}

func (cmd *AuthCmd) authError(c *cli.Command, err error) error {
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			_, _ = fmt.Fprintf(c.Root().ErrWriter, "  %s\n", fe.Err)
		}
		return cli.Exit("", 1)
	}
	var authErr *identity.AuthError
	if errors.As(err, &authErr) {
		return cli.Exit(authErr.Error(), 1)
	}
	return fmt.Errorf("%s: %w", roster.UserMessage(err), err)
}
