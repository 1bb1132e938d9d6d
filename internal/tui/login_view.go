package tui

import (
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/core/styles"
	"github.com/colonyops/roster/internal/roster"
	"github.com/colonyops/roster/internal/tui/components/form"
)

const (
	loginFieldName     = "display_name"
	loginFieldEmail    = "email"
	loginFieldPassword = "password"

	loginWidth = 44
)

// LoginView is the sign-in / sign-up screen. Errors are shown inline and
// never navigate away.
type LoginView struct {
	signUp  bool
	dialog  *form.Dialog
	err     string
	pending bool
}

// NewLoginView creates the login screen in sign-in mode.
func NewLoginView() *LoginView {
	v := &LoginView{}
	v.build("")
	return v
}

func (v *LoginView) build(email string) {
	var (
		fields []form.Field
		names  []string
	)

	if v.signUp {
		fields = append(fields, form.NewTextField("Full name", "Ann Lee", ""))
		names = append(names, loginFieldName)
	}

	emailField := form.NewTextField("Email", "you@example.com", email)
	password := form.NewPasswordField("Password", "at least 6 characters")
	fields = append(fields, emailField, password)
	names = append(names, loginFieldEmail, loginFieldPassword)

	title := "Sign in"
	if v.signUp {
		title = "Create account"
	}

	v.dialog = form.NewDialog(title, fields, names)
	v.dialog.Help = "tab next • enter submit • ctrl+t " + v.otherMode()
	v.err = ""
}

func (v *LoginView) otherMode() string {
	if v.signUp {
		return "sign in instead"
	}
	return "create an account"
}

// SignUp reports whether the view is in sign-up mode.
func (v *LoginView) SignUp() bool { return v.signUp }

// Toggle switches between sign-in and sign-up, keeping the email.
func (v *LoginView) Toggle() {
	email := v.dialog.Values()[loginFieldEmail]
	v.signUp = !v.signUp
	v.build(email)
}

// Update forwards input to the form. Input is ignored while a request is
// in flight.
func (v *LoginView) Update(msg tea.Msg) tea.Cmd {
	if v.pending {
		return nil
	}
	if k, ok := msg.(tea.KeyPressMsg); ok && k.String() == "ctrl+t" {
		v.Toggle()
		return nil
	}

	var cmd tea.Cmd
	v.dialog, cmd = v.dialog.Update(msg)
	return cmd
}

// Submitted reports whether the form was submitted and not yet handled.
func (v *LoginView) Submitted() bool { return v.dialog.Submitted() && !v.pending }

// Credentials returns the current form values.
func (v *LoginView) Credentials() identity.Credentials {
	vals := v.dialog.Values()
	return identity.Credentials{
		Email:       vals[loginFieldEmail],
		Password:    vals[loginFieldPassword],
		DisplayName: vals[loginFieldName],
		SignUp:      v.signUp,
	}
}

// Begin marks a request as in flight.
func (v *LoginView) Begin() {
	v.pending = true
	v.err = ""
	v.dialog.Reopen()
	v.dialog.SetErrors(nil)
}

// Fail shows err inline. Field errors go next to their inputs.
func (v *LoginView) Fail(err error) tea.Cmd {
	v.pending = false

	fieldErrs := make(map[string]string)
	for field, msg := range student.FieldMessages(err) {
		fieldErrs[string(field)] = msg
	}
	if len(fieldErrs) > 0 {
		return v.dialog.SetErrors(fieldErrs)
	}

	v.err = roster.UserMessage(err)
	return nil
}

// Pending reports whether a request is in flight.
func (v *LoginView) Pending() bool { return v.pending }

// Error returns the inline error, if any.
func (v *LoginView) Error() string { return v.err }

// View renders the login box.
func (v *LoginView) View(spinner string) string {
	parts := []string{v.dialog.View()}

	switch {
	case v.pending:
		label := "Signing in…"
		if v.signUp {
			label = "Creating account…"
		}
		parts = append(parts, "", spinner+" "+styles.MutedStyle.Render(label))
	case v.err != "":
		parts = append(parts, "", styles.FormErrorStyle.Render(v.err))
	}

	return styles.ModalStyle.Width(loginWidth).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
