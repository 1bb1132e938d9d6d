package identity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hay-kot/criterio"
)

// Credentials is the input of the sign-in and sign-up forms.
type Credentials struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"required_if=SignUp true"`
	SignUp      bool   `json:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the credentials and returns criterio.FieldErrors keyed by
// json field name.
func (c Credentials) Validate() error {
	c.Email = strings.TrimSpace(c.Email)
	c.DisplayName = strings.TrimSpace(c.DisplayName)

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate credentials: %w", err)
	}

	var errs criterio.FieldErrorsBuilder
	for _, fe := range verrs {
		errs = errs.Append(fe.Field(), errors.New(credentialMessage(fe)))
	}
	return errs.ToError()
}

func credentialMessage(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "email.required":
		return "Email is required"
	case "email.email":
		return "Invalid email address"
	case "password.required":
		return "Password is required"
	case "password.min":
		return fmt.Sprintf("Password must be at least %s characters", fe.Param())
	case "display_name.required_if":
		return "Full name is required"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
