// Package signin validates the sign-in form and runs an attempt against an
// authenticator, reporting the outcome through the same navigator and
// notifier the signup wizard uses.
package signin

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/zarlcorp/zpay/internal/signup"
)

var validate = validator.New()

// Input is the sign-in form.
type Input struct {
	Email    string `validate:"email"`
	Password string `validate:"min=6"`
}

// ErrInvalidCredentials is returned by Authenticator implementations when the
// email is unknown or the password does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Authenticator checks credentials and returns the matching account.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (signup.AccountRef, error)
}

var messages = map[signup.Field]string{
	signup.FieldEmail:    "Please enter a valid email address",
	signup.FieldPassword: "Password must be at least 6 characters",
}

// Validate checks the form fields.
func Validate(in Input) signup.Validation {
	errs := signup.FieldErrors{}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			panic("signin: validate: " + err.Error())
		}
		for _, fe := range verrs {
			switch fe.StructField() {
			case "Email":
				errs[signup.FieldEmail] = messages[signup.FieldEmail]
			case "Password":
				errs[signup.FieldPassword] = messages[signup.FieldPassword]
			}
		}
	}

	if len(errs) == 0 {
		return signup.Validation{Valid: true}
	}
	return signup.Validation{Errors: errs}
}

// Attempt validates in, authenticates and reports the outcome. On success
// the user is sent to the dashboard.
func Attempt(ctx context.Context, auth Authenticator, in Input, nav signup.Navigator, notify signup.Notifier) (signup.AccountRef, error) {
	if v := Validate(in); !v.Valid {
		return signup.AccountRef{}, v.Errors
	}

	ref, err := auth.Authenticate(ctx, in.Email, in.Password)
	Settle(err, nav, notify)
	if err != nil {
		return signup.AccountRef{}, fmt.Errorf("sign in: %w", err)
	}
	return ref, nil
}

// Settle reports an authentication outcome. Split from Attempt so an event
// loop can authenticate off-loop and report on it.
func Settle(err error, nav signup.Navigator, notify signup.Notifier) {
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			notify.Notify(signup.KindError, "Invalid email or password.")
			return
		}
		notify.Notify(signup.KindError, "Login failed. Please try again.")
		return
	}

	notify.Notify(signup.KindSuccess, "Login successful! Welcome back.")
	nav.GoTo(signup.RouteDashboard)
}
