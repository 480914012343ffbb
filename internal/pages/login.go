package pages

import (
	"context"
	"strings"
	"time"

	"github.com/portfi/portfi-portal/internal/models"
)

// Mode is the login form's display mode.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// Authenticator is the subset of the auth context used by the login form.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.Identity, error)
	Register(ctx context.Context, email, password, name, dob string) (*models.Identity, error)
	Error() string
}

// LoginForm is one submission of the login/register form.
type LoginForm struct {
	Mode            Mode
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	DateOfBirth     string

	Errors    ValidationErrors
	AuthError string
}

// NewLoginForm creates an empty form in mode.
func NewLoginForm(mode Mode) *LoginForm {
	if mode != ModeRegister {
		mode = ModeLogin
	}
	return &LoginForm{Mode: mode}
}

// Toggle switches between login and register and clears errors.
func (f *LoginForm) Toggle() {
	if f.Mode == ModeLogin {
		f.Mode = ModeRegister
	} else {
		f.Mode = ModeLogin
	}
	f.Errors = nil
	f.AuthError = ""
}

// IsRegister reports whether the form is in register mode.
func (f *LoginForm) IsRegister() bool {
	return f.Mode == ModeRegister
}

// Validate checks the form as of now. Login mode only requires a password;
// strength, confirmation and age apply to registration.
func (f *LoginForm) Validate(now time.Time) ValidationErrors {
	var errs ValidationErrors

	if f.IsRegister() && strings.TrimSpace(f.Name) == "" {
		errs.add("name", MsgNameRequired)
	}

	if err := ValidateEmail(f.Email); err != nil {
		errs = append(errs, err.(*ValidationError))
	}

	if !f.IsRegister() {
		if f.Password == "" {
			errs.add("password", MsgPasswordRequired)
		}
		return errs
	}

	if err := ValidatePassword(f.Password); err != nil {
		errs = append(errs, err.(*ValidationError))
	}
	if f.Password != f.ConfirmPassword {
		errs.add("confirmPassword", MsgPasswordMismatch)
	}

	if strings.TrimSpace(f.DateOfBirth) == "" {
		errs.add("dateOfBirth", MsgDOBRequired)
	} else if dob, err := ParseDOB(f.DateOfBirth); err != nil {
		errs.add("dateOfBirth", MsgInvalidDOB)
	} else if Age(dob, now) < MinimumAge {
		errs.add("dateOfBirth", MsgUnderage)
	}

	return errs
}

// Submit validates, then logs in or registers. Validation failures return
// ValidationErrors without calling auth. Auth failures record the auth
// context's surfaced message in AuthError.
func (f *LoginForm) Submit(ctx context.Context, auth Authenticator, now time.Time) (*models.Identity, error) {
	f.AuthError = ""
	f.Errors = f.Validate(now)
	if len(f.Errors) > 0 {
		return nil, f.Errors
	}

	email := strings.TrimSpace(f.Email)
	var (
		id  *models.Identity
		err error
	)
	if f.IsRegister() {
		id, err = auth.Register(ctx, email, f.Password, strings.TrimSpace(f.Name), strings.TrimSpace(f.DateOfBirth))
	} else {
		id, err = auth.Login(ctx, email, f.Password)
	}
	if err != nil {
		f.AuthError = auth.Error()
		if f.AuthError == "" {
			f.AuthError = err.Error()
		}
		return nil, err
	}
	return id, nil
}
