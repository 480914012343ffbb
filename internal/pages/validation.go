// Package pages holds the state and validation of the portal's interactive pages.
//
// Handlers render these types; they never mutate page state directly.
package pages

import (
	"regexp"
	"strings"
	"time"
)

// ValidationError is a local input failure shown inline next to Field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors collects every failure of a form.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// For returns the message recorded for field, or "".
func (v ValidationErrors) For(field string) string {
	for _, e := range v {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, &ValidationError{Field: field, Message: message})
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinimumAge is the youngest age allowed to register.
const MinimumAge = 18

// Password symbols; a strong password contains one of these.
const passwordSymbols = "@$!%*?&"

// Messages shown by the login form.
const (
	MsgNameRequired     = "Name is required"
	MsgEmailRequired    = "Email is required"
	MsgInvalidEmail     = "invalid email"
	MsgPasswordRequired = "Password is required"
	MsgWeakPassword     = "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	MsgPasswordMismatch = "Passwords do not match"
	MsgDOBRequired      = "Date of birth is required"
	MsgInvalidDOB       = "Date of birth must be a date (YYYY-MM-DD)"
	MsgUnderage         = "You must be at least 18 years old to register"
)

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: MsgEmailRequired}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: MsgInvalidEmail}
	}
	return nil
}

// StrongPassword reports whether pw has at least 8 characters drawn from
// letters, digits and @$!%*?&, including one of each class.
func StrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

// ValidatePassword checks password strength.
func ValidatePassword(pw string) error {
	if pw == "" {
		return &ValidationError{Field: "password", Message: MsgPasswordRequired}
	}
	if !StrongPassword(pw) {
		return &ValidationError{Field: "password", Message: MsgWeakPassword}
	}
	return nil
}

// Age returns the whole years between dob and now by calendar
// year/month/day difference.
func Age(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// ParseDOB parses a YYYY-MM-DD date of birth.
func ParseDOB(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
