package auth

// AuthError is an identity service failure surfaced to the user.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &AuthError{Op: op, Err: err}
}

// Messages recorded when an operation fails without a message of its own.
const (
	msgProfileFetch = "Failed to fetch user data. Please try again."
	msgRegister     = "Failed to register. Please try again."
	msgLogin        = "Failed to login. Please check your credentials."
	msgLogout       = "Failed to logout. Please try again."
)

func messageOr(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
