package models

// Identity is the authenticated principal held by the auth context.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"-"`
}

// UserProfile is the profile document stored per identity at registration.
type UserProfile struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	DOB       string `json:"dob"`
	CreatedAt string `json:"createdAt"`
}

// Account is a locally stored credential.
type Account struct {
	ID           string `json:"id" badgerhold:"key"`
	Email        string `json:"email" badgerholdIndex:"Email"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"created_at"`
}

// ProfileRecord persists a UserProfile keyed by identity ID.
type ProfileRecord struct {
	UserID  string `badgerhold:"key"`
	Profile UserProfile
}
