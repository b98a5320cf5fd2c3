package model

// A User represents an account record.
// The email is the unique credential identifier and the password
// is stored as an argon2 hash.
type User struct {
	Base `msgpack:",inline" storm:"inline"`

	Email    string `msgpack:"email"    storm:"unique"`
	Password string `msgpack:"password,omitempty"`

	// Unix timestamp of the last password change, used to revoke
	// sessions opened before the change.
	PasswordUpdatedAt int64 `msgpack:"password_updated_at"`
}

// NewUser returns a new empty user.
func NewUser() *User {
	return &User{}
}
