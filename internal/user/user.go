// Package user defines the user model used throughout the application,
// particularly for authentication and todo ownership.
package user

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Name is the display name supplied at registration, 3 to 30 characters.
	Name string `json:"name"`

	// Email is the unique login identifier of the account.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the account password.
	// The raw password is never stored.
	PasswordHash string `json:"-"`
}
