// Package todo defines the todo item model shared by the service and
// storage layers.
package todo

import "time"

// Todo represents a single todo item owned by exactly one user.
type Todo struct {
	// ID is the internal opaque identifier, meaning a UUID.
	ID string `json:"-"`

	// DisplayID is the sequential integer exposed to clients. It is
	// unique across the whole collection, assigned once at creation and
	// never reused.
	DisplayID int `json:"id"`

	// Title is the trimmed todo title, 3 to 50 characters.
	Title string `json:"title"`

	// Description is optional free-form text.
	Description string `json:"description"`

	// OwnerID references the user that created the todo. Every read and
	// mutation is scoped to this field.
	OwnerID string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Update carries a partial update of a todo. A nil field means "leave
// unchanged".
type Update struct {
	Title       *string
	Description *string
}
