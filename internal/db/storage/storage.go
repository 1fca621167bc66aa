// Package storage declares the persistence contract shared by all
// storage backends, plus the sentinel errors they report.
package storage

import (
	"context"
	"errors"

	"github.com/patric-chuzhbe/todolist/internal/todo"
	"github.com/patric-chuzhbe/todolist/internal/user"
)

// ErrEmailAlreadyExists is reported by CreateUser when the email is
// already registered. Email uniqueness is enforced by the store.
var ErrEmailAlreadyExists = errors.New("email already registered")

// ErrDisplayIDConflict is reported by CreateTodo when the sequential id
// allocation lost the race against concurrent creations more times than
// the backend was willing to retry.
var ErrDisplayIDConflict = errors.New("display id allocation conflict")

// Storage is the composed persistence contract. Consumers declare the
// narrow slices they need; backends implement the whole set.
type Storage interface {
	// CreateUser persists a new user and returns its id.
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	// FindUserByEmail returns the user registered under email, if any.
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	// GetUserByID returns the user with the given opaque id, if any.
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)

	// CreateTodo persists a new todo, assigning the next sequential
	// display id atomically with the insert. The stored todo, including
	// the assigned display id and timestamps, is returned.
	CreateTodo(ctx context.Context, item *todo.Todo) (*todo.Todo, error)

	// FindTodo returns the todo matching both display id and owner.
	FindTodo(ctx context.Context, ownerID string, displayID int) (*todo.Todo, bool, error)

	// ListTodos returns the owner's todos sorted by creation time
	// descending, skipping offset items and returning at most limit.
	ListTodos(ctx context.Context, ownerID string, offset, limit int) ([]*todo.Todo, error)

	// CountTodos returns the number of todos owned by ownerID.
	CountTodos(ctx context.Context, ownerID string) (int64, error)

	// UpdateTodo applies a partial update to the todo matching both
	// display id and owner, as one indivisible operation. The second
	// return value is false when no such todo exists.
	UpdateTodo(ctx context.Context, ownerID string, displayID int, upd todo.Update) (*todo.Todo, bool, error)

	// DeleteTodo removes the todo matching both display id and owner, as
	// one indivisible operation. It returns false when no such todo
	// exists.
	DeleteTodo(ctx context.Context, ownerID string, displayID int) (bool, error)

	// GetNumberOfUsers returns the total number of registered users.
	GetNumberOfUsers(ctx context.Context) (int64, error)

	// GetNumberOfTodos returns the total number of stored todos.
	GetNumberOfTodos(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
