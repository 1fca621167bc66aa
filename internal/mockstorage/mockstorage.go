// Package mockstorage provides a testify-based mock implementation of
// the storage interface. It is used for unit testing HTTP handlers by
// simulating storage behavior, including failure paths the real
// backends cannot produce on demand.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/todolist/internal/todo"
	"github.com/patric-chuzhbe/todolist/internal/user"
)

// StorageMock is a testify mock that implements the full storage
// contract.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks persisting a new user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// FindUserByEmail mocks the email lookup.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetUserByID mocks the id lookup.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// CreateTodo mocks persisting a new todo.
func (m *StorageMock) CreateTodo(ctx context.Context, item *todo.Todo) (*todo.Todo, error) {
	args := m.Called(ctx, item)
	created, _ := args.Get(0).(*todo.Todo)
	return created, args.Error(1)
}

// FindTodo mocks the owner-scoped todo lookup.
func (m *StorageMock) FindTodo(ctx context.Context, ownerID string, displayID int) (*todo.Todo, bool, error) {
	args := m.Called(ctx, ownerID, displayID)
	item, _ := args.Get(0).(*todo.Todo)
	return item, args.Bool(1), args.Error(2)
}

// ListTodos mocks the owner-scoped paginated listing.
func (m *StorageMock) ListTodos(ctx context.Context, ownerID string, offset, limit int) ([]*todo.Todo, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	todos, _ := args.Get(0).([]*todo.Todo)
	return todos, args.Error(1)
}

// CountTodos mocks the owner-scoped count.
func (m *StorageMock) CountTodos(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// UpdateTodo mocks the owner-scoped atomic update.
func (m *StorageMock) UpdateTodo(
	ctx context.Context,
	ownerID string,
	displayID int,
	upd todo.Update,
) (*todo.Todo, bool, error) {
	args := m.Called(ctx, ownerID, displayID, upd)
	item, _ := args.Get(0).(*todo.Todo)
	return item, args.Bool(1), args.Error(2)
}

// DeleteTodo mocks the owner-scoped atomic delete.
func (m *StorageMock) DeleteTodo(ctx context.Context, ownerID string, displayID int) (bool, error) {
	args := m.Called(ctx, ownerID, displayID)
	return args.Bool(0), args.Error(1)
}

// GetNumberOfUsers mocks the global user counter.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfTodos mocks the global todo counter.
func (m *StorageMock) GetNumberOfTodos(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
