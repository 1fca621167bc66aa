// Package jsondb implements the storage contract on top of a JSON file.
// The whole dataset lives in a mutex-guarded in-memory cache that is
// snapshotted to disk on Flush and Close.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/todolist/internal/db/storage"
	"github.com/patric-chuzhbe/todolist/internal/todo"
	"github.com/patric-chuzhbe/todolist/internal/user"
)

// CacheStruct is the serialized layout of the database file.
type CacheStruct struct {
	// Users maps user id to account.
	Users map[string]*user.User

	// EmailToUserID is the uniqueness index over account emails.
	EmailToUserID map[string]string

	// Todos maps display id to todo. Display ids are unique across the
	// whole collection, so this doubles as the uniqueness index the
	// sequential allocator relies on.
	Todos map[int]*todo.Todo

	// NextTodoID is the next display id to assign. It only grows, so
	// display ids are never reused even after deletion.
	NextTodoID int
}

// JSONDB is a file-backed storage with an in-memory cache.
type JSONDB struct {
	fileName string

	mu    sync.RWMutex
	Cache CacheStruct
}

// NewCache returns an empty, fully initialized cache.
func NewCache() CacheStruct {
	return CacheStruct{
		Users:         map[string]*user.User{},
		EmailToUserID: map[string]string{},
		Todos:         map[int]*todo.Todo{},
		NextTodoID:    1,
	}
}

func initDBFile(fileName string) error {
	cache := NewCache()

	return writeToJSONFile(fileName, &cache)
}

func writeToJSONFile(fileName string, cache *CacheStruct) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(jsonData); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New opens the database file, creating and initializing it when absent.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := initDBFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// CreateUser persists a new user. Email uniqueness is enforced here, at
// the store level.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.Cache.EmailToUserID[usr.Email]; exists {
		return "", storage.ErrEmailAlreadyExists
	}

	stored := *usr
	db.Cache.Users[stored.ID] = &stored
	db.Cache.EmailToUserID[stored.Email] = stored.ID

	return stored.ID, nil
}

// FindUserByEmail returns the user registered under email, if any.
func (db *JSONDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	userID, found := db.Cache.EmailToUserID[email]
	if !found {
		return nil, false, nil
	}

	usr := *db.Cache.Users[userID]

	return &usr, true, nil
}

// GetUserByID returns the user with the given id, if any.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	copied := *usr

	return &copied, true, nil
}

// CreateTodo persists a new todo. The display id is taken from the
// monotonic counter under the same lock as the insert, so concurrent
// creations can never observe the same value.
func (db *JSONDB) CreateTodo(ctx context.Context, item *todo.Todo) (*todo.Todo, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now()

	stored := *item
	stored.DisplayID = db.Cache.NextTodoID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	db.Cache.NextTodoID++

	db.Cache.Todos[stored.DisplayID] = &stored

	copied := stored

	return &copied, nil
}

// FindTodo returns the todo matching both display id and owner.
func (db *JSONDB) FindTodo(ctx context.Context, ownerID string, displayID int) (*todo.Todo, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	item, found := db.Cache.Todos[displayID]
	if !found || item.OwnerID != ownerID {
		return nil, false, nil
	}

	copied := *item

	return &copied, true, nil
}

func (db *JSONDB) ownerTodosLocked(ownerID string) []*todo.Todo {
	todos := funk.Filter(
		funk.Values(db.Cache.Todos),
		func(item *todo.Todo) bool {
			return item.OwnerID == ownerID
		},
	).([]*todo.Todo)

	sort.Slice(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return todos[i].DisplayID > todos[j].DisplayID
	})

	return todos
}

// ListTodos returns the owner's todos sorted by creation time descending.
func (db *JSONDB) ListTodos(ctx context.Context, ownerID string, offset, limit int) ([]*todo.Todo, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	todos := db.ownerTodosLocked(ownerID)

	if offset >= len(todos) {
		return []*todo.Todo{}, nil
	}
	todos = todos[offset:]
	if limit < len(todos) {
		todos = todos[:limit]
	}

	result := make([]*todo.Todo, 0, len(todos))
	for _, item := range todos {
		copied := *item
		result = append(result, &copied)
	}

	return result, nil
}

// CountTodos returns the number of todos owned by ownerID.
func (db *JSONDB) CountTodos(ctx context.Context, ownerID string) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.ownerTodosLocked(ownerID))), nil
}

// UpdateTodo applies a partial update to the todo matching both display
// id and owner. The lookup and the mutation happen under one lock.
func (db *JSONDB) UpdateTodo(
	ctx context.Context,
	ownerID string,
	displayID int,
	upd todo.Update,
) (*todo.Todo, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	item, found := db.Cache.Todos[displayID]
	if !found || item.OwnerID != ownerID {
		return nil, false, nil
	}

	if upd.Title != nil {
		item.Title = *upd.Title
	}
	if upd.Description != nil {
		item.Description = *upd.Description
	}
	item.UpdatedAt = time.Now()

	copied := *item

	return &copied, true, nil
}

// DeleteTodo removes the todo matching both display id and owner.
func (db *JSONDB) DeleteTodo(ctx context.Context, ownerID string, displayID int) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	item, found := db.Cache.Todos[displayID]
	if !found || item.OwnerID != ownerID {
		return false, nil
	}

	delete(db.Cache.Todos, displayID)

	return true, nil
}

// GetNumberOfUsers returns the total number of registered users.
func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}

// GetNumberOfTodos returns the total number of stored todos.
func (db *JSONDB) GetNumberOfTodos(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Todos)), nil
}

// Flush snapshots the cache to the database file.
func (db *JSONDB) Flush() error {
	if db.fileName == "" {
		return nil
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, &db.Cache)
}

// Ping reports storage availability. The cache is always available.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close persists the cache and releases the database.
func (db *JSONDB) Close() error {
	return db.Flush()
}
