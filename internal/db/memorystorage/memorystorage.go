// Package memorystorage provides an in-memory storage backend. It reuses
// the jsondb cache without ever touching the filesystem, which also
// makes it the backend of choice for tests.
package memorystorage

import (
	"github.com/patric-chuzhbe/todolist/internal/db/jsondb"
)

// MemoryStorage keeps the whole dataset in memory only.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New creates an empty in-memory storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.NewCache(),
		},
	}, nil
}

// Close releases nothing: there is no file behind the cache.
func (theStorage *MemoryStorage) Close() error {
	return nil
}
