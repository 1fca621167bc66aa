package flusher

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/todolist/internal/db/jsondb"
	"github.com/patric-chuzhbe/todolist/internal/logger"
	"github.com/patric-chuzhbe/todolist/internal/todo"
)

type failingStorage struct{}

func (f *failingStorage) Flush() error {
	return errors.New("disk full")
}

func TestFlusherPersistsPeriodically(t *testing.T) {
	require.NoError(t, logger.Init("debug"))

	fileName := filepath.Join(t.TempDir(), "db_test.json")
	db, err := jsondb.New(fileName)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	theFlusher := New(db, 5*time.Millisecond)
	theFlusher.Run(ctx)

	_, err = db.CreateTodo(context.Background(), &todo.Todo{ID: "t1", Title: "Persisted", OwnerID: "u1"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		reopened, err := jsondb.New(fileName)
		if err != nil {
			return false
		}
		_, found, err := reopened.FindTodo(context.Background(), "u1", 1)
		return err == nil && found
	}, time.Second, 10*time.Millisecond)
}

func TestFlusherReportsErrors(t *testing.T) {
	require.NoError(t, logger.Init("debug"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	theFlusher := New(&failingStorage{}, 5*time.Millisecond)

	var reported atomic.Int64
	theFlusher.ListenErrors(func(err error) {
		reported.Add(1)
	})
	theFlusher.Run(ctx)

	assert.Eventually(t, func() bool {
		return reported.Load() > 0
	}, time.Second, 10*time.Millisecond)
}
