// Package flusher runs a background goroutine that periodically
// snapshots the file-backed storage to disk, so a crash loses at most
// one flush interval of writes.
package flusher

import (
	"context"
	"time"

	"github.com/patric-chuzhbe/todolist/internal/logger"
)

type flushableStorage interface {
	Flush() error
}

// Flusher periodically persists a flushable storage.
type Flusher struct {
	db           flushableStorage
	interval     time.Duration
	errorChannel chan error
}

// New creates a Flusher snapshotting db every interval.
func New(db flushableStorage, interval time.Duration) *Flusher {
	return &Flusher{
		db:           db,
		interval:     interval,
		errorChannel: make(chan error, 1),
	}
}

// ListenErrors invokes callback for every flush failure until the error
// channel is closed.
func (f *Flusher) ListenErrors(callback func(error)) {
	go func() {
		for err := range f.errorChannel {
			callback(err)
		}
	}()
}

// Run starts the flush loop. It performs a final snapshot and closes the
// error channel when ctx is canceled.
func (f *Flusher) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				if err := f.db.Flush(); err != nil {
					f.errorChannel <- err
				}
				close(f.errorChannel)

				return
			case <-ticker.C:
				if err := f.db.Flush(); err != nil {
					select {
					case f.errorChannel <- err:
					default:
					}
					continue
				}
				logger.Log.Debugln("storage snapshot flushed")
			}
		}
	}()
}
