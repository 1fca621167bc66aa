// Package app initializes and runs the main application service.
// It configures logging, storage, authentication, and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/todolist/internal/auth"
	"github.com/patric-chuzhbe/todolist/internal/config"
	"github.com/patric-chuzhbe/todolist/internal/credentials"
	"github.com/patric-chuzhbe/todolist/internal/db/jsondb"
	"github.com/patric-chuzhbe/todolist/internal/db/memorystorage"
	"github.com/patric-chuzhbe/todolist/internal/db/postgresdb"
	"github.com/patric-chuzhbe/todolist/internal/db/storage"
	"github.com/patric-chuzhbe/todolist/internal/flusher"
	"github.com/patric-chuzhbe/todolist/internal/ipchecker"
	"github.com/patric-chuzhbe/todolist/internal/logger"
	"github.com/patric-chuzhbe/todolist/internal/router"
	"github.com/patric-chuzhbe/todolist/internal/service"
)

const (
	storageTypeUnknown = iota
	storageTypePostgresql
	storageTypeFile
	storageTypeMemory
)

// App encapsulates the configuration, HTTP handler, storage backend and
// background flusher needed to run the todo service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	dbFlusher   *flusher.Flusher
	stopFlusher context.CancelFunc
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - constructing the credentials service, auth middleware and router
// - starting the background storage flusher for the file backend
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	tokenSigningSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.TokenSigningSecretKey)
	if err != nil {
		return nil, fmt.Errorf("decoding token signing secret: %w", err)
	}

	theCredentials := credentials.New(tokenSigningSecretKey, app.cfg.TokenExpiration)

	statsGate, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	if fileDB, ok := app.db.(*jsondb.JSONDB); ok {
		app.dbFlusher = flusher.New(fileDB, app.cfg.FlushInterval)
		flusherRunCtx, stopFlusher := context.WithCancel(context.Background())
		app.stopFlusher = stopFlusher

		app.dbFlusher.Run(flusherRunCtx)
		app.dbFlusher.ListenErrors(func(err error) {
			logger.Log.Debugln("Error passed from the `app.dbFlusher.ListenErrors()`:", zap.Error(err))
		})
	}

	app.httpHandler = router.New(
		service.New(app.db, theCredentials),
		app.db,
		auth.New(theCredentials),
		statsGate,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Saving database and exiting...")
		if a.stopFlusher != nil {
			a.stopFlusher()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return storageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return storageTypeFile
	}

	return storageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case storageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case storageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case storageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
