// Package postgresdb provides a PostgreSQL-based implementation of the
// storage interface. Ownership scoping is pushed into the SQL filters,
// so a lookup and its authorization happen in a single statement, and
// the sequential display id is assigned inside the insert itself, backed
// by a UNIQUE constraint plus a bounded retry loop.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/todolist/internal/db/storage"
	"github.com/patric-chuzhbe/todolist/internal/todo"
	"github.com/patric-chuzhbe/todolist/internal/user"
)

// displayIDAllocationRetries bounds how many times an insert is retried
// when the display id allocation loses against a concurrent creation.
const displayIDAllocationRetries = 5

// uniqueViolationCode is the PostgreSQL error code for a violated UNIQUE
// constraint.
const uniqueViolationCode = "23505"

// PostgresDB is a PostgreSQL-backed implementation of the todo storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// New establishes a connection to the PostgreSQL database, runs schema
// migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("setting migration dialect: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return result, nil
}

func (db *PostgresDB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.connectionTimeout)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateUser persists a new user, relying on the unique index over
// emails to reject duplicates.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash) VALUES ($1, $2, $3, $4)`,
		usr.ID,
		usr.Name,
		usr.Email,
		usr.PasswordHash,
	)
	if isUniqueViolation(err) {
		return "", storage.ErrEmailAlreadyExists
	}
	if err != nil {
		return "", err
	}

	return usr.ID, nil
}

// FindUserByEmail returns the user registered under email, if any.
func (db *PostgresDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	usr := &user.User{}
	err := db.database.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&usr.ID, &usr.Name, &usr.Email, &usr.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return usr, true, nil
}

// GetUserByID returns the user with the given id, if any.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	usr := &user.User{}
	err := db.database.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash FROM users WHERE id = $1`,
		userID,
	).Scan(&usr.ID, &usr.Name, &usr.Email, &usr.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return usr, true, nil
}

// CreateTodo persists a new todo. The display id is computed by the
// insert statement itself; the UNIQUE constraint on display_id turns a
// lost race into a retriable unique violation instead of a duplicate id.
func (db *PostgresDB) CreateTodo(ctx context.Context, item *todo.Todo) (*todo.Todo, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	stored := *item
	for attempt := 0; attempt < displayIDAllocationRetries; attempt++ {
		err := db.database.QueryRowContext(
			ctx,
			`
				INSERT INTO todos (id, display_id, title, description, owner_id)
					VALUES (
						$1,
						(SELECT COALESCE(MAX(display_id), 0) + 1 FROM todos),
						$2,
						$3,
						$4
					)
					RETURNING display_id, created_at, updated_at
			`,
			stored.ID,
			stored.Title,
			stored.Description,
			stored.OwnerID,
		).Scan(&stored.DisplayID, &stored.CreatedAt, &stored.UpdatedAt)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &stored, nil
	}

	return nil, storage.ErrDisplayIDConflict
}

// FindTodo returns the todo matching both display id and owner.
func (db *PostgresDB) FindTodo(ctx context.Context, ownerID string, displayID int) (*todo.Todo, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	item := &todo.Todo{}
	err := db.database.QueryRowContext(
		ctx,
		`
			SELECT id, display_id, title, description, owner_id, created_at, updated_at
				FROM todos
				WHERE display_id = $1 AND owner_id = $2
		`,
		displayID,
		ownerID,
	).Scan(
		&item.ID,
		&item.DisplayID,
		&item.Title,
		&item.Description,
		&item.OwnerID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return item, true, nil
}

// ListTodos returns the owner's todos sorted by creation time descending.
func (db *PostgresDB) ListTodos(ctx context.Context, ownerID string, offset, limit int) ([]*todo.Todo, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT id, display_id, title, description, owner_id, created_at, updated_at
				FROM todos
				WHERE owner_id = $1
				ORDER BY created_at DESC, display_id DESC
				OFFSET $2 LIMIT $3
		`,
		ownerID,
		offset,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*todo.Todo{}
	for rows.Next() {
		item := &todo.Todo{}
		err := rows.Scan(
			&item.ID,
			&item.DisplayID,
			&item.Title,
			&item.Description,
			&item.OwnerID,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	return result, rows.Err()
}

// CountTodos returns the number of todos owned by ownerID.
func (db *PostgresDB) CountTodos(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var count int64
	err := db.database.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM todos WHERE owner_id = $1`,
		ownerID,
	).Scan(&count)

	return count, err
}

// UpdateTodo applies a partial update to the todo matching both display
// id and owner as a single statement.
func (db *PostgresDB) UpdateTodo(
	ctx context.Context,
	ownerID string,
	displayID int,
	upd todo.Update,
) (*todo.Todo, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	item := &todo.Todo{}
	err := db.database.QueryRowContext(
		ctx,
		`
			UPDATE todos
				SET title = COALESCE($3, title),
					description = COALESCE($4, description),
					updated_at = now()
				WHERE display_id = $1 AND owner_id = $2
				RETURNING id, display_id, title, description, owner_id, created_at, updated_at
		`,
		displayID,
		ownerID,
		upd.Title,
		upd.Description,
	).Scan(
		&item.ID,
		&item.DisplayID,
		&item.Title,
		&item.Description,
		&item.OwnerID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return item, true, nil
}

// DeleteTodo removes the todo matching both display id and owner as a
// single statement.
func (db *PostgresDB) DeleteTodo(ctx context.Context, ownerID string, displayID int) (bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM todos WHERE display_id = $1 AND owner_id = $2`,
		displayID,
		ownerID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// GetNumberOfUsers returns the total number of registered users.
func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var count int64
	err := db.database.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)

	return count, err
}

// GetNumberOfTodos returns the total number of stored todos.
func (db *PostgresDB) GetNumberOfTodos(ctx context.Context) (int64, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var count int64
	err := db.database.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&count)

	return count, err
}

// Ping verifies database connectivity.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.database.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}
