// Package service implements the application's business rules: account
// registration and login, and the owner-scoped todo operations with
// input validation and pagination.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/todolist/internal/apperr"
	"github.com/patric-chuzhbe/todolist/internal/db/storage"
	"github.com/patric-chuzhbe/todolist/internal/models"
	"github.com/patric-chuzhbe/todolist/internal/todo"
	"github.com/patric-chuzhbe/todolist/internal/user"

	validator "github.com/go-playground/validator/v10"
)

// PageSize is the fixed number of todos per list page.
const PageSize = 10

const (
	titleMinLength = 3
	titleMaxLength = 50
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

type todoKeeper interface {
	CreateTodo(ctx context.Context, item *todo.Todo) (*todo.Todo, error)
	FindTodo(ctx context.Context, ownerID string, displayID int) (*todo.Todo, bool, error)
	ListTodos(ctx context.Context, ownerID string, offset, limit int) ([]*todo.Todo, error)
	CountTodos(ctx context.Context, ownerID string) (int64, error)
	UpdateTodo(ctx context.Context, ownerID string, displayID int, upd todo.Update) (*todo.Todo, bool, error)
	DeleteTodo(ctx context.Context, ownerID string, displayID int) (bool, error)
}

type statsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)
	GetNumberOfTodos(ctx context.Context) (int64, error)
}

type serviceStorage interface {
	userKeeper
	todoKeeper
	statsKeeper
}

type credentialsProvider interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	BuildToken(userID string) (string, error)
}

// Service executes the domain operations on top of a storage backend and
// an injected credentials provider.
type Service struct {
	db          serviceStorage
	credentials credentialsProvider
	validate    *validator.Validate
}

// New creates a Service.
func New(db serviceStorage, credentials credentialsProvider) *Service {
	return &Service{
		db:          db,
		credentials: credentials,
		validate:    validator.New(),
	}
}

// errInvalidLogin is shared by the "unknown email" and "wrong password"
// paths so that responses do not reveal whether an account exists.
var errInvalidLogin = apperr.New(apperr.KindUnauthenticated, "Invalid email account")

// Register creates a new account and returns a signed token for it.
func (s *Service) Register(ctx context.Context, request *models.RegisterRequest) (*models.TokenResponse, error) {
	if err := s.validate.Struct(request); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return nil, apperr.Newf(
				apperr.KindBadRequest,
				"invalid value for field %q",
				strings.ToLower(validationErrs[0].Field()),
			)
		}

		return nil, fmt.Errorf("validating registration request: %w", err)
	}

	passwordHash, err := s.credentials.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	userID, err := s.db.CreateUser(ctx, &user.User{
		ID:           uuid.New().String(),
		Name:         request.Name,
		Email:        request.Email,
		PasswordHash: passwordHash,
	})
	if errors.Is(err, storage.ErrEmailAlreadyExists) {
		return nil, apperr.Wrap(apperr.KindConflict, "email address already registered", err)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return s.issueToken(userID)
}

// Login verifies credentials and returns a signed token. The error for
// an unknown email and for a wrong password is identical.
func (s *Service) Login(ctx context.Context, request *models.LoginRequest) (*models.TokenResponse, error) {
	if request.Email == "" || request.Password == "" {
		return nil, errInvalidLogin
	}

	usr, found, err := s.db.FindUserByEmail(ctx, request.Email)
	if err != nil {
		return nil, fmt.Errorf("looking up user by email: %w", err)
	}
	if !found {
		return nil, errInvalidLogin
	}

	if !s.credentials.VerifyPassword(usr.PasswordHash, request.Password) {
		return nil, errInvalidLogin
	}

	return s.issueToken(usr.ID)
}

func (s *Service) issueToken(userID string) (*models.TokenResponse, error) {
	token, err := s.credentials.BuildToken(userID)
	if err != nil {
		return nil, fmt.Errorf("building token: %w", err)
	}

	return &models.TokenResponse{Token: token}, nil
}

// validateTitle applies the title rules shared by create and update: the
// value is trimmed, and the trimmed form must be 3 to 50 characters. The
// returned string is what gets persisted.
func validateTitle(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	switch length := utf8.RuneCountInString(trimmed); {
	case length == 0:
		return "", apperr.New(apperr.KindBadRequest, "Title cannot be only whitespace")
	case length < titleMinLength:
		return "", apperr.New(apperr.KindBadRequest, "Title must be at least 3 characters long")
	case length > titleMaxLength:
		return "", apperr.New(apperr.KindBadRequest, "Title cannot exceed 50 characters")
	}

	return trimmed, nil
}

// CreateTodo validates the title, assigns ownership to the requester and
// persists the todo.
func (s *Service) CreateTodo(
	ctx context.Context,
	ownerID string,
	request *models.TodoWriteRequest,
) (*models.TodoItem, error) {
	if request.Title == nil {
		return nil, apperr.New(apperr.KindBadRequest, "Title is required")
	}

	title, err := validateTitle(*request.Title)
	if err != nil {
		return nil, err
	}

	var description string
	if request.Description != nil {
		description = *request.Description
	}

	created, err := s.db.CreateTodo(ctx, &todo.Todo{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating todo: %w", err)
	}

	return toTodoItem(created), nil
}

// ListTodos returns one page of the requester's todos, newest first.
// Pages outside [1, pageCount] are silently clamped into the range.
func (s *Service) ListTodos(ctx context.Context, ownerID string, page int) (*models.TodoListResponse, error) {
	totalTodos, err := s.db.CountTodos(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("counting todos: %w", err)
	}

	pageCount := int((totalTodos + PageSize - 1) / PageSize)
	if pageCount < 1 {
		pageCount = 1
	}

	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	todos, err := s.db.ListTodos(ctx, ownerID, (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}

	data := make([]models.TodoItem, 0, len(todos))
	for _, item := range todos {
		data = append(data, *toTodoItem(item))
	}

	return &models.TodoListResponse{
		Data:       data,
		Page:       page,
		PageCount:  pageCount,
		TotalTodos: totalTodos,
	}, nil
}

// GetTodo returns the requester's todo with the given display id. A todo
// owned by someone else is indistinguishable from a missing one.
func (s *Service) GetTodo(ctx context.Context, ownerID string, displayID int) (*models.TodoDetailResponse, error) {
	item, found, err := s.db.FindTodo(ctx, ownerID, displayID)
	if err != nil {
		return nil, fmt.Errorf("finding todo: %w", err)
	}
	if !found {
		return nil, errNoTodo(displayID)
	}

	return &models.TodoDetailResponse{Todo: item}, nil
}

// UpdateTodo applies a partial update to the requester's todo. At least
// one of title and description must be present, and a present title is
// re-validated before being stored.
func (s *Service) UpdateTodo(
	ctx context.Context,
	ownerID string,
	displayID int,
	request *models.TodoWriteRequest,
) (*models.TodoItem, error) {
	if request.Title == nil && request.Description == nil {
		return nil, apperr.New(apperr.KindBadRequest, "At least one of Title or Description must be provided for update")
	}

	upd := todo.Update{Description: request.Description}
	if request.Title != nil {
		title, err := validateTitle(*request.Title)
		if err != nil {
			return nil, err
		}
		upd.Title = &title
	}

	updated, found, err := s.db.UpdateTodo(ctx, ownerID, displayID, upd)
	if err != nil {
		return nil, fmt.Errorf("updating todo: %w", err)
	}
	if !found {
		return nil, errNoTodo(displayID)
	}

	// The scoped filter already guarantees ownership; this assertion
	// only guards against a storage backend violating its contract.
	if updated.OwnerID != ownerID {
		return nil, apperr.New(apperr.KindForbidden, "Forbidden")
	}

	return toTodoItem(updated), nil
}

// DeleteTodo permanently removes the requester's todo.
func (s *Service) DeleteTodo(ctx context.Context, ownerID string, displayID int) error {
	found, err := s.db.DeleteTodo(ctx, ownerID, displayID)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	if !found {
		return errNoTodo(displayID)
	}

	return nil
}

// Stats returns collection-wide counters for the internal stats endpoint.
func (s *Service) Stats(ctx context.Context) (*models.StatsResponse, error) {
	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	todos, err := s.db.GetNumberOfTodos(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting all todos: %w", err)
	}

	return &models.StatsResponse{Users: users, Todos: todos}, nil
}

func errNoTodo(displayID int) *apperr.Error {
	return apperr.Newf(apperr.KindNotFound, "No Todo with id %d", displayID)
}

func toTodoItem(item *todo.Todo) *models.TodoItem {
	return &models.TodoItem{
		ID:          item.DisplayID,
		Title:       item.Title,
		Description: item.Description,
	}
}
