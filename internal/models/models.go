// Package models contains the request and response DTOs of the HTTP API.
package models

import "github.com/patric-chuzhbe/todolist/internal/todo"

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries the signed bearer token issued on registration
// and login.
type TokenResponse struct {
	Token string `json:"token"`
}

// TodoWriteRequest is the body of POST /api/v1/todos and
// PUT /api/v1/todos/{id}. Pointer fields distinguish "absent" from
// "present but empty".
type TodoWriteRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// TodoItem is the compact todo representation returned by create, update
// and list operations.
type TodoItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TodoListResponse is the paginated body of GET /api/v1/todos.
type TodoListResponse struct {
	Data       []TodoItem `json:"data"`
	Page       int        `json:"page"`
	PageCount  int        `json:"pageCount"`
	TotalTodos int64      `json:"totalTodos"`
}

// TodoDetailResponse is the body of GET /api/v1/todos/{id}.
type TodoDetailResponse struct {
	Todo *todo.Todo `json:"todo"`
}

// StatsResponse is the body of the internal stats endpoint.
type StatsResponse struct {
	Users int64 `json:"users"`
	Todos int64 `json:"todos"`
}
