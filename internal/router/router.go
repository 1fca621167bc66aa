// Package router wires the HTTP surface of the todo service: public
// authentication endpoints, the bearer-token protected todo routes, the
// health check and the subnet-gated internal stats endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/todolist/internal/apperr"
	"github.com/patric-chuzhbe/todolist/internal/auth"
	"github.com/patric-chuzhbe/todolist/internal/logger"
	"github.com/patric-chuzhbe/todolist/internal/models"
)

type todoService interface {
	Register(ctx context.Context, request *models.RegisterRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, request *models.LoginRequest) (*models.TokenResponse, error)
	CreateTodo(ctx context.Context, ownerID string, request *models.TodoWriteRequest) (*models.TodoItem, error)
	ListTodos(ctx context.Context, ownerID string, page int) (*models.TodoListResponse, error)
	GetTodo(ctx context.Context, ownerID string, displayID int) (*models.TodoDetailResponse, error)
	UpdateTodo(ctx context.Context, ownerID string, displayID int, request *models.TodoWriteRequest) (*models.TodoItem, error)
	DeleteTodo(ctx context.Context, ownerID string, displayID int) error
	Stats(ctx context.Context) (*models.StatsResponse, error)
}

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}

type pinger interface {
	Ping(ctx context.Context) error
}

type statsGate interface {
	Allowed(request *http.Request) bool
}

// Router holds the handlers of the HTTP API.
type Router struct {
	service   todoService
	db        pinger
	statsGate statsGate
}

// New builds the chi routing tree.
func New(
	service todoService,
	db pinger,
	theAuth authenticator,
	statsGate statsGate,
) *chi.Mux {
	theRouter := &Router{
		service:   service,
		db:        db,
		statsGate: statsGate,
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)

	router.Route(`/api/v1`, func(router chi.Router) {
		router.Post(`/auth/register`, theRouter.PostAuthRegister)
		router.Post(`/auth/login`, theRouter.PostAuthLogin)

		router.Route(`/todos`, func(router chi.Router) {
			router.Use(theAuth.AuthenticateUser)
			router.Post(`/`, theRouter.PostTodos)
			router.Get(`/`, theRouter.GetTodos)
			router.Get(`/{id}`, theRouter.GetTodo)
			router.Put(`/{id}`, theRouter.PutTodo)
			router.Delete(`/{id}`, theRouter.DeleteTodo)
		})

		router.Get(`/internal/stats`, theRouter.GetInternalStats)
	})

	router.Get(`/ping`, theRouter.GetPing)

	router.NotFound(func(response http.ResponseWriter, request *http.Request) {
		writeJSON(response, http.StatusNotFound, map[string]string{"msg": "Route does not exist"})
	})

	return router
}

// PostAuthRegister handles POST /api/v1/auth/register.
func (router *Router) PostAuthRegister(response http.ResponseWriter, request *http.Request) {
	registerRequest := &models.RegisterRequest{}
	if !decodeJSONBody(response, request, registerRequest) {
		return
	}

	token, err := router.service.Register(request.Context(), registerRequest)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, token)
}

// PostAuthLogin handles POST /api/v1/auth/login.
func (router *Router) PostAuthLogin(response http.ResponseWriter, request *http.Request) {
	loginRequest := &models.LoginRequest{}
	if !decodeJSONBody(response, request, loginRequest) {
		return
	}

	token, err := router.service.Login(request.Context(), loginRequest)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, token)
}

// PostTodos handles POST /api/v1/todos.
func (router *Router) PostTodos(response http.ResponseWriter, request *http.Request) {
	ownerID, ok := requireUserID(response, request)
	if !ok {
		return
	}

	writeRequest := &models.TodoWriteRequest{}
	if !decodeJSONBody(response, request, writeRequest) {
		return
	}

	item, err := router.service.CreateTodo(request.Context(), ownerID, writeRequest)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, item)
}

// GetTodos handles GET /api/v1/todos?p=<page>.
func (router *Router) GetTodos(response http.ResponseWriter, request *http.Request) {
	ownerID, ok := requireUserID(response, request)
	if !ok {
		return
	}

	// Absent or unparsable page values default to the first page.
	page, err := strconv.Atoi(request.URL.Query().Get("p"))
	if err != nil {
		page = 1
	}

	list, err := router.service.ListTodos(request.Context(), ownerID, page)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, list)
}

// GetTodo handles GET /api/v1/todos/{id}.
func (router *Router) GetTodo(response http.ResponseWriter, request *http.Request) {
	ownerID, ok := requireUserID(response, request)
	if !ok {
		return
	}

	displayID, ok := displayIDFromRequest(response, request)
	if !ok {
		return
	}

	detail, err := router.service.GetTodo(request.Context(), ownerID, displayID)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, detail)
}

// PutTodo handles PUT /api/v1/todos/{id}.
func (router *Router) PutTodo(response http.ResponseWriter, request *http.Request) {
	ownerID, ok := requireUserID(response, request)
	if !ok {
		return
	}

	displayID, ok := displayIDFromRequest(response, request)
	if !ok {
		return
	}

	writeRequest := &models.TodoWriteRequest{}
	if !decodeJSONBody(response, request, writeRequest) {
		return
	}

	item, err := router.service.UpdateTodo(request.Context(), ownerID, displayID, writeRequest)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, item)
}

// DeleteTodo handles DELETE /api/v1/todos/{id}.
func (router *Router) DeleteTodo(response http.ResponseWriter, request *http.Request) {
	ownerID, ok := requireUserID(response, request)
	if !ok {
		return
	}

	displayID, ok := displayIDFromRequest(response, request)
	if !ok {
		return
	}

	if err := router.service.DeleteTodo(request.Context(), ownerID, displayID); err != nil {
		writeError(response, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// GetPing handles GET /ping by checking storage connectivity.
func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.db.Ping(request.Context()); err != nil {
		writeError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetInternalStats handles GET /api/v1/internal/stats. Only clients from
// the configured trusted subnet may query it.
func (router *Router) GetInternalStats(response http.ResponseWriter, request *http.Request) {
	if !router.statsGate.Allowed(request) {
		writeError(response, apperr.New(apperr.KindForbidden, "Forbidden"))
		return
	}

	stats, err := router.service.Stats(request.Context())
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func requireUserID(response http.ResponseWriter, request *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeError(response, auth.ErrAuthenticationFailed)
		return "", false
	}

	return userID, true
}

// displayIDFromRequest parses the {id} path parameter. A non-numeric id
// cannot name any todo, so it is reported as not found rather than as a
// malformed request.
func displayIDFromRequest(response http.ResponseWriter, request *http.Request) (int, bool) {
	raw := chi.URLParam(request, "id")
	displayID, err := strconv.Atoi(raw)
	if err != nil {
		writeError(response, apperr.Newf(apperr.KindNotFound, "No Todo with id %s", raw))
		return 0, false
	}

	return displayID, true
}

func decodeJSONBody(response http.ResponseWriter, request *http.Request, target any) bool {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		writeError(response, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return false
	}

	return true
}

func writeError(response http.ResponseWriter, err error) {
	logger.Log.Debugln("request failed: ", zap.Error(err))
	apperr.WriteJSON(response, err)
}

func writeJSON(response http.ResponseWriter, status int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("encoding response: ", zap.Error(err))
	}
}
