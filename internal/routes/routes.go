package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/GopiRanganathan/todo/internal/models"
	"github.com/GopiRanganathan/todo/internal/repository"
	"github.com/GopiRanganathan/todo/pkg/metrics"
)

// UserHeader carries the authenticated user id. An auth layer in front of the
// service is expected to set it.
const UserHeader = "X-User-ID"

// TokenSaver stores push tokens.
type TokenSaver interface {
	SaveToken(ctx context.Context, userID uint, token, platform string) error
}

// TodoUpdater stores todo completion flags.
type TodoUpdater interface {
	SetCompleted(ctx context.Context, id uint, completed bool) error
}

// TodoManager is the todo store behind the API.
type TodoManager interface {
	TodoUpdater
	CreateUser(ctx context.Context, u *models.User) error
	CreateTodo(ctx context.Context, t *models.Todo) error
	ListTodos(ctx context.Context, userID uint) ([]models.Todo, error)
	UpdateTodo(ctx context.Context, t *models.Todo) error
	DeleteTodo(ctx context.Context, userID, id uint) error
}

type handlers struct {
	tokens  TokenSaver
	todos   TodoManager
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRouter wires the API the page talks to plus health and metrics endpoints.
func NewRouter(tokens TokenSaver, todos TodoManager, metrics *metrics.Metrics, logger *slog.Logger, started time.Time) http.Handler {
	h := &handlers{tokens: tokens, todos: todos, metrics: metrics, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/save_fcm_token", h.saveToken).Methods(http.MethodPost)
	r.HandleFunc("/updatetodo/{id:[0-9]+}", h.updateTodo).Methods(http.MethodPost)
	r.HandleFunc("/users", h.createUser).Methods(http.MethodPost)
	r.HandleFunc("/todos", h.listTodos).Methods(http.MethodGet)
	r.HandleFunc("/todos", h.createTodo).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id:[0-9]+}", h.editTodo).Methods(http.MethodPut)
	r.HandleFunc("/todos/{id:[0-9]+}", h.deleteTodo).Methods(http.MethodDelete)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "todo service healthy",
			"meta": map[string]interface{}{
				"uptime_seconds": int(time.Since(started).Seconds()),
				"timestamp":      time.Now().UTC(),
			},
		})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}

type saveTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform,omitempty"`
}

type updateTodoRequest struct {
	Completed *bool `json:"completed"`
}

func (h *handlers) saveToken(w http.ResponseWriter, r *http.Request) {
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req saveTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if !models.SupportedPlatform(req.Platform) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported platform %q", req.Platform))
		return
	}

	if err := h.tokens.SaveToken(r.Context(), userID, req.Token, req.Platform); err != nil {
		h.logger.Error("failed to save push token", slog.Uint64("user_id", uint64(userID)), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not save token")
		return
	}

	h.metrics.IncTokensSaved()
	h.logger.Info("push token saved", slog.Uint64("user_id", uint64(userID)))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription received successfully",
	})
}

func (h *handlers) updateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown todo")
		return
	}

	var req updateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Completed == nil {
		writeError(w, http.StatusBadRequest, "completed is required")
		return
	}

	err = h.todos.SetCompleted(r.Context(), uint(id), *req.Completed)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Todo ID %d not found", id))
		return
	}
	if err != nil {
		h.logger.Error("failed to update todo", slog.Uint64("todo_id", id), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not update todo")
		return
	}

	h.metrics.IncTodosUpdated()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Todo ID %d status updated successfully", id),
	})
}

func userFromRequest(r *http.Request) (uint, error) {
	raw := strings.TrimSpace(r.Header.Get(UserHeader))
	if raw == "" {
		return 0, errors.New("missing " + UserHeader + " header")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + UserHeader + " header")
	}
	return uint(id), nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
