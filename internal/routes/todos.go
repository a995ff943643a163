package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/GopiRanganathan/todo/internal/models"
	"github.com/GopiRanganathan/todo/internal/repository"
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type todoRequest struct {
	Title   string       `json:"title"`
	DueDate *models.Date `json:"due_date"`
	Alert   bool         `json:"alert"`
}

func (h *handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	u := &models.User{Name: strings.TrimSpace(req.Name), Email: strings.TrimSpace(req.Email)}
	if err := h.todos.CreateUser(r.Context(), u); err != nil {
		h.logger.Error("failed to create user", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *handlers) listTodos(w http.ResponseWriter, r *http.Request) {
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	todos, err := h.todos.ListTodos(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list todos", slog.Uint64("user_id", uint64(userID)), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not list todos")
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"todos": todos})
}

func (h *handlers) createTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	req, ok := decodeTodo(w, r)
	if !ok {
		return
	}

	todo := &models.Todo{UserID: userID, Title: req.Title, DueDate: req.DueDate, Alert: req.Alert}
	if err := h.todos.CreateTodo(r.Context(), todo); err != nil {
		h.logger.Error("failed to create todo", slog.Uint64("user_id", uint64(userID)), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not create todo")
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (h *handlers) editTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown todo")
		return
	}
	req, ok := decodeTodo(w, r)
	if !ok {
		return
	}

	todo := &models.Todo{ID: uint(id), UserID: userID, Title: req.Title, DueDate: req.DueDate, Alert: req.Alert}
	err = h.todos.UpdateTodo(r.Context(), todo)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Todo ID %d not found", id))
		return
	}
	if err != nil {
		h.logger.Error("failed to edit todo", slog.Uint64("todo_id", id), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not edit todo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Todo ID %d updated successfully", id),
	})
}

func (h *handlers) deleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown todo")
		return
	}

	err = h.todos.DeleteTodo(r.Context(), userID, uint(id))
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Todo ID %d not found", id))
		return
	}
	if err != nil {
		h.logger.Error("failed to delete todo", slog.Uint64("todo_id", id), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not delete todo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Todo ID %d deleted successfully", id),
	})
}

// decodeTodo reads a todo body and writes the 400 response itself when the
// body is unusable.
func decodeTodo(w http.ResponseWriter, r *http.Request) (todoRequest, bool) {
	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return req, false
	}
	return req, true
}
