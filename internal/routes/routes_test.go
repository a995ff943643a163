package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GopiRanganathan/todo/internal/repository"
	"github.com/GopiRanganathan/todo/pkg/logger"
	"github.com/GopiRanganathan/todo/pkg/metrics"
)

type savedToken struct {
	userID   uint
	token    string
	platform string
}

type fakeTokens struct {
	saved []savedToken
	err   error
}

func (f *fakeTokens) SaveToken(_ context.Context, userID uint, token, platform string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, savedToken{userID, token, platform})
	return nil
}

// fakeTodos only implements SetCompleted; the rest of TodoManager is covered
// against a real store in todos_test.go.
type fakeTodos struct {
	TodoManager
	state map[uint]bool
}

func (f *fakeTodos) SetCompleted(_ context.Context, id uint, completed bool) error {
	if _, ok := f.state[id]; !ok {
		return fmt.Errorf("todo %d: %w", id, repository.ErrNotFound)
	}
	f.state[id] = completed
	return nil
}

func newTestRouter() (http.Handler, *fakeTokens, *fakeTodos, *metrics.Metrics) {
	tokens := &fakeTokens{}
	todos := &fakeTodos{state: map[uint]bool{42: false}}
	m := metrics.New()
	return NewRouter(tokens, todos, m, logger.Discard(), time.Now()), tokens, todos, m
}

func do(h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSaveToken(t *testing.T) {
	h, tokens, _, m := newTestRouter()

	rec := do(h, http.MethodPost, "/save_fcm_token", `{"token":"tok-1"}`, map[string]string{UserHeader: "7"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"message":"Subscription received successfully"}`, rec.Body.String())
	require.Equal(t, []savedToken{{7, "tok-1", ""}}, tokens.saved)
	require.Equal(t, int64(1), m.Snapshot().TokensSaved)
}

func TestSaveTokenErrors(t *testing.T) {
	h, tokens, _, _ := newTestRouter()
	user := map[string]string{UserHeader: "7"}

	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/save_fcm_token", `{"token":"t"}`, nil).Code)
	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/save_fcm_token", `{"token":"t"}`, map[string]string{UserHeader: "abc"}).Code)
	require.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/save_fcm_token", `{`, user).Code)
	require.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/save_fcm_token", `{"token":" "}`, user).Code)
	require.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/save_fcm_token", "", user).Code)
	require.Empty(t, tokens.saved)

	tokens.err = errors.New("db down")
	require.Equal(t, http.StatusInternalServerError, do(h, http.MethodPost, "/save_fcm_token", `{"token":"t"}`, user).Code)
}

func TestSaveTokenPlatforms(t *testing.T) {
	h, tokens, _, _ := newTestRouter()
	user := map[string]string{UserHeader: "7"}

	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/save_fcm_token", `{"token":"a","platform":"web"}`, user).Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/save_fcm_token", `{"token":"b","platform":"Web"}`, user).Code)

	rec := do(h, http.MethodPost, "/save_fcm_token", `{"token":"c","platform":"ios"}`, user)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"success":false,"message":"unsupported platform \"ios\""}`, rec.Body.String())

	require.Equal(t, []savedToken{{7, "a", "web"}, {7, "b", "Web"}}, tokens.saved)
}

func TestUpdateTodo(t *testing.T) {
	h, _, todos, m := newTestRouter()

	rec := do(h, http.MethodPost, "/updatetodo/42", `{"completed":true}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Todo ID 42 status updated successfully"}`, rec.Body.String())
	require.True(t, todos.state[42])

	rec = do(h, http.MethodPost, "/updatetodo/42", `{"completed":false}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, todos.state[42])
	require.Equal(t, int64(2), m.Snapshot().TodosUpdated)
}

func TestUpdateTodoErrors(t *testing.T) {
	h, _, _, _ := newTestRouter()

	require.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/updatetodo/7", `{"completed":true}`, nil).Code)
	require.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/updatetodo/abc", `{"completed":true}`, nil).Code)
	require.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/updatetodo/42", `{}`, nil).Code)
	require.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/updatetodo/42", `nope`, nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h, _, _, _ := newTestRouter()

	rec := do(h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":true`)

	rec = do(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"tokens_saved":0`)
}
