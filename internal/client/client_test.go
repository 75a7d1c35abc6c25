package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/St1cky1/task-manager/internal/board"
	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ board.API = (*Client)(nil)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second)
}

func TestListAndGetTasks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		if id := r.URL.Query().Get("id"); id != "" {
			assert.Equal(t, "7", id)
			writeJSON(w, http.StatusOK, entity.Task{ID: 7, Title: "one"})
			return
		}
		writeJSON(w, http.StatusOK, []entity.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})
	})
	c := newTestClient(t, mux)

	tasks, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	task, err := c.GetTask(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "one", task.Title)
}

func TestCreateUpdateDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		var req entity.CreateTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "new", req.Title)
		assert.Equal(t, entity.PriorityHigh, req.Priority)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 11})
	})
	mux.HandleFunc("PUT /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		var req entity.UpdateTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(11), req.ID)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("DELETE /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "11", r.URL.Query().Get("id"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	id, err := c.CreateTask(ctx, &entity.CreateTaskRequest{Title: "new", Priority: entity.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	require.NoError(t, c.UpdateTask(ctx, &entity.UpdateTaskRequest{ID: 11, Title: "renamed"}))
	require.NoError(t, c.DeleteTask(ctx, 11))
}

func TestTaskActions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/tasks/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.PathValue("id"))
		writeJSON(w, http.StatusOK, entity.Task{ID: 3, Completed: true})
	})
	mux.HandleFunc("PUT /api/tasks/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, entity.Task{ID: 3, Status: entity.TaskStatus(r.URL.Query().Get("status"))})
	})
	mux.HandleFunc("PUT /api/tasks/{id}/category", func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("categoryId")
		task := entity.Task{ID: 3}
		if raw == "5" {
			cat := int64(5)
			task.CategoryID = &cat
		} else {
			assert.Equal(t, "null", raw)
		}
		writeJSON(w, http.StatusOK, task)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	task, err := c.ToggleCompleted(ctx, 3)
	require.NoError(t, err)
	assert.True(t, task.Completed)

	task, err = c.UpdateStatus(ctx, 3, entity.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, task.Status)

	cat := int64(5)
	task, err = c.UpdateCategory(ctx, 3, &cat)
	require.NoError(t, err)
	assert.Equal(t, int64(5), *task.CategoryID)

	task, err = c.UpdateCategory(ctx, 3, nil)
	require.NoError(t, err)
	assert.Nil(t, task.CategoryID)
}

func TestFilterQuery(t *testing.T) {
	cat := int64(2)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := filterQuery(entity.TaskFilter{
		CategoryID: &cat,
		Priority:   entity.PriorityMedium,
		Status:     entity.StatusTodo,
		From:       &from,
		SortField:  entity.SortByPriority,
		SortDesc:   true,
	})

	assert.Equal(t, "2", q.Get("categoryId"))
	assert.Equal(t, "MEDIUM", q.Get("priority"))
	assert.Equal(t, "TODO", q.Get("status"))
	assert.Equal(t, "2024-01-01T00:00:00Z", q.Get("from"))
	assert.False(t, q.Has("to"))
	assert.Equal(t, entity.SortByPriority+",desc", q.Get("sort"))
}

func TestErrorResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
	})
	mux.HandleFunc("PUT /api/auth", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
	})
	c := newTestClient(t, mux)

	err := c.DeleteTask(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = c.Login(context.Background(), "bob", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid username or password", apiErr.Message)
}

func TestAuthAndAssist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth", func(w http.ResponseWriter, r *http.Request) {
		var req entity.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusCreated, entity.RegisterResponse{ID: 1, Username: req.Username})
	})
	mux.HandleFunc("POST /api/assist/description", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, map[string]string{"description": "about " + req["title"]})
	})
	mux.HandleFunc("POST /api/assist/recommendations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"recommendations": "rest"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	reg, err := c.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", reg.Username)

	desc, err := c.SuggestDescription(ctx, "taxes")
	require.NoError(t, err)
	assert.Equal(t, "about taxes", desc)

	rec, err := c.Recommend(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rest", rec)
}
