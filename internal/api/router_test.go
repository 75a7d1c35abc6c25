package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTaskService - мок для handlers.TaskService
type MockTaskService struct {
	ListTasksFunc       func(ctx context.Context) ([]entity.Task, error)
	GetTaskFunc         func(ctx context.Context, taskID int64) (*entity.Task, error)
	SearchTasksFunc     func(ctx context.Context, query string) ([]entity.Task, error)
	FilterTasksFunc     func(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
	CreateTaskFunc      func(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error)
	UpdateTaskFunc      func(ctx context.Context, req *entity.UpdateTaskRequest) (*entity.Task, error)
	UpdateStatusFunc    func(ctx context.Context, taskID int64, status string) (*entity.Task, error)
	UpdateCategoryFunc  func(ctx context.Context, taskID int64, categoryID *int64) (*entity.Task, error)
	ToggleCompletedFunc func(ctx context.Context, taskID int64) (*entity.Task, error)
	DeleteTaskFunc      func(ctx context.Context, taskID int64) error
	TaskHistoryFunc     func(ctx context.Context, taskID int64) ([]entity.TaskAudit, error)
}

func (m *MockTaskService) ListTasks(ctx context.Context) ([]entity.Task, error) {
	return m.ListTasksFunc(ctx)
}

func (m *MockTaskService) GetTask(ctx context.Context, taskID int64) (*entity.Task, error) {
	return m.GetTaskFunc(ctx, taskID)
}

func (m *MockTaskService) SearchTasks(ctx context.Context, query string) ([]entity.Task, error) {
	return m.SearchTasksFunc(ctx, query)
}

func (m *MockTaskService) FilterTasks(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	return m.FilterTasksFunc(ctx, filter)
}

func (m *MockTaskService) CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	return m.CreateTaskFunc(ctx, req)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	return m.UpdateTaskFunc(ctx, req)
}

func (m *MockTaskService) UpdateStatus(ctx context.Context, taskID int64, status string) (*entity.Task, error) {
	return m.UpdateStatusFunc(ctx, taskID, status)
}

func (m *MockTaskService) UpdateCategory(ctx context.Context, taskID int64, categoryID *int64) (*entity.Task, error) {
	return m.UpdateCategoryFunc(ctx, taskID, categoryID)
}

func (m *MockTaskService) ToggleCompleted(ctx context.Context, taskID int64) (*entity.Task, error) {
	return m.ToggleCompletedFunc(ctx, taskID)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, taskID int64) error {
	return m.DeleteTaskFunc(ctx, taskID)
}

func (m *MockTaskService) TaskHistory(ctx context.Context, taskID int64) ([]entity.TaskAudit, error) {
	return m.TaskHistoryFunc(ctx, taskID)
}

type MockAuthService struct {
	RegisterFunc func(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error)
	LoginFunc    func(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error) {
	return m.RegisterFunc(ctx, req)
}

func (m *MockAuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	return m.LoginFunc(ctx, req)
}

type MockCategoryService struct {
	ListCategoriesFunc func(ctx context.Context) ([]entity.Category, error)
	CreateCategoryFunc func(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
}

func (m *MockCategoryService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return m.ListCategoriesFunc(ctx)
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	return m.CreateCategoryFunc(ctx, req)
}

type MockAssistService struct {
	SuggestDescriptionFunc func(ctx context.Context, title string) (string, error)
	RecommendFunc          func(ctx context.Context) (string, error)
}

func (m *MockAssistService) SuggestDescription(ctx context.Context, title string) (string, error) {
	return m.SuggestDescriptionFunc(ctx, title)
}

func (m *MockAssistService) Recommend(ctx context.Context) (string, error) {
	return m.RecommendFunc(ctx)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func newTestRouter(deps Deps) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(log, deps, Options{Timeout: time.Second, CORSOrigins: []string{"*"}})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateTask(t *testing.T) {
	var got *entity.CreateTaskRequest
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		CreateTaskFunc: func(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
			got = req
			return &entity.Task{ID: 12, Title: req.Title}, nil
		},
	}})

	rec := do(t, h, http.MethodPost, "/api/tasks",
		`{"title":"Buy milk","priority":"2","dueDate":"2024-05-01T09:30:00.000Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(12), decode(t, rec)["id"])
	assert.Equal(t, entity.PriorityMedium, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, 9, got.DueDate.Hour())
}

func TestCreateTaskValidationError(t *testing.T) {
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		CreateTaskFunc: func(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
			return nil, entity.ErrInvalidTaskData
		},
	}})

	rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/tasks", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid json", decode(t, rec)["error"])
}

func TestListAndGetTask(t *testing.T) {
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		ListTasksFunc: func(ctx context.Context) ([]entity.Task, error) {
			return []entity.Task{{ID: 1}, {ID: 2}}, nil
		},
		GetTaskFunc: func(ctx context.Context, taskID int64) (*entity.Task, error) {
			if taskID == 1 {
				return &entity.Task{ID: 1, Title: "a"}, nil
			}
			return nil, entity.ErrTaskNotFound
		},
	}})

	rec := do(t, h, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []entity.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = do(t, h, http.MethodGet, "/api/tasks?id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a", decode(t, rec)["title"])

	rec = do(t, h, http.MethodGet, "/api/tasks?id=2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/tasks?id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTask(t *testing.T) {
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		UpdateTaskFunc: func(ctx context.Context, req *entity.UpdateTaskRequest) (*entity.Task, error) {
			if req.ID == 404 {
				return nil, entity.ErrTaskNotFound
			}
			return &entity.Task{ID: req.ID}, nil
		},
	}})

	rec := do(t, h, http.MethodPut, "/api/tasks", `{"id":1,"title":"x","completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	rec = do(t, h, http.MethodPut, "/api/tasks", `{"id":404,"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTask(t *testing.T) {
	var deleted []int64
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		DeleteTaskFunc: func(ctx context.Context, taskID int64) error {
			if taskID == 404 {
				return entity.ErrTaskNotFound
			}
			deleted = append(deleted, taskID)
			return nil
		},
	}})

	rec := do(t, h, http.MethodDelete, "/api/tasks?id=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	rec = do(t, h, http.MethodDelete, "/api/tasks?id=4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{3, 4}, deleted)

	rec = do(t, h, http.MethodDelete, "/api/tasks", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/tasks?id=404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchTasks(t *testing.T) {
	var got string
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		SearchTasksFunc: func(ctx context.Context, query string) ([]entity.Task, error) {
			got = query
			return []entity.Task{}, nil
		},
	}})

	rec := do(t, h, http.MethodGet, "/api/tasks/search?q=Report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Report", got)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestFilterTasks(t *testing.T) {
	var got entity.TaskFilter
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		FilterTasksFunc: func(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
			got = filter
			return []entity.Task{}, nil
		},
	}})

	rec := do(t, h, http.MethodGet,
		"/api/tasks/filter?categoryId=2&priority=3&status=todo&from=2024-01-01&to=2024-01-31&sort=title,desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, int64(2), *got.CategoryID)
	assert.Equal(t, entity.PriorityHigh, got.Priority)
	assert.Equal(t, entity.StatusTodo, got.Status)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *got.From)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), *got.To)
	assert.Equal(t, entity.SortByTitle, got.SortField)
	assert.True(t, got.SortDesc)

	rec = do(t, h, http.MethodGet, "/api/tasks/filter", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.SortByDueDate, got.SortField)
	assert.False(t, got.SortDesc)
	assert.Nil(t, got.From)

	for _, bad := range []string{
		"/api/tasks/filter?status=DONE",
		"/api/tasks/filter?priority=9",
		"/api/tasks/filter?from=yesterday",
		"/api/tasks/filter?from=2024-02-01&to=2024-01-01",
		"/api/tasks/filter?sort=owner",
		"/api/tasks/filter?categoryId=x",
	} {
		rec = do(t, h, http.MethodGet, bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestUpdateStatusAndToggle(t *testing.T) {
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		UpdateStatusFunc: func(ctx context.Context, taskID int64, status string) (*entity.Task, error) {
			st, err := entity.ParseStatus(status)
			if err != nil {
				return nil, err
			}
			return &entity.Task{ID: taskID, Status: st}, nil
		},
		ToggleCompletedFunc: func(ctx context.Context, taskID int64) (*entity.Task, error) {
			return &entity.Task{ID: taskID, Completed: true, Status: entity.StatusTodo}, nil
		},
	}})

	rec := do(t, h, http.MethodPut, "/api/tasks/5/status?status=IN_PROGRESS", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IN_PROGRESS", decode(t, rec)["status"])

	rec = do(t, h, http.MethodPut, "/api/tasks/5/status?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/tasks/5/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, "TODO", body["status"])
}

func TestTaskHistory(t *testing.T) {
	changes := `{"title":{"old":"a","new":"b"}}`
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		TaskHistoryFunc: func(ctx context.Context, taskID int64) ([]entity.TaskAudit, error) {
			assert.Equal(t, int64(8), taskID)
			return []entity.TaskAudit{{ID: 1, Action: entity.ActionUpdate, EntityID: 8, Changes: &changes}}, nil
		},
	}})

	rec := do(t, h, http.MethodGet, "/api/tasks/8/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []entity.TaskAudit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, entity.ActionUpdate, history[0].Action)

	rec = do(t, h, http.MethodGet, "/api/tasks/abc/history", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCategory(t *testing.T) {
	var got *int64
	calls := 0
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		UpdateCategoryFunc: func(ctx context.Context, taskID int64, categoryID *int64) (*entity.Task, error) {
			calls++
			got = categoryID
			if categoryID != nil && *categoryID == 99 {
				return nil, entity.ErrCategoryNotFound
			}
			return &entity.Task{ID: taskID, CategoryID: categoryID}, nil
		},
	}})

	rec := do(t, h, http.MethodPut, "/api/tasks/5/category?categoryId=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), *got)

	rec = do(t, h, http.MethodPut, "/api/tasks/5/category?categoryId=null", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)

	rec = do(t, h, http.MethodPut, "/api/tasks/5/category?categoryId=99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/tasks/5/category?categoryId=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 3, calls)
}

func TestInternalErrorHidden(t *testing.T) {
	h := newTestRouter(Deps{Tasks: &MockTaskService{
		ListTasksFunc: func(ctx context.Context) ([]entity.Task, error) {
			return nil, errors.New("pq: connection refused on 10.0.0.3")
		},
	}})

	rec := do(t, h, http.MethodGet, "/api/tasks", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

type causeError struct{ cause error }

func (e *causeError) Error() string   { return entity.ErrInvalidTaskData.Error() + ": constraint violated" }
func (e *causeError) Unwrap() []error { return []error{entity.ErrInvalidTaskData, e.cause} }
func (e *causeError) Cause() error    { return e.cause }

func TestConstraintCauseLoggedNotReturned(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	h := NewRouter(log, Deps{Tasks: &MockTaskService{
		CreateTaskFunc: func(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
			return nil, &causeError{cause: errors.New(`violates check constraint "tasks_title_check"`)}
		},
	}}, Options{})

	rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid task data: constraint violated", decode(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), "tasks_title_check")
	assert.Contains(t, logs.String(), "tasks_title_check")
}

func TestAuth(t *testing.T) {
	h := newTestRouter(Deps{Auth: &MockAuthService{
		RegisterFunc: func(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error) {
			if req.Username == "taken" {
				return nil, entity.ErrUserAlreadyExists
			}
			if req.Username == "" {
				return nil, entity.ErrInvalidUserData
			}
			return &entity.RegisterResponse{ID: 1, Username: req.Username}, nil
		},
		LoginFunc: func(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
			if req.Password != "pw" {
				return nil, entity.ErrInvalidCredentials
			}
			return &entity.LoginResponse{Success: true, User: entity.LoginUserDTO{Username: req.Username}}, nil
		},
	}})

	rec := do(t, h, http.MethodPost, "/api/auth", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"username":"alice"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/auth", `{"username":"taken","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/auth", `{"username":"","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/auth", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"user":{"username":"alice"}}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = do(t, h, http.MethodPut, "/api/auth", `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", decode(t, rec)["error"])
}

func TestCategories(t *testing.T) {
	h := newTestRouter(Deps{Categories: &MockCategoryService{
		ListCategoriesFunc: func(ctx context.Context) ([]entity.Category, error) {
			return []entity.Category{{ID: 1, Name: "Work"}}, nil
		},
		CreateCategoryFunc: func(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
			if req.Name == "Work" {
				return nil, entity.ErrCategoryAlreadyExists
			}
			return &entity.Category{ID: 2, Name: req.Name}, nil
		},
	}})

	rec := do(t, h, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []entity.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "Work", list[0].Name)

	rec = do(t, h, http.MethodPost, "/api/categories", `{"name":"Home"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Home", decode(t, rec)["name"])

	rec = do(t, h, http.MethodPost, "/api/categories", `{"name":"Work"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAssist(t *testing.T) {
	h := newTestRouter(Deps{Assist: &MockAssistService{
		SuggestDescriptionFunc: func(ctx context.Context, title string) (string, error) {
			if title == "" {
				return "", entity.ErrInvalidTaskData
			}
			return "Do it: " + title, nil
		},
		RecommendFunc: func(ctx context.Context) (string, error) {
			return "", entity.ErrAssistUnavailable
		},
	}})

	rec := do(t, h, http.MethodPost, "/api/assist/description", `{"title":"Plan trip"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Do it: Plan trip", decode(t, rec)["description"])

	rec = do(t, h, http.MethodPost, "/api/assist/description", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/assist/recommendations", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPing(t *testing.T) {
	healthy := true
	h := newTestRouter(Deps{DB: pingerFunc(func(ctx context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	})})

	rec := do(t, h, http.MethodGet, "/api/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	healthy = false
	rec = do(t, h, http.MethodGet, "/api/ping", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(Deps{})

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}
