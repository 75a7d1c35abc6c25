package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/task-manager/internal/api/res"
	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/go-chi/chi/v5"
)

type TaskService interface {
	ListTasks(ctx context.Context) ([]entity.Task, error)
	GetTask(ctx context.Context, taskID int64) (*entity.Task, error)
	SearchTasks(ctx context.Context, query string) ([]entity.Task, error)
	FilterTasks(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
	CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error)
	UpdateTask(ctx context.Context, req *entity.UpdateTaskRequest) (*entity.Task, error)
	UpdateStatus(ctx context.Context, taskID int64, status string) (*entity.Task, error)
	UpdateCategory(ctx context.Context, taskID int64, categoryID *int64) (*entity.Task, error)
	ToggleCompleted(ctx context.Context, taskID int64) (*entity.Task, error)
	DeleteTask(ctx context.Context, taskID int64) error
	TaskHistory(ctx context.Context, taskID int64) ([]entity.TaskAudit, error)
}

type TaskHandler struct {
	log         *slog.Logger
	taskService TaskService
}

func NewTaskHandler(log *slog.Logger, taskService TaskService) *TaskHandler {
	return &TaskHandler{
		log:         log,
		taskService: taskService,
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", entity.ErrInvalidTaskData, raw)
	}
	return id, nil
}

// GET /api/tasks[?id=] - одна задача или весь список
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("id") {
		id, err := parseID(r.URL.Query().Get("id"))
		if err != nil {
			WriteErr(h.log, w, r, err)
			return
		}
		task, err := h.taskService.GetTask(r.Context(), id)
		if err != nil {
			WriteErr(h.log, w, r, err)
			return
		}
		res.Json(w, task, http.StatusOK)
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, tasks, http.StatusOK)
}

// создаем новую задачу
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		res.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), &req)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, map[string]any{"id": task.ID}, http.StatusCreated)
}

// PUT /api/tasks - id передаётся в теле
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		res.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if _, err := h.taskService.UpdateTask(r.Context(), &req); err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Success(w)
}

// DELETE /api/tasks?id=
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		res.Error(w, "task id is required", http.StatusBadRequest)
		return
	}
	id, err := parseID(raw)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Success(w)
}

func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.SearchTasks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, tasks, http.StatusOK)
}

func (h *TaskHandler) FilterTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}

	tasks, err := h.taskService.FilterTasks(r.Context(), filter)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, tasks, http.StatusOK)
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}

	task, err := h.taskService.UpdateStatus(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, task, http.StatusOK)
}

// PUT /api/tasks/{id}/category?categoryId= - пустое значение или "null" снимает категорию
func (h *TaskHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}

	var categoryID *int64
	raw := strings.TrimSpace(r.URL.Query().Get("categoryId"))
	if raw != "" && raw != "null" {
		cid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || cid <= 0 {
			res.Error(w, "invalid categoryId", http.StatusBadRequest)
			return
		}
		categoryID = &cid
	}

	task, err := h.taskService.UpdateCategory(r.Context(), id, categoryID)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, task, http.StatusOK)
}

func (h *TaskHandler) ToggleCompleted(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}

	task, err := h.taskService.ToggleCompleted(r.Context(), id)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, task, http.StatusOK)
}

func (h *TaskHandler) TaskHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}

	history, err := h.taskService.TaskHistory(r.Context(), id)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, history, http.StatusOK)
}

func parseFilter(r *http.Request) (entity.TaskFilter, error) {
	q := r.URL.Query()
	var f entity.TaskFilter

	if raw := q.Get("categoryId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return f, err
		}
		f.CategoryID = &id
	}
	if raw := q.Get("priority"); raw != "" {
		p, err := entity.ParsePriority(raw)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	if raw := q.Get("status"); raw != "" {
		st, err := entity.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if raw := q.Get("from"); raw != "" {
		from, err := parseDate(raw, false)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := parseDate(raw, true)
		if err != nil {
			return f, err
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, fmt.Errorf("%w: from is after to", entity.ErrInvalidTaskData)
	}

	field, desc, err := entity.ParseSort(q.Get("sort"))
	if err != nil {
		return f, err
	}
	f.SortField, f.SortDesc = field, desc
	return f, nil
}

// parseDate принимает YYYY-MM-DD (границы дня включительно) или RFC 3339
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		if endOfDay {
			return d.Add(24*time.Hour - time.Nanosecond), nil
		}
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", entity.ErrInvalidTaskData, raw)
	}
	return t, nil
}
