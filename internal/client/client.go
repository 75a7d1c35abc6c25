// Package client is a typed HTTP client for the task manager API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, nil, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]entity.Task, error) {
	var tasks []entity.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (*entity.Task, error) {
	var task entity.Task
	q := url.Values{"id": {strconv.FormatInt(id, 10)}}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) SearchTasks(ctx context.Context, query string) ([]entity.Task, error) {
	var tasks []entity.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/search", url.Values{"q": {query}}, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) FilterTasks(ctx context.Context, f entity.TaskFilter) ([]entity.Task, error) {
	var tasks []entity.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/filter", filterQuery(f), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func filterQuery(f entity.TaskFilter) url.Values {
	q := url.Values{}
	if f.CategoryID != nil {
		q.Set("categoryId", strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.From != nil {
		q.Set("from", f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		q.Set("to", f.To.Format(time.RFC3339))
	}
	if f.SortField != "" {
		dir := "asc"
		if f.SortDesc {
			dir = "desc"
		}
		q.Set("sort", f.SortField+","+dir)
	}
	return q
}

func (c *Client) CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, req, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) UpdateTask(ctx context.Context, req *entity.UpdateTaskRequest) error {
	return c.do(ctx, http.MethodPut, "/api/tasks", nil, req, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	q := url.Values{"id": {strconv.FormatInt(id, 10)}}
	return c.do(ctx, http.MethodDelete, "/api/tasks", q, nil, nil)
}

func (c *Client) taskAction(ctx context.Context, id int64, action string, q url.Values) (*entity.Task, error) {
	var task entity.Task
	path := fmt.Sprintf("/api/tasks/%d/%s", id, action)
	if err := c.do(ctx, http.MethodPut, path, q, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ToggleCompleted(ctx context.Context, id int64) (*entity.Task, error) {
	return c.taskAction(ctx, id, "toggle", nil)
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status entity.TaskStatus) (*entity.Task, error) {
	return c.taskAction(ctx, id, "status", url.Values{"status": {string(status)}})
}

// UpdateCategory with a nil categoryID removes the task from its category.
func (c *Client) UpdateCategory(ctx context.Context, id int64, categoryID *int64) (*entity.Task, error) {
	raw := "null"
	if categoryID != nil {
		raw = strconv.FormatInt(*categoryID, 10)
	}
	return c.taskAction(ctx, id, "category", url.Values{"categoryId": {raw}})
}

func (c *Client) TaskHistory(ctx context.Context, id int64) ([]entity.TaskAudit, error) {
	var history []entity.TaskAudit
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d/history", id), nil, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]entity.Category, error) {
	var items []entity.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*entity.Category, error) {
	var category entity.Category
	req := entity.CreateCategoryRequest{Name: name}
	if err := c.do(ctx, http.MethodPost, "/api/categories", nil, req, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (*entity.RegisterResponse, error) {
	var out entity.RegisterResponse
	req := entity.RegisterRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*entity.LoginResponse, error) {
	var out entity.LoginResponse
	req := entity.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPut, "/api/auth", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SuggestDescription(ctx context.Context, title string) (string, error) {
	var out struct {
		Description string `json:"description"`
	}
	req := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, "/api/assist/description", nil, req, &out); err != nil {
		return "", err
	}
	return out.Description, nil
}

func (c *Client) Recommend(ctx context.Context) (string, error) {
	var out struct {
		Recommendations string `json:"recommendations"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/assist/recommendations", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Recommendations, nil
}
