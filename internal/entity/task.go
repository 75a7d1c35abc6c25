package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// ParseStatus принимает статус в любом регистре
func ParseStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusTodo:
		return StatusTodo, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTaskData, s)
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority понимает и символьные значения, и старые числовые "1".."3"
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1", string(PriorityLow):
		return PriorityLow, nil
	case "2", string(PriorityMedium):
		return PriorityMedium, nil
	case "3", string(PriorityHigh):
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidTaskData, s)
}

// Rank is used for ordering; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 1
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var s string
	switch v := raw.(type) {
	case nil:
		*p = ""
		return nil
	case string:
		s = v
	case float64:
		s = fmt.Sprintf("%g", v)
	default:
		return fmt.Errorf("%w: priority must be a string", ErrInvalidTaskData)
	}
	if strings.TrimSpace(s) == "" {
		*p = ""
		return nil
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
	Status      TaskStatus `json:"status"`
	CategoryID  *int64     `json:"categoryId"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
	Status      TaskStatus `json:"status"`
	CategoryID  *int64     `json:"categoryId"`
}

// Normalize обрезает заголовок и проставляет значения по умолчанию
func (r *CreateTaskRequest) Normalize() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTaskData)
	}
	if r.Priority == "" {
		r.Priority = PriorityLow
	}
	if r.Status == "" {
		r.Status = StatusTodo
	} else {
		st, err := ParseStatus(string(r.Status))
		if err != nil {
			return err
		}
		r.Status = st
	}
	if r.CategoryID != nil && *r.CategoryID <= 0 {
		return fmt.Errorf("%w: invalid category id", ErrInvalidTaskData)
	}
	return nil
}

// UpdateTaskRequest полностью заменяет редактируемые поля задачи.
// Status и CategoryID меняются отдельными операциями.
type UpdateTaskRequest struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
}

func (r *UpdateTaskRequest) Normalize() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: id is required", ErrInvalidTaskData)
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTaskData)
	}
	if r.Priority == "" {
		r.Priority = PriorityLow
	}
	return nil
}

// TaskFilter - все условия объединяются через AND, пустые поля игнорируются
type TaskFilter struct {
	CategoryID *int64
	Priority   Priority
	Status     TaskStatus
	From       *time.Time
	To         *time.Time
	SortField  string
	SortDesc   bool
}

const (
	SortByDueDate   = "dueDate"
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
	SortByPriority  = "priority"
	SortByStatus    = "status"
)

// ParseSort разбирает "field,dir"; пустая строка даёт dueDate,asc
func ParseSort(s string) (field string, desc bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortByDueDate, false, nil
	}
	parts := strings.SplitN(s, ",", 2)
	field = strings.TrimSpace(parts[0])
	switch field {
	case SortByDueDate, SortByCreatedAt, SortByTitle, SortByPriority, SortByStatus:
	default:
		return "", false, fmt.Errorf("%w: unknown sort field %q", ErrInvalidTaskData, field)
	}
	if len(parts) == 2 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "asc", "":
		case "desc":
			desc = true
		default:
			return "", false, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidTaskData, parts[1])
		}
	}
	return field, desc, nil
}
