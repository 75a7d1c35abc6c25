package board

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrSaveInFlight  = errors.New("save already in progress")
)

const (
	dateLayout = time.DateOnly
	timeLayout = "15:04"
)

// Form - состояние окна создания/редактирования задачи.
// Дата и время редактируются отдельно и склеиваются при сохранении.
type Form struct {
	ID          int64
	Title       string
	Description string
	Priority    entity.Priority
	Date        string // YYYY-MM-DD, пусто - без срока
	Time        string // HH:MM, пусто - полночь
	Completed   bool
	Status      entity.TaskStatus
	CategoryID  *int64
	Location    *time.Location

	mu      sync.Mutex
	saving  bool
	lastErr error
}

// NewForm - пустая форма создания
func NewForm() *Form {
	return &Form{Priority: entity.PriorityLow, Status: entity.StatusTodo, Location: time.Local}
}

// EditForm - форма, заполненная из существующей задачи
func EditForm(t entity.Task) *Form {
	f := &Form{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
		Status:      t.Status,
		CategoryID:  t.CategoryID,
		Location:    time.Local,
	}
	if t.DueDate != nil {
		local := t.DueDate.In(f.Location)
		f.Date = local.Format(dateLayout)
		f.Time = local.Format(timeLayout)
	}
	return f
}

func (f *Form) Editing() bool { return f.ID > 0 }

// CanSave - кнопка сохранения недоступна без заголовка и во время сохранения
func (f *Form) CanSave() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.TrimSpace(f.Title) != "" && !f.saving
}

func (f *Form) Saving() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saving
}

// Err - ошибка последнего сохранения
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Form) beginSave() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saving {
		return ErrSaveInFlight
	}
	if strings.TrimSpace(f.Title) == "" {
		return ErrTitleRequired
	}
	f.saving = true
	return nil
}

func (f *Form) endSave(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saving = false
	f.lastErr = err
}

// DueDate склеивает Date и Time в один момент времени
func (f *Form) DueDate() (*time.Time, error) {
	date := strings.TrimSpace(f.Date)
	if date == "" {
		return nil, nil
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}

	clock := strings.TrimSpace(f.Time)
	if clock == "" {
		clock = "00:00"
	}
	due, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid due date %q %q", entity.ErrInvalidTaskData, f.Date, f.Time)
	}
	return &due, nil
}

func (f *Form) CreateRequest() (*entity.CreateTaskRequest, error) {
	due, err := f.DueDate()
	if err != nil {
		return nil, err
	}
	return &entity.CreateTaskRequest{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Priority:    f.Priority,
		DueDate:     due,
		Completed:   f.Completed,
		Status:      f.Status,
		CategoryID:  f.CategoryID,
	}, nil
}

func (f *Form) UpdateRequest() (*entity.UpdateTaskRequest, error) {
	if !f.Editing() {
		return nil, fmt.Errorf("%w: id is required", entity.ErrInvalidTaskData)
	}
	due, err := f.DueDate()
	if err != nil {
		return nil, err
	}
	return &entity.UpdateTaskRequest{
		ID:          f.ID,
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Priority:    f.Priority,
		DueDate:     due,
		Completed:   f.Completed,
	}, nil
}
