// Package board - клиентское состояние списка задач: загруженные задачи, фаза и действия через API
package board

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/St1cky1/task-manager/internal/entity"
)

// ErrStale - пока шёл запрос, применили более новое состояние; ответ отброшен
var ErrStale = errors.New("stale response discarded")

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseMutating
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseMutating:
		return "mutating"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// API - часть HTTP клиента, нужная списку
type API interface {
	ListTasks(ctx context.Context) ([]entity.Task, error)
	CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (int64, error)
	UpdateTask(ctx context.Context, req *entity.UpdateTaskRequest) error
	DeleteTask(ctx context.Context, id int64) error
	ToggleCompleted(ctx context.Context, id int64) (*entity.Task, error)
	UpdateStatus(ctx context.Context, id int64, status entity.TaskStatus) (*entity.Task, error)
	UpdateCategory(ctx context.Context, id int64, categoryID *int64) (*entity.Task, error)
}

// Board безопасен для конкурентного использования.
// Каждое изменение получает номер; ответ списка старше последнего изменения отбрасывается.
type Board struct {
	api API

	mu      sync.Mutex
	phase   Phase
	tasks   []entity.Task
	err     error
	issued  uint64
	applied uint64
}

func New(api API) *Board {
	return &Board{api: api, phase: PhaseLoading}
}

type Snapshot struct {
	Phase Phase
	Tasks []entity.Task
	Err   error
}

// Snapshot - задачи в порядке отображения
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{Phase: b.phase, Tasks: SortTasks(b.tasks), Err: b.err}
}

func (b *Board) begin(phase Phase) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issued++
	b.phase = phase
	return b.issued
}

func (b *Board) Load(ctx context.Context) error {
	seq := b.begin(PhaseLoading)
	tasks, err := b.api.ListTasks(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq < b.applied {
		return ErrStale
	}
	b.applied = seq
	if err != nil {
		b.phase, b.err = PhaseError, err
		return err
	}
	b.tasks, b.phase, b.err = tasks, PhaseLoaded, nil
	return nil
}

// mutate выполняет запрос и при успехе применяет patch к локальному списку.
// При ошибке список не меняется, фаза - ошибка
func (b *Board) mutate(call func() error, patch func(tasks []entity.Task) []entity.Task) error {
	seq := b.begin(PhaseMutating)
	err := call()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.phase, b.err = PhaseError, err
		return err
	}
	if seq > b.applied {
		b.applied = seq
	}
	b.tasks = patch(b.tasks)
	b.phase, b.err = PhaseLoaded, nil
	return nil
}

func replaceTask(updated *entity.Task) func([]entity.Task) []entity.Task {
	return func(tasks []entity.Task) []entity.Task {
		out := slices.Clone(tasks)
		for i := range out {
			if out[i].ID == updated.ID {
				out[i] = *updated
			}
		}
		return out
	}
}

func (b *Board) Toggle(ctx context.Context, id int64) error {
	var updated *entity.Task
	return b.mutate(func() (err error) {
		updated, err = b.api.ToggleCompleted(ctx, id)
		return err
	}, func(tasks []entity.Task) []entity.Task {
		return replaceTask(updated)(tasks)
	})
}

func (b *Board) SetStatus(ctx context.Context, id int64, status entity.TaskStatus) error {
	var updated *entity.Task
	return b.mutate(func() (err error) {
		updated, err = b.api.UpdateStatus(ctx, id, status)
		return err
	}, func(tasks []entity.Task) []entity.Task {
		return replaceTask(updated)(tasks)
	})
}

func (b *Board) SetCategory(ctx context.Context, id int64, categoryID *int64) error {
	var updated *entity.Task
	return b.mutate(func() (err error) {
		updated, err = b.api.UpdateCategory(ctx, id, categoryID)
		return err
	}, func(tasks []entity.Task) []entity.Task {
		return replaceTask(updated)(tasks)
	})
}

func (b *Board) Delete(ctx context.Context, id int64) error {
	return b.mutate(func() error {
		return b.api.DeleteTask(ctx, id)
	}, func(tasks []entity.Task) []entity.Task {
		return slices.DeleteFunc(slices.Clone(tasks), func(t entity.Task) bool { return t.ID == id })
	})
}

// Save отправляет форму и перезагружает список. При ошибке ввод в форме сохраняется
func (b *Board) Save(ctx context.Context, f *Form) error {
	if err := f.beginSave(); err != nil {
		return err
	}

	var err error
	if f.Editing() {
		var req *entity.UpdateTaskRequest
		if req, err = f.UpdateRequest(); err == nil {
			err = b.mutate(func() error { return b.api.UpdateTask(ctx, req) }, keep)
		}
	} else {
		var req *entity.CreateTaskRequest
		if req, err = f.CreateRequest(); err == nil {
			err = b.mutate(func() error {
				_, err := b.api.CreateTask(ctx, req)
				return err
			}, keep)
		}
	}
	f.endSave(err)
	if err != nil {
		return err
	}
	return b.Load(ctx)
}

func keep(tasks []entity.Task) []entity.Task { return tasks }
