package repository

import (
	"context"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB - общий интерфейс для *pgxpool.Pool и pgxmock в тестах
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ITaskRepository - интерфейс для TaskRepository
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error)
	GetByTaskId(ctx context.Context, taskId int64) (*entity.Task, error)
	List(ctx context.Context) ([]entity.Task, error)
	Search(ctx context.Context, query string) ([]entity.Task, error)
	Filter(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
	Update(ctx context.Context, req *entity.UpdateTaskRequest) (*entity.Task, error)
	UpdateStatus(ctx context.Context, id int64, status entity.TaskStatus) (*entity.Task, error)
	UpdateCategory(ctx context.Context, id int64, categoryID *int64) (*entity.Task, error)
	ToggleCompleted(ctx context.Context, id int64) (*entity.Task, error)
	Delete(ctx context.Context, id int64) error
}

// ICategoryRepository - интерфейс для CategoryRepository
type ICategoryRepository interface {
	Create(ctx context.Context, name string) (*entity.Category, error)
	GetById(ctx context.Context, id int64) (*entity.Category, error)
	List(ctx context.Context) ([]entity.Category, error)
}

// IUserRepository - интерфейс для UserRepository
type IUserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// ITaskAuditRepository - интерфейс для TaskAuditRepository
type ITaskAuditRepository interface {
	Create(ctx context.Context, audit *entity.TaskAudit) error
	ListByTaskId(ctx context.Context, taskId int64) ([]entity.TaskAudit, error)
}
