package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/jackc/pgx/v5"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var taskColumns = []string{
	"id", "title", "description", "priority", "due_date",
	"completed", "status", "category_id", "created_at",
}

var taskReturning = "RETURNING " + strings.Join(taskColumns, ", ")

// колонка сортировки для каждого поля API
var sortColumns = map[string]string{
	entity.SortByDueDate:   "due_date",
	entity.SortByCreatedAt: "created_at",
	entity.SortByTitle:     "lower(title)",
	entity.SortByPriority:  "CASE priority WHEN 'LOW' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END",
	entity.SortByStatus:    "CASE status WHEN 'TODO' THEN 1 WHEN 'IN_PROGRESS' THEN 2 ELSE 3 END",
}

type TaskRepository struct {
	db DB
}

func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var task entity.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.DueDate,
		&task.Completed,
		&task.Status,
		&task.CategoryID,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func collectTasks(rows pgx.Rows) ([]entity.Task, error) {
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// mutationErr переводит ошибки одиночного UPDATE/INSERT в доменные
func mutationErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.ErrTaskNotFound
	}
	switch pgCode(err) {
	case pgForeignKeyViolation:
		return entity.ErrCategoryNotFound
	case pgCheckViolation:
		return &constraintError{sentinel: entity.ErrInvalidTaskData, cause: err}
	}
	return fmt.Errorf("%s task: %w", op, err)
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	query := `
	INSERT INTO tasks (title, description, priority, due_date, completed, status, category_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	` + taskReturning

	created, err := scanTask(r.db.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Priority),
		task.DueDate,
		task.Completed,
		string(task.Status),
		task.CategoryID,
	))
	if err != nil {
		return nil, mutationErr("create", err)
	}
	return created, nil
}

func (r *TaskRepository) GetByTaskId(ctx context.Context, taskId int64) (*entity.Task, error) {
	query := `SELECT ` + strings.Join(taskColumns, ", ") + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) List(ctx context.Context) ([]entity.Task, error) {
	return r.selectTasks(ctx, psql.Select(taskColumns...).From("tasks").OrderBy("id ASC"))
}

// Search - поиск по подстроке в заголовке без учёта регистра
func (r *TaskRepository) Search(ctx context.Context, query string) ([]entity.Task, error) {
	return r.selectTasks(ctx, buildSearchQuery(query))
}

// Filter - выборка по категории, приоритету, статусу и диапазону дат
func (r *TaskRepository) Filter(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	return r.selectTasks(ctx, buildFilterQuery(filter))
}

func (r *TaskRepository) selectTasks(ctx context.Context, b sq.SelectBuilder) ([]entity.Task, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collectTasks(rows)
}

func buildSearchQuery(q string) sq.SelectBuilder {
	b := psql.Select(taskColumns...).From("tasks")
	if q = strings.TrimSpace(q); q != "" {
		b = b.Where(sq.ILike{"title": "%" + escapeLike(q) + "%"})
	}
	return b.OrderBy("id ASC")
}

func buildFilterQuery(f entity.TaskFilter) sq.SelectBuilder {
	b := psql.Select(taskColumns...).From("tasks")
	if f.CategoryID != nil {
		b = b.Where(sq.Eq{"category_id": *f.CategoryID})
	}
	if f.Priority != "" {
		b = b.Where(sq.Eq{"priority": string(f.Priority)})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"due_date": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.LtOrEq{"due_date": *f.To})
	}

	col, ok := sortColumns[f.SortField]
	if !ok {
		col = sortColumns[entity.SortByDueDate]
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	return b.OrderBy(col+" "+dir, "id ASC")
}

// escapeLike экранирует спецсимволы LIKE, чтобы искать их буквально
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Update - полная замена редактируемых полей
func (r *TaskRepository) Update(ctx context.Context, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	query := `
	UPDATE tasks
	SET title = $1, description = $2, priority = $3, due_date = $4, completed = $5
	WHERE id = $6
	` + taskReturning

	task, err := scanTask(r.db.QueryRow(ctx, query,
		req.Title,
		req.Description,
		string(req.Priority),
		req.DueDate,
		req.Completed,
		req.ID,
	))
	if err != nil {
		return nil, mutationErr("update", err)
	}
	return task, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status entity.TaskStatus) (*entity.Task, error) {
	query := `UPDATE tasks SET status = $1 WHERE id = $2 ` + taskReturning

	task, err := scanTask(r.db.QueryRow(ctx, query, string(status), id))
	if err != nil {
		return nil, mutationErr("update status of", err)
	}
	return task, nil
}

// UpdateCategory - nil снимает категорию
func (r *TaskRepository) UpdateCategory(ctx context.Context, id int64, categoryID *int64) (*entity.Task, error) {
	query := `UPDATE tasks SET category_id = $1 WHERE id = $2 ` + taskReturning

	task, err := scanTask(r.db.QueryRow(ctx, query, categoryID, id))
	if err != nil {
		return nil, mutationErr("update category of", err)
	}
	return task, nil
}

func (r *TaskRepository) ToggleCompleted(ctx context.Context, id int64) (*entity.Task, error) {
	query := `UPDATE tasks SET completed = NOT completed WHERE id = $1 ` + taskReturning

	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mutationErr("toggle", err)
	}
	return task, nil
}

// Delete - удаление задачи
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrTaskNotFound
	}
	return nil
}
