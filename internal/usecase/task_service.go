package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/St1cky1/task-manager/internal/repository"
)

const auditPublishTimeout = 5 * time.Second

// AuditPublisher интерфейс для публикации аудита (RabbitMQ или заглушка)
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

type TaskService struct {
	log       *slog.Logger
	taskRepo  repository.ITaskRepository
	auditRepo repository.ITaskAuditRepository
	publisher AuditPublisher
}

func NewTaskService(
	log *slog.Logger,
	taskRepo repository.ITaskRepository,
	auditRepo repository.ITaskAuditRepository,
	publisher AuditPublisher,
) *TaskService {
	return &TaskService{
		log:       log,
		taskRepo:  taskRepo,
		auditRepo: auditRepo,
		publisher: publisher,
	}
}

func (s *TaskService) ListTasks(ctx context.Context) ([]entity.Task, error) {
	return s.taskRepo.List(ctx)
}

func (s *TaskService) GetTask(ctx context.Context, taskID int64) (*entity.Task, error) {
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) SearchTasks(ctx context.Context, query string) ([]entity.Task, error) {
	return s.taskRepo.Search(ctx, query)
}

func (s *TaskService) FilterTasks(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	return s.taskRepo.Filter(ctx, filter)
}

func (s *TaskService) CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.sendAuditMessage(entity.ActionCreate, task.ID, nil, task)
	return task, nil
}

// UpdateTask - полная замена полей задачи
func (s *TaskService) UpdateTask(ctx context.Context, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	// 1. Получаем текущую задачу для аудита
	oldTask, err := s.GetTask(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	// 2. Обновляем одним запросом
	updated, err := s.taskRepo.Update(ctx, req)
	if err != nil {
		return nil, err
	}

	s.sendAuditMessage(entity.ActionUpdate, updated.ID, oldTask, updated)
	return updated, nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, taskID int64, status string) (*entity.Task, error) {
	st, err := entity.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	oldTask, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.UpdateStatus(ctx, taskID, st)
	if err != nil {
		return nil, err
	}

	s.sendAuditMessage(entity.ActionUpdate, taskID, oldTask, updated)
	return updated, nil
}

// UpdateCategory - nil снимает категорию с задачи
func (s *TaskService) UpdateCategory(ctx context.Context, taskID int64, categoryID *int64) (*entity.Task, error) {
	if categoryID != nil && *categoryID <= 0 {
		return nil, entity.ErrInvalidTaskData
	}

	oldTask, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.UpdateCategory(ctx, taskID, categoryID)
	if err != nil {
		return nil, err
	}

	s.sendAuditMessage(entity.ActionUpdate, taskID, oldTask, updated)
	return updated, nil
}

func (s *TaskService) ToggleCompleted(ctx context.Context, taskID int64) (*entity.Task, error) {
	oldTask, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.ToggleCompleted(ctx, taskID)
	if err != nil {
		return nil, err
	}

	s.sendAuditMessage(entity.ActionUpdate, taskID, oldTask, updated)
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID int64) error {
	if taskID <= 0 {
		return entity.ErrInvalidTaskData
	}

	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}

	s.sendAuditMessage(entity.ActionDelete, taskID, task, nil)
	return nil
}

func (s *TaskService) TaskHistory(ctx context.Context, taskID int64) ([]entity.TaskAudit, error) {
	return s.auditRepo.ListByTaskId(ctx, taskID)
}

func taskValues(t *entity.Task) map[string]any {
	values := map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"priority":    t.Priority,
		"completed":   t.Completed,
		"status":      t.Status,
		"due_date":    nil,
		"category_id": nil,
	}
	if t.DueDate != nil {
		values["due_date"] = t.DueDate.UTC().Format(time.RFC3339)
	}
	if t.CategoryID != nil {
		values["category_id"] = *t.CategoryID
	}
	return values
}

// diffValues возвращает только изменившиеся поля в виде {"old": .., "new": ..}
func diffValues(oldValues, newValues map[string]any) map[string]any {
	changes := make(map[string]any)
	for k, nv := range newValues {
		if ov := oldValues[k]; ov != nv {
			changes[k] = map[string]any{"old": ov, "new": nv}
		}
	}
	return changes
}

// Вспомогательный метод для отправки аудита
func (s *TaskService) sendAuditMessage(action entity.ActionType, taskID int64, oldTask, newTask *entity.Task) {
	msg := &entity.AuditMessage{
		Action:    action,
		EntityID:  taskID,
		Timestamp: time.Now().UTC(),
	}
	if oldTask != nil {
		msg.OldValues = taskValues(oldTask)
	}
	if newTask != nil {
		msg.NewValues = taskValues(newTask)
	}
	if oldTask != nil && newTask != nil {
		msg.Changes = diffValues(msg.OldValues, msg.NewValues)
	}

	// Асинхронная отправка, ошибка брокера не влияет на запрос
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditPublishTimeout)
		defer cancel()
		if err := s.publisher.PublishAuditMessage(ctx, msg); err != nil {
			s.log.Warn("audit publish failed", "action", action, "task_id", taskID, "error", err)
		}
	}()
}
