package repository

import (
	"context"
	"fmt"

	"github.com/St1cky1/task-manager/internal/entity"
)

type TaskAuditRepository struct {
	db DB
}

func NewTaskAuditRepository(db DB) *TaskAuditRepository {
	return &TaskAuditRepository{
		db: db,
	}
}

func (r *TaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	query := `
	INSERT INTO task_audit (message_id, action, entity_type, entity_id, old_values, new_values, changes, changed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		audit.MessageID,
		string(audit.Action),
		audit.EntityType,
		audit.EntityID,
		audit.OldValues,
		audit.NewValues,
		audit.Changes,
		audit.ChangedAt,
	).Scan(&audit.ID)
	if err != nil {
		return fmt.Errorf("create audit: %w", err)
	}
	return nil
}

// ListByTaskId - история изменений задачи, новые записи первыми
func (r *TaskAuditRepository) ListByTaskId(ctx context.Context, taskId int64) ([]entity.TaskAudit, error) {
	query := `
	SELECT id, message_id, action, entity_type, entity_id, old_values::text, new_values::text, changes::text, changed_at
	FROM task_audit
	WHERE entity_id = $1 AND entity_type = 'task'
	ORDER BY changed_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, taskId)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	audits := make([]entity.TaskAudit, 0)
	for rows.Next() {
		var audit entity.TaskAudit
		err := rows.Scan(
			&audit.ID,
			&audit.MessageID,
			&audit.Action,
			&audit.EntityType,
			&audit.EntityID,
			&audit.OldValues,
			&audit.NewValues,
			&audit.Changes,
			&audit.ChangedAt,
		)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}
