package entity

import (
	"time"
)

type ActionType string

const (
	ActionCreate ActionType = "Create"
	ActionUpdate ActionType = "Update"
	ActionDelete ActionType = "Delete"
)

type TaskAudit struct {
	ID         int64      `json:"id"`
	MessageID  string     `json:"messageId"`
	Action     ActionType `json:"action"`
	EntityType string     `json:"entityType"`
	EntityID   int64      `json:"entityId"`
	OldValues  *string    `json:"oldValues"`
	NewValues  *string    `json:"newValues"`
	Changes    *string    `json:"changes"`
	ChangedAt  time.Time  `json:"changedAt"`
}

type AuditMessage struct {
	MessageID string         `json:"message_id"`
	Action    ActionType     `json:"action"`
	EntityID  int64          `json:"entity_id"`
	OldValues map[string]any `json:"old_values"`
	NewValues map[string]any `json:"new_values"`
	Changes   map[string]any `json:"changes"`
	Timestamp time.Time      `json:"timestamp"`
}
