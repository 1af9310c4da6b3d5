package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskUrgency string

const (
	TaskUrgencyLow      TaskUrgency = "low"
	TaskUrgencyMedium   TaskUrgency = "medium"
	TaskUrgencyHigh     TaskUrgency = "high"
	TaskUrgencyCritical TaskUrgency = "critical"
)

func ValidTaskUrgency(u TaskUrgency) bool {
	switch u {
	case TaskUrgencyLow, TaskUrgencyMedium, TaskUrgencyHigh, TaskUrgencyCritical:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is a dispatchable unit of volunteer work. IsActive controls
// visibility in the volunteer listing and is independent of Status.
type Task struct {
	ID          int64       `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Location    string      `db:"location" json:"location"`
	Urgency     TaskUrgency `db:"urgency" json:"urgency"`
	Description string      `db:"description" json:"description"`
	Status      TaskStatus  `db:"status" json:"status"`
	IsActive    bool        `db:"is_active" json:"is_active"`
	CreatedBy   uuid.UUID   `db:"created_by" json:"created_by"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

type CreateTaskRequest struct {
	Title       string      `json:"title" binding:"required,max=200"`
	Location    string      `json:"location" binding:"required,max=200"`
	Urgency     TaskUrgency `json:"urgency" binding:"omitempty,urgency"`
	Description string      `json:"description" binding:"required"`
}

type UpdateTaskRequest struct {
	Title       *string      `json:"title" binding:"omitempty,max=200"`
	Location    *string      `json:"location" binding:"omitempty,max=200"`
	Urgency     *TaskUrgency `json:"urgency" binding:"omitempty,urgency"`
	Description *string      `json:"description"`
}

type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status" binding:"required"`
}

// ToggleTaskRequest optionally pins an explicit value instead of flipping.
type ToggleTaskRequest struct {
	Active *bool `json:"active"`
}

// TaskFilter narrows the staff listing. ActiveOnly defaults to true at the
// handler boundary.
type TaskFilter struct {
	Urgency    TaskUrgency
	ActiveOnly bool
	Limit      int
}
