package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'MEDIUM';index" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO';index" json:"status"`
	Completed   bool         `gorm:"not null;default:false" json:"completed"`
	ProjectID   *uint64      `gorm:"index" json:"project_id"`
	Deadline    *time.Time   `json:"deadline"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Project     *Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}

// SetStatus updates the status and keeps Completed in sync with it.
func (t *Task) SetStatus(status TaskStatus) {
	t.Status = status
	t.Completed = status == TaskStatusDone
}
