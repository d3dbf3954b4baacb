package models

import "time"

// TaskAssignment links a user to a task. At most one row exists per
// (user, task) pair.
type TaskAssignment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uk_task_assignment;index" json:"user_id"`
	TaskID    uint64    `gorm:"not null;uniqueIndex:uk_task_assignment;index" json:"task_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
