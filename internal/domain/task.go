package domain

import "time"

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"

	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

func IsValidTaskPriority(v string) bool {
	switch v {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

func IsValidTaskStatus(v string) bool {
	switch v {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CustomerID  *uint      `gorm:"index" json:"customer_id"`
	Customer    *Customer  `gorm:"constraint:OnDelete:SET NULL" json:"customer,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"size:2000" json:"description"`
	DueDate     *time.Time `gorm:"index" json:"due_date"`
	Priority    string     `gorm:"size:16;not null;default:medium" json:"priority"`
	Status      string     `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
