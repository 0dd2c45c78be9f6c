package models

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	DefaultStatus   = StatusPending
	DefaultPriority = PriorityMedium
)

// Statuses returns every valid task status.
func Statuses() []string {
	return []string{
		StatusPending,
		StatusInProgress,
		StatusCompleted,
		StatusCancelled,
	}
}

// Priorities returns every valid task priority.
func Priorities() []string {
	return []string{
		PriorityLow,
		PriorityMedium,
		PriorityHigh,
		PriorityUrgent,
	}
}

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Status      string
	Priority    string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Owner is set only when the owning user
	// was eagerly attached by the caller.
	Owner *User
}
