package v1

import (
	"time"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
)

// timestampLayout is the fixed wire format for every timestamp.
const timestampLayout = "2006-01-02 15:04:05"

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type taskResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      string        `json:"status"`
	Priority    string        `json:"priority"`
	DueDate     *string       `json:"due_date"`
	UserID      string        `json:"user_id"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
	User        *userResponse `json:"user,omitempty"`
}

// newUserResponse projects the public fields of a user.
// The password hash never leaves the server.
func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(timestampLayout),
		UpdatedAt: user.UpdatedAt.Format(timestampLayout),
	}
}

// newTaskResponse projects a task into its wire shape. The user
// sub-object appears only when the owner was eagerly attached
// upstream; a nil owner is simply omitted, never an error.
func newTaskResponse(task *models.Task) taskResponse {
	resp := taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     formatNullableTime(task.DueDate),
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt.Format(timestampLayout),
		UpdatedAt:   task.UpdatedAt.Format(timestampLayout),
	}
	if task.Owner != nil {
		owner := newUserResponse(task.Owner)
		resp.User = &owner
	}
	return resp
}

func formatNullableTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(timestampLayout)
	return &formatted
}
