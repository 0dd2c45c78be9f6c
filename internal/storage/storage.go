// Package storage holds the persistent record stores. Implementations
// own ID generation (UUIDv7) and the created_at/updated_at timestamps.
package storage

import (
	"context"
	"errors"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already taken")
)

type UserStore interface {
	// CreateUser persists a new user. It returns ErrEmailTaken
	// if a user with the same email already exists.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)

	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs fetches users for a set of IDs in one round
	// trip, keyed by ID. Unknown IDs are simply absent from the
	// result, never an error.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)

	GetTaskByID(ctx context.Context, id string) (*models.Task, error)

	// GetTaskForOwner fetches a task only when it belongs to the
	// given user; any other task ID resolves to ErrNotFound.
	GetTaskForOwner(ctx context.Context, id, userID string) (*models.Task, error)

	// ListTasks returns every task, newest first.
	ListTasks(ctx context.Context) ([]*models.Task, error)

	// UpdateTask persists the mutable fields of an existing task.
	// The owner column is never written.
	UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error)

	// DeleteTaskForOwner permanently removes a task scoped to its
	// owner. It returns ErrNotFound when nothing was deleted.
	DeleteTaskForOwner(ctx context.Context, id, userID string) error
}

type TokenStore interface {
	CreateToken(ctx context.Context, token *models.AuthToken) (*models.AuthToken, error)
	GetTokenByHash(ctx context.Context, hash string) (*models.AuthToken, error)
}
