package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
	"github.com/bharatnilam/my-laravel-api-2/internal/validation"
)

var (
	// ErrInvalidCredentials is returned uniformly for an unknown
	// email and a wrong password so login responses never reveal
	// which of the two failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidToken = errors.New("invalid token")
	ErrTaskNotFound = errors.New("task not found")
)

// ValidationError carries field-keyed messages for a rejected input.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

type AuthService interface {
	// Login authenticates the user by email and password, mints a
	// new opaque bearer token bound to the user and persists its
	// digest so Authenticate can resolve it later. Tokens never
	// expire and several may coexist per user, one per login.
	//
	// It returns ErrInvalidCredentials when the email is unknown
	// or the password does not match, without distinguishing the
	// two, or a *ValidationError for a malformed payload.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Authenticate resolves an opaque bearer token to the user it
	// was minted for. Resolution is a pure lookup; it returns
	// ErrInvalidToken when the token is unknown.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// TaskService orchestrates the task CRUD lifecycle. Every operation
// takes the resolved caller identity explicitly; requests without one
// are rejected upstream by the auth middleware.
//
// Listing and reads return tasks across all users, matching the
// behavior of the original API. Mutations are owner-scoped: updating
// or deleting another user's task yields ErrTaskNotFound, which keeps
// the ownership invariant without leaking task existence.
type TaskService interface {
	// ListTasks returns all tasks, newest first, with the owning
	// user eagerly attached to each.
	ListTasks(ctx context.Context, caller *models.User) ([]*models.Task, error)

	// CreateTask validates the input with every rule active, fills
	// in the status/priority defaults, sets the caller as owner and
	// persists. It returns a *ValidationError on rejected input.
	CreateTask(ctx context.Context, caller *models.User, input TaskInput) (*models.Task, error)

	// GetTask fetches a task by ID with its owner attached, or
	// ErrTaskNotFound.
	GetTask(ctx context.Context, caller *models.User, taskID string) (*models.Task, error)

	// UpdateTask fetches the caller's task, returning ErrTaskNotFound
	// before any validation runs when it is absent or owned by another
	// user, then validates only the supplied fields and applies them.
	// Unsupplied fields keep their prior values, an explicit null
	// clears the nullable fields and the owner is never changed.
	UpdateTask(ctx context.Context, caller *models.User, taskID string, input TaskInput) (*models.Task, error)

	// DeleteTask permanently removes the caller's task, or returns
	// ErrTaskNotFound.
	DeleteTask(ctx context.Context, caller *models.User, taskID string) error
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	User  *models.User
	Token string
}

// OptionalString is a request field that keeps an absent key, an
// explicit JSON null and a set value apart. encoding/json leaves
// absent fields untouched and calls UnmarshalJSON for everything
// else, null included.
type OptionalString struct {
	Present bool
	Null    bool
	Value   string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(data, []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// SetString builds a present, non-null optional value.
func SetString(value string) OptionalString {
	return OptionalString{Present: true, Value: value}
}

// NullString builds a present, explicitly null optional value.
func NullString() OptionalString {
	return OptionalString{Present: true, Null: true}
}

// TaskInput carries the fields of a create or update request.
// A zero OptionalString means the field was absent entirely.
type TaskInput struct {
	Title       OptionalString
	Description OptionalString
	Status      OptionalString
	Priority    OptionalString
	DueDate     OptionalString
}

// fields projects the supplied values into the shape
// the validation table checks.
func (in TaskInput) fields() validation.Fields {
	fields := make(validation.Fields)
	supply := func(name string, value OptionalString) {
		if value.Present {
			fields[name] = validation.Field{Null: value.Null, Value: value.Value}
		}
	}
	supply("title", in.Title)
	supply("description", in.Description)
	supply("status", in.Status)
	supply("priority", in.Priority)
	supply("due_date", in.DueDate)
	return fields
}
