package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
	"github.com/bharatnilam/my-laravel-api-2/internal/storage"
	"github.com/bharatnilam/my-laravel-api-2/internal/validation"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  storage.TaskStore
	users  storage.UserStore
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskStore,
	users storage.UserStore,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
		users:  users,
	}
}

// taskRules is the single constraint table shared by create and
// update; the validation mode decides how absent fields are treated.
func taskRules() []validation.Rule {
	return []validation.Rule{
		{Field: "title", Required: true, MaxLen: 255},
		{Field: "description", Nullable: true},
		{Field: "status", Enum: models.Statuses()},
		{Field: "priority", Enum: models.Priorities()},
		{Field: "due_date", Nullable: true, DateTime: true},
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, caller *models.User) ([]*models.Task, error) {
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		return nil, err
	}

	err = s.attachOwners(ctx, tasks)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Str("caller_id", caller.ID).
		Msg("listed tasks")
	return tasks, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, caller *models.User, input TaskInput) (*models.Task, error) {
	errs := validation.Check(taskRules(), input.fields(), validation.Strict)
	if errs.Any() {
		s.logger.Warn().
			Int("fields", len(errs)).
			Str("caller_id", caller.ID).
			Msg("rejected task input")
		return nil, &ValidationError{Fields: errs}
	}

	task := &models.Task{
		UserID:   caller.ID,
		Title:    input.Title.Value,
		Status:   models.DefaultStatus,
		Priority: models.DefaultPriority,
	}
	if input.Description.Present && !input.Description.Null {
		description := input.Description.Value
		task.Description = &description
	}
	if input.Status.Present {
		task.Status = input.Status.Value
	}
	if input.Priority.Present {
		task.Priority = input.Priority.Value
	}
	if input.DueDate.Present && !input.DueDate.Null {
		// Already validated by the due_date rule.
		due, _ := validation.ParseDateTime(input.DueDate.Value)
		task.DueDate = &due
	}

	task, err := s.tasks.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("caller_id", caller.ID).
			Msg("failed to create task")
		return nil, err
	}
	task.Owner = caller

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, caller *models.User, taskID string) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to fetch task")
		return nil, err
	}

	owner, err := s.users.GetUserByID(ctx, task.UserID)
	if err == nil {
		task.Owner = owner
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to fetch task owner")
		return nil, err
	}

	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, caller *models.User, taskID string, input TaskInput) (*models.Task, error) {
	// The lookup comes first: an unknown or foreign task id is
	// NotFound no matter what the payload looks like.
	task, err := s.tasks.GetTaskForOwner(ctx, taskID, caller.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to fetch task")
		return nil, err
	}

	errs := validation.Check(taskRules(), input.fields(), validation.Partial)
	if errs.Any() {
		s.logger.Warn().
			Int("fields", len(errs)).
			Str("task_id", taskID).
			Msg("rejected task input")
		return nil, &ValidationError{Fields: errs}
	}

	// Only the supplied fields change; the owner never does.
	// An explicit null clears the nullable fields.
	if input.Title.Present {
		task.Title = input.Title.Value
	}
	if input.Description.Present {
		if input.Description.Null {
			task.Description = nil
		} else {
			description := input.Description.Value
			task.Description = &description
		}
	}
	if input.Status.Present {
		task.Status = input.Status.Value
	}
	if input.Priority.Present {
		task.Priority = input.Priority.Value
	}
	if input.DueDate.Present {
		if input.DueDate.Null {
			task.DueDate = nil
		} else {
			due, _ := validation.ParseDateTime(input.DueDate.Value)
			task.DueDate = &due
		}
	}

	task, err = s.tasks.UpdateTask(ctx, task)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}
	task.Owner = caller

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, caller *models.User, taskID string) error {
	err := s.tasks.DeleteTaskForOwner(ctx, taskID, caller.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", caller.ID).
		Msg("deleted task")
	return nil
}

// attachOwners resolves the owning users for a batch of tasks in a
// single store round trip. A task whose owner is missing keeps a nil
// Owner rather than failing the whole listing.
func (s *taskServiceImpl) attachOwners(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := seen[task.UserID]; ok {
			continue
		}
		seen[task.UserID] = struct{}{}
		ids = append(ids, task.UserID)
	}

	owners, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to fetch task owners")
		return err
	}

	for _, task := range tasks {
		task.Owner = owners[task.UserID]
	}
	return nil
}
