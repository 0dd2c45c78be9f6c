package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
)

type PostgresStore struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewPostgresStore(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) *PostgresStore {
	return &PostgresStore{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		ID:        userUUID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const insertUserQuery = `
INSERT INTO users (id,
                   name,
                   email,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Name,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			s.logger.Error().
				Str("email", user.Email).
				Msg("email already taken")
			return nil, ErrEmailTaken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")

	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{ID: id}

	const selectUserByIDQuery = `
SELECT name,
       email,
       password,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByIDQuery,
		user.ID,
	).Scan(
		&user.Name,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to select user by id")
		return nil, err
	}

	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{Email: email}

	const selectUserByEmailQuery = `
SELECT id,
       name,
       password,
       created_at,
       updated_at
FROM users
WHERE email = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to select user by email")
		return nil, err
	}

	return user, nil
}

func (s *PostgresStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	const selectUsersByIDsQuery = `
SELECT id,
       name,
       email,
       password,
       created_at,
       updated_at
FROM users
WHERE id = ANY ($1)
`
	rows, err := s.pgPool.Query(
		ctx,
		selectUsersByIDsQuery,
		ids,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users by ids")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		user := &models.User{}
		err = rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Password,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan user")
			return nil, err
		}
		users[user.ID] = user
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	return users, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	now := time.Now()
	task = &models.Task{
		ID:          taskUUID.String(),
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   title,
                   description,
                   status,
                   priority,
                   due_date,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")

	return task, nil
}

const selectTaskColumns = `
SELECT id,
       user_id,
       title,
       description,
       status,
       priority,
       due_date,
       created_at,
       updated_at
FROM tasks
`

func (s *PostgresStore) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	const selectTaskByIDQuery = selectTaskColumns + `
WHERE id = $1
`
	task, err := s.scanTask(s.pgPool.QueryRow(ctx, selectTaskByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}

	return task, nil
}

func (s *PostgresStore) GetTaskForOwner(ctx context.Context, id, userID string) (*models.Task, error) {
	const selectTaskForOwnerQuery = selectTaskColumns + `
WHERE id = $1 AND user_id = $2
`
	task, err := s.scanTask(s.pgPool.QueryRow(ctx, selectTaskForOwnerQuery, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Str("user_id", userID).
			Msg("failed to select task for owner")
		return nil, err
	}

	return task, nil
}

func (s *PostgresStore) ListTasks(ctx context.Context) ([]*models.Task, error) {
	const selectTasksQuery = selectTaskColumns + `
ORDER BY created_at DESC
`
	rows, err := s.pgPool.Query(ctx, selectTasksQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	return tasks, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.UpdatedAt = time.Now()

	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    status = $3,
    priority = $4,
    due_date = $5,
    updated_at = $6
WHERE id = $7
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")

	return task, nil
}

func (s *PostgresStore) DeleteTaskForOwner(ctx context.Context, id, userID string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		id,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")

	return nil
}

func (s *PostgresStore) CreateToken(ctx context.Context, token *models.AuthToken) (*models.AuthToken, error) {
	tokenUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate token uuid")
		return nil, err
	}

	token = &models.AuthToken{
		ID:        tokenUUID.String(),
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		CreatedAt: time.Now(),
	}

	const insertTokenQuery = `
INSERT INTO auth_tokens (id,
                         user_id,
                         token_hash,
                         created_at)
VALUES ($1, $2, $3, $4)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertTokenQuery,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.CreatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert token")
		return nil, err
	}
	s.logger.Debug().
		Str("token_id", token.ID).
		Msg("inserted token")

	return token, nil
}

func (s *PostgresStore) GetTokenByHash(ctx context.Context, hash string) (*models.AuthToken, error) {
	token := &models.AuthToken{TokenHash: hash}

	const selectTokenByHashQuery = `
SELECT id,
       user_id,
       created_at
FROM auth_tokens
WHERE token_hash = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTokenByHashQuery,
		token.TokenHash,
	).Scan(
		&token.ID,
		&token.UserID,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select token by hash")
		return nil, err
	}

	return token, nil
}

func (s *PostgresStore) scanTask(row pgx.Row) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
