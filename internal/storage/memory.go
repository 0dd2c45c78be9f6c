package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
)

// MemoryStore is a mutex-guarded in-memory implementation of the
// record stores, used by the tests and for database-less runs.
// All records are copied on the way in and out so callers can
// never mutate stored state through shared pointers.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]*models.User
	emails map[string]string
	tasks  map[string]*models.Task
	tokens map[string]*models.AuthToken
	seq    map[string]int
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		tasks:  make(map[string]*models.Task),
		tokens: make(map[string]*models.AuthToken),
		seq:    make(map[string]int),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return nil, ErrEmailTaken
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stored := &models.User{
		ID:        userUUID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[stored.ID] = stored
	s.emails[stored.Email] = stored.ID

	return cloneUser(stored), nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *MemoryStore) GetUsersByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			users[id] = cloneUser(user)
		}
	}
	return users, nil
}

func (s *MemoryStore) CreateTask(_ context.Context, task *models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taskUUID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stored := &models.Task{
		ID:          taskUUID.String(),
		UserID:      task.UserID,
		Title:       task.Title,
		Description: cloneStringPtr(task.Description),
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     cloneTimePtr(task.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks[stored.ID] = stored
	s.nextID++
	s.seq[stored.ID] = s.nextID

	return cloneTask(stored), nil
}

func (s *MemoryStore) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTask(task), nil
}

func (s *MemoryStore) GetTaskForOwner(_ context.Context, id, userID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return nil, ErrNotFound
	}
	return cloneTask(task), nil
}

func (s *MemoryStore) ListTasks(_ context.Context) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, cloneTask(task))
	}
	// Newest first, matching the postgres ordering.
	sort.Slice(tasks, func(i, j int) bool {
		return s.seq[tasks[i].ID] > s.seq[tasks[j].ID]
	})
	return tasks, nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, task *models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[task.ID]
	if !ok {
		return nil, ErrNotFound
	}

	stored.Title = task.Title
	stored.Description = cloneStringPtr(task.Description)
	stored.Status = task.Status
	stored.Priority = task.Priority
	stored.DueDate = cloneTimePtr(task.DueDate)
	stored.UpdatedAt = time.Now()

	return cloneTask(stored), nil
}

func (s *MemoryStore) DeleteTaskForOwner(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return ErrNotFound
	}
	delete(s.tasks, id)
	delete(s.seq, id)
	return nil
}

func (s *MemoryStore) CreateToken(_ context.Context, token *models.AuthToken) (*models.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokenUUID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	stored := &models.AuthToken{
		ID:        tokenUUID.String(),
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		CreatedAt: time.Now(),
	}
	s.tokens[stored.TokenHash] = stored

	cloned := *stored
	return &cloned, nil
}

func (s *MemoryStore) GetTokenByHash(_ context.Context, hash string) (*models.AuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[hash]
	if !ok {
		return nil, ErrNotFound
	}
	cloned := *token
	return &cloned, nil
}

// TaskCount reports the number of stored tasks. Test helper.
func (s *MemoryStore) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func cloneUser(user *models.User) *models.User {
	cloned := *user
	return &cloned
}

func cloneTask(task *models.Task) *models.Task {
	cloned := *task
	cloned.Description = cloneStringPtr(task.Description)
	cloned.DueDate = cloneTimePtr(task.DueDate)
	cloned.Owner = nil
	return &cloned
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
