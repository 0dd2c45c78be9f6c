package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
	"github.com/bharatnilam/my-laravel-api-2/internal/storage"
)

const (
	seedUserCount = 8
	seedTaskCount = 40

	// The well-known development login.
	seedTestEmail    = "test@example.com"
	seedTestPassword = "password"
)

var seedTitleWords = []string{
	"review", "ship", "refactor", "document", "deploy",
	"audit", "archive", "schedule", "prepare", "investigate",
}

var seedTitleSubjects = []string{
	"the quarterly report", "the onboarding flow", "the billing export",
	"the staging environment", "the release notes", "the backup policy",
	"the customer survey", "the access logs", "the sprint board",
	"the migration plan",
}

// MustSeedDatabase inserts the well-known test user, a handful of
// generated users and a spread of random tasks across them. Running
// it twice is safe: existing users are reused, tasks are appended.
func MustSeedDatabase() {
	ctx := context.Background()
	store := storage.NewPostgresStore(globalLogger, globalPostgresPool)

	passwordHash, err := argon2id.CreateHash(seedTestPassword, argon2id.DefaultParams)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to hash seed password")
		panic(err)
	}

	users := make([]*models.User, 0, seedUserCount+1)
	users = append(users, mustSeedUser(ctx, store, "Test User", seedTestEmail, passwordHash))
	for i := 1; i <= seedUserCount; i++ {
		users = append(users, mustSeedUser(
			ctx,
			store,
			fmt.Sprintf("Seed User %d", i),
			fmt.Sprintf("user%d@example.com", i),
			passwordHash,
		))
	}

	statuses := models.Statuses()
	priorities := models.Priorities()
	for i := 0; i < seedTaskCount; i++ {
		owner := users[rand.Intn(len(users))]
		description := fmt.Sprintf("Seeded task %d, assigned while populating the database.", i+1)
		due := time.Now().AddDate(0, 0, 1+rand.Intn(30))

		_, err = store.CreateTask(ctx, &models.Task{
			UserID:      owner.ID,
			Title:       seedTaskTitle(),
			Description: &description,
			Status:      statuses[rand.Intn(len(statuses))],
			Priority:    priorities[rand.Intn(len(priorities))],
			DueDate:     &due,
		})
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("failed to seed task")
			panic(err)
		}
	}

	globalLogger.Info().
		Int("users", len(users)).
		Int("tasks", seedTaskCount).
		Msg("seeded database")
}

func mustSeedUser(ctx context.Context, store *storage.PostgresStore, name, email, passwordHash string) *models.User {
	user, err := store.CreateUser(ctx, &models.User{
		Name:     name,
		Email:    email,
		Password: passwordHash,
	})
	if err == nil {
		return user
	}
	if errors.Is(err, storage.ErrEmailTaken) {
		existing, lookupErr := store.GetUserByEmail(ctx, email)
		if lookupErr == nil {
			return existing
		}
		err = lookupErr
	}

	globalLogger.Error().
		Err(err).
		Str("email", email).
		Msg("failed to seed user")
	panic(err)
}

func seedTaskTitle() string {
	verb := seedTitleWords[rand.Intn(len(seedTitleWords))]
	subject := seedTitleSubjects[rand.Intn(len(seedTitleSubjects))]
	return fmt.Sprintf("%s %s", verb, subject)
}
