// Package store is the storage gateway for users, quizzes and questions.
//
// Two implementations exist: Gorm, backed by a relational database, and
// Memory, used for tests and for running without a database.
package store

import (
	"context"
	"errors"

	"quizzesapi/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by lookups of a single record that does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("store: duplicate key")
)

type Store interface {
	Users() UserRepository
	Quizzes() QuizRepository
	Questions() QuestionRepository

	// Atomic runs fn as one unit of work. Every read and write fn performs
	// through the Store it is handed either commits together or not at all,
	// and no other unit of work interleaves with it.
	Atomic(ctx context.Context, fn func(Store) error) error
}

type UserRepository interface {
	// FindByID returns the user with its quizzes loaded.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	FindByActive(ctx context.Context, active bool) ([]models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmailAndIDNot(ctx context.Context, email string, id uuid.UUID) (bool, error)
	// Save inserts the user or replaces its scalar fields.
	Save(ctx context.Context, user *models.User) error
	// Delete removes the user and every quiz it owns.
	Delete(ctx context.Context, id uuid.UUID) error
}

type QuizRepository interface {
	// FindByID returns the quiz with its questions and user loaded.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	FindAllByUserID(ctx context.Context, userID uuid.UUID) ([]models.Quiz, error)
	// Save inserts the quiz together with its question links. It returns
	// ErrNotFound when the owning user does not exist.
	Save(ctx context.Context, quiz *models.Quiz) error
}

type QuestionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	FindAll(ctx context.Context) ([]models.Question, error)
	// FindAllByID returns the questions among ids that exist. Unknown ids are
	// skipped.
	FindAllByID(ctx context.Context, ids []uuid.UUID) ([]models.Question, error)
	Save(ctx context.Context, question *models.Question) error
}
