package services

import (
	"context"
	"log"

	"quizzesapi/events"
	"quizzesapi/models"
	"quizzesapi/store"

	"github.com/google/uuid"
)

const (
	msgUserNotFound = "User not found"
	msgEmailTaken   = "User already exists with this email"
)

type UserService struct {
	store  store.Store
	events events.Publisher
}

func NewUserService(st store.Store, pub events.Publisher) *UserService {
	if pub == nil {
		pub = events.Discard
	}
	return &UserService{
		store:  st,
		events: pub,
	}
}

// UserRequest is the body of both create and update. Active is optional on
// create, where it defaults to true. An update replaces every field, so an
// update that leaves Active out deactivates the user.
type UserRequest struct {
	Name   *string `json:"name" binding:"required,notblank"`
	Email  *string `json:"email" binding:"required,notblank"`
	Active *bool   `json:"active"`
}

// ListUsers returns every user, or only those whose active flag equals
// *active when it is set.
func (s *UserService) ListUsers(ctx context.Context, active *bool) ([]models.User, error) {
	if active == nil {
		return s.store.Users().FindAll(ctx)
	}
	return s.store.Users().FindByActive(ctx, *active)
}

func (s *UserService) CreateUser(ctx context.Context, req *UserRequest) (*models.User, error) {
	user := &models.User{
		ID:      uuid.New(),
		Name:    *req.Name,
		Email:   *req.Email,
		Active:  req.Active == nil || *req.Active,
		Quizzes: []models.Quiz{},
	}

	err := s.store.Atomic(ctx, func(tx store.Store) error {
		taken, err := tx.Users().ExistsByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return conflict("%s", msgEmailTaken)
		}
		return tx.Users().Save(ctx, user)
	})
	if err != nil {
		return nil, mapStoreError(err, msgUserNotFound, msgEmailTaken)
	}

	log.Printf("User created: %s (%s)", user.ID, user.Email)
	s.events.Publish(events.UserCreated, user)
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, msgUserNotFound)
	}
	return user, nil
}

// UpdateUser replaces name, email and active. The email check runs before the
// existence check, so a taken email wins over an unknown id.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *UserRequest) (*models.User, error) {
	var user *models.User
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		taken, err := tx.Users().ExistsByEmailAndIDNot(ctx, *req.Email, id)
		if err != nil {
			return err
		}
		if taken {
			return conflict("%s", msgEmailTaken)
		}

		user, err = tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		user.Name = *req.Name
		user.Email = *req.Email
		user.Active = req.Active != nil && *req.Active
		return tx.Users().Save(ctx, user)
	})
	if err != nil {
		return nil, mapStoreError(err, msgUserNotFound, msgEmailTaken)
	}

	log.Printf("User updated: %s", user.ID)
	s.events.Publish(events.UserUpdated, user)
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return mapNotFound(err, msgUserNotFound)
	}

	log.Printf("User deleted: %s", id)
	s.events.Publish(events.UserDeleted, map[string]uuid.UUID{"id": id})
	return nil
}

