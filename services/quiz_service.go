package services

import (
	"context"
	"fmt"
	"log"

	"quizzesapi/events"
	"quizzesapi/models"
	"quizzesapi/store"

	"github.com/google/uuid"
)

const (
	msgQuizNotFound      = "Quiz not found"
	msgNoQuestionsFound  = "no course was found"
	msgQuizOwnerNotFound = "user not found with id: %s"
)

type QuizService struct {
	store  store.Store
	events events.Publisher
}

func NewQuizService(st store.Store, pub events.Publisher) *QuizService {
	if pub == nil {
		pub = events.Discard
	}
	return &QuizService{
		store:  st,
		events: pub,
	}
}

type QuizRequest struct {
	QuestionsIDs []uuid.UUID `json:"questionsIds" binding:"required,min=2"`
	UserID       uuid.UUID   `json:"userId" binding:"required"`
}

// CreateQuiz attaches whichever of the requested questions exist. It fails
// only when none of them do, or when the user is unknown.
func (s *QuizService) CreateQuiz(ctx context.Context, req *QuizRequest) (*models.Quiz, error) {
	questions, err := s.store.Questions().FindAllByID(ctx, req.QuestionsIDs)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, notFound("%s", msgNoQuestionsFound)
	}
	if len(questions) < len(req.QuestionsIDs) {
		log.Printf("Quiz for user %s: %d of %d questions found", req.UserID, len(questions), len(req.QuestionsIDs))
	}

	user, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		ID:        uuid.New(),
		UserID:    user.ID,
		Questions: questions,
	}
	if err := s.store.Quizzes().Save(ctx, quiz); err != nil {
		// The owner may have been deleted since it was looked up.
		return nil, mapNotFound(err, s.ownerMissing(req.UserID))
	}
	user.Quizzes = nil
	quiz.User = user

	log.Printf("Quiz created: %s for user %s with %d questions", quiz.ID, user.ID, len(questions))
	s.events.Publish(events.QuizCreated, quiz)
	return quiz, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	quiz, err := s.store.Quizzes().FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, msgQuizNotFound)
	}
	return quiz, nil
}

func (s *QuizService) ListQuizzesByUser(ctx context.Context, userID uuid.UUID) ([]models.Quiz, error) {
	if _, err := s.owner(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Quizzes().FindAllByUserID(ctx, userID)
}

func (s *QuizService) owner(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, s.ownerMissing(id))
	}
	return user, nil
}

func (s *QuizService) ownerMissing(id uuid.UUID) string {
	return fmt.Sprintf(msgQuizOwnerNotFound, id)
}
