package services

import (
	"context"
	"log"

	"quizzesapi/events"
	"quizzesapi/models"
	"quizzesapi/store"

	"github.com/google/uuid"
)

const msgQuestionNotFound = "Question not found"

type QuestionService struct {
	store  store.Store
	events events.Publisher
}

func NewQuestionService(st store.Store, pub events.Publisher) *QuestionService {
	if pub == nil {
		pub = events.Discard
	}
	return &QuestionService{
		store:  st,
		events: pub,
	}
}

type QuestionRequest struct {
	Text *string `json:"text" binding:"required,notblank"`
}

func (s *QuestionService) CreateQuestion(ctx context.Context, req *QuestionRequest) (*models.Question, error) {
	question := &models.Question{
		ID:   uuid.New(),
		Text: *req.Text,
	}
	if err := s.store.Questions().Save(ctx, question); err != nil {
		return nil, err
	}

	log.Printf("Question created: %s", question.ID)
	s.events.Publish(events.QuestionCreated, question)
	return question, nil
}

func (s *QuestionService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	return s.store.Questions().FindAll(ctx)
}

func (s *QuestionService) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	question, err := s.store.Questions().FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, msgQuestionNotFound)
	}
	return question, nil
}
