package services

import (
	"context"
	"sync"
	"testing"

	"quizzesapi/models"
	"quizzesapi/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	eventType string
	payload   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{eventType, payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

type fixture struct {
	ctx       context.Context
	store     *store.Memory
	events    *recordingPublisher
	users     *UserService
	quizzes   *QuizService
	questions *QuestionService
}

func newFixture() *fixture {
	st := store.NewMemory()
	pub := &recordingPublisher{}
	return &fixture{
		ctx:       context.Background(),
		store:     st,
		events:    pub,
		users:     NewUserService(st, pub),
		quizzes:   NewQuizService(st, pub),
		questions: NewQuestionService(st, pub),
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func userReq(name, email string, active *bool) *UserRequest {
	return &UserRequest{Name: strPtr(name), Email: strPtr(email), Active: active}
}

func (f *fixture) user(t *testing.T, name, email string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(f.ctx, userReq(name, email, nil))
	require.NoError(t, err)
	return u
}

func (f *fixture) question(t *testing.T, text string) *models.Question {
	t.Helper()
	q, err := f.questions.CreateQuestion(f.ctx, &QuestionRequest{Text: strPtr(text)})
	require.NoError(t, err)
	return q
}

func assertKind(t *testing.T, err error, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	assert.Equal(t, message, err.Error())
}
