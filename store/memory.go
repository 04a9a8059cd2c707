package store

import (
	"context"
	"sort"
	"sync"

	"quizzesapi/models"

	"github.com/google/uuid"
)

var _ Store = (*Memory)(nil)

// Memory keeps records in process memory. Records are copied on the way in
// and out, so callers never share state with the store.
type Memory struct {
	tx   *sync.Mutex
	data *memoryData
}

type memoryData struct {
	mu        sync.RWMutex
	seq       int64
	users     map[uuid.UUID]memoryUser
	quizzes   map[uuid.UUID]memoryQuiz
	questions map[uuid.UUID]memoryQuestion
}

type memoryUser struct {
	user models.User
	seq  int64
}

type memoryQuiz struct {
	id          uuid.UUID
	userID      uuid.UUID
	questionIDs []uuid.UUID
	seq         int64
}

type memoryQuestion struct {
	question models.Question
	seq      int64
}

func NewMemory() *Memory {
	return &Memory{
		tx: &sync.Mutex{},
		data: &memoryData{
			users:     make(map[uuid.UUID]memoryUser),
			quizzes:   make(map[uuid.UUID]memoryQuiz),
			questions: make(map[uuid.UUID]memoryQuestion),
		},
	}
}

func (s *Memory) Users() UserRepository         { return memoryUsers{s.data} }
func (s *Memory) Quizzes() QuizRepository       { return memoryQuizzes{s.data} }
func (s *Memory) Questions() QuestionRepository { return memoryQuestions{s.data} }

// Atomic serialises units of work against each other. Writes made by fn are
// not rolled back when it fails.
func (s *Memory) Atomic(ctx context.Context, fn func(Store) error) error {
	s.tx.Lock()
	defer s.tx.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

func (d *memoryData) next() int64 {
	d.seq++
	return d.seq
}

// quiz assembles a stored quiz. Callers hold d.mu.
func (d *memoryData) quiz(q memoryQuiz, withUser bool) models.Quiz {
	quiz := models.Quiz{
		ID:        q.id,
		UserID:    q.userID,
		Questions: make([]models.Question, 0, len(q.questionIDs)),
	}
	for _, id := range q.questionIDs {
		if stored, ok := d.questions[id]; ok {
			quiz.Questions = append(quiz.Questions, stored.question)
		}
	}
	if withUser {
		if owner, ok := d.users[q.userID]; ok {
			user := owner.user
			user.Quizzes = nil
			quiz.User = &user
		}
	}
	return quiz
}

// quizzesOf returns the quizzes owned by userID in creation order. Callers
// hold d.mu.
func (d *memoryData) quizzesOf(userID uuid.UUID, withUser bool) []models.Quiz {
	owned := make([]memoryQuiz, 0)
	for _, q := range d.quizzes {
		if q.userID == userID {
			owned = append(owned, q)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].seq < owned[j].seq })

	quizzes := make([]models.Quiz, 0, len(owned))
	for _, q := range owned {
		quizzes = append(quizzes, d.quiz(q, withUser))
	}
	return quizzes
}

func (d *memoryData) usersWhere(match func(models.User) bool) []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stored := make([]memoryUser, 0, len(d.users))
	for _, u := range d.users {
		if match(u.user) {
			stored = append(stored, u)
		}
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

	users := make([]models.User, 0, len(stored))
	for _, u := range stored {
		user := u.user
		user.Quizzes = d.quizzesOf(user.ID, false)
		users = append(users, user)
	}
	return users
}

type memoryUsers struct {
	d *memoryData
}

func (r memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	stored, ok := r.d.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user := stored.user
	user.Quizzes = r.d.quizzesOf(id, false)
	return &user, nil
}

func (r memoryUsers) FindAll(_ context.Context) ([]models.User, error) {
	return r.d.usersWhere(func(models.User) bool { return true }), nil
}

func (r memoryUsers) FindByActive(_ context.Context, active bool) ([]models.User, error) {
	return r.d.usersWhere(func(u models.User) bool { return u.Active == active }), nil
}

func (r memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.ExistsByEmailAndIDNot(ctx, email, uuid.Nil)
}

func (r memoryUsers) ExistsByEmailAndIDNot(_ context.Context, email string, id uuid.UUID) (bool, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	for _, u := range r.d.users {
		if u.user.Email == email && u.user.ID != id {
			return true, nil
		}
	}
	return false, nil
}

func (r memoryUsers) Save(_ context.Context, user *models.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	for _, u := range r.d.users {
		if u.user.Email == user.Email && u.user.ID != user.ID {
			return ErrDuplicate
		}
	}

	stored, ok := r.d.users[user.ID]
	if !ok {
		stored.seq = r.d.next()
	}
	stored.user = *user
	stored.user.Quizzes = nil
	r.d.users[user.ID] = stored
	return nil
}

func (r memoryUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.users[id]; !ok {
		return ErrNotFound
	}
	for quizID, q := range r.d.quizzes {
		if q.userID == id {
			delete(r.d.quizzes, quizID)
		}
	}
	delete(r.d.users, id)
	return nil
}

type memoryQuizzes struct {
	d *memoryData
}

func (r memoryQuizzes) FindByID(_ context.Context, id uuid.UUID) (*models.Quiz, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	stored, ok := r.d.quizzes[id]
	if !ok {
		return nil, ErrNotFound
	}
	quiz := r.d.quiz(stored, true)
	return &quiz, nil
}

func (r memoryQuizzes) FindAllByUserID(_ context.Context, userID uuid.UUID) ([]models.Quiz, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	return r.d.quizzesOf(userID, true), nil
}

func (r memoryQuizzes) Save(_ context.Context, quiz *models.Quiz) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.quizzes[quiz.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := r.d.users[quiz.UserID]; !ok {
		return ErrNotFound
	}
	r.d.quizzes[quiz.ID] = memoryQuiz{
		id:          quiz.ID,
		userID:      quiz.UserID,
		questionIDs: quiz.QuestionIDs(),
		seq:         r.d.next(),
	}
	return nil
}

type memoryQuestions struct {
	d *memoryData
}

func (r memoryQuestions) FindByID(_ context.Context, id uuid.UUID) (*models.Question, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	stored, ok := r.d.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	question := stored.question
	return &question, nil
}

func (r memoryQuestions) FindAll(_ context.Context) ([]models.Question, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	stored := make([]memoryQuestion, 0, len(r.d.questions))
	for _, q := range r.d.questions {
		stored = append(stored, q)
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

	questions := make([]models.Question, 0, len(stored))
	for _, q := range stored {
		questions = append(questions, q.question)
	}
	return questions, nil
}

func (r memoryQuestions) FindAllByID(_ context.Context, ids []uuid.UUID) ([]models.Question, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	seen := make(map[uuid.UUID]bool, len(ids))
	questions := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if q, ok := r.d.questions[id]; ok {
			questions = append(questions, q.question)
		}
	}
	return questions, nil
}

func (r memoryQuestions) Save(_ context.Context, question *models.Question) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	stored, ok := r.d.questions[question.ID]
	if !ok {
		stored.seq = r.d.next()
	}
	stored.question = *question
	r.d.questions[question.ID] = stored
	return nil
}
