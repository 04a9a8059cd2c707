package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quizzesapi/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract lists the behaviour every Store implementation must share.
var storeContract = []struct {
	name string
	run  func(t *testing.T, s Store)
}{
	{"Users", testUsers},
	{"UserSaveRejectsDuplicateEmail", testUserSaveRejectsDuplicateEmail},
	{"UserSaveUpdatesInPlace", testUserSaveUpdatesInPlace},
	{"Quizzes", testQuizzes},
	{"QuizSaveUnknownOwner", testQuizSaveUnknownOwner},
	{"DeleteUserRemovesQuizzes", testDeleteUserRemovesQuizzes},
	{"FindQuestionsByID", testFindQuestionsByID},
	{"AtomicSerialisesCheckThenWrite", testAtomicSerialisesCheckThenWrite},
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	for _, tc := range storeContract {
		t.Run(tc.name, func(t *testing.T) {
			tc.run(t, newStore(t))
		})
	}
}

func seedUser(t *testing.T, s Store, name, email string, active bool) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New(), Name: name, Email: email, Active: active}
	require.NoError(t, s.Users().Save(context.Background(), u))
	return u
}

func seedQuestion(t *testing.T, s Store, text string) *models.Question {
	t.Helper()
	q := &models.Question{ID: uuid.New(), Text: text}
	require.NoError(t, s.Questions().Save(context.Background(), q))
	return q
}

func userIDs(users []models.User) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "Ann", "a@x.com", true)
	bob := seedUser(t, s, "Bob", "b@x.com", false)

	got, err := s.Users().FindByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.True(t, got.Active)
	assert.Empty(t, got.Quizzes)

	_, err = s.Users().FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.Users().FindAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{ann.ID, bob.ID}, userIDs(all))

	inactive, err := s.Users().FindByActive(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, userIDs(inactive))

	exists, err := s.Users().ExistsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Users().ExistsByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.Users().ExistsByEmailAndIDNot(ctx, "a@x.com", ann.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.Users().ExistsByEmailAndIDNot(ctx, "a@x.com", bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func testUserSaveRejectsDuplicateEmail(t *testing.T, s Store) {
	ctx := context.Background()
	seedUser(t, s, "Ann", "a@x.com", true)

	err := s.Users().Save(ctx, &models.User{ID: uuid.New(), Name: "Other", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	all, err := s.Users().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testUserSaveUpdatesInPlace(t *testing.T, s Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "Ann", "a@x.com", true)
	seedUser(t, s, "Bob", "b@x.com", true)

	ann.Name = "Anna"
	ann.Active = false
	require.NoError(t, s.Users().Save(ctx, ann))

	all, err := s.Users().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := s.Users().FindByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, "a@x.com", got.Email)
	assert.False(t, got.Active)
}

func testQuizzes(t *testing.T, s Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "Ann", "a@x.com", true)
	q1 := seedQuestion(t, s, "one")
	q2 := seedQuestion(t, s, "two")

	quiz := &models.Quiz{ID: uuid.New(), UserID: ann.ID, Questions: []models.Question{*q1, *q2}}
	require.NoError(t, s.Quizzes().Save(ctx, quiz))

	got, err := s.Quizzes().FindByID(ctx, quiz.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, ann.ID, got.User.ID)
	assert.ElementsMatch(t, []uuid.UUID{q1.ID, q2.ID}, got.QuestionIDs())

	_, err = s.Quizzes().FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	owned, err := s.Quizzes().FindAllByUserID(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, quiz.ID, owned[0].ID)

	user, err := s.Users().FindByID(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, user.Quizzes, 1)
	assert.Nil(t, user.Quizzes[0].User)
	assert.ElementsMatch(t, []uuid.UUID{q1.ID, q2.ID}, user.Quizzes[0].QuestionIDs())

	// Linking a quiz leaves the question rows untouched.
	stored, err := s.Questions().FindByID(ctx, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", stored.Text)
}

func testQuizSaveUnknownOwner(t *testing.T, s Store) {
	ctx := context.Background()
	q := seedQuestion(t, s, "one")

	err := s.Quizzes().Save(ctx, &models.Quiz{ID: uuid.New(), UserID: uuid.New(), Questions: []models.Question{*q}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func testDeleteUserRemovesQuizzes(t *testing.T, s Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "Ann", "a@x.com", true)
	bob := seedUser(t, s, "Bob", "b@x.com", true)
	q := seedQuestion(t, s, "one")
	quiz := &models.Quiz{ID: uuid.New(), UserID: ann.ID, Questions: []models.Question{*q}}
	require.NoError(t, s.Quizzes().Save(ctx, quiz))
	kept := &models.Quiz{ID: uuid.New(), UserID: bob.ID, Questions: []models.Question{*q}}
	require.NoError(t, s.Quizzes().Save(ctx, kept))

	require.NoError(t, s.Users().Delete(ctx, ann.ID))
	assert.ErrorIs(t, s.Users().Delete(ctx, ann.ID), ErrNotFound)

	_, err := s.Quizzes().FindByID(ctx, quiz.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Questions().FindByID(ctx, q.ID)
	assert.NoError(t, err)

	got, err := s.Quizzes().FindByID(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{q.ID}, got.QuestionIDs())
}

func testFindQuestionsByID(t *testing.T, s Store) {
	ctx := context.Background()
	q1 := seedQuestion(t, s, "one")
	q2 := seedQuestion(t, s, "two")

	found, err := s.Questions().FindAllByID(ctx, []uuid.UUID{q2.ID, uuid.New(), q2.ID, q1.ID})
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(found))
	for _, q := range found {
		ids = append(ids, q.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{q1.ID, q2.ID}, ids)

	found, err = s.Questions().FindAllByID(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)

	all, err := s.Questions().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.Questions().FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func testAtomicSerialisesCheckThenWrite(t *testing.T, s Store) {
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Atomic(ctx, func(tx Store) error {
				exists, err := tx.Users().ExistsByEmail(ctx, "a@x.com")
				if err != nil {
					return err
				}
				if exists {
					return ErrDuplicate
				}
				return tx.Users().Save(ctx, &models.User{ID: uuid.New(), Name: "Ann", Email: "a@x.com"})
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else if !errors.Is(err, ErrDuplicate) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	all, err := s.Users().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
