package store

import (
	"context"
	"errors"

	"quizzesapi/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ Store = (*Gorm)(nil)

// Gorm keeps records in a relational database. The *gorm.DB must be opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate creates the tables, indexes and join table when missing.
func (s *Gorm) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Quiz{},
	)
}

func (s *Gorm) Users() UserRepository         { return gormUsers{s.db} }
func (s *Gorm) Quizzes() QuizRepository       { return gormQuizzes{s.db} }
func (s *Gorm) Questions() QuestionRepository { return gormQuestions{s.db} }

func (s *Gorm) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		// A referenced row, such as a quiz owner, is gone.
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type gormUsers struct {
	db *gorm.DB
}

func (r gormUsers) withQuizzes(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Quizzes", func(db *gorm.DB) *gorm.DB {
			return db.Order("quizzes.created_at")
		}).
		Preload("Quizzes.Questions")
}

func (r gormUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.withQuizzes(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r gormUsers) FindAll(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.withQuizzes(ctx).Order("created_at").Find(&users).Error
	return users, translate(err)
}

func (r gormUsers) FindByActive(ctx context.Context, active bool) ([]models.User, error) {
	users := []models.User{}
	err := r.withQuizzes(ctx).Where("active = ?", active).Order("created_at").Find(&users).Error
	return users, translate(err)
}

func (r gormUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, translate(err)
}

func (r gormUsers) ExistsByEmailAndIDNot(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, id).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r gormUsers) Save(ctx context.Context, user *models.User) error {
	// Omit associations: quizzes are owned by the quiz repository.
	return translate(r.db.WithContext(ctx).Omit("Quizzes").Save(user).Error)
}

func (r gormUsers) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Quiz{}).Select("id").Where("user_id = ?", id)
		if err := tx.Exec("DELETE FROM quiz_questions WHERE quiz_id IN (?)", owned).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

type gormQuizzes struct {
	db *gorm.DB
}

func (r gormQuizzes) FindByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions").
		Preload("User").
		First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &quiz, nil
}

func (r gormQuizzes) FindAllByUserID(ctx context.Context, userID uuid.UUID) ([]models.Quiz, error) {
	quizzes := []models.Quiz{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Questions").
		Preload("User").
		Order("created_at").
		Find(&quizzes).Error
	return quizzes, translate(err)
}

func (r gormQuizzes) Save(ctx context.Context, quiz *models.Quiz) error {
	// The user row already exists; only the join rows to questions are written.
	return translate(r.db.WithContext(ctx).
		Omit("User", "Questions.*").
		Create(quiz).Error)
}

type gormQuestions struct {
	db *gorm.DB
}

func (r gormQuestions) FindByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

func (r gormQuestions) FindAll(ctx context.Context) ([]models.Question, error) {
	questions := []models.Question{}
	err := r.db.WithContext(ctx).Order("created_at").Find(&questions).Error
	return questions, translate(err)
}

func (r gormQuestions) FindAllByID(ctx context.Context, ids []uuid.UUID) ([]models.Question, error) {
	questions := []models.Question{}
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error
	return questions, translate(err)
}

func (r gormQuestions) Save(ctx context.Context, question *models.Question) error {
	return translate(r.db.WithContext(ctx).Save(question).Error)
}
