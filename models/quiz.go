package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Quiz struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"-"`

	// Relationships
	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Questions []Question `json:"questions" gorm:"many2many:quiz_questions"`
}

// quizOwner is the user as embedded in a quiz; its own quiz list is left out.
type quizOwner struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Active bool      `json:"active"`
}

func (q Quiz) MarshalJSON() ([]byte, error) {
	out := struct {
		ID        uuid.UUID  `json:"id"`
		Questions []Question `json:"questions"`
		User      *quizOwner `json:"user,omitempty"`
	}{
		ID:        q.ID,
		Questions: q.Questions,
	}
	if out.Questions == nil {
		out.Questions = []Question{}
	}
	if q.User != nil {
		out.User = &quizOwner{
			ID:     q.User.ID,
			Name:   q.User.Name,
			Email:  q.User.Email,
			Active: q.User.Active,
		}
	}
	return json.Marshal(out)
}

// QuestionIDs lists the ids of the attached questions.
func (q *Quiz) QuestionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(q.Questions))
	for _, question := range q.Questions {
		ids = append(ids, question.ID)
	}
	return ids
}
