package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Active    bool      `json:"active" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Relationships
	Quizzes []Quiz `json:"quizzes" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// MarshalJSON always renders quizzes as a list, never null.
func (u User) MarshalJSON() ([]byte, error) {
	type user User
	out := user(u)
	if out.Quizzes == nil {
		out.Quizzes = []Quiz{}
	}
	return json.Marshal(out)
}
