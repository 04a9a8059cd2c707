package models

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
}
