package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Todo is a single todo item owned by one user.
type Todo struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	Completed bool   `gorm:"not null;default:false"`
	UserID    string `gorm:"not null;index;size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns the immutable identifier.
func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
