package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingList is a user-owned named list of ingredient items.
type ShoppingList struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string             `gorm:"size:64;not null;index" json:"user_id"`
	Name      string             `gorm:"size:255;not null" json:"name"`
	Items     []ShoppingListItem `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (l *ShoppingList) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ShoppingListItem optionally traces back to the recipe it was derived from.
type ShoppingListItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ListID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"list_id"`
	RecipeID  *uuid.UUID `gorm:"type:uuid" json:"recipe_id"`
	Name      string     `gorm:"size:500;not null" json:"name"`
	Checked   bool       `gorm:"not null;default:false" json:"checked"`
	CreatedAt time.Time  `json:"created_at"`
}

func (i *ShoppingListItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
