package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*a = JSONBStringArray{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONBStringArray", value)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*a = out
	return nil
}

// MarshalJSON keeps empty lists as [] rather than null.
func (a JSONBStringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// Recipe is the canonical stored recipe. Optional fields are pointers so
// that "absent" survives a round trip through JSON and the database.
type Recipe struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string           `gorm:"size:64;not null;index" json:"user_id"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	Description  *string          `gorm:"type:text" json:"description"`
	Ingredients  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	PrepTime     *int             `json:"prep_time"`
	CookTime     *int             `json:"cook_time"`
	Servings     *int             `json:"servings"`
	Difficulty   *string          `gorm:"size:32" json:"difficulty"`
	Cuisine      *string          `gorm:"size:100" json:"cuisine"`
	Chef         *string          `gorm:"size:255" json:"chef"`
	ImageURL     *string          `gorm:"type:text" json:"image_url"`
	SourceURL    *string          `gorm:"type:text" json:"source_url"`
	Embedding    *pgvector.Vector `gorm:"type:vector(64)" json:"-"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// BeforeCreate assigns an identifier when the caller did not.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Ingredients == nil {
		r.Ingredients = JSONBStringArray{}
	}
	if r.Instructions == nil {
		r.Instructions = JSONBStringArray{}
	}
	return nil
}
