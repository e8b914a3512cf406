package types

import (
	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/models"
)

// ExtractResponse is returned when a recipe was extracted and saved.
type ExtractResponse struct {
	Success     bool           `json:"success"`
	Recipe      *models.Recipe `json:"recipe"`
	Message     string         `json:"message"`
	Platform    string         `json:"platform,omitempty"`
	NeedsReview bool           `json:"needs_review"`
}

// ErrorResponse is the failure body of the extraction endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Hint    string `json:"hint,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

// GroupedItem is one line of a shopping list after merging items whose
// names normalize to the same key.
type GroupedItem struct {
	Name      string      `json:"name"`
	Count     int         `json:"count"`
	Checked   bool        `json:"checked"`
	ItemIDs   []uuid.UUID `json:"item_ids"`
	RecipeIDs []uuid.UUID `json:"recipe_ids,omitempty"`
}

// ShoppingListResponse is a list with its items grouped.
type ShoppingListResponse struct {
	*models.ShoppingList
	Grouped []GroupedItem `json:"grouped"`
}
