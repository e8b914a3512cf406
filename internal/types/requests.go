package types

import (
	"github.com/google/uuid"
)

// ExtractRequest is the body of POST /api/v1/extract. UserID may only be
// omitted for a dry run and must match the authenticated user.
type ExtractRequest struct {
	VideoURL string `json:"videoUrl"`
	UserID   string `json:"userId"`
	DryRun   bool   `json:"dryRun"`
}

// CreateRecipeRequest represents the request body for manually adding a recipe
type CreateRecipeRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  *string  `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Servings     *int     `json:"servings"`
	PrepTime     *int     `json:"prep_time"`
	CookTime     *int     `json:"cook_time"`
	Cuisine      *string  `json:"cuisine"`
	Difficulty   *string  `json:"difficulty"`
	ImageURL     *string  `json:"image_url"`
	Chef         *string  `json:"chef"`
}

// UpdateRecipeRequest replaces the user-editable fields of a recipe.
type UpdateRecipeRequest CreateRecipeRequest

// RecipeFilter narrows a recipe listing. Empty fields match everything.
type RecipeFilter struct {
	Query      string `form:"q"`
	Cuisine    string `form:"cuisine"`
	Difficulty string `form:"difficulty"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// CreateShoppingListRequest represents the request body for a new list
type CreateShoppingListRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddItemsRequest adds free-text items to a shopping list.
type AddItemsRequest struct {
	Items []string `json:"items" binding:"required,min=1"`
}

// AddRecipeToListRequest copies a recipe's ingredients into a shopping list.
type AddRecipeToListRequest struct {
	RecipeID uuid.UUID `json:"recipe_id" binding:"required"`
}
