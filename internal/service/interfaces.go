package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

// IRecipeService defines the interface for a user's recipe library.
// Every read and write is scoped to userID.
type IRecipeService interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetRecipe(ctx context.Context, userID string, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, userID string, filter types.RecipeFilter) ([]*models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID string, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID string, id uuid.UUID) error
}

// IShoppingListService defines the interface for shopping list operations
type IShoppingListService interface {
	CreateList(ctx context.Context, userID, name string) (*models.ShoppingList, error)
	GetList(ctx context.Context, userID string, id uuid.UUID) (*models.ShoppingList, error)
	ListLists(ctx context.Context, userID string) ([]*models.ShoppingList, error)
	DeleteList(ctx context.Context, userID string, id uuid.UUID) error
	AddItems(ctx context.Context, userID string, listID uuid.UUID, names []string) (*models.ShoppingList, error)
	AddRecipe(ctx context.Context, userID string, listID, recipeID uuid.UUID) (*models.ShoppingList, error)
	ToggleItem(ctx context.Context, userID string, listID, itemID uuid.UUID) (*models.ShoppingListItem, error)
	DeleteItem(ctx context.Context, userID string, listID, itemID uuid.UUID) error
}

// IAuthService validates bearer tokens issued by the identity provider.
type IAuthService interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}
