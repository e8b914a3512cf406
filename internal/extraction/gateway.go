package extraction

import (
	"context"
	"errors"

	"github.com/pageza/recipebox/backend/internal/models"
)

// RecipeStore is the recipe repository the gateway writes through.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
}

// Gateway persists normalized recipes on behalf of a user.
type Gateway struct {
	store RecipeStore
}

func NewGateway(store RecipeStore) *Gateway {
	return &Gateway{store: store}
}

// Save inserts recipe for userID and returns the stored record, including
// its generated id and creation time.
func (g *Gateway) Save(ctx context.Context, recipe models.Recipe, userID string) (*models.Recipe, error) {
	if g.store == nil {
		return nil, persistenceError(errors.New("recipe store is not configured"))
	}
	recipe.UserID = userID
	stored, err := g.store.CreateRecipe(ctx, &recipe)
	if err != nil {
		return nil, persistenceError(err)
	}
	return stored, nil
}
