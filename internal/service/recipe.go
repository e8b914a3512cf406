package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrInvalidRecipe  = errors.New("invalid recipe")
)

var difficulties = map[string]string{"easy": "Easy", "medium": "Medium", "hard": "Hard"}

// RecipeService handles recipe library operations
type RecipeService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, log logrus.FieldLogger) *RecipeService {
	return &RecipeService{db: db, log: log}
}

// CreateRecipe inserts recipe and returns it with its generated id and
// timestamps. The search embedding is computed here.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	if strings.TrimSpace(recipe.UserID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRecipe)
	}
	vec := RecipeEmbedding(recipe)
	recipe.Embedding = &vec
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return recipe, nil
}

// GetRecipe retrieves one of the user's recipes by ID
func (s *RecipeService) GetRecipe(ctx context.Context, userID string, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).First(&recipe, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

// ListRecipes lists the user's recipes, newest first. A search query
// filters by keyword; on postgres matches are ordered by embedding distance.
func (s *RecipeService) ListRecipes(ctx context.Context, userID string, filter types.RecipeFilter) ([]*models.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", userID)

	if c := strings.TrimSpace(filter.Cuisine); c != "" {
		query = query.Where("LOWER(cuisine) = ?", strings.ToLower(c))
	}
	if d := strings.TrimSpace(filter.Difficulty); d != "" {
		query = query.Where("LOWER(difficulty) = ?", strings.ToLower(d))
	}

	byDistance := false
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		if s.db.Dialector.Name() == "postgres" {
			query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(ingredients::text) LIKE ?", like, like, like).
				Clauses(clause.OrderBy{Expression: clause.Expr{
					SQL:  "embedding <-> ?",
					Vars: []interface{}{GenerateEmbedding(q)},
				}})
			byDistance = true
		} else {
			query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(ingredients) LIKE ?", like, like, like)
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	if !byDistance {
		query = query.Order("created_at DESC")
	}

	var recipes []*models.Recipe
	if err := query.Limit(limit).Offset(offset).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// UpdateRecipe replaces the user-editable fields of a recipe. Provenance
// (source_url, owner, timestamps) is kept.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID string, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := ApplyRecipeFields(recipe, (*types.CreateRecipeRequest)(req)); err != nil {
		return nil, err
	}
	vec := RecipeEmbedding(recipe)
	recipe.Embedding = &vec
	if err := s.db.WithContext(ctx).Save(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return recipe, nil
}

// DeleteRecipe deletes one of the user's recipes
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID string, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// ApplyRecipeFields copies a manual create/update request onto recipe.
func ApplyRecipeFields(recipe *models.Recipe, req *types.CreateRecipeRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRecipe)
	}
	difficulty := trimmed(req.Difficulty)
	if difficulty != nil {
		canonical, ok := difficulties[strings.ToLower(*difficulty)]
		if !ok {
			return fmt.Errorf("%w: difficulty must be Easy, Medium or Hard", ErrInvalidRecipe)
		}
		difficulty = &canonical
	}
	for name, v := range map[string]*int{"servings": req.Servings, "prep_time": req.PrepTime, "cook_time": req.CookTime} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidRecipe, name)
		}
	}

	recipe.Title = title
	recipe.Description = trimmed(req.Description)
	recipe.Ingredients = cleanList(req.Ingredients)
	recipe.Instructions = cleanList(req.Instructions)
	recipe.Servings = req.Servings
	recipe.PrepTime = req.PrepTime
	recipe.CookTime = req.CookTime
	recipe.Cuisine = trimmed(req.Cuisine)
	recipe.Difficulty = difficulty
	recipe.ImageURL = trimmed(req.ImageURL)
	recipe.Chef = trimmed(req.Chef)
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cleanList(in []string) models.JSONBStringArray {
	out := models.JSONBStringArray{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
