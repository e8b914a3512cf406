package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/mocks"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

func setupRecipeRouter() (http.Handler, *mocks.MockRecipeService) {
	recipes := new(mocks.MockRecipeService)
	router, v1 := newTestRouter()
	api.NewRecipeHandler(recipes, logging.Discard()).RegisterRoutes(v1)
	return router, recipes
}

func TestCreateRecipe(t *testing.T) {
	router, recipes := setupRecipeRouter()

	var saved *models.Recipe
	recipes.On("CreateRecipe", mock.Anything, mock.AnythingOfType("*models.Recipe")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.Recipe)
			saved.ID = uuid.New()
		}).
		Return(&models.Recipe{Title: "Shakshuka"}, nil).Once()

	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", map[string]any{
		"title":        "  Shakshuka ",
		"ingredients":  []string{"eggs", " ", "tomatoes"},
		"instructions": []string{"simmer", "crack eggs"},
		"difficulty":   "easy",
		"servings":     2,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	if assert.NotNil(t, saved) {
		assert.Equal(t, testUserID, saved.UserID)
		assert.Equal(t, "Shakshuka", saved.Title)
		assert.Equal(t, models.JSONBStringArray{"eggs", "tomatoes"}, saved.Ingredients)
		assert.Equal(t, "Easy", *saved.Difficulty)
		assert.Nil(t, saved.SourceURL)
	}
	assert.Equal(t, true, decode(t, w)["success"])
	recipes.AssertExpectations(t)
}

func TestCreateRecipeValidation(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"missing title", map[string]any{"ingredients": []string{"eggs"}}},
		{"blank title", map[string]any{"title": "   "}},
		{"bad difficulty", map[string]any{"title": "Soup", "difficulty": "extreme"}},
		{"negative servings", map[string]any{"title": "Soup", "servings": -1}},
		{"malformed", "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, recipes := setupRecipeRouter()

			w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
			recipes.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything)
		})
	}
}

func TestListRecipes(t *testing.T) {
	router, recipes := setupRecipeRouter()

	filter := types.RecipeFilter{Query: "garlic", Cuisine: "Italian", Limit: 10}
	recipes.On("ListRecipes", mock.Anything, testUserID, filter).
		Return([]*models.Recipe{{ID: uuid.New(), Title: "Garlic Bread"}}, nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/recipes?q=garlic&cuisine=Italian&limit=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["recipes"].([]any)
	assert.Len(t, list, 1)
	recipes.AssertExpectations(t)
}

func TestListRecipesEmpty(t *testing.T) {
	router, recipes := setupRecipeRouter()
	recipes.On("ListRecipes", mock.Anything, testUserID, types.RecipeFilter{}).Return(nil, nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/recipes", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recipes":[]}`, w.Body.String())
}

func TestGetRecipe(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		router, recipes := setupRecipeRouter()
		recipes.On("GetRecipe", mock.Anything, testUserID, id).Return(&models.Recipe{ID: id, Title: "Pho"}, nil)

		w := doJSON(t, router, http.MethodGet, "/api/v1/recipes/"+id.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Pho", decode(t, w)["recipe"].(map[string]any)["title"])
	})

	t.Run("not found", func(t *testing.T) {
		router, recipes := setupRecipeRouter()
		recipes.On("GetRecipe", mock.Anything, testUserID, id).Return(nil, service.ErrRecipeNotFound)

		w := doJSON(t, router, http.MethodGet, "/api/v1/recipes/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		router, recipes := setupRecipeRouter()
		recipes.On("GetRecipe", mock.Anything, testUserID, id).Return(nil, errors.New("connection reset"))

		w := doJSON(t, router, http.MethodGet, "/api/v1/recipes/"+id.String(), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})

	t.Run("invalid id", func(t *testing.T) {
		router, recipes := setupRecipeRouter()

		w := doJSON(t, router, http.MethodGet, "/api/v1/recipes/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		recipes.AssertNotCalled(t, "GetRecipe", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateRecipe(t *testing.T) {
	id := uuid.New()

	t.Run("replaces fields", func(t *testing.T) {
		router, recipes := setupRecipeRouter()
		recipes.On("UpdateRecipe", mock.Anything, testUserID, id, mock.MatchedBy(func(req *types.UpdateRecipeRequest) bool {
			return req.Title == "Better Pho" && len(req.Ingredients) == 1
		})).Return(&models.Recipe{ID: id, Title: "Better Pho"}, nil)

		w := doJSON(t, router, http.MethodPut, "/api/v1/recipes/"+id.String(), map[string]any{
			"title":       "Better Pho",
			"ingredients": []string{"star anise"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		recipes.AssertExpectations(t)
	})

	t.Run("invalid", func(t *testing.T) {
		router, recipes := setupRecipeRouter()
		recipes.On("UpdateRecipe", mock.Anything, testUserID, id, mock.Anything).
			Return(nil, fmt.Errorf("%w: difficulty must be Easy, Medium or Hard", service.ErrInvalidRecipe))

		w := doJSON(t, router, http.MethodPut, "/api/v1/recipes/"+id.String(), map[string]any{
			"title":      "Pho",
			"difficulty": "impossible",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["error"], "difficulty")
	})
}

func TestDeleteRecipe(t *testing.T) {
	id := uuid.New()

	router, recipes := setupRecipeRouter()
	recipes.On("DeleteRecipe", mock.Anything, testUserID, id).Return(nil).Once()
	recipes.On("DeleteRecipe", mock.Anything, testUserID, id).Return(service.ErrRecipeNotFound)

	w := doJSON(t, router, http.MethodDelete, "/api/v1/recipes/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/recipes/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
