package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// RecipeHandler serves the user's recipe library.
type RecipeHandler struct {
	recipes service.IRecipeService
	log     logrus.FieldLogger
}

func NewRecipeHandler(recipes service.IRecipeService, log logrus.FieldLogger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, log: log}
}

func (h *RecipeHandler) RegisterRoutes(router gin.IRouter) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", h.CreateRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var filter types.RecipeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeError(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		h.log.WithError(err).Error("Failed to list recipes")
		writeError(c, http.StatusInternalServerError, "failed to fetch recipes")
		return
	}
	if recipes == nil {
		recipes = []*models.Recipe{}
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.recipeError(c, err, "failed to fetch recipe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// CreateRecipe adds a recipe typed in by hand. It never has a source link.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "title is required")
		return
	}

	recipe := &models.Recipe{UserID: middleware.UserID(c)}
	if err := service.ApplyRecipeFields(recipe, &req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.recipes.CreateRecipe(c.Request.Context(), recipe)
	if err != nil {
		h.recipeError(c, err, "failed to save recipe")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "recipe": created})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "title is required")
		return
	}

	updated, err := h.recipes.UpdateRecipe(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		h.recipeError(c, err, "failed to update recipe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipe": updated})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.recipeError(c, err, "failed to delete recipe")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) recipeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		writeError(c, http.StatusNotFound, "recipe not found")
	case errors.Is(err, service.ErrInvalidRecipe):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error(fallback)
		writeError(c, http.StatusInternalServerError, fallback)
	}
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, types.ErrorResponse{Error: msg})
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
