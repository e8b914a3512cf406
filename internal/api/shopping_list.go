package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// ShoppingListHandler serves shopping lists and their items.
type ShoppingListHandler struct {
	lists service.IShoppingListService
	log   logrus.FieldLogger
}

func NewShoppingListHandler(lists service.IShoppingListService, log logrus.FieldLogger) *ShoppingListHandler {
	return &ShoppingListHandler{lists: lists, log: log}
}

func (h *ShoppingListHandler) RegisterRoutes(router gin.IRouter) {
	lists := router.Group("/shopping-lists")
	{
		lists.GET("", h.ListLists)
		lists.POST("", h.CreateList)
		lists.GET("/:id", h.GetList)
		lists.DELETE("/:id", h.DeleteList)
		lists.POST("/:id/items", h.AddItems)
		lists.POST("/:id/recipes", h.AddRecipe)
		lists.PATCH("/:id/items/:itemId", h.ToggleItem)
		lists.DELETE("/:id/items/:itemId", h.DeleteItem)
	}
}

func (h *ShoppingListHandler) ListLists(c *gin.Context) {
	lists, err := h.lists.ListLists(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.listError(c, err, "failed to fetch shopping lists")
		return
	}

	out := make([]types.ShoppingListResponse, 0, len(lists))
	for _, l := range lists {
		out = append(out, grouped(l))
	}
	c.JSON(http.StatusOK, gin.H{"shopping_lists": out})
}

func (h *ShoppingListHandler) CreateList(c *gin.Context) {
	var req types.CreateShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.lists.CreateList(c.Request.Context(), middleware.UserID(c), req.Name)
	if err != nil {
		h.listError(c, err, "failed to create shopping list")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"shopping_list": grouped(list)})
}

func (h *ShoppingListHandler) GetList(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	list, err := h.lists.GetList(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.listError(c, err, "failed to fetch shopping list")
		return
	}

	c.JSON(http.StatusOK, gin.H{"shopping_list": grouped(list)})
}

func (h *ShoppingListHandler) DeleteList(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.lists.DeleteList(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.listError(c, err, "failed to delete shopping list")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ShoppingListHandler) AddItems(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req types.AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "items must contain at least one entry")
		return
	}

	list, err := h.lists.AddItems(c.Request.Context(), middleware.UserID(c), id, req.Items)
	if err != nil {
		h.listError(c, err, "failed to add items")
		return
	}

	c.JSON(http.StatusOK, gin.H{"shopping_list": grouped(list)})
}

// AddRecipe copies a recipe's ingredients into the list.
func (h *ShoppingListHandler) AddRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req types.AddRecipeToListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "recipe_id is required")
		return
	}

	list, err := h.lists.AddRecipe(c.Request.Context(), middleware.UserID(c), id, req.RecipeID)
	if err != nil {
		h.listError(c, err, "failed to add recipe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"shopping_list": grouped(list)})
}

func (h *ShoppingListHandler) ToggleItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}

	item, err := h.lists.ToggleItem(c.Request.Context(), middleware.UserID(c), id, itemID)
	if err != nil {
		h.listError(c, err, "failed to update item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *ShoppingListHandler) DeleteItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}

	if err := h.lists.DeleteItem(c.Request.Context(), middleware.UserID(c), id, itemID); err != nil {
		h.listError(c, err, "failed to delete item")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ShoppingListHandler) listError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrListNotFound):
		writeError(c, http.StatusNotFound, "shopping list not found")
	case errors.Is(err, service.ErrItemNotFound):
		writeError(c, http.StatusNotFound, "item not found")
	case errors.Is(err, service.ErrRecipeNotFound):
		writeError(c, http.StatusNotFound, "recipe not found")
	case errors.Is(err, service.ErrInvalidList):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error(fallback)
		writeError(c, http.StatusInternalServerError, fallback)
	}
}

func grouped(list *models.ShoppingList) types.ShoppingListResponse {
	return types.ShoppingListResponse{
		ShoppingList: list,
		Grouped:      service.GroupItems(list.Items),
	}
}
