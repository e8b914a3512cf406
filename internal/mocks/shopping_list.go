package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/models"
)

// MockShoppingListService is a mock implementation of the IShoppingListService interface
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) CreateList(ctx context.Context, userID, name string) (*models.ShoppingList, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShoppingList), args.Error(1)
}

func (m *MockShoppingListService) GetList(ctx context.Context, userID string, id uuid.UUID) (*models.ShoppingList, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShoppingList), args.Error(1)
}

func (m *MockShoppingListService) ListLists(ctx context.Context, userID string) ([]*models.ShoppingList, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ShoppingList), args.Error(1)
}

func (m *MockShoppingListService) DeleteList(ctx context.Context, userID string, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockShoppingListService) AddItems(ctx context.Context, userID string, listID uuid.UUID, names []string) (*models.ShoppingList, error) {
	args := m.Called(ctx, userID, listID, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShoppingList), args.Error(1)
}

func (m *MockShoppingListService) AddRecipe(ctx context.Context, userID string, listID, recipeID uuid.UUID) (*models.ShoppingList, error) {
	args := m.Called(ctx, userID, listID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShoppingList), args.Error(1)
}

func (m *MockShoppingListService) ToggleItem(ctx context.Context, userID string, listID, itemID uuid.UUID) (*models.ShoppingListItem, error) {
	args := m.Called(ctx, userID, listID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShoppingListItem), args.Error(1)
}

func (m *MockShoppingListService) DeleteItem(ctx context.Context, userID string, listID, itemID uuid.UUID) error {
	args := m.Called(ctx, userID, listID, itemID)
	return args.Error(0)
}
