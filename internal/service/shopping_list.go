package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

var (
	ErrListNotFound = errors.New("shopping list not found")
	ErrItemNotFound = errors.New("shopping list item not found")
	ErrInvalidList  = errors.New("invalid shopping list")
)

// ShoppingListService handles shopping list operations
type ShoppingListService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewShoppingListService(db *gorm.DB, log logrus.FieldLogger) *ShoppingListService {
	return &ShoppingListService{db: db, log: log}
}

func (s *ShoppingListService) CreateList(ctx context.Context, userID, name string) (*models.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidList)
	}
	list := &models.ShoppingList{UserID: userID, Name: name, Items: []models.ShoppingListItem{}}
	if err := s.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}
	return list, nil
}

// GetList returns the list with its items in insertion order.
func (s *ShoppingListService) GetList(ctx context.Context, userID string, id uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&list, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}
	return &list, nil
}

func (s *ShoppingListService) ListLists(ctx context.Context, userID string) ([]*models.ShoppingList, error) {
	var lists []*models.ShoppingList
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	return lists, nil
}

func (s *ShoppingListService) DeleteList(ctx context.Context, userID string, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var list models.ShoppingList
		if err := tx.Select("id").First(&list, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListNotFound
			}
			return fmt.Errorf("failed to get shopping list: %w", err)
		}
		if err := tx.Where("list_id = ?", id).Delete(&models.ShoppingListItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete shopping list items: %w", err)
		}
		if err := tx.Delete(&models.ShoppingList{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete shopping list: %w", err)
		}
		return nil
	})
}

// AddItems appends free-text items. Blank names are ignored.
func (s *ShoppingListService) AddItems(ctx context.Context, userID string, listID uuid.UUID, names []string) (*models.ShoppingList, error) {
	if err := s.insertItems(ctx, userID, listID, names, nil); err != nil {
		return nil, err
	}
	return s.GetList(ctx, userID, listID)
}

// AddRecipe appends every ingredient of the user's recipe, tagged with the
// recipe id.
func (s *ShoppingListService) AddRecipe(ctx context.Context, userID string, listID, recipeID uuid.UUID) (*models.ShoppingList, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "ingredients").
		First(&recipe, "id = ? AND user_id = ?", recipeID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if err := s.insertItems(ctx, userID, listID, recipe.Ingredients, &recipe.ID); err != nil {
		return nil, err
	}
	return s.GetList(ctx, userID, listID)
}

func (s *ShoppingListService) insertItems(ctx context.Context, userID string, listID uuid.UUID, names []string, recipeID *uuid.UUID) error {
	if err := s.ensureOwned(ctx, userID, listID); err != nil {
		return err
	}
	items := make([]models.ShoppingListItem, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			items = append(items, models.ShoppingListItem{ListID: listID, RecipeID: recipeID, Name: n})
		}
	}
	if len(items) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to add shopping list items: %w", err)
	}
	s.log.WithFields(logrus.Fields{"list_id": listID, "count": len(items)}).Debug("Added shopping list items")
	return nil
}

// ToggleItem flips the checked state of an item.
func (s *ShoppingListService) ToggleItem(ctx context.Context, userID string, listID, itemID uuid.UUID) (*models.ShoppingListItem, error) {
	if err := s.ensureOwned(ctx, userID, listID); err != nil {
		return nil, err
	}
	var item models.ShoppingListItem
	err := s.db.WithContext(ctx).First(&item, "id = ? AND list_id = ?", itemID, listID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list item: %w", err)
	}
	item.Checked = !item.Checked
	if err := s.db.WithContext(ctx).Model(&item).Update("checked", item.Checked).Error; err != nil {
		return nil, fmt.Errorf("failed to update shopping list item: %w", err)
	}
	return &item, nil
}

func (s *ShoppingListService) DeleteItem(ctx context.Context, userID string, listID, itemID uuid.UUID) error {
	if err := s.ensureOwned(ctx, userID, listID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.ShoppingListItem{}, "id = ? AND list_id = ?", itemID, listID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete shopping list item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *ShoppingListService) ensureOwned(ctx context.Context, userID string, listID uuid.UUID) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ShoppingList{}).
		Where("id = ? AND user_id = ?", listID, userID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check shopping list: %w", err)
	}
	if count == 0 {
		return ErrListNotFound
	}
	return nil
}

// NormalizeItemName is the grouping key for shopping list items: lower
// case, trimmed, internal whitespace collapsed.
func NormalizeItemName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// GroupItems merges items whose names normalize to the same key, in order
// of first appearance. A group is checked only when all its items are.
func GroupItems(items []models.ShoppingListItem) []types.GroupedItem {
	index := make(map[string]int)
	groups := make([]types.GroupedItem, 0, len(items))
	for _, it := range items {
		key := NormalizeItemName(it.Name)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, types.GroupedItem{Name: strings.TrimSpace(it.Name), Checked: true})
		}
		g := &groups[i]
		g.Count++
		g.Checked = g.Checked && it.Checked
		g.ItemIDs = append(g.ItemIDs, it.ID)
		if it.RecipeID != nil && !slices.Contains(g.RecipeIDs, *it.RecipeID) {
			g.RecipeIDs = append(g.RecipeIDs, *it.RecipeID)
		}
	}
	return groups
}
