package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
)

func TestSetupTestDatabase(t *testing.T) {
	db := SetupTestDatabase(t)

	recipe := &models.Recipe{UserID: "user-1", Title: "Toast", Ingredients: models.JSONBStringArray{"bread"}}
	require.NoError(t, db.Create(recipe).Error)

	var got models.Recipe
	require.NoError(t, db.First(&got, "id = ?", recipe.ID).Error)
	assert.Equal(t, models.JSONBStringArray{"bread"}, got.Ingredients)
	assert.Equal(t, models.JSONBStringArray{}, got.Instructions)
}

func TestSetupPostgresDatabase(t *testing.T) {
	db := SetupPostgresDatabase(t)

	var applied int64
	require.NoError(t, db.Table("migrations").Count(&applied).Error)
	assert.EqualValues(t, 2, applied)
	assert.True(t, db.Migrator().HasTable("shopping_list_items"))
}
