package database

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsSQLite(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	for _, table := range []string{"users", "follows", "ingredients", "tags", "recipes", "recipe_ingredients", "recipe_tags", "favorites", "shopping_carts"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	assert.NoError(t, HealthCheck(context.Background(), db))
}

func TestUniqueIngredientNameAndUnit(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	require.NoError(t, db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "g"}).Error)

	err = db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "g"}).Error
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecipeCookingTimeCheck(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	author := models.User{Email: "a@example.com", Username: "a", PasswordHash: "x"}
	require.NoError(t, db.Create(&author).Error)

	recipe := models.Recipe{Name: "Too long", Text: "t", CookingTime: 2000, Image: "img", AuthorID: author.ID}
	assert.Error(t, db.Omit("Author").Create(&recipe).Error)
}
