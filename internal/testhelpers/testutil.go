package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TestPassword is the plain-text password of every user created by CreateUser.
const TestPassword = "s3cret-pass"

// CreateUser inserts a user with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

func CreateTag(t *testing.T, db *gorm.DB, name, slug, color string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: name, Slug: slug, Color: color}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// LineSpec is an ingredient amount used by CreateRecipe.
type LineSpec struct {
	IngredientID uuid.UUID
	Amount       int
}

// CreateRecipe inserts a recipe with its lines and tags directly, bypassing
// the composer. Useful for setting up read-side tests.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines []LineSpec, tags ...*models.Tag) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Name:        name,
		Text:        fmt.Sprintf("How to cook %s", name),
		CookingTime: 10,
		Image:       "/media/recipes/images/" + uuid.NewString() + ".png",
		AuthorID:    author.ID,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(recipe).Error)

	for _, l := range lines {
		line := &models.IngredientLine{RecipeID: recipe.ID, IngredientID: l.IngredientID, Amount: l.Amount}
		require.NoError(t, db.Omit(clause.Associations).Create(line).Error)
	}
	for _, tag := range tags {
		require.NoError(t, db.Omit(clause.Associations).Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error)
	}
	return recipe
}
