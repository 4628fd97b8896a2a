package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientList(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	svc := service.NewIngredientService(db)

	testhelpers.CreateIngredient(t, db, "salt", "g")
	testhelpers.CreateIngredient(t, db, "Sugar", "g")
	testhelpers.CreateIngredient(t, db, "sour cream", "ml")
	testhelpers.CreateIngredient(t, db, "flour", "g")

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "Sugar", all[0].Name, "ordered by name")

	filtered, err := svc.List(ctx, "S")
	require.NoError(t, err)
	names := make([]string, len(filtered))
	for i, ing := range filtered {
		names[i] = ing.Name
	}
	assert.ElementsMatch(t, []string{"salt", "Sugar", "sour cream"}, names)

	none, err := svc.List(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, none, "wildcards are matched literally")
}

func TestIngredientGet(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewIngredientService(db)
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	got, err := svc.Get(context.Background(), flour.ID)
	require.NoError(t, err)
	assert.Equal(t, types.IngredientResponse{ID: flour.ID, Name: "flour", MeasurementUnit: "g"}, *got)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestParseIngredientCSV(t *testing.T) {
	rows, err := service.ParseIngredientCSV(strings.NewReader("name,measurement_unit\nflour, g\n\"salt, sea\",g\n"))
	require.NoError(t, err)
	assert.Equal(t, []service.IngredientRow{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "salt, sea", MeasurementUnit: "g"},
	}, rows)

	_, err = service.ParseIngredientCSV(strings.NewReader("name,unit\nflour\n"))
	assert.Error(t, err)

	rows, err = service.ParseIngredientCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestImportIngredients(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	testhelpers.CreateIngredient(t, db, "flour", "kg")

	n, err := service.ImportIngredients(ctx, db, []service.IngredientRow{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
		{Name: "", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var ingredients []models.Ingredient
	require.NoError(t, db.Order("name").Find(&ingredients).Error)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "g", ingredients[0].MeasurementUnit, "existing rows are updated in place")
	assert.Equal(t, "g", ingredients[1].MeasurementUnit, "the last duplicate wins")

	n, err = service.ImportIngredients(ctx, db, []service.IngredientRow{{Name: "eggs", MeasurementUnit: "pcs"}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestImportIngredientsReplaceKeepsRecipeLines(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	author := testhelpers.CreateUser(t, db, "baker")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")
	testhelpers.CreateIngredient(t, db, "pepper", "g")
	bread := testhelpers.CreateRecipe(t, db, author, "Bread", []testhelpers.LineSpec{
		{IngredientID: flour.ID, Amount: 500},
		{IngredientID: salt.ID, Amount: 10},
	})

	n, err := service.ImportIngredients(ctx, db, []service.IngredientRow{
		{Name: "flour", MeasurementUnit: "kg"},
		{Name: "eggs", MeasurementUnit: "pcs"},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var names []string
	require.NoError(t, db.Model(&models.Ingredient{}).Order("name").Pluck("name", &names).Error)
	assert.Equal(t, []string{"eggs", "flour", "salt"}, names, "unused pepper goes, salt stays in use")

	var lines []models.IngredientLine
	require.NoError(t, db.Where("recipe_id = ?", bread.ID).Order("amount").Find(&lines).Error)
	require.Len(t, lines, 2)
	assert.Equal(t, salt.ID, lines[0].IngredientID)
	assert.Equal(t, flour.ID, lines[1].IngredientID, "upsert keeps the ingredient id")

	var updated models.Ingredient
	require.NoError(t, db.First(&updated, "id = ?", flour.ID).Error)
	assert.Equal(t, "kg", updated.MeasurementUnit)
}

func TestTagService(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	svc := service.NewTagService(db, nil)

	dinner, err := svc.Create(ctx, types.TagInput{Name: "Dinner", Slug: "dinner", Color: "#8775d2"})
	require.NoError(t, err)
	assert.Equal(t, "#8775D2", dinner.Color)
	_, err = svc.Create(ctx, types.TagInput{Name: "Breakfast", Slug: "breakfast", Color: "#E26C2D"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, types.TagInput{Name: "Dinner again", Slug: "dinner", Color: "#000000"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.Create(ctx, types.TagInput{Name: "Bad", Slug: "not a slug", Color: "red"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)

	got, err := svc.Get(ctx, dinner.ID)
	require.NoError(t, err)
	assert.Equal(t, *dinner, *got)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
