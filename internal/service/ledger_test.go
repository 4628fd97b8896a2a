package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerAddAndRemove(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	ledger := service.NewLedgerService(db)

	author := testhelpers.CreateUser(t, db, "chef")
	user := testhelpers.CreateUser(t, db, "eater")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	tag := testhelpers.CreateTag(t, db, "Lunch", "lunch", "#E26C2D")
	recipe := testhelpers.CreateRecipe(t, db, author, "Bread",
		[]testhelpers.LineSpec{{IngredientID: flour.ID, Amount: 100}}, tag)

	for _, kind := range []service.SetKind{service.Favorites, service.ShoppingCart} {
		t.Run(string(kind), func(t *testing.T) {
			summary, err := ledger.Add(ctx, user.ID, recipe.ID, kind)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, summary.ID)
			assert.Equal(t, "Bread", summary.Name)
			assert.Equal(t, recipe.Image, summary.Image)
			assert.Equal(t, recipe.CookingTime, summary.CookingTime)

			present, err := ledger.Contains(ctx, user.ID, recipe.ID, kind)
			require.NoError(t, err)
			assert.True(t, present)

			_, err = ledger.Add(ctx, user.ID, recipe.ID, kind)
			assert.ErrorIs(t, err, service.ErrConflict)

			require.NoError(t, ledger.Remove(ctx, user.ID, recipe.ID, kind))
			assert.ErrorIs(t, ledger.Remove(ctx, user.ID, recipe.ID, kind), service.ErrNotFound)

			present, err = ledger.Contains(ctx, user.ID, recipe.ID, kind)
			require.NoError(t, err)
			assert.False(t, present)
		})
	}
}

func TestLedgerSetsAreIndependent(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	ledger := service.NewLedgerService(db)

	user := testhelpers.CreateUser(t, db, "eater")
	recipe := testhelpers.CreateRecipe(t, db, user, "Toast", nil)

	_, err := ledger.Add(ctx, user.ID, recipe.ID, service.Favorites)
	require.NoError(t, err)

	inCart, err := ledger.Contains(ctx, user.ID, recipe.ID, service.ShoppingCart)
	require.NoError(t, err)
	assert.False(t, inCart)

	_, err = ledger.Add(ctx, user.ID, recipe.ID, service.ShoppingCart)
	assert.NoError(t, err)
}

func TestLedgerMissingRecipe(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ledger := service.NewLedgerService(db)
	user := testhelpers.CreateUser(t, db, "eater")

	_, err := ledger.Add(context.Background(), user.ID, uuid.New(), service.Favorites)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestLedgerUnknownKind(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ledger := service.NewLedgerService(db)

	_, err := ledger.Add(context.Background(), uuid.New(), uuid.New(), service.SetKind("wishlist"))
	assert.ErrorIs(t, err, service.ErrValidation)
}
