package service_test

import (
	"bytes"
	"compress/zlib"
	"context"
	"io"
	"testing"
	"unicode/utf16"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListSumsAcrossCart(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	ledger := service.NewLedgerService(db)
	shopping := service.NewShoppingListService(db, "")

	user := testhelpers.CreateUser(t, db, "eater")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")
	eggs := testhelpers.CreateIngredient(t, db, "eggs", "pcs")

	r1 := testhelpers.CreateRecipe(t, db, user, "Bread", []testhelpers.LineSpec{
		{IngredientID: flour.ID, Amount: 200},
	})
	r2 := testhelpers.CreateRecipe(t, db, user, "Pie", []testhelpers.LineSpec{
		{IngredientID: flour.ID, Amount: 300},
		{IngredientID: salt.ID, Amount: 5},
	})
	// not in the cart
	testhelpers.CreateRecipe(t, db, user, "Omelette", []testhelpers.LineSpec{
		{IngredientID: eggs.ID, Amount: 3},
	})

	_, err := ledger.Add(ctx, user.ID, r2.ID, service.ShoppingCart)
	require.NoError(t, err)
	_, err = ledger.Add(ctx, user.ID, r1.ID, service.ShoppingCart)
	require.NoError(t, err)

	items, err := shopping.Aggregate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []service.ShoppingItem{
		{Index: 1, Name: "flour", Amount: 500, Unit: "g"},
		{Index: 2, Name: "salt", Amount: 5, Unit: "g"},
	}, items)

	again, err := shopping.Aggregate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, items, again)

	assert.Equal(t, "01. Flour - 500 g\n02. Salt - 5 g\n", string(shopping.RenderText(items)))
}

func TestShoppingListEmptyCart(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	shopping := service.NewShoppingListService(db, "")
	user := testhelpers.CreateUser(t, db, "eater")

	items, err := shopping.Aggregate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, shopping.RenderText(items))
}

func TestShoppingListIsPerUser(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	ledger := service.NewLedgerService(db)
	shopping := service.NewShoppingListService(db, "")

	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	milk := testhelpers.CreateIngredient(t, db, "milk", "ml")
	recipe := testhelpers.CreateRecipe(t, db, alice, "Latte", []testhelpers.LineSpec{{IngredientID: milk.ID, Amount: 250}})

	_, err := ledger.Add(ctx, alice.ID, recipe.ID, service.ShoppingCart)
	require.NoError(t, err)

	items, err := shopping.Aggregate(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFormatLine(t *testing.T) {
	tests := []struct {
		item service.ShoppingItem
		want string
	}{
		{service.ShoppingItem{Index: 1, Name: "flour", Amount: 500, Unit: "g"}, "01. Flour - 500 g"},
		{service.ShoppingItem{Index: 12, Name: "OLIVE OIL", Amount: 30, Unit: "ml"}, "12. Olive oil - 30 ml"},
		{service.ShoppingItem{Index: 3, Name: "мука", Amount: 200, Unit: "г"}, "03. Мука - 200 г"},
		{service.ShoppingItem{Index: 100, Name: "", Amount: 1, Unit: "pcs"}, "100.  - 1 pcs"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, service.FormatLine(tt.item))
	}
}

func TestRenderPDF(t *testing.T) {
	shopping := service.NewShoppingListService(nil, "")

	doc, err := shopping.RenderPDF([]service.ShoppingItem{
		{Index: 1, Name: "flour", Amount: 500, Unit: "g"},
		{Index: 2, Name: "salt", Amount: 5, Unit: "g"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

// pdfStreams returns every stream of doc that inflates cleanly.
func pdfStreams(t *testing.T, doc []byte) [][]byte {
	t.Helper()
	var streams [][]byte
	for rest := doc; ; {
		start := bytes.Index(rest, []byte("stream\n"))
		if start < 0 {
			return streams
		}
		isEnd := start >= 3 && bytes.Equal(rest[start-3:start], []byte("end"))
		rest = rest[start+len("stream\n"):]
		if isEnd {
			continue
		}
		end := bytes.Index(rest, []byte("\nendstream"))
		if end < 0 {
			return streams
		}
		if r, err := zlib.NewReader(bytes.NewReader(rest[:end])); err == nil {
			if data, err := io.ReadAll(r); err == nil {
				streams = append(streams, data)
			}
		}
		rest = rest[end:]
	}
}

// utf16BE encodes s the way text is written for a Unicode PDF font.
func utf16BE(s string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

func TestRenderPDFKeepsCyrillicNames(t *testing.T) {
	shopping := service.NewShoppingListService(nil, "")

	doc, err := shopping.RenderPDF([]service.ShoppingItem{{Index: 1, Name: "мука", Amount: 500, Unit: "г"}})
	require.NoError(t, err)

	want := append(append([]byte("("), utf16BE("01. Мука - 500 г")...), []byte(")Tj")...)
	found := false
	for _, stream := range pdfStreams(t, doc) {
		if bytes.Contains(stream, want) {
			found = true
			break
		}
	}
	assert.True(t, found, "page content should carry the Cyrillic line")
}

func TestRenderPDFMissingFont(t *testing.T) {
	shopping := service.NewShoppingListService(nil, "/nonexistent/font.ttf")

	_, err := shopping.RenderPDF([]service.ShoppingItem{{Index: 1, Name: "flour", Amount: 1, Unit: "g"}})
	assert.Error(t, err)
}
