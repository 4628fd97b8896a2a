package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"gorm.io/gorm"
)

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Unit   string `json:"measurement_unit"`
}

// listFont covers Latin and Cyrillic and is used when no font path is configured.
//
//go:embed fonts/DejaVuSansCondensed.ttf
var listFont []byte

// ShoppingListService sums the ingredients of every recipe in a user's cart
type ShoppingListService struct {
	db       *gorm.DB
	fontPath string
}

// NewShoppingListService creates the aggregator. fontPath points at a TTF
// font for PDF output; the embedded DejaVu Sans is used when it is empty.
func NewShoppingListService(db *gorm.DB, fontPath string) *ShoppingListService {
	return &ShoppingListService{db: db, fontPath: fontPath}
}

// Aggregate returns the summed ingredient amounts per (name, unit) over the
// user's cart, ordered by name and unit. An empty cart yields an empty list.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error) {
	var rows []struct {
		Name   string
		Unit   string
		Amount int
	}

	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&rows).Error
	if err != nil {
		return nil, mapStorageError(err, "shopping list")
	}

	items := make([]ShoppingItem, len(rows))
	for i, r := range rows {
		items[i] = ShoppingItem{Index: i + 1, Name: r.Name, Amount: r.Amount, Unit: r.Unit}
	}
	return items, nil
}

// FormatLine renders an item as "NN. Name - amount unit".
func FormatLine(item ShoppingItem) string {
	return fmt.Sprintf("%02d. %s - %d %s", item.Index, capitalize(item.Name), item.Amount, item.Unit)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// RenderText renders the list as plain text, one item per line.
func (s *ShoppingListService) RenderText(items []ShoppingItem) []byte {
	metrics.RecordShoppingList("txt")

	var buf bytes.Buffer
	for _, item := range items {
		buf.WriteString(FormatLine(item))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// RenderPDF renders the list as an A4 document, one paragraph per item.
func (s *ShoppingListService) RenderPDF(items []ShoppingItem) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Shopping list", true)
	pdf.AddPage()

	if s.fontPath != "" {
		pdf.AddUTF8Font("ListFont", "", s.fontPath)
	} else {
		pdf.AddUTF8FontFromBytes("ListFont", "", listFont)
	}
	pdf.SetFont("ListFont", "", 12)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to load pdf font: %w", err)
	}

	for _, item := range items {
		pdf.MultiCell(0, 8, FormatLine(item), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render shopping list: %w", err)
	}

	metrics.RecordShoppingList("pdf")
	return buf.Bytes(), nil
}
