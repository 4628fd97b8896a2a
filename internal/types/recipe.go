package types

import (
	"time"

	"github.com/google/uuid"
)

// IngredientAmount is one {id, amount} pair of a recipe composition request.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

// RecipeInput is the body of recipe creation and update requests.
//
// On update a nil field means "leave unchanged". For Tags and Ingredients
// a present but empty list is an explicit replacement and gets rejected.
type RecipeInput struct {
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
	Image       *string            `json:"image"`
	Tags        []uuid.UUID        `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// AuthorResponse is the author block of a recipe, relative to the viewer.
type AuthorResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

// RecipeIngredientResponse is an ingredient line flattened with its catalog data.
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeResponse is the fully hydrated read shape of a recipe.
type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Author           AuthorResponse             `json:"author"`
	Tags             []TagResponse              `json:"tags"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	CreatedAt        time.Time                  `json:"created_at"`
}

// RecipeSummary is the lightweight shape returned by favorite and cart toggles.
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// RecipeFilter narrows recipe listings. Viewer-relative flags are ignored
// for anonymous callers.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	Limit            int
	Offset           int
}

// RecipeList is one page of recipes.
type RecipeList struct {
	Count   int64            `json:"count"`
	Results []RecipeResponse `json:"results"`
}
