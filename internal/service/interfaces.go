package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRecipeService defines the interface for recipe composition and reads
type IRecipeService interface {
	Create(ctx context.Context, authorID uuid.UUID, input types.RecipeInput) (*types.RecipeResponse, error)
	Update(ctx context.Context, id uuid.UUID, input types.RecipeInput, viewer *uuid.UUID) (*types.RecipeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.RecipeResponse, error)
	List(ctx context.Context, filter types.RecipeFilter, viewer *uuid.UUID) (*types.RecipeList, error)
	AuthorOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// ILedgerService defines the interface for favorite and cart memberships
type ILedgerService interface {
	Add(ctx context.Context, userID, recipeID uuid.UUID, kind SetKind) (*types.RecipeSummary, error)
	Remove(ctx context.Context, userID, recipeID uuid.UUID, kind SetKind) error
	Contains(ctx context.Context, userID, recipeID uuid.UUID, kind SetKind) (bool, error)
}

// IShoppingListService defines the interface for shopping list aggregation
type IShoppingListService interface {
	Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error)
	RenderText(items []ShoppingItem) []byte
	RenderPDF(items []ShoppingItem) ([]byte, error)
}

// IIngredientService defines the interface for the ingredient catalog
type IIngredientService interface {
	List(ctx context.Context, prefix string) ([]types.IngredientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*types.IngredientResponse, error)
}

// ITagService defines the interface for the tag catalog
type ITagService interface {
	List(ctx context.Context) ([]types.TagResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*types.TagResponse, error)
	Create(ctx context.Context, input types.TagInput) (*types.TagResponse, error)
}

// ISubscriptionService defines the interface for author subscriptions
type ISubscriptionService interface {
	Subscribe(ctx context.Context, userID, authorID uuid.UUID) error
	Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error
	IsSubscribed(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ ILedgerService       = (*LedgerService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ IIngredientService   = (*IngredientService)(nil)
	_ ITagService          = (*TagService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
)
