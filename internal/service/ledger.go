package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetKind selects one of the per-user recipe sets kept by the ledger.
type SetKind string

const (
	Favorites    SetKind = "favorite"
	ShoppingCart SetKind = "cart"
)

func (k SetKind) label() string {
	if k == ShoppingCart {
		return "shopping cart"
	}
	return "favorites"
}

// membership builds the row stored for (user, recipe) in the set.
func (k SetKind) membership(userID, recipeID uuid.UUID) (interface{}, error) {
	switch k {
	case Favorites:
		return &models.Favorite{UserID: userID, RecipeID: recipeID}, nil
	case ShoppingCart:
		return &models.CartEntry{UserID: userID, RecipeID: recipeID}, nil
	default:
		return nil, NewValidationError("kind", fmt.Sprintf("unknown set %q", k))
	}
}

// LedgerService keeps favorite and shopping cart memberships
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Add puts a recipe into the user's set and returns the recipe summary.
// Adding a recipe that is already present is a conflict.
func (s *LedgerService) Add(ctx context.Context, userID, recipeID uuid.UUID, kind SetKind) (summary *types.RecipeSummary, err error) {
	defer func() { metrics.RecordLedgerChange(string(kind), "add", err) }()

	row, err := kind.membership(userID, recipeID)
	if err != nil {
		return nil, err
	}

	var recipe models.Recipe
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "name", "image", "cooking_time").First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newNotFound("recipe", recipeID)
			}
			return err
		}

		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return newConflict(string(kind), "recipe already in "+kind.label())
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, mapStorageError(err, string(kind))
	}

	return &types.RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}, nil
}

// Remove takes a recipe out of the user's set. Removing a recipe that is
// not present is a not-found error.
func (s *LedgerService) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind SetKind) (err error) {
	defer func() { metrics.RecordLedgerChange(string(kind), "remove", err) }()

	row, err := kind.membership(userID, recipeID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(row)
	if result.Error != nil {
		return mapStorageError(result.Error, string(kind))
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "recipe in " + kind.label(), IDs: []uuid.UUID{recipeID}}
	}
	return nil
}

// Contains reports whether the recipe is in the user's set.
func (s *LedgerService) Contains(ctx context.Context, userID, recipeID uuid.UUID, kind SetKind) (bool, error) {
	row, err := kind.membership(userID, recipeID)
	if err != nil {
		return false, err
	}

	var count int64
	err = s.db.WithContext(ctx).Model(row).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, mapStorageError(err, string(kind))
	}
	return count > 0, nil
}
