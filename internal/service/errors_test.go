package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidationErrorMessage(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("ingredients", "at least one ingredient is required")
	verr.Add("tags", "at least one tag is required")

	err := verr.OrNil()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation: ingredients: at least one ingredient is required; tags: at least one tag is required", err.Error())
}

func TestNotFoundErrorMessage(t *testing.T) {
	id := uuid.New()
	err := newNotFound("ingredient", id)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, fmt.Sprintf("ingredient not found: %s", id), err.Error())
	assert.Equal(t, "recipe not found", newNotFound("recipe").Error())
}

func TestMapStorageError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"wrapped record not found", fmt.Errorf("first: %w", gorm.ErrRecordNotFound), ErrNotFound},
		{"foreign key", gorm.ErrForeignKeyViolated, ErrNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, ErrConflict},
		{"sqlite unique", errors.New("UNIQUE constraint failed: recipes.name"), ErrConflict},
		{"already classified", NewValidationError("name", "required"), ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapStorageError(tt.in, "recipe"), tt.want)
		})
	}

	assert.NoError(t, mapStorageError(nil, "recipe"))

	err := mapStorageError(context.Canceled, "recipe")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNotFound)
}
