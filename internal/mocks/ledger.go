package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var (
	_ service.ILedgerService       = (*MockLedgerService)(nil)
	_ service.IShoppingListService = (*MockShoppingListService)(nil)
)

// MockLedgerService is a mock implementation of the favorite and cart ledger
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Add(ctx context.Context, userID, recipeID uuid.UUID, kind service.SetKind) (*types.RecipeSummary, error) {
	args := m.Called(ctx, userID, recipeID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeSummary), args.Error(1)
}

func (m *MockLedgerService) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind service.SetKind) error {
	args := m.Called(ctx, userID, recipeID, kind)
	return args.Error(0)
}

func (m *MockLedgerService) Contains(ctx context.Context, userID, recipeID uuid.UUID, kind service.SetKind) (bool, error) {
	args := m.Called(ctx, userID, recipeID, kind)
	return args.Bool(0), args.Error(1)
}

// MockShoppingListService is a mock implementation of the shopping list aggregator
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]service.ShoppingItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ShoppingItem), args.Error(1)
}

func (m *MockShoppingListService) RenderText(items []service.ShoppingItem) []byte {
	args := m.Called(items)
	return args.Get(0).([]byte)
}

func (m *MockShoppingListService) RenderPDF(items []service.ShoppingItem) ([]byte, error) {
	args := m.Called(items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
