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

func TestSubscriptions(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	subs := service.NewSubscriptionService(db)

	reader := testhelpers.CreateUser(t, db, "reader")
	author := testhelpers.CreateUser(t, db, "author")

	require.NoError(t, subs.Subscribe(ctx, reader.ID, author.ID))
	assert.ErrorIs(t, subs.Subscribe(ctx, reader.ID, author.ID), service.ErrConflict)

	ok, err := subs.IsSubscribed(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = subs.IsSubscribed(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, ok, "subscriptions are directed")

	require.NoError(t, subs.Unsubscribe(ctx, reader.ID, author.ID))
	assert.ErrorIs(t, subs.Unsubscribe(ctx, reader.ID, author.ID), service.ErrNotFound)
}

func TestSubscribeRejectsSelfAndUnknownAuthor(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	subs := service.NewSubscriptionService(db)
	user := testhelpers.CreateUser(t, db, "loner")

	assert.ErrorIs(t, subs.Subscribe(ctx, user.ID, user.ID), service.ErrValidation)
	assert.ErrorIs(t, subs.Subscribe(ctx, user.ID, uuid.New()), service.ErrNotFound)
}
