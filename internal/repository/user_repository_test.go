package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_UpsertFromTelegram(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.UpsertFromTelegram(ctx, 42, "Ann", "", "ann")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := repo.UpsertFromTelegram(ctx, 42, "Anna", "K", "anna")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Anna", users[0].FirstName)
}

func TestUserRepository_ListIDs(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.UpsertFromTelegram(ctx, 42, "Ann", "", "")
	require.NoError(t, err)
	_, err = repo.UpsertFromTelegram(ctx, 7, "Bob", "", "")
	require.NoError(t, err)

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "7"}, ids)
}
