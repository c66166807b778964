package repository

import (
	"context"
	"testing"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGetByID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	user := &models.User{Username: "misaka", Email: "misaka@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "misaka", got.Username)
}

func TestUserRepository_GetByEmail_Absent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db, nil)

	got, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db, nil)
	seedUser(t, db, "kamina")

	got, err := repo.GetByUsername(context.Background(), "kamina")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "kamina@example.com", got.Email)

	absent, err := repo.GetByUsername(context.Background(), "simon")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestUserRepository_Update(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	user := seedUser(t, db, "yuki")
	user.Bio = "watching everything this season"
	user.AvatarURL = "https://cdn.example.com/avatars/yuki.png"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "watching everything this season", got.Bio)
	assert.Equal(t, "https://cdn.example.com/avatars/yuki.png", got.AvatarURL)
}
