package repository

import (
	"context"
	"testing"
	"time"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func backdatePost(t *testing.T, db *gorm.DB, post *models.Post, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(post).UpdateColumn("created_at", at).Error)
}

func TestPostRepository_ListApproved_FiltersStatus(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPostRepository(db, nil)
	alice := seedUser(t, db, "alice")

	approved := seedPost(t, db, alice, "visible", models.PostStatusApproved)
	seedPost(t, db, alice, "awaiting review", models.PostStatusPending)
	seedPost(t, db, alice, "nope", models.PostStatusRejected)

	posts, err := repo.ListApproved(context.Background(), SortRecent, 50)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, approved.ID, posts[0].ID)
}

func TestPostRepository_ListApproved_RecentOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPostRepository(db, nil)
	alice := seedUser(t, db, "alice")

	now := time.Now().UTC()
	old := seedPost(t, db, alice, "old", models.PostStatusApproved)
	backdatePost(t, db, old, now.Add(-2*time.Hour))
	mid := seedPost(t, db, alice, "mid", models.PostStatusApproved)
	backdatePost(t, db, mid, now.Add(-time.Hour))
	fresh := seedPost(t, db, alice, "fresh", models.PostStatusApproved)
	backdatePost(t, db, fresh, now)

	posts, err := repo.ListApproved(context.Background(), SortRecent, 50)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, fresh.ID, posts[0].ID)
	assert.Equal(t, mid.ID, posts[1].ID)
	assert.Equal(t, old.ID, posts[2].ID)
}

func TestPostRepository_ListApproved_TrendingOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPostRepository(db, nil)
	alice := seedUser(t, db, "alice")

	quiet := seedPost(t, db, alice, "quiet", models.PostStatusApproved)
	loud := seedPost(t, db, alice, "loud", models.PostStatusApproved)
	require.NoError(t, db.Model(loud).UpdateColumn("like_count", 7).Error)

	posts, err := repo.ListApproved(context.Background(), SortTrending, 50)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, loud.ID, posts[0].ID)
	assert.Equal(t, quiet.ID, posts[1].ID)
}

func TestPostRepository_ListApproved_Limit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPostRepository(db, nil)
	alice := seedUser(t, db, "alice")

	for i := 0; i < 5; i++ {
		seedPost(t, db, alice, "post", models.PostStatusApproved)
	}

	posts, err := repo.ListApproved(context.Background(), SortRecent, 3)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestPostRepository_Delete(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPostRepository(db, nil)
	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "gone soon", models.PostStatusApproved)

	require.NoError(t, repo.Delete(context.Background(), post.ID))

	_, err := repo.GetByID(context.Background(), post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
