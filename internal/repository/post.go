package repository

import (
	"context"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/notifications"

	"gorm.io/gorm"
)

// Feed orderings understood by ListApproved.
const (
	SortRecent    = "recent"
	SortTrending  = "trending"
	SortFollowing = "following"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListApproved(ctx context.Context, sort string, limit int) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db  *gorm.DB
	bus *notifications.Bus
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB, bus *notifications.Bus) PostRepository {
	return &postRepository{db: db, bus: bus}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	r.publish(ctx, notifications.ActionInsert)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListApproved(ctx context.Context, sort string, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	base := r.db.WithContext(ctx).
		Where("status = ?", models.PostStatusApproved)
	err := applySort(base, sort).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// applySort appends the ORDER BY clause for the requested feed view.
// The following view has no follow-graph backing it yet and deliberately
// falls back to recent ordering.
func applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case SortTrending:
		return db.Order("like_count DESC, created_at DESC")
	case SortFollowing:
		return db.Order("created_at DESC")
	default: // SortRecent and anything unrecognized
		return db.Order("created_at DESC")
	}
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	r.publish(ctx, notifications.ActionDelete)
	return nil
}

func (r *postRepository) publish(ctx context.Context, action notifications.Action) {
	if r.bus == nil {
		return
	}
	_ = r.bus.Publish(ctx, notifications.Event{Table: notifications.TablePosts, Action: action})
}
