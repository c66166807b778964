package repository

import (
	"context"
	"fmt"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/notifications"

	"gorm.io/gorm"
)

// ReactionRepository defines the interface for like/retweet row operations.
//
// Insert and Delete keep the denormalized post counter in the same
// transaction as the reaction row, so the counter always equals the number of
// rows. Uniqueness is enforced by the table constraint, not re-checked here.
type ReactionRepository interface {
	Insert(ctx context.Context, kind models.ReactionKind, userID, postID uint) error
	Delete(ctx context.Context, kind models.ReactionKind, userID, postID uint) error
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	RetweetedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
}

type reactionRepository struct {
	db  *gorm.DB
	bus *notifications.Bus
}

// NewReactionRepository creates a new reaction repository.
func NewReactionRepository(db *gorm.DB, bus *notifications.Bus) ReactionRepository {
	return &reactionRepository{db: db, bus: bus}
}

func tableAndCounter(kind models.ReactionKind) (table, counter, channel string) {
	if kind == models.ReactionRetweet {
		return "retweets", "retweet_count", notifications.TableRetweets
	}
	return "likes", "like_count", notifications.TableLikes
}

func (r *reactionRepository) Insert(ctx context.Context, kind models.ReactionKind, userID, postID uint) error {
	table, counter, channel := tableAndCounter(kind)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// ON CONFLICT DO NOTHING makes concurrent double-toggles race-safe:
		// only the row that actually landed bumps the counter.
		res := tx.Exec(
			fmt.Sprintf(`INSERT INTO %s (user_id, post_id, created_at)
			 VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (user_id, post_id) DO NOTHING`, table),
			userID, postID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDuplicate
		}
		return tx.Exec(
			fmt.Sprintf("UPDATE posts SET %s = %s + 1 WHERE id = ?", counter, counter),
			postID,
		).Error
	})
	if err != nil {
		return err
	}

	r.publish(ctx, channel, notifications.ActionInsert)
	return nil
}

func (r *reactionRepository) Delete(ctx context.Context, kind models.ReactionKind, userID, postID uint) error {
	table, counter, channel := tableAndCounter(kind)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Hard delete the reaction row (not a soft-delete flag).
		res := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND post_id = ?", table),
			userID, postID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Nothing to remove; leave the counter untouched.
			return nil
		}
		return tx.Exec(
			fmt.Sprintf("UPDATE posts SET %s = %s - 1 WHERE id = ? AND %s > 0", counter, counter, counter),
			postID,
		).Error
	})
	if err != nil {
		return err
	}

	r.publish(ctx, channel, notifications.ActionDelete)
	return nil
}

func (r *reactionRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *reactionRepository) RetweetedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Retweet{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *reactionRepository) publish(ctx context.Context, table string, action notifications.Action) {
	if r.bus == nil {
		return
	}
	_ = r.bus.Publish(ctx, notifications.Event{Table: table, Action: action})
}
