package repository

import (
	"context"
	"errors"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/notifications"

	"gorm.io/gorm"
)

// PollRepository defines the interface for poll data operations.
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) error
	GetByID(ctx context.Context, pollID uint) (*models.Poll, error)
	GetByPostID(ctx context.Context, postID uint) (*models.Poll, error)
	GetVote(ctx context.Context, pollID, userID uint) (*models.PollVote, error)
	CastVote(ctx context.Context, pollID, optionID, userID uint) error
}

type pollRepository struct {
	db  *gorm.DB
	bus *notifications.Bus
}

// NewPollRepository creates a new poll repository.
func NewPollRepository(db *gorm.DB, bus *notifications.Bus) PollRepository {
	return &pollRepository{db: db, bus: bus}
}

// Create persists a poll together with its options in one transaction.
// Option order must already be assigned by the caller.
func (r *pollRepository) Create(ctx context.Context, poll *models.Poll) error {
	if err := r.db.WithContext(ctx).Create(poll).Error; err != nil {
		return err
	}
	r.publish(ctx, notifications.ActionInsert)
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, pollID uint) (*models.Poll, error) {
	var poll models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_order ASC")
		}).
		First(&poll, pollID).Error
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepository) GetByPostID(ctx context.Context, postID uint) (*models.Poll, error) {
	var poll models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_order ASC")
		}).
		Where("post_id = ?", postID).
		First(&poll).Error
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepository) GetVote(ctx context.Context, pollID, userID uint) (*models.PollVote, error) {
	var vote models.PollVote
	err := r.db.WithContext(ctx).
		Where("poll_id = ? AND user_id = ?", pollID, userID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// CastVote inserts the viewer's vote, or moves an existing vote to a new
// option. Counters move in the same transaction, so
// sum(option.vote_count) == poll.total_votes holds after commit:
// a first vote bumps the option and the total, a moved vote shifts one count
// between options and leaves the total alone.
func (r *pollRepository) CastVote(ctx context.Context, pollID, optionID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PollVote
		findErr := tx.Where("poll_id = ? AND user_id = ?", pollID, userID).First(&existing).Error

		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			vote := models.PollVote{PollID: pollID, UserID: userID, OptionID: optionID}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				"UPDATE poll_options SET vote_count = vote_count + 1 WHERE id = ?", optionID,
			).Error; err != nil {
				return err
			}
			return tx.Exec(
				"UPDATE polls SET total_votes = total_votes + 1 WHERE id = ?", pollID,
			).Error

		case findErr != nil:
			return findErr

		case existing.OptionID == optionID:
			// Re-voting the held option is a no-op.
			return nil

		default:
			if err := tx.Model(&models.PollVote{}).
				Where("id = ?", existing.ID).
				Update("option_id", optionID).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				"UPDATE poll_options SET vote_count = vote_count - 1 WHERE id = ? AND vote_count > 0",
				existing.OptionID,
			).Error; err != nil {
				return err
			}
			return tx.Exec(
				"UPDATE poll_options SET vote_count = vote_count + 1 WHERE id = ?", optionID,
			).Error
		}
	})
	if err != nil {
		return err
	}

	r.publish(ctx, notifications.ActionUpdate)
	return nil
}

func (r *pollRepository) publish(ctx context.Context, action notifications.Action) {
	if r.bus == nil {
		return
	}
	_ = r.bus.Publish(ctx, notifications.Event{Table: notifications.TablePolls, Action: action})
}
