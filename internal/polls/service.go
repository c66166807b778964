// Package polls serves poll reads and vote casting for feed posts.
package polls

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/observability"
	"github.com/CROWNARC/animex-tweet-verse/internal/repository"

	"gorm.io/gorm"
)

// Service reads polls and casts votes.
type Service struct {
	polls repository.PollRepository
	now   func() time.Time
	log   *slog.Logger
}

func NewService(polls repository.PollRepository) *Service {
	return &Service{
		polls: polls,
		now:   time.Now,
		log:   observability.Component("polls"),
	}
}

// Get returns the poll attached to a post, or nil when the post has none.
// A missing poll is the normal case for most posts, not an error.
func (s *Service) Get(ctx context.Context, postID uint) (*models.Poll, error) {
	poll, err := s.polls.GetByPostID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewRemoteFailureError("load poll", err)
	}
	return poll, nil
}

// ViewerVote returns the option the viewer has voted for, 0 when they have
// not voted or are not signed in.
func (s *Service) ViewerVote(ctx context.Context, pollID, viewerID uint) (uint, error) {
	if viewerID == 0 {
		return 0, nil
	}
	vote, err := s.polls.GetVote(ctx, pollID, viewerID)
	if err != nil {
		return 0, models.NewRemoteFailureError("load vote", err)
	}
	if vote == nil {
		return 0, nil
	}
	return vote.OptionID, nil
}

// CanVote reports whether the viewer may vote on the poll right now.
func (s *Service) CanVote(viewerID uint, poll *models.Poll) bool {
	return viewerID != 0 && !poll.Expired(s.now())
}

// CastVote records the viewer's vote and returns the poll refetched in full.
// Voting again for the same option is a no-op; voting for a different option
// moves the vote without changing the total.
func (s *Service) CastVote(ctx context.Context, viewerID, pollID, optionID uint) (*models.Poll, error) {
	if viewerID == 0 {
		observability.PollVotes.WithLabelValues("auth_required").Inc()
		return nil, models.NewAuthRequiredError("vote in polls")
	}

	poll, err := s.polls.GetByID(ctx, pollID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Poll", pollID)
	}
	if err != nil {
		return nil, models.NewRemoteFailureError("load poll", err)
	}

	if poll.Expired(s.now()) {
		observability.PollVotes.WithLabelValues("expired").Inc()
		return nil, models.NewValidationError("This poll has ended")
	}

	validOption := false
	for _, opt := range poll.Options {
		if opt.ID == optionID {
			validOption = true
			break
		}
	}
	if !validOption {
		return nil, models.NewValidationError("Option does not belong to this poll")
	}

	if err := s.polls.CastVote(ctx, pollID, optionID, viewerID); err != nil {
		observability.PollVotes.WithLabelValues("failure").Inc()
		s.log.Error("vote cast failed", "poll_id", pollID, "option_id", optionID, "error", err)
		return nil, models.NewRemoteFailureError("cast vote", err)
	}

	observability.PollVotes.WithLabelValues("success").Inc()

	refreshed, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, models.NewRemoteFailureError("reload poll", err)
	}
	return refreshed, nil
}
