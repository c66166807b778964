// Package reactions toggles likes and retweets optimistically. The local post
// is mutated before the store answers; the store's answer then confirms the
// mutation or rolls it back. Every lifecycle step is published as a tagged
// Mutation so consumers can render pending state instead of guessing.
package reactions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/observability"
	"github.com/CROWNARC/animex-tweet-verse/internal/repository"
)

// State tags where a mutation is in its lifecycle.
type State string

const (
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
	StateReverted  State = "reverted"
)

// Mutation describes one toggle applied to one post.
type Mutation struct {
	Kind   models.ReactionKind `json:"kind"`
	PostID uint                `json:"post_id"`
	Active bool                `json:"active"`
	State  State               `json:"state"`
}

// Listener observes mutation lifecycle transitions.
type Listener func(Mutation)

// Engine applies reaction toggles.
type Engine struct {
	reactions repository.ReactionRepository
	listener  Listener
	log       *slog.Logger
}

func NewEngine(reactions repository.ReactionRepository, listener Listener) *Engine {
	return &Engine{
		reactions: reactions,
		listener:  listener,
		log:       observability.Component("reactions"),
	}
}

// ToggleLike flips the viewer's like on the post.
func (e *Engine) ToggleLike(ctx context.Context, viewerID uint, post *models.Post) (Mutation, error) {
	return e.toggle(ctx, models.ReactionLike, viewerID, post)
}

// ToggleRetweet flips the viewer's retweet on the post.
func (e *Engine) ToggleRetweet(ctx context.Context, viewerID uint, post *models.Post) (Mutation, error) {
	return e.toggle(ctx, models.ReactionRetweet, viewerID, post)
}

func (e *Engine) toggle(ctx context.Context, kind models.ReactionKind, viewerID uint, post *models.Post) (Mutation, error) {
	if viewerID == 0 {
		observability.ReactionToggles.WithLabelValues(string(kind), "auth_required").Inc()
		return Mutation{Kind: kind, PostID: post.ID, State: StateReverted},
			models.NewAuthRequiredError(actionName(kind))
	}

	active, count := e.read(kind, post)
	turningOn := !active

	// Optimistic phase: the post reflects the toggle before the store answers.
	e.write(kind, post, turningOn, adjusted(count, turningOn))
	pending := Mutation{Kind: kind, PostID: post.ID, Active: turningOn, State: StatePending}
	e.emit(pending)

	var err error
	if turningOn {
		err = e.reactions.Insert(ctx, kind, viewerID, post.ID)
		if errors.Is(err, repository.ErrDuplicate) {
			// Another session already placed this reaction. The desired end
			// state holds, so the toggle confirms; the counter must not keep
			// the optimistic bump since no row was inserted.
			e.write(kind, post, true, count)
			err = nil
		}
	} else {
		err = e.reactions.Delete(ctx, kind, viewerID, post.ID)
	}

	if err != nil {
		// Rollback to the pre-toggle state.
		e.write(kind, post, active, count)
		reverted := Mutation{Kind: kind, PostID: post.ID, Active: active, State: StateReverted}
		e.emit(reverted)
		observability.ReactionToggles.WithLabelValues(string(kind), "failure").Inc()
		e.log.Error("reaction toggle failed, rolled back", "kind", kind, "post_id", post.ID, "error", err)
		return reverted, models.NewRemoteFailureError(actionName(kind), err)
	}

	confirmed := Mutation{Kind: kind, PostID: post.ID, Active: turningOn, State: StateConfirmed}
	e.emit(confirmed)
	observability.ReactionToggles.WithLabelValues(string(kind), "success").Inc()
	return confirmed, nil
}

func (e *Engine) read(kind models.ReactionKind, post *models.Post) (bool, int) {
	if kind == models.ReactionRetweet {
		return post.IsRetweeted, post.RetweetCount
	}
	return post.IsLiked, post.LikeCount
}

func (e *Engine) write(kind models.ReactionKind, post *models.Post, active bool, count int) {
	if kind == models.ReactionRetweet {
		post.IsRetweeted = active
		post.RetweetCount = count
		return
	}
	post.IsLiked = active
	post.LikeCount = count
}

func (e *Engine) emit(m Mutation) {
	if e.listener != nil {
		e.listener(m)
	}
}

func adjusted(count int, turningOn bool) int {
	if turningOn {
		return count + 1
	}
	if count > 0 {
		return count - 1
	}
	return 0
}

func actionName(kind models.ReactionKind) string {
	if kind == models.ReactionRetweet {
		return "retweet posts"
	}
	return "like posts"
}
