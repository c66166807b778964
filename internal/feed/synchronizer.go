// Package feed keeps an in-memory page of the approved-post feed in sync with
// the store. Change notifications are pure triggers: every one of them ends in
// a full refetch, coalesced so a write burst costs one refresh.
package feed

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/notifications"
	"github.com/CROWNARC/animex-tweet-verse/internal/observability"
	"github.com/CROWNARC/animex-tweet-verse/internal/repository"

	"github.com/samber/lo"
)

// Feed views. Following has no follow graph behind it yet and orders like
// recent.
const (
	ViewRecent    = repository.SortRecent
	ViewTrending  = repository.SortTrending
	ViewFollowing = repository.SortFollowing
)

// watchedTables are the change feeds that invalidate the page.
var watchedTables = []string{
	notifications.TablePosts,
	notifications.TableLikes,
	notifications.TableRetweets,
	notifications.TableComments,
	notifications.TablePolls,
}

// NoticeFunc receives user-visible one-line failure notices.
type NoticeFunc func(message string)

// Synchronizer owns the current feed page. Refresh is two-phase: fetch the
// approved page, then annotate it with the viewer's like/retweet membership.
// The annotation phase observes the id set fixed by phase one.
type Synchronizer struct {
	posts     repository.PostRepository
	reactions repository.ReactionRepository
	bus       *notifications.Bus
	pageSize  int
	debounce  time.Duration
	notify    NoticeFunc
	log       *slog.Logger

	mu       sync.RWMutex
	view     string
	viewerID uint
	page     []*models.Post

	kick chan struct{}
}

func NewSynchronizer(
	posts repository.PostRepository,
	reactions repository.ReactionRepository,
	bus *notifications.Bus,
	pageSize int,
	debounce time.Duration,
	notify NoticeFunc,
) *Synchronizer {
	return &Synchronizer{
		posts:     posts,
		reactions: reactions,
		bus:       bus,
		pageSize:  pageSize,
		debounce:  debounce,
		notify:    notify,
		log:       observability.Component("feed"),
		view:      ViewRecent,
		kick:      make(chan struct{}, 1),
	}
}

// Refresh fetches a fresh page for the given view and viewer, installs it as
// the current page, and returns it. On failure the previous page is retained
// and the failure is surfaced as a notice.
func (s *Synchronizer) Refresh(ctx context.Context, view string, viewerID uint) ([]*models.Post, error) {
	start := time.Now()

	s.mu.Lock()
	s.view = view
	s.viewerID = viewerID
	s.mu.Unlock()

	posts, err := s.posts.ListApproved(ctx, view, s.pageSize)
	if err != nil {
		s.refreshFailed(view, err)
		return nil, models.NewRemoteFailureError("refresh feed", err)
	}

	if viewerID != 0 {
		if err := s.annotate(ctx, posts, viewerID); err != nil {
			s.refreshFailed(view, err)
			return nil, models.NewRemoteFailureError("refresh feed", err)
		}
	}

	s.mu.Lock()
	s.page = posts
	s.mu.Unlock()

	observability.FeedRefreshes.WithLabelValues(view, "success").Inc()
	observability.ObserveRefresh(view, start)
	return s.snapshot(), nil
}

// annotate marks each post with the viewer's like and retweet membership.
// Both lookups are restricted to the fetched page's id set.
func (s *Synchronizer) annotate(ctx context.Context, posts []*models.Post, viewerID uint) error {
	if len(posts) == 0 {
		return nil
	}

	ids := lo.Map(posts, func(p *models.Post, _ int) uint { return p.ID })

	likedIDs, err := s.reactions.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	retweetedIDs, err := s.reactions.RetweetedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return err
	}

	liked := lo.SliceToMap(likedIDs, func(id uint) (uint, struct{}) { return id, struct{}{} })
	retweeted := lo.SliceToMap(retweetedIDs, func(id uint) (uint, struct{}) { return id, struct{}{} })

	for _, p := range posts {
		_, p.IsLiked = liked[p.ID]
		_, p.IsRetweeted = retweeted[p.ID]
	}
	return nil
}

func (s *Synchronizer) refreshFailed(view string, err error) {
	observability.FeedRefreshes.WithLabelValues(view, "failure").Inc()
	s.log.Error("feed refresh failed, keeping previous page", "view", view, "error", err)
	if s.notify != nil {
		s.notify("Could not refresh the feed. Showing the last loaded posts.")
	}
}

// Posts returns the current page.
func (s *Synchronizer) Posts() []*models.Post {
	return s.snapshot()
}

// Search filters the current page by a case-insensitive substring match on
// content, anime title, and author username. It never touches the store.
func (s *Synchronizer) Search(query string) []*models.Post {
	page := s.snapshot()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return page
	}

	return lo.Filter(page, func(p *models.Post, _ int) bool {
		return strings.Contains(strings.ToLower(p.Content), q) ||
			strings.Contains(strings.ToLower(p.AnimeTitle), q) ||
			strings.Contains(strings.ToLower(p.Username), q)
	})
}

func (s *Synchronizer) snapshot() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Post(nil), s.page...)
}

func (s *Synchronizer) target() (string, uint) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view, s.viewerID
}

// Run subscribes to change notifications and refreshes the current view until
// ctx is cancelled. Overlapping triggers collapse into a single pending
// refresh; a burst is absorbed for one debounce window before refetching.
func (s *Synchronizer) Run(ctx context.Context) error {
	err := s.bus.Subscribe(ctx, watchedTables, func(e notifications.Event) {
		observability.ChangeEvents.WithLabelValues(e.Table).Inc()
		s.Invalidate()
	})
	if err != nil {
		return err
	}

	go s.refreshLoop(ctx)
	return nil
}

// Invalidate schedules a refresh. Calling it while one is already pending is
// a no-op counted as coalesced.
func (s *Synchronizer) Invalidate() {
	select {
	case s.kick <- struct{}{}:
	default:
		observability.FeedRefreshesCoalesced.Inc()
	}
}

func (s *Synchronizer) refreshLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		}

		if !s.absorbBurst(ctx) {
			return
		}

		view, viewerID := s.target()
		if _, err := s.Refresh(ctx, view, viewerID); err != nil {
			// Already logged and noticed; the next trigger retries.
			continue
		}
	}
}

// absorbBurst waits out the debounce window, swallowing further triggers.
// Returns false when ctx is cancelled.
func (s *Synchronizer) absorbBurst(ctx context.Context) bool {
	if s.debounce <= 0 {
		return true
	}
	timer := time.NewTimer(s.debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-s.kick:
			observability.FeedRefreshesCoalesced.Inc()
		case <-timer.C:
			return true
		}
	}
}
