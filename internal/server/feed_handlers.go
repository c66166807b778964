package server

import (
	"github.com/CROWNARC/animex-tweet-verse/internal/feed"
	"github.com/CROWNARC/animex-tweet-verse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

var feedViews = []string{feed.ViewRecent, feed.ViewTrending, feed.ViewFollowing}

// GetFeed returns the current feed page. The view defaults to recent;
// an unknown view is rejected. When a search query is present the freshly
// refreshed page is filtered before it is returned.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	view := c.Query("view", feed.ViewRecent)
	if !lo.Contains(feedViews, view) {
		return models.RespondWithError(c, models.NewValidationError("Unknown feed view: "+view))
	}

	viewerID := s.optionalUserID(c)

	posts, err := s.synchronizer.Refresh(c.UserContext(), view, viewerID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if q := c.Query("q"); q != "" {
		posts = s.synchronizer.Search(q)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"view":  view,
		"posts": posts,
		"count": len(posts),
	})
}
