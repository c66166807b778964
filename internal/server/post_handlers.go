package server

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/CROWNARC/animex-tweet-verse/internal/feed"
	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/observability"
	"github.com/CROWNARC/animex-tweet-verse/internal/polls"
	"github.com/CROWNARC/animex-tweet-verse/internal/reactions"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type pollRequest struct {
	Title   string     `json:"title"`
	EndsAt  *time.Time `json:"ends_at"`
	Options []string   `json:"options"`
}

type createPostRequest struct {
	feed.PostInput
	Poll *pollRequest `json:"poll"`
}

// draft converts the wire shape into a poll draft, running the same option
// count rules a client-side composer would.
func (r *pollRequest) draft() (*polls.Draft, error) {
	d := polls.NewDraft()
	d.SetTitle(r.Title)
	d.SetEndsAt(r.EndsAt)
	for i, title := range r.Options {
		if i >= 2 {
			if err := d.AddOption(); err != nil {
				return nil, err
			}
		}
		if err := d.SetOptionTitle(i, title); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// CreatePost creates a new post for the authenticated user, together with its
// poll when the request carries one.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	in := req.PostInput
	if req.Poll != nil {
		draft, err := req.Poll.draft()
		if err != nil {
			return models.RespondWithError(c, err)
		}
		in.Poll = draft
	}

	post, err := s.composer.CreatePost(c.UserContext(), userID, in)
	if err != nil {
		// The post may have landed without its poll; surface the error but
		// include what was created.
		if post != nil {
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"post":  post,
				"error": err.Error(),
			})
		}
		return models.RespondWithError(c, err)
	}

	observability.Logger.InfoContext(c.UserContext(), "post created", "post_id", post.ID)
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost returns a single post by id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postRepo.GetByID(c.UserContext(), postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, models.NewNotFoundError("Post", postID))
	}
	if err != nil {
		return models.RespondWithError(c, models.NewRemoteFailureError("load post", err))
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// DeletePost removes a post. Only the author or an admin may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := parseUintParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postRepo.GetByID(c.UserContext(), postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, models.NewNotFoundError("Post", postID))
	}
	if err != nil {
		return models.RespondWithError(c, models.NewRemoteFailureError("load post", err))
	}

	if post.UserID != userID {
		viewer, verr := s.userRepo.GetByID(c.UserContext(), userID)
		if verr != nil || !viewer.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You can only delete your own posts",
			})
		}
	}

	if err := s.postRepo.Delete(c.UserContext(), postID); err != nil {
		return models.RespondWithError(c, models.NewRemoteFailureError("delete post", err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted"})
}

type toggleFunc func(ctx context.Context, viewerID uint, post *models.Post) (reactions.Mutation, error)

// ToggleLike flips the viewer's like on a post.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	return s.toggleReaction(c, s.reactions.ToggleLike)
}

// ToggleRetweet flips the viewer's retweet on a post.
func (s *Server) ToggleRetweet(c *fiber.Ctx) error {
	return s.toggleReaction(c, s.reactions.ToggleRetweet)
}

func (s *Server) toggleReaction(c *fiber.Ctx, toggle toggleFunc) error {
	userID := c.Locals("userID").(uint)

	postID, err := parseUintParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postRepo.GetByID(c.UserContext(), postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, models.NewNotFoundError("Post", postID))
	}
	if err != nil {
		return models.RespondWithError(c, models.NewRemoteFailureError("load post", err))
	}

	mutation, err := toggle(c.UserContext(), userID, post)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"mutation": mutation,
		"post":     post,
	})
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name + " parameter")
	}
	return uint(id), nil
}
