package server

import (
	"github.com/CROWNARC/animex-tweet-verse/internal/models"

	"github.com/gofiber/fiber/v2"
)

type voteRequest struct {
	OptionID uint `json:"option_id"`
}

// GetPoll returns the poll attached to a post, with the viewer's own vote
// and whether they may vote right now.
func (s *Server) GetPoll(c *fiber.Ctx) error {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	poll, err := s.polls.Get(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if poll == nil {
		return models.RespondWithError(c, models.NewNotFoundError("Poll for post", postID))
	}

	viewerID := s.optionalUserID(c)
	viewerVote, err := s.polls.ViewerVote(c.UserContext(), poll.ID, viewerID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"poll":        poll,
		"viewer_vote": viewerVote,
		"can_vote":    s.polls.CanVote(viewerID, poll),
	})
}

// CastPollVote records the viewer's vote and returns the refreshed poll.
func (s *Server) CastPollVote(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	pollID, err := parseUintParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.OptionID == 0 {
		return models.RespondWithError(c, models.NewValidationError("option_id is required"))
	}

	poll, err := s.polls.CastVote(c.UserContext(), userID, pollID, req.OptionID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"poll":        poll,
		"viewer_vote": req.OptionID,
	})
}
