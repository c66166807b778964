package server

import (
	"io"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/profile"

	"github.com/gofiber/fiber/v2"
)

// UpdateMyProfile applies a profile edit for the authenticated user. The
// request is multipart so an avatar file can ride along; username and bio
// are plain form fields. A missing avatar part leaves the avatar unchanged.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	update := profile.Update{
		Username: c.FormValue("username"),
		Bio:      c.FormValue("bio"),
	}

	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			return models.RespondWithError(c, models.NewValidationError("Could not read avatar upload"))
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return models.RespondWithError(c, models.NewValidationError("Could not read avatar upload"))
		}
		update.Avatar = data
	}

	updated, err := s.profiles.Apply(c.UserContext(), userID, update)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}
