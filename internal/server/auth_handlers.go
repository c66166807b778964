package server

import (
	"errors"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/observability"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates a new account and returns the signed-in session. The session
// comes back before profile hydration; Profile may be null in the response.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	sess, err := s.sessions.SignUp(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	observability.Logger.InfoContext(c.UserContext(), "user signed up", "user_id", sess.Identity.UserID)
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// Login authenticates with email and password.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	sess, err := s.sessions.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sess)
}

// Logout clears the current session. Tokens are stateless, so this only
// drops the server-side session state.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.sessions.SignOut(c.UserContext())
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out"})
}

// GetMyProfile returns the authenticated user's profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, models.NewNotFoundError("User", userID))
	}
	if err != nil {
		return models.RespondWithError(c, models.NewRemoteFailureError("load profile", err))
	}

	return c.Status(fiber.StatusOK).JSON(models.ProfileOf(user))
}
