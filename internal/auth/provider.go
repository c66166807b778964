// Package auth issues and verifies credentials: bcrypt password hashing and
// signed JWT access tokens carrying the user id in the subject claim.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/repository"
	"github.com/CROWNARC/animex-tweet-verse/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "animez-api"
	tokenAudience = "animez-client"
	tokenTTL      = time.Hour * 24 * 7
)

// Provider authenticates users against the user store.
type Provider struct {
	users  repository.UserRepository
	secret string
}

func NewProvider(users repository.UserRepository, secret string) *Provider {
	return &Provider{users: users, secret: secret}
}

// CreateIdentity registers a new account. Validation runs before any store
// access; a taken email or username is a conflict.
func (p *Provider) CreateIdentity(ctx context.Context, username, email, password string) (*models.User, string, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}

	existing, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", models.NewRemoteFailureError("look up email", err)
	}
	if existing != nil {
		return nil, "", models.NewConflictError("an account with this email already exists", nil)
	}

	taken, err := p.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", models.NewRemoteFailureError("look up username", err)
	}
	if taken != nil {
		return nil, "", models.NewConflictError("username is already taken", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, "", models.NewRemoteFailureError("create account", err)
	}

	token, err := p.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate verifies an email/password pair and returns the user with a
// fresh token. Wrong email and wrong password are indistinguishable to the
// caller.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", models.NewRemoteFailureError("look up email", err)
	}
	if user == nil {
		return nil, "", models.NewAuthRequiredError("sign in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", models.NewAuthRequiredError("sign in")
	}

	token, err := p.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GenerateToken creates a signed JWT for the given user.
func (p *Provider) GenerateToken(userID uint, username string) (string, error) {
	if p.secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.secret))
}

// VerifyToken parses and validates a token string, returning the user id it
// was issued for.
func (p *Provider) VerifyToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(p.secret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewAuthRequiredError("verify token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewAuthRequiredError("verify token")
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return 0, models.NewAuthRequiredError("verify token")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return 0, models.NewAuthRequiredError("verify token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewAuthRequiredError("verify token")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewAuthRequiredError("verify token")
	}
	return uint(userID), nil
}
