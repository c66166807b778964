// Package profile edits the viewer's own profile row, including avatar
// uploads to blob storage.
package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/observability"
	"github.com/CROWNARC/animex-tweet-verse/internal/repository"
	"github.com/CROWNARC/animex-tweet-verse/internal/storage"
	"github.com/CROWNARC/animex-tweet-verse/internal/validation"

	"github.com/google/uuid"
)

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Update is the full set of editable fields. A nil Avatar leaves the current
// avatar in place.
type Update struct {
	Username string
	Bio      string
	Avatar   []byte
}

// Editor applies profile updates.
type Editor struct {
	users  repository.UserRepository
	blobs  storage.BlobStore
	bucket string
	log    *slog.Logger
}

func NewEditor(users repository.UserRepository, blobs storage.BlobStore, bucket string) *Editor {
	return &Editor{
		users:  users,
		blobs:  blobs,
		bucket: bucket,
		log:    observability.Component("profile"),
	}
}

// Apply validates and persists a profile update for the viewer. All
// validation runs before anything is sent to storage or the user store; an
// oversized avatar never produces an upload attempt.
func (e *Editor) Apply(ctx context.Context, viewerID uint, update Update) (*models.Profile, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError("edit your profile")
	}

	if err := validation.ValidateUsername(update.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBio(update.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if update.Avatar != nil {
		if err := validation.ValidateImage(update.Avatar); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	user, err := e.users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, models.NewRemoteFailureError("load profile", err)
	}

	if update.Username != user.Username {
		taken, err := e.users.GetByUsername(ctx, update.Username)
		if err != nil {
			return nil, models.NewRemoteFailureError("check username", err)
		}
		if taken != nil {
			return nil, models.NewConflictError("username is already taken", nil)
		}
	}

	if update.Avatar != nil {
		url, err := e.replaceAvatar(ctx, user, update.Avatar)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = url
	}

	user.Username = update.Username
	user.Bio = update.Bio

	if err := e.users.Update(ctx, user); err != nil {
		return nil, models.NewRemoteFailureError("save profile", err)
	}
	return models.ProfileOf(user), nil
}

// replaceAvatar removes the previous blob best-effort, then uploads the new
// one under a fresh object name so stale CDN caches never serve old bytes.
func (e *Editor) replaceAvatar(ctx context.Context, user *models.User, avatar []byte) (string, error) {
	if user.AvatarURL != "" {
		if old := e.blobs.ObjectPathFromURL(e.bucket, user.AvatarURL); old != "" {
			if err := e.blobs.Remove(ctx, e.bucket, old); err != nil {
				e.log.Warn("old avatar removal failed, leaving orphan blob",
					"user_id", user.ID, "path", old, "error", err)
			}
		}
	}

	contentType := validation.ImageContentType(avatar)
	ext, ok := extensions[contentType]
	if !ok {
		ext = "bin"
	}
	objectPath := fmt.Sprintf("avatars/%d-%s.%s", user.ID, uuid.New().String(), ext)

	url, err := e.blobs.Upload(ctx, e.bucket, objectPath, avatar, contentType)
	if err != nil {
		return "", err
	}
	return url, nil
}
