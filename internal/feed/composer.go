package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/observability"
	"github.com/CROWNARC/animex-tweet-verse/internal/polls"
	"github.com/CROWNARC/animex-tweet-verse/internal/repository"
	"github.com/CROWNARC/animex-tweet-verse/internal/storage"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var allowedPostTypes = []string{
	models.PostTypeText,
	models.PostTypeImage,
	models.PostTypeGif,
	models.PostTypeLink,
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// PostInput is everything the composer accepts for a new post.
type PostInput struct {
	Content   string `json:"content"`
	PostType  string `json:"post_type"`
	MediaURL  string `json:"media_url"`
	LinkURL   string `json:"link_url"`
	LinkTitle string `json:"link_title"`

	AnimeID    string `json:"anime_id"`
	AnimeTitle string `json:"anime_title"`
	AnimeImage string `json:"anime_image"`

	Poll *polls.Draft `json:"-"`
}

// Composer creates posts, together with their poll when the draft carries one.
type Composer struct {
	posts  repository.PostRepository
	polls  repository.PollRepository
	users  repository.UserRepository
	blobs  storage.BlobStore
	bucket string
	log    *slog.Logger
}

func NewComposer(
	posts repository.PostRepository,
	pollRepo repository.PollRepository,
	users repository.UserRepository,
	blobs storage.BlobStore,
	mediaBucket string,
) *Composer {
	return &Composer{
		posts:  posts,
		polls:  pollRepo,
		users:  users,
		blobs:  blobs,
		bucket: mediaBucket,
		log:    observability.Component("composer"),
	}
}

// CreatePost validates and persists a post. An empty poll draft collapses to
// no poll at all; a non-empty one is persisted with its option order assigned
// at build time. Poll option images are uploaded before anything is written
// so a failed upload leaves no partial post behind.
func (c *Composer) CreatePost(ctx context.Context, viewerID uint, in PostInput) (*models.Post, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError("create posts")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Post content is required")
	}

	postType := in.PostType
	if postType == "" {
		postType = models.PostTypeText
	}
	if !lo.Contains(allowedPostTypes, postType) {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown post type %q", postType))
	}

	author, err := c.users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, models.NewRemoteFailureError("load author", err)
	}

	var poll *models.Poll
	if in.Poll != nil {
		poll = in.Poll.Build()
	}
	if poll != nil {
		if err := c.uploadOptionImages(ctx, in.Poll, poll); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		UserID:     author.ID,
		Username:   author.Username,
		UserAvatar: author.AvatarURL,
		Content:    content,
		PostType:   postType,
		MediaURL:   in.MediaURL,
		LinkURL:    in.LinkURL,
		LinkTitle:  in.LinkTitle,
		AnimeID:    in.AnimeID,
		AnimeTitle: in.AnimeTitle,
		AnimeImage: in.AnimeImage,
		Status:     models.PostStatusApproved,
	}

	if err := c.posts.Create(ctx, post); err != nil {
		return nil, models.NewRemoteFailureError("create post", err)
	}

	if poll != nil {
		poll.PostID = post.ID
		if err := c.polls.Create(ctx, poll); err != nil {
			// The post row already exists; surface the failure but leave it.
			c.log.Error("poll creation failed after post insert, post has no poll",
				"post_id", post.ID, "error", err)
			return post, models.NewRemoteFailureError("create poll", err)
		}
	}

	return post, nil
}

func (c *Composer) uploadOptionImages(ctx context.Context, draft *polls.Draft, poll *models.Poll) error {
	for i, opt := range draft.Options() {
		if opt.Image == nil || i >= len(poll.Options) {
			continue
		}
		ext, ok := imageExtensions[opt.ImageContentType]
		if !ok {
			ext = "bin"
		}
		objectPath := fmt.Sprintf("polls/%s.%s", uuid.New().String(), ext)
		url, err := c.blobs.Upload(ctx, c.bucket, objectPath, opt.Image, opt.ImageContentType)
		if err != nil {
			return err
		}
		poll.Options[i].ImageURL = url
	}
	return nil
}
