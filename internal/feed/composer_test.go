package feed

import (
	"context"
	"testing"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/polls"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPollRepository is a mock of the PollRepository interface
type MockPollRepository struct {
	mock.Mock
}

func (m *MockPollRepository) Create(ctx context.Context, poll *models.Poll) error {
	args := m.Called(ctx, poll)
	return args.Error(0)
}

func (m *MockPollRepository) GetByID(ctx context.Context, pollID uint) (*models.Poll, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poll), args.Error(1)
}

func (m *MockPollRepository) GetByPostID(ctx context.Context, postID uint) (*models.Poll, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poll), args.Error(1)
}

func (m *MockPollRepository) GetVote(ctx context.Context, pollID, userID uint) (*models.PollVote, error) {
	args := m.Called(ctx, pollID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PollVote), args.Error(1)
}

func (m *MockPollRepository) CastVote(ctx context.Context, pollID, optionID, userID uint) error {
	args := m.Called(ctx, pollID, optionID, userID)
	return args.Error(0)
}

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockBlobStore is a mock of the BlobStore interface
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, bucket, objectPath, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Remove(ctx context.Context, bucket, objectPath string) error {
	args := m.Called(ctx, bucket, objectPath)
	return args.Error(0)
}

func (m *MockBlobStore) PublicURL(bucket, objectPath string) string {
	args := m.Called(bucket, objectPath)
	return args.String(0)
}

func (m *MockBlobStore) ObjectPathFromURL(bucket, publicURL string) string {
	args := m.Called(bucket, publicURL)
	return args.String(0)
}

func newComposerMocks() (*MockPostRepository, *MockPollRepository, *MockUserRepository, *MockBlobStore) {
	return new(MockPostRepository), new(MockPollRepository), new(MockUserRepository), new(MockBlobStore)
}

func TestComposer_CreatePost(t *testing.T) {
	t.Parallel()

	posts, pollRepo, users, blobs := newComposerMocks()
	users.On("GetByID", mock.Anything, uint(7)).
		Return(&models.User{ID: 7, Username: "rei", AvatarURL: "https://cdn.example.com/rei.png"}, nil)
	posts.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Post).ID = 100 }).
		Return(nil)

	c := NewComposer(posts, pollRepo, users, blobs, "media")
	post, err := c.CreatePost(context.Background(), 7, PostInput{Content: "  new season hype  "})
	require.NoError(t, err)

	assert.Equal(t, uint(100), post.ID)
	assert.Equal(t, "new season hype", post.Content)
	assert.Equal(t, models.PostTypeText, post.PostType)
	assert.Equal(t, "rei", post.Username)
	assert.Equal(t, "https://cdn.example.com/rei.png", post.UserAvatar)
	assert.Equal(t, models.PostStatusApproved, post.Status)
	pollRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestComposer_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	posts, pollRepo, users, blobs := newComposerMocks()
	c := NewComposer(posts, pollRepo, users, blobs, "media")

	_, err := c.CreatePost(context.Background(), 0, PostInput{Content: "hi"})
	assert.True(t, models.IsCode(err, models.CodeAuthRequired))

	_, err = c.CreatePost(context.Background(), 7, PostInput{Content: "   "})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = c.CreatePost(context.Background(), 7, PostInput{Content: "hi", PostType: "song"})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestComposer_CreatePost_WithPoll(t *testing.T) {
	t.Parallel()

	posts, pollRepo, users, blobs := newComposerMocks()
	users.On("GetByID", mock.Anything, uint(7)).Return(&models.User{ID: 7, Username: "rei"}, nil)
	posts.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Post).ID = 100 }).
		Return(nil)
	pollRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Poll) bool {
		return p.PostID == 100 && len(p.Options) == 2 && p.Options[1].OptionOrder == 1
	})).Return(nil)

	draft := polls.NewDraft()
	draft.SetTitle("Best girl?")
	require.NoError(t, draft.SetOptionTitle(0, "A"))
	require.NoError(t, draft.SetOptionTitle(1, "B"))

	c := NewComposer(posts, pollRepo, users, blobs, "media")
	_, err := c.CreatePost(context.Background(), 7, PostInput{Content: "vote!", Poll: draft})
	require.NoError(t, err)
	pollRepo.AssertExpectations(t)
}

func TestComposer_CreatePost_EmptyDraftMeansNoPoll(t *testing.T) {
	t.Parallel()

	posts, pollRepo, users, blobs := newComposerMocks()
	users.On("GetByID", mock.Anything, uint(7)).Return(&models.User{ID: 7, Username: "rei"}, nil)
	posts.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).Return(nil)

	c := NewComposer(posts, pollRepo, users, blobs, "media")
	_, err := c.CreatePost(context.Background(), 7, PostInput{Content: "no poll here", Poll: polls.NewDraft()})
	require.NoError(t, err)
	pollRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestComposer_CreatePost_UploadsOptionImages(t *testing.T) {
	t.Parallel()

	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	image := append(pngHeader, make([]byte, 32)...)

	posts, pollRepo, users, blobs := newComposerMocks()
	users.On("GetByID", mock.Anything, uint(7)).Return(&models.User{ID: 7, Username: "rei"}, nil)
	posts.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).Return(nil)
	blobs.On("Upload", mock.Anything, "media", mock.Anything, mock.Anything, "image/png").
		Return("https://storage.example.com/object/public/media/polls/x.png", nil)
	pollRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Poll) bool {
		return p.Options[0].ImageURL != "" && p.Options[1].ImageURL == ""
	})).Return(nil)

	draft := polls.NewDraft()
	draft.SetTitle("Best shot?")
	require.NoError(t, draft.SetOptionTitle(0, "A"))
	require.NoError(t, draft.SetOptionTitle(1, "B"))
	require.NoError(t, draft.SetOptionImage(0, image))

	c := NewComposer(posts, pollRepo, users, blobs, "media")
	_, err := c.CreatePost(context.Background(), 7, PostInput{Content: "vote!", Poll: draft})
	require.NoError(t, err)
	blobs.AssertNumberOfCalls(t, "Upload", 1)
}
