package repository

import (
	"context"
	"testing"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPoll(t *testing.T, db *gorm.DB, repo PollRepository, postID uint, optionTitles ...string) *models.Poll {
	t.Helper()

	poll := &models.Poll{PostID: postID, Title: "Best girl?"}
	for i, title := range optionTitles {
		poll.Options = append(poll.Options, models.PollOption{Title: title, OptionOrder: i})
	}
	require.NoError(t, repo.Create(context.Background(), poll))
	return poll
}

func pollInvariant(t *testing.T, repo PollRepository, pollID uint) *models.Poll {
	t.Helper()
	poll, err := repo.GetByID(context.Background(), pollID)
	require.NoError(t, err)

	sum := 0
	for _, opt := range poll.Options {
		sum += opt.VoteCount
	}
	assert.Equal(t, poll.TotalVotes, sum, "sum of option votes must equal total_votes")
	return poll
}

func TestPollRepository_GetByPostID_OrderedOptions(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPollRepository(db, nil)
	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "poll time", models.PostStatusApproved)
	seedPoll(t, db, repo, post.ID, "A", "B", "C")

	poll, err := repo.GetByPostID(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, poll.Options, 3)
	assert.Equal(t, "A", poll.Options[0].Title)
	assert.Equal(t, "B", poll.Options[1].Title)
	assert.Equal(t, "C", poll.Options[2].Title)
}

func TestPollRepository_GetByPostID_Absent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPollRepository(db, nil)
	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "no poll here", models.PostStatusApproved)

	_, err := repo.GetByPostID(context.Background(), post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPollRepository_CastVote_FirstVote(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPollRepository(db, nil)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "poll", models.PostStatusApproved)
	poll := seedPoll(t, db, repo, post.ID, "A", "B")

	require.NoError(t, repo.CastVote(ctx, poll.ID, poll.Options[0].ID, alice.ID))

	got := pollInvariant(t, repo, poll.ID)
	assert.Equal(t, 1, got.TotalVotes)
	assert.Equal(t, 1, got.Options[0].VoteCount)
	assert.Equal(t, 0, got.Options[1].VoteCount)

	vote, err := repo.GetVote(ctx, poll.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, poll.Options[0].ID, vote.OptionID)
}

func TestPollRepository_CastVote_MoveKeepsTotal(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPollRepository(db, nil)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "poll", models.PostStatusApproved)
	poll := seedPoll(t, db, repo, post.ID, "A", "B")

	require.NoError(t, repo.CastVote(ctx, poll.ID, poll.Options[0].ID, alice.ID))
	require.NoError(t, repo.CastVote(ctx, poll.ID, poll.Options[1].ID, alice.ID))

	got := pollInvariant(t, repo, poll.ID)
	assert.Equal(t, 1, got.TotalVotes, "moving a vote must not change total_votes")
	assert.Equal(t, 0, got.Options[0].VoteCount)
	assert.Equal(t, 1, got.Options[1].VoteCount)

	// Only one vote row may exist per (poll, user).
	var rows int64
	require.NoError(t, db.Model(&models.PollVote{}).
		Where("poll_id = ? AND user_id = ?", poll.ID, alice.ID).
		Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestPollRepository_CastVote_SameOptionIsNoop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPollRepository(db, nil)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "poll", models.PostStatusApproved)
	poll := seedPoll(t, db, repo, post.ID, "A", "B")

	require.NoError(t, repo.CastVote(ctx, poll.ID, poll.Options[0].ID, alice.ID))
	require.NoError(t, repo.CastVote(ctx, poll.ID, poll.Options[0].ID, alice.ID))

	got := pollInvariant(t, repo, poll.ID)
	assert.Equal(t, 1, got.TotalVotes)
	assert.Equal(t, 1, got.Options[0].VoteCount)
}

func TestPollRepository_CastVote_MultipleVoters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPollRepository(db, nil)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	post := seedPost(t, db, alice, "poll", models.PostStatusApproved)
	poll := seedPoll(t, db, repo, post.ID, "A", "B")

	require.NoError(t, repo.CastVote(ctx, poll.ID, poll.Options[0].ID, alice.ID))
	require.NoError(t, repo.CastVote(ctx, poll.ID, poll.Options[0].ID, bob.ID))
	require.NoError(t, repo.CastVote(ctx, poll.ID, poll.Options[1].ID, carol.ID))

	got := pollInvariant(t, repo, poll.ID)
	assert.Equal(t, 3, got.TotalVotes)
	assert.Equal(t, 2, got.Options[0].VoteCount)
	assert.Equal(t, 1, got.Options[1].VoteCount)
}

func TestPollRepository_GetVote_Absent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewPollRepository(db, nil)

	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "poll", models.PostStatusApproved)
	poll := seedPoll(t, db, repo, post.ID, "A", "B")

	vote, err := repo.GetVote(context.Background(), poll.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, vote)
}
