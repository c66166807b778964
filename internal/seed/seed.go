// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data Seed generates.
type Options struct {
	Users int
	Posts int
	// PollRatio is the fraction of posts that get a poll attached, 0..1.
	PollRatio float64
	// ReactionRatio is the average number of likes per post relative to the
	// user count, 0..1.
	ReactionRatio float64
	Clean         bool
}

// DefaultOptions returns a medium-sized demo dataset.
func DefaultOptions() Options {
	return Options{
		Users:         25,
		Posts:         120,
		PollRatio:     0.15,
		ReactionRatio: 0.3,
		Clean:         true,
	}
}

var animeTitles = []string{
	"Naruto", "One Piece", "Attack on Titan", "Demon Slayer",
	"Jujutsu Kaisen", "Chainsaw Man", "Frieren", "Vinland Saga",
	"Fullmetal Alchemist", "Steins;Gate", "Mob Psycho 100", "Spy x Family",
}

var postTemplates = []string{
	"Just finished the latest episode of %s and I am not okay",
	"Hot take: %s has the best soundtrack this season",
	"Rewatching %s again, no regrets",
	"The animation in %s this week was unreal",
	"Who else is caught up on %s? Need to talk about that ending",
	"%s manga readers stay quiet, the anime-onlys are not ready",
}

// Seed populates the database with demo users, posts, polls, and reactions.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.Clean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}

	users, err := createUsers(db, opts.Users)
	if err != nil {
		return fmt.Errorf("create users: %w", err)
	}

	posts, err := createPosts(db, r, users, opts.Posts)
	if err != nil {
		return fmt.Errorf("create posts: %w", err)
	}

	if err := createPolls(db, r, posts, opts.PollRatio); err != nil {
		return fmt.Errorf("create polls: %w", err)
	}

	if err := createReactions(db, r, users, posts, opts.ReactionRatio); err != nil {
		return fmt.Errorf("create reactions: %w", err)
	}

	return nil
}

func clearData(db *gorm.DB) error {
	// Children first so foreign keys never dangle mid-wipe.
	tables := []any{
		&models.PollVote{}, &models.PollOption{}, &models.Poll{},
		&models.Like{}, &models.Retweet{}, &models.Comment{},
		&models.Post{}, &models.User{},
	}
	for _, table := range tables {
		if err := db.Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Demo!Pass123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s_%s%d",
			gofakeit.Adjective(), gofakeit.NounAbstract(), gofakeit.Number(1, 999))
		user := models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password:  string(hash),
			Bio:       gofakeit.Sentence(8),
			AvatarURL: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, r *rand.Rand, users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]
		anime := animeTitles[r.Intn(len(animeTitles))]
		template := postTemplates[r.Intn(len(postTemplates))]

		post := models.Post{
			UserID:     author.ID,
			Username:   author.Username,
			UserAvatar: author.AvatarURL,
			Content:    fmt.Sprintf(template, anime),
			PostType:   models.PostTypeText,
			AnimeTitle: anime,
			AnimeImage: fmt.Sprintf("https://picsum.photos/seed/%s/300/400", gofakeit.UUID()),
			Status:     models.PostStatusApproved,
			CreatedAt:  time.Now().Add(-time.Duration(r.Intn(14*24)) * time.Hour),
		}
		if err := db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createPolls(db *gorm.DB, r *rand.Rand, posts []models.Post, ratio float64) error {
	for _, post := range posts {
		if r.Float64() >= ratio {
			continue
		}

		optionCount := 2 + r.Intn(3)
		poll := models.Poll{
			PostID: post.ID,
			Title:  fmt.Sprintf("Best %s character?", post.AnimeTitle),
		}
		for i := 0; i < optionCount; i++ {
			poll.Options = append(poll.Options, models.PollOption{
				Title:       gofakeit.FirstName(),
				OptionOrder: i,
			})
		}
		if r.Intn(3) == 0 {
			endsAt := time.Now().Add(time.Duration(r.Intn(72)) * time.Hour)
			poll.EndsAt = &endsAt
		}
		if err := db.Create(&poll).Error; err != nil {
			return err
		}
	}
	return nil
}

// createReactions inserts like/retweet rows and keeps the post counters equal
// to the row counts, matching what the reaction repository maintains.
func createReactions(db *gorm.DB, r *rand.Rand, users []models.User, posts []models.Post, ratio float64) error {
	for i := range posts {
		post := &posts[i]
		likes := 0
		retweets := 0

		for _, user := range users {
			if r.Float64() < ratio {
				if err := db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error; err != nil {
					return err
				}
				likes++
			}
			if r.Float64() < ratio/3 {
				if err := db.Create(&models.Retweet{UserID: user.ID, PostID: post.ID}).Error; err != nil {
					return err
				}
				retweets++
			}
		}

		if likes == 0 && retweets == 0 {
			continue
		}
		err := db.Model(&models.Post{}).Where("id = ?", post.ID).
			Updates(map[string]any{"like_count": likes, "retweet_count": retweets}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
