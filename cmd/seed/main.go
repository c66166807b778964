// Command seed populates the database with demo users, posts, and polls.
package main

import (
	"flag"
	"log"

	"github.com/CROWNARC/animex-tweet-verse/internal/config"
	"github.com/CROWNARC/animex-tweet-verse/internal/database"
	"github.com/CROWNARC/animex-tweet-verse/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "Number of posts to create")
	flag.Float64Var(&opts.PollRatio, "polls", opts.PollRatio, "Fraction of posts that get a poll")
	flag.BoolVar(&opts.Clean, "clean", opts.Clean, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users and %d posts", opts.Users, opts.Posts)
}
