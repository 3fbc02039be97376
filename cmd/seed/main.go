// Command main runs the store seeder for Social Coder.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/npkumar/social-coder/internal/bootstrap"
	"github.com/npkumar/social-coder/internal/config"
	"github.com/npkumar/social-coder/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	// Parse command line flags
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	maxLikes := flag.Int("max-likes", defaults.MaxLikes, "Maximum likes per post")
	maxComments := flag.Int("max-comments", defaults.MaxComments, "Maximum comments per post")
	shouldClean := flag.Bool("clean", false, "Remove posts and profiled users before seeding")
	fixture := flag.String("fixture", "", "Load a YAML fixture instead of generating data")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible runs (0 = time based)")
	flag.Parse()

	log.Println("🌱 Store Seeder")
	log.Println("===============")

	if *fixture != "" {
		log.Printf("Applying fixture: %s (ignoring generator flags)\n", *fixture)
	} else {
		log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	deps, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer func() {
		if err := deps.Close(ctx); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()

	s := seed.NewSeeder(deps.Repos, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxLikes:    *maxLikes,
		MaxComments: *maxComments,
		MaxDays:     defaults.MaxDays,
		ShouldClean: *shouldClean,
		DryRun:      *dryRun,
		RandomSeed:  *randomSeed,
	})

	var sum *seed.Summary
	if *fixture != "" {
		fx, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("❌ Fixture load failed: %v", err)
		}
		if *shouldClean {
			if err := s.ClearAll(ctx); err != nil {
				log.Fatalf("❌ Cleanup failed: %v", err)
			}
		}
		sum, err = s.ApplyFixture(ctx, fx)
		if err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
	} else {
		sum, err = s.Run(ctx)
		if err != nil {
			log.Fatalf("❌ Seeding failed: %v", err)
		}
	}

	log.Printf("✨ All done! %d users, %d profiles, %d posts, %d likes, %d comments.",
		sum.Users, sum.Profiles, sum.Posts, sum.Likes, sum.Comments)
	log.Printf("📧 Generated users have the password: %s", seed.DefaultPassword)
}
