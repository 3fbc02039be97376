package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/repository"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxLikes    int
	MaxComments int
	// MaxDays bounds how far back generated dates go.
	MaxDays     int
	ShouldClean bool
	DryRun      bool
	// FastHash uses the minimum bcrypt cost for generated passwords.
	FastHash bool
	// RandomSeed makes a run reproducible when non-zero.
	RandomSeed int64
}

// DefaultOptions returns the settings used by the seed command.
func DefaultOptions() Options {
	return Options{NumUsers: 20, NumPosts: 60, MaxLikes: 8, MaxComments: 4, MaxDays: 90}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.NumUsers < 0 {
		o.NumUsers = 0
	}
	if o.NumPosts < 0 {
		o.NumPosts = 0
	}
	if o.MaxLikes < 0 {
		o.MaxLikes = d.MaxLikes
	}
	if o.MaxComments < 0 {
		o.MaxComments = d.MaxComments
	}
	return o
}

// Summary reports what a run created.
type Summary struct {
	Users    int
	Profiles int
	Posts    int
	Likes    int
	Comments int
}

// Seeder populates the stores with demo users, profiles and posts.
type Seeder struct {
	repos   repository.Repositories
	opts    Options
	factory *Factory
}

// NewSeeder returns a Seeder writing through repos.
func NewSeeder(repos repository.Repositories, opts Options) *Seeder {
	opts = opts.withDefaults()
	return &Seeder{repos: repos, opts: opts, factory: NewFactory(repos, opts)}
}

// Factory exposes the entity factory of s.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// Run creates NumUsers users, each with a profile, and NumPosts posts spread
// over them. Likes and comments come from the other generated users.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	log.Printf("🌱 Starting seeding with %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := s.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	sum := &Summary{}
	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := s.factory.CreateUser(ctx)
		if err != nil {
			return sum, err
		}
		users = append(users, user)
		sum.Users++

		if _, err := s.factory.CreateProfile(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				log.Printf("Skipping profile for %s: handle taken", user.Email)
				continue
			}
			return sum, err
		}
		sum.Profiles++
	}
	log.Printf("✓ %d users created (%d profiles)", sum.Users, sum.Profiles)

	if len(users) == 0 {
		return sum, nil
	}
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[i%len(users)]
		post, err := s.factory.CreatePost(ctx, author, users)
		if err != nil {
			return sum, err
		}
		sum.Posts++
		sum.Likes += len(post.Likes)
		sum.Comments += len(post.Comments)
	}
	log.Printf("✓ %d posts created (%d likes, %d comments)", sum.Posts, sum.Likes, sum.Comments)

	log.Println("🎉 Seeding completed successfully!")
	return sum, nil
}

// ClearAll deletes every post, then every profiled user with their profile.
// Users without a profile are not reachable through the repositories and stay.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")

	posts, err := s.repos.Posts.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if err := s.repos.Posts.Delete(ctx, p.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	profiles, err := s.repos.Profiles.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if err := s.repos.Profiles.DeleteByUserID(ctx, p.User); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := s.repos.Users.Delete(ctx, p.User); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	log.Printf("✓ removed %d posts and %d profiles", len(posts), len(profiles))
	return nil
}
