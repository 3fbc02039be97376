// Package seed provides helpers to create test and demo data for the
// application stores. These helpers are intended for development and
// testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/repository"
	"github.com/npkumar/social-coder/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "password123"

var skillPool = []string{
	"Go", "JavaScript", "TypeScript", "React", "Node.js", "MongoDB", "PostgreSQL",
	"Redis", "Docker", "Kubernetes", "Python", "Rust", "GraphQL", "CSS", "Linux",
}

var statusPool = []string{
	"Developer", "Junior Developer", "Senior Developer", "Manager",
	"Student or Learning", "Instructor or Teacher", "Intern", "Other",
}

// Factory builds domain entities and persists them through the repositories.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	repos repository.Repositories
	opts  Options
	faker *gofakeit.Faker
	now   func() time.Time
	// hash is computed once; bcrypt per user dominates seeding time otherwise
	hash string
}

// NewFactory creates a new Factory bound to the provided repositories.
func NewFactory(repos repository.Repositories, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{repos: repos, opts: opts, faker: gofakeit.New(seed), now: time.Now}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.FastHash {
		cost = bcrypt.MinCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", err
	}
	f.hash = string(h)
	return f.hash, nil
}

// pastDate returns a moment within the last MaxDays days.
func (f *Factory) pastDate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return f.now().Add(-back).UTC()
}

// BuildUser constructs a sample user without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	name := f.faker.Name()
	user := &models.User{
		ID:    models.NewID(),
		Name:  name,
		Email: strings.ToLower(fmt.Sprintf("%s.%d@example.com", f.faker.Username(), f.faker.Number(100, 999))),
		Date:  f.pastDate(),
	}
	for _, override := range overrides {
		override(user)
	}
	user.Avatar = service.Gravatar(user.Email)
	return user
}

// CreateUser constructs and persists a sample user. Unless an override sets
// a password hash, the user gets DefaultPassword.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if user.Password == "" {
		hash, err := f.passwordHash()
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if f.opts.DryRun {
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Name, user.Email)
		return user, nil
	}
	if err := f.repos.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return user, nil
}

// BuildProfile constructs a sample profile owned by user.
func (f *Factory) BuildProfile(user *models.User, overrides ...func(*models.Profile)) *models.Profile {
	handle := strings.ToLower(f.faker.Username())
	if len(handle) > 30 {
		handle = handle[:30]
	}
	skills := make([]string, 0, 4)
	for _, i := range f.faker.Rand.Perm(len(skillPool))[:f.faker.Number(1, 4)] {
		skills = append(skills, skillPool[i])
	}
	profile := &models.Profile{
		User:           user.ID,
		Handle:         fmt.Sprintf("%s%d", handle, f.faker.Number(10, 99)),
		Company:        f.faker.Company(),
		Website:        f.faker.URL(),
		Location:       f.faker.City(),
		Status:         statusPool[f.faker.Number(0, len(statusPool)-1)],
		Skills:         skills,
		Bio:            f.faker.Sentence(12),
		GithubUsername: handle,
		Social: models.Social{
			Twitter:  "https://twitter.com/" + handle,
			LinkedIn: "https://linkedin.com/in/" + handle,
		},
		Date: f.now().UTC(),
	}
	for _, override := range overrides {
		override(profile)
	}
	return profile
}

// CreateProfile constructs and persists a sample profile for user.
func (f *Factory) CreateProfile(ctx context.Context, user *models.User, overrides ...func(*models.Profile)) (*models.Profile, error) {
	profile := f.BuildProfile(user, overrides...)
	if f.opts.DryRun {
		profile.ID = models.NewID()
		log.Printf("[dry-run] CreateProfile: handle=%s user=%s", profile.Handle, user.ID)
		return profile, nil
	}
	if err := f.repos.Profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile %s: %w", profile.Handle, err)
	}
	return profile, nil
}

// postText returns between 10 and 300 characters of filler.
func (f *Factory) postText() string {
	text := f.faker.Paragraph(1, f.faker.Number(1, 3), f.faker.Number(5, 12), " ")
	if len(text) > 300 {
		text = strings.TrimSpace(text[:300])
	}
	for len(text) < 10 {
		text += " " + f.faker.HackerPhrase()
	}
	return text
}

// BuildPost constructs a post by author without persisting it. Likes and
// comments are drawn from audience, newest first.
func (f *Factory) BuildPost(author *models.User, audience []*models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		ID:            models.NewID(),
		Text:          f.postText(),
		Name:          author.Name,
		Avatar:        author.Avatar,
		User:          author.ID,
		Likes:         []models.Like{},
		Comments:      []models.Comment{},
		Date:          f.pastDate(),
		SchemaVersion: models.PostSchemaVersion,
	}

	if len(audience) > 0 {
		likes := f.faker.Number(0, min(f.opts.MaxLikes, len(audience)))
		for _, i := range f.faker.Rand.Perm(len(audience))[:likes] {
			post.AddLike(audience[i].ID)
		}

		comments := f.faker.Number(0, f.opts.MaxComments)
		for i := 0; i < comments; i++ {
			commenter := audience[f.faker.Number(0, len(audience)-1)]
			post.AddComment(models.Comment{
				ID:     models.NewID(),
				Text:   f.faker.Sentence(f.faker.Number(3, 15)),
				Name:   commenter.Name,
				Avatar: commenter.Avatar,
				User:   commenter.ID,
				Date:   post.Date.Add(time.Duration(i+1) * time.Minute),
			})
		}
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample post for author.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, audience []*models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, audience, overrides...)
	if f.opts.DryRun {
		log.Printf("[dry-run] CreatePost: user=%s likes=%d comments=%d", author.ID, len(post.Likes), len(post.Comments))
		return post, nil
	}
	if err := f.repos.Posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}
