package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/npkumar/social-coder/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set, typically loaded from YAML.
//
//	users:
//	  - name: Jane Doe
//	    email: jane@example.com
//	    profile: {handle: jane, status: Developer, skills: [Go, React]}
//	posts:
//	  - author: jane@example.com
//	    text: Hello from the fixture file
//	    likes: [john@example.com]
//	    comments:
//	      - {author: john@example.com, text: Welcome!}
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

// FixtureUser is a user with an optional profile.
type FixtureUser struct {
	Name     string          `yaml:"name"`
	Email    string          `yaml:"email"`
	Password string          `yaml:"password"`
	Profile  *FixtureProfile `yaml:"profile"`
}

// FixtureProfile holds the profile fields a fixture may set.
type FixtureProfile struct {
	Handle   string   `yaml:"handle"`
	Status   string   `yaml:"status"`
	Skills   []string `yaml:"skills"`
	Company  string   `yaml:"company"`
	Location string   `yaml:"location"`
	Bio      string   `yaml:"bio"`
}

// FixturePost is a post referencing users by email.
type FixturePost struct {
	Author   string           `yaml:"author"`
	Text     string           `yaml:"text"`
	Likes    []string         `yaml:"likes"`
	Comments []FixtureComment `yaml:"comments"`
}

// FixtureComment is a comment referencing its author by email.
type FixtureComment struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// ParseFixture decodes a YAML fixture and validates it.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate checks that users are unique and that every reference resolves
// to a declared user.
func (fx *Fixture) Validate() error {
	known := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		email := normalizeEmail(u.Email)
		if email == "" || strings.TrimSpace(u.Name) == "" {
			return fmt.Errorf("fixture user %d: name and email are required", i)
		}
		if known[email] {
			return fmt.Errorf("fixture user %d: duplicate email %s", i, email)
		}
		known[email] = true
	}
	for i, p := range fx.Posts {
		refs := append([]string{p.Author}, p.Likes...)
		for _, c := range p.Comments {
			refs = append(refs, c.Author)
		}
		for _, ref := range refs {
			if !known[normalizeEmail(ref)] {
				return fmt.Errorf("fixture post %d: unknown user %q", i, ref)
			}
		}
	}
	return nil
}

// LoadFixture reads and parses the fixture file at path.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFixture(f)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ApplyFixture writes fx through the seeder's repositories. Posts listed
// earlier in the file get older dates.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) (*Summary, error) {
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	sum := &Summary{}
	byEmail := make(map[string]*models.User, len(fx.Users))

	for _, fu := range fx.Users {
		email := normalizeEmail(fu.Email)
		var hashOverride string
		if fu.Password != "" {
			cost := bcrypt.DefaultCost
			if s.opts.FastHash {
				cost = bcrypt.MinCost
			}
			h, err := bcrypt.GenerateFromPassword([]byte(fu.Password), cost)
			if err != nil {
				return sum, err
			}
			hashOverride = string(h)
		}

		user, err := s.factory.CreateUser(ctx, func(u *models.User) {
			u.Name = strings.TrimSpace(fu.Name)
			u.Email = email
			if hashOverride != "" {
				u.Password = hashOverride
			}
		})
		if err != nil {
			return sum, err
		}
		byEmail[email] = user
		sum.Users++

		if fu.Profile == nil {
			continue
		}
		fp := fu.Profile
		if _, err := s.factory.CreateProfile(ctx, user, func(p *models.Profile) {
			p.Handle = fp.Handle
			p.Status = fp.Status
			p.Skills = fp.Skills
			p.Company = fp.Company
			p.Location = fp.Location
			p.Bio = fp.Bio
			p.Website = ""
			p.GithubUsername = ""
			p.Social = models.Social{}
		}); err != nil {
			return sum, err
		}
		sum.Profiles++
	}

	base := s.factory.now().UTC()
	for i, fp := range fx.Posts {
		author := byEmail[normalizeEmail(fp.Author)]
		date := base.Add(-time.Duration(len(fx.Posts)-i) * time.Minute)
		post, err := s.factory.CreatePost(ctx, author, nil, func(p *models.Post) {
			p.Text = strings.TrimSpace(fp.Text)
			p.Date = date
			for _, email := range fp.Likes {
				p.AddLike(byEmail[normalizeEmail(email)].ID)
			}
			for j, fc := range fp.Comments {
				commenter := byEmail[normalizeEmail(fc.Author)]
				p.AddComment(models.Comment{
					ID:     models.NewID(),
					Text:   strings.TrimSpace(fc.Text),
					Name:   commenter.Name,
					Avatar: commenter.Avatar,
					User:   commenter.ID,
					Date:   date.Add(time.Duration(j+1) * time.Second),
				})
			}
		})
		if err != nil {
			return sum, err
		}
		sum.Posts++
		sum.Likes += len(post.Likes)
		sum.Comments += len(post.Comments)
	}
	return sum, nil
}
