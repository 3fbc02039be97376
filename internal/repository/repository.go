// Package repository implements the data access layer for the application.
//
// Two backends satisfy the same interfaces: MongoDB, where a post with its
// likes and comments is one document, and GORM (postgres or sqlite), where
// the embedded sequences are JSON columns of the post row. Both save posts
// with an atomic conditional update on the post revision.
package repository

import (
	"context"
	"errors"

	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/observability"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional update lost a race.
	ErrConflict = errors.New("record was modified concurrently")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrUnavailable wraps every other store failure.
	ErrUnavailable = errors.New("store unavailable")
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]*models.Post, error)
	// Update saves the whole post if its revision is unchanged since it was
	// read, and bumps post.Revision on success.
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	// Upsert writes the profile owned by profile.User, creating it if absent.
	Upsert(ctx context.Context, profile *models.Profile) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// Repositories groups the repositories of one backend.
type Repositories struct {
	Posts    PostRepository
	Profiles ProfileRepository
	Users    UserRepository
}

// instrument wraps each repository call with a span, a latency sample and an error log.
type instrument struct {
	system     string
	collection string
	log        *observability.RepoLogger
}

func newInstrument(system, collection string) instrument {
	return instrument{
		system:     system,
		collection: collection,
		log:        observability.NewRepoLogger(collection, system),
	}
}

// start begins an operation; the returned func must be called with the final error.
func (i instrument) start(ctx context.Context, op string) (context.Context, func(error)) {
	done := observability.TrackQuery(op, i.collection)
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, i.system, op, i.collection)
	return ctx, func(err error) {
		done()
		if err != nil && !errors.Is(err, ErrNotFound) {
			i.log.LogError(ctx, err, op)
		}
		observability.EndSpan(span, err)
	}
}

func unavailable(err error) error {
	return errors.Join(ErrUnavailable, err)
}

// checkPost enforces document validity at the storage boundary.
func checkPost(p *models.Post) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return unavailable(err)
	}
	return nil
}
