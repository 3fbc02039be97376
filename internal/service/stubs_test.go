package service

import (
	"context"
	"errors"
	"testing"

	"github.com/npkumar/social-coder/internal/events"
	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, string) (*models.Post, error)
	listFn    func(context.Context) ([]*models.Post, error)
	updateFn  func(context.Context, *models.Post) error
	deleteFn  func(context.Context, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context) ([]*models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// memPostRepo returns a stub backed by a map that copies posts on the way
// in and out, and enforces the revision check on Update.
func memPostRepo() (*postRepoStub, map[string]*models.Post) {
	store := map[string]*models.Post{}
	clone := func(p *models.Post) *models.Post {
		c := *p
		c.Likes = append([]models.Like{}, p.Likes...)
		c.Comments = append([]models.Comment{}, p.Comments...)
		return &c
	}
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			store[p.ID] = clone(p)
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			p, ok := store[id]
			if !ok {
				return nil, repository.ErrNotFound
			}
			return clone(p), nil
		},
		listFn: func(_ context.Context) ([]*models.Post, error) {
			out := make([]*models.Post, 0, len(store))
			for _, p := range store {
				out = append(out, clone(p))
			}
			return out, nil
		},
		updateFn: func(_ context.Context, p *models.Post) error {
			cur, ok := store[p.ID]
			if !ok {
				return repository.ErrNotFound
			}
			if cur.Revision != p.Revision {
				return repository.ErrConflict
			}
			p.Revision++
			store[p.ID] = clone(p)
			return nil
		},
		deleteFn: func(_ context.Context, id string) error {
			if _, ok := store[id]; !ok {
				return repository.ErrNotFound
			}
			delete(store, id)
			return nil
		},
	}, store
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByUserIDFn    func(context.Context, string) (*models.Profile, error)
	getByHandleFn    func(context.Context, string) (*models.Profile, error)
	listFn           func(context.Context) ([]*models.Profile, error)
	upsertFn         func(context.Context, *models.Profile) error
	deleteByUserIDFn func(context.Context, string) error
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	return s.getByHandleFn(ctx, handle)
}
func (s *profileRepoStub) List(ctx context.Context) ([]*models.Profile, error) {
	return s.listFn(ctx)
}
func (s *profileRepoStub) Upsert(ctx context.Context, profile *models.Profile) error {
	return s.upsertFn(ctx, profile)
}
func (s *profileRepoStub) DeleteByUserID(ctx context.Context, userID string) error {
	return s.deleteByUserIDFn(ctx, userID)
}

// profilesFor returns a stub where exactly the given users own a profile.
func profilesFor(userIDs ...string) *profileRepoStub {
	owners := map[string]bool{}
	for _, id := range userIDs {
		owners[id] = true
	}
	return &profileRepoStub{
		getByUserIDFn: func(_ context.Context, userID string) (*models.Profile, error) {
			if !owners[userID] {
				return nil, repository.ErrNotFound
			}
			return &models.Profile{ID: models.NewID(), User: userID, Handle: "h-" + userID}, nil
		},
		getByHandleFn:    func(_ context.Context, _ string) (*models.Profile, error) { return nil, repository.ErrNotFound },
		listFn:           func(_ context.Context) ([]*models.Profile, error) { return nil, nil },
		upsertFn:         func(_ context.Context, _ *models.Profile) error { return nil },
		deleteByUserIDFn: func(_ context.Context, _ string) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn     func(context.Context, *models.User) error
	getByIDFn    func(context.Context, string) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	deleteFn     func(context.Context, string) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// publisherMock records published events.
type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, evt events.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

// assertCode asserts that err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}
