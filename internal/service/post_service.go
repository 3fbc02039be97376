// Package service holds the business logic behind the HTTP handlers.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/npkumar/social-coder/internal/events"
	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/observability"
	"github.com/npkumar/social-coder/internal/repository"
	"github.com/npkumar/social-coder/internal/validation"
)

const postServiceName = "PostService"

// PostService manages posts and their embedded likes and comments.
type PostService struct {
	posts    repository.PostRepository
	profiles repository.ProfileRepository
	events   events.Publisher
	now      func() time.Time
}

// PostInput is the body of a create-post or add-comment request.
type PostInput struct {
	Text   string `json:"text"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func NewPostService(
	posts repository.PostRepository,
	profiles repository.ProfileRepository,
	publisher events.Publisher,
) *PostService {
	return &PostService{
		posts:    posts,
		profiles: profiles,
		events:   publisher,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for post and comment dates.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// run wraps one service operation with a span and the operations counter.
func (s *PostService) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, finish := traced(ctx, postServiceName, op)
	err := fn(ctx)
	finish(err)
	observability.RecordPostOperation(op, outcome(err))
	return err
}

func (s *PostService) publish(ctx context.Context, evt events.Event) {
	if s.events == nil {
		return
	}
	evt.At = s.now()
	if err := s.events.Publish(ctx, evt); err != nil {
		observability.LogAsyncOperationError(ctx, "publish_post_event", err, map[string]interface{}{
			"type":    evt.Type,
			"post_id": evt.PostID,
		})
	}
}

func (s *PostService) requireProfile(ctx context.Context, userID string) error {
	if _, err := s.profiles.GetByUserID(ctx, userID); err != nil {
		return storeError(err, "Profile not found")
	}
	return nil
}

func (s *PostService) load(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, storeError(err, "Post not found")
	}
	return post, nil
}

func (s *PostService) save(ctx context.Context, post *models.Post) error {
	return storeError(s.posts.Update(ctx, post), "Post not found")
}

// Create validates in and stores a new post authored by identity.
func (s *PostService) Create(ctx context.Context, identity models.Identity, in PostInput) (post *models.Post, err error) {
	err = s.run(ctx, "create", func(ctx context.Context) error {
		if fields := validation.ValidatePost(in.Text); len(fields) > 0 {
			return models.NewValidationError(fields)
		}
		post = &models.Post{
			ID:            models.NewID(),
			Text:          strings.TrimSpace(in.Text),
			Name:          firstNonEmpty(in.Name, identity.Name),
			Avatar:        firstNonEmpty(in.Avatar, identity.Avatar),
			User:          identity.UserID,
			Likes:         []models.Like{},
			Comments:      []models.Comment{},
			Date:          s.now(),
			SchemaVersion: models.PostSchemaVersion,
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return storeError(err, "Post not found")
		}
		s.publish(ctx, events.Event{Type: events.PostCreated, PostID: post.ID, UserID: identity.UserID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) (posts []*models.Post, err error) {
	err = s.run(ctx, "list", func(ctx context.Context) error {
		var listErr error
		posts, listErr = s.posts.List(ctx)
		if posts == nil {
			posts = []*models.Post{}
		}
		return storeError(listErr, "No posts found")
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, postID string) (post *models.Post, err error) {
	err = s.run(ctx, "get", func(ctx context.Context) error {
		var loadErr error
		post, loadErr = s.load(ctx, postID)
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. The requester must own a profile and author the post.
func (s *PostService) Delete(ctx context.Context, identity models.Identity, postID string) error {
	return s.run(ctx, "delete", func(ctx context.Context) error {
		if err := s.requireProfile(ctx, identity.UserID); err != nil {
			return err
		}
		post, err := s.load(ctx, postID)
		if err != nil {
			return err
		}
		if post.User != identity.UserID {
			return models.NewUnauthorizedError("User not authorized")
		}
		if err := s.posts.Delete(ctx, post.ID); err != nil {
			return storeError(err, "Post not found")
		}
		s.publish(ctx, events.Event{Type: events.PostDeleted, PostID: post.ID, UserID: identity.UserID})
		return nil
	})
}

// Like adds the requester's like to a post.
func (s *PostService) Like(ctx context.Context, identity models.Identity, postID string) (post *models.Post, err error) {
	err = s.run(ctx, "like", func(ctx context.Context) error {
		if err := s.requireProfile(ctx, identity.UserID); err != nil {
			return err
		}
		var loadErr error
		if post, loadErr = s.load(ctx, postID); loadErr != nil {
			return loadErr
		}
		if !post.AddLike(identity.UserID) {
			return models.NewAlreadyLikedError()
		}
		if err := s.save(ctx, post); err != nil {
			return err
		}
		s.publish(ctx, events.Event{Type: events.PostLiked, PostID: post.ID, UserID: identity.UserID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Unlike removes the requester's like from a post.
func (s *PostService) Unlike(ctx context.Context, identity models.Identity, postID string) (post *models.Post, err error) {
	err = s.run(ctx, "unlike", func(ctx context.Context) error {
		if err := s.requireProfile(ctx, identity.UserID); err != nil {
			return err
		}
		var loadErr error
		if post, loadErr = s.load(ctx, postID); loadErr != nil {
			return loadErr
		}
		if !post.RemoveLike(identity.UserID) {
			return models.NewNotLikedError()
		}
		if err := s.save(ctx, post); err != nil {
			return err
		}
		s.publish(ctx, events.Event{Type: events.PostUnliked, PostID: post.ID, UserID: identity.UserID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// AddComment prepends a comment by the requester.
func (s *PostService) AddComment(ctx context.Context, identity models.Identity, postID string, in PostInput) (post *models.Post, err error) {
	err = s.run(ctx, "add_comment", func(ctx context.Context) error {
		if fields := validation.ValidatePost(in.Text); len(fields) > 0 {
			return models.NewValidationError(fields)
		}
		var loadErr error
		if post, loadErr = s.load(ctx, postID); loadErr != nil {
			return loadErr
		}
		comment := models.Comment{
			ID:     models.NewID(),
			Text:   strings.TrimSpace(in.Text),
			Name:   firstNonEmpty(in.Name, identity.Name),
			Avatar: firstNonEmpty(in.Avatar, identity.Avatar),
			User:   identity.UserID,
			Date:   s.now(),
		}
		post.AddComment(comment)
		if err := s.save(ctx, post); err != nil {
			return err
		}
		s.publish(ctx, events.Event{Type: events.CommentAdded, PostID: post.ID, UserID: identity.UserID, CommentID: comment.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeleteComment removes the requester's comment commentID. When no comment
// of the requester matches, the post is returned unchanged and removed is false.
func (s *PostService) DeleteComment(ctx context.Context, identity models.Identity, postID, commentID string) (post *models.Post, removed bool, err error) {
	err = s.run(ctx, "delete_comment", func(ctx context.Context) error {
		var loadErr error
		if post, loadErr = s.load(ctx, postID); loadErr != nil {
			return loadErr
		}
		if removed = post.RemoveComment(identity.UserID, commentID); !removed {
			return nil
		}
		if err := s.save(ctx, post); err != nil {
			return err
		}
		s.publish(ctx, events.Event{Type: events.CommentDeleted, PostID: post.ID, UserID: identity.UserID, CommentID: commentID})
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return post, removed, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
