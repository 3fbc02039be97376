package models

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPost() *Post {
	p := &Post{ID: NewID(), User: NewID(), Text: "hello world", SchemaVersion: PostSchemaVersion}
	p.Normalize()
	return p
}

func TestPost_AddLikePrependsAndRejectsDuplicates(t *testing.T) {
	p := newTestPost()

	assert.True(t, p.AddLike("u1"))
	assert.True(t, p.AddLike("u2"))
	assert.False(t, p.AddLike("u1"))

	require.Len(t, p.Likes, 2)
	assert.Equal(t, "u2", p.Likes[0].User)
	assert.Equal(t, "u1", p.Likes[1].User)
}

func TestPost_RemoveLike(t *testing.T) {
	p := newTestPost()
	p.AddLike("u1")
	p.AddLike("u2")

	assert.False(t, p.RemoveLike("u3"))
	assert.Len(t, p.Likes, 2)

	assert.True(t, p.RemoveLike("u1"))
	assert.Equal(t, []Like{{User: "u2"}}, p.Likes)
	assert.False(t, p.LikedBy("u1"))
}

func TestPost_RemoveCommentMatchesUserAndID(t *testing.T) {
	p := newTestPost()
	p.AddComment(Comment{ID: "c1", User: "u1", Text: "first"})
	p.AddComment(Comment{ID: "c2", User: "u2", Text: "second"})
	p.AddComment(Comment{ID: "c3", User: "u1", Text: "third"})

	assert.Equal(t, "c3", p.Comments[0].ID)

	// right id, wrong author
	assert.False(t, p.RemoveComment("u1", "c2"))
	// unknown id
	assert.False(t, p.RemoveComment("u1", "nope"))
	assert.Len(t, p.Comments, 3)

	assert.True(t, p.RemoveComment("u1", "c1"))
	require.Len(t, p.Comments, 2)
	assert.Equal(t, "c3", p.Comments[0].ID)
	assert.Equal(t, "c2", p.Comments[1].ID)
}

func TestPost_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Post)
		wantErr bool
	}{
		{"valid", func(*Post) {}, false},
		{"missing id", func(p *Post) { p.ID = "" }, true},
		{"missing user", func(p *Post) { p.User = "" }, true},
		{"unknown schema", func(p *Post) { p.SchemaVersion = PostSchemaVersion + 1 }, true},
		{"zero schema", func(p *Post) { p.SchemaVersion = 0 }, true},
		{"duplicate like", func(p *Post) { p.Likes = []Like{{User: "a"}, {User: "a"}} }, true},
		{"comment without id", func(p *Post) { p.Comments = []Comment{{User: "a"}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPost()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIDs(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 24)
	assert.True(t, IsValidID(id))
	assert.False(t, IsValidID("not-an-id"))
	assert.NotEqual(t, id, NewID())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewFieldError("text", "Text field is required"), http.StatusBadRequest},
		{NewAlreadyLikedError(), http.StatusBadRequest},
		{NewNotLikedError(), http.StatusBadRequest},
		{NewUnauthorizedError("User not authorized"), http.StatusUnauthorized},
		{NewNotFoundError("Post not found"), http.StatusNotFound},
		{NewConflictError("stale"), http.StatusConflict},
		{NewStoreUnavailableError(errors.New("down")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
	assert.True(t, HasCode(NewNotLikedError(), CodeNotLiked))
	assert.False(t, HasCode(errors.New("x"), CodeNotLiked))
}
