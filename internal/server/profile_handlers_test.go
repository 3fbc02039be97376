package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/npkumar/social-coder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFlow(t *testing.T) {
	env := newTestEnv(t)
	u1, auth1 := env.newUser(t, "u1", false)
	_, auth2 := env.newUser(t, "u2", false)

	resp := env.do(t, http.MethodGet, "/api/profile", auth1, nil)
	require.Equal(t, http.StatusNotFound, resp.status)

	resp = env.do(t, http.MethodGet, "/api/profile/all", "", nil)
	require.Equal(t, http.StatusNotFound, resp.status)

	form := map[string]string{
		"handle": "gopher", "status": "Developer", "skills": "go, redis", "twitter": "https://twitter.com/gopher",
	}
	resp = env.do(t, http.MethodPost, "/api/profile", auth1, form)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	var profile models.Profile
	resp.decode(t, &profile)
	assert.Equal(t, u1.ID, profile.User)
	assert.Equal(t, []string{"go", "redis"}, profile.Skills)
	assert.Equal(t, "https://twitter.com/gopher", profile.Social.Twitter)

	// Updating keeps the same profile.
	form["status"] = "Senior Developer"
	resp = env.do(t, http.MethodPost, "/api/profile", auth1, form)
	require.Equal(t, http.StatusOK, resp.status)
	var updated models.Profile
	resp.decode(t, &updated)
	assert.Equal(t, profile.ID, updated.ID)
	assert.Equal(t, "Senior Developer", updated.Status)

	resp = env.do(t, http.MethodPost, "/api/profile", auth2, form)
	require.Equal(t, http.StatusBadRequest, resp.status)
	var fields map[string]string
	resp.decode(t, &fields)
	assert.Equal(t, map[string]string{"handle": "That handle already exists"}, fields)

	resp = env.do(t, http.MethodGet, "/api/profile/handle/gopher", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	resp = env.do(t, http.MethodGet, "/api/profile/user/"+u1.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	resp = env.do(t, http.MethodGet, "/api/profile/all", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	var all []models.Profile
	resp.decode(t, &all)
	assert.Len(t, all, 1)

	resp = env.do(t, http.MethodDelete, "/api/profile", auth1, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.JSONEq(t, `{"success":true}`, string(resp.body))

	resp = env.do(t, http.MethodGet, "/api/profile/handle/gopher", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
	resp = env.do(t, http.MethodGet, "/api/users/current", auth1, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
}

func TestDeleteProfile_TokenStopsWorking(t *testing.T) {
	env := newTestEnv(t)
	other, otherAuth := env.newUser(t, "other", true)
	_, auth := env.newUser(t, "leaver", true)

	resp := env.do(t, http.MethodPost, "/api/posts", otherAuth, map[string]string{"text": "a post to comment on"})
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	var post models.Post
	resp.decode(t, &post)
	require.Equal(t, other.ID, post.User)

	resp = env.do(t, http.MethodDelete, "/api/profile", auth, nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))

	resp = env.do(t, http.MethodPost, "/api/posts", auth, map[string]string{"text": "written by nobody at all"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	resp = env.do(t, http.MethodPost, "/api/posts/"+post.ID+"/comment", auth, map[string]string{"text": "a comment by nobody"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	resp = env.do(t, http.MethodPost, "/api/posts/"+post.ID+"/like", auth, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = env.do(t, http.MethodGet, "/api/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	var stored models.Post
	resp.decode(t, &stored)
	assert.Empty(t, stored.Comments)
	assert.Empty(t, stored.Likes)

	posts, err := env.repos.Posts.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestUpsertProfile_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, auth := env.newUser(t, "u1", false)

	resp := env.do(t, http.MethodPost, "/api/profile", auth, map[string]string{"website": "nope"})
	require.Equal(t, http.StatusBadRequest, resp.status)
	var fields map[string]string
	resp.decode(t, &fields)
	assert.Equal(t, "Profile handle is required", fields["handle"])
	assert.Equal(t, "Not a valid URL", fields["website"])
}
