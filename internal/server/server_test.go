package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/npkumar/social-coder/internal/config"
	"github.com/npkumar/social-coder/internal/database"
	"github.com/npkumar/social-coder/internal/middleware"
	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	server *Server
	repos  repository.Repositories
}

// newTestEnv builds a server on a throwaway sqlite database. Server tests
// share the auth middleware config and do not run in parallel.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, "post_events=off,rate_limits=off", nil)
}

func newTestEnvWith(t *testing.T, flags string, rdb *redis.Client) *testEnv {
	t.Helper()

	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	repos := repository.NewGormRepositories(db)
	cfg := &config.Config{
		Env:          "test",
		Port:         "0",
		JWTSecret:    testSecret,
		StoreDriver:  config.DriverSQLite,
		FeatureFlags: flags,
	}
	s, err := NewServerWithDeps(cfg, Deps{
		Repos: repos,
		Redis: rdb,
		Ping:  func(ctx context.Context) error { return database.Ping(ctx, db) },
	})
	require.NoError(t, err)
	return &testEnv{server: s, repos: repos}
}

// newUser stores a user and returns it with a valid bearer header.
func (e *testEnv) newUser(t *testing.T, name string, withProfile bool) (*models.User, string) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		ID:       models.NewID(),
		Name:     name,
		Email:    name + "@example.com",
		Password: "x",
		Avatar:   "//avatar/" + name,
		Date:     time.Now().UTC(),
	}
	require.NoError(t, e.repos.Users.Create(ctx, user))
	if withProfile {
		require.NoError(t, e.repos.Profiles.Upsert(ctx, &models.Profile{
			User: user.ID, Handle: name, Status: "Developer", Skills: []string{"go"}, Date: time.Now().UTC(),
		}))
	}

	token, _, err := middleware.IssueToken(testSecret, user, time.Hour, time.Now())
	require.NoError(t, err)
	return user, "Bearer " + token
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, v), string(r.body))
}

func (e *testEnv) do(t *testing.T, method, path, auth string, body interface{}) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := e.server.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: raw}
}

func TestNewServerWithDeps_RequiresRepositories(t *testing.T) {
	_, err := NewServerWithDeps(&config.Config{}, Deps{})
	assert.Error(t, err)

	_, err = NewServerWithDeps(nil, Deps{})
	assert.Error(t, err)
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)

	resp = env.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	resp.decode(t, &body)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "healthy", body.Checks["store"])
	assert.Equal(t, "unavailable", body.Checks["redis"])
}

func TestReadiness_StoreDown(t *testing.T) {
	env := newTestEnv(t)
	env.server.deps.Ping = func(context.Context) error { return assert.AnError }

	resp := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.status)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestGetFeatureFlags(t *testing.T) {
	env := newTestEnv(t)
	_, auth := env.newUser(t, "flags", false)

	resp := env.do(t, http.MethodGet, "/api/feature-flags", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = env.do(t, http.MethodGet, "/api/feature-flags", auth, nil)
	require.Equal(t, http.StatusOK, resp.status)
	var body struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	resp.decode(t, &body)
	assert.Equal(t, "off", body.Raw["post_events"])
	assert.False(t, body.Evaluated["post_events"])
	assert.False(t, body.Evaluated["rate_limits"])
}
