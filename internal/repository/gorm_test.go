package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/npkumar/social-coder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLite(t *testing.T) Repositories {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "repo.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Post{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewGormRepositories(db)
}

func newPost(user string, date time.Time) *models.Post {
	return &models.Post{
		ID:            models.NewID(),
		Text:          "A post long enough to be valid",
		Name:          "Jane",
		User:          user,
		Date:          date,
		SchemaVersion: models.PostSchemaVersion,
	}
}

func TestPostRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repos := setupSQLite(t)
	user := models.NewID()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	older := newPost(user, base)
	newer := newPost(user, base.Add(time.Hour))
	require.NoError(t, repos.Posts.Create(ctx, older))
	require.NoError(t, repos.Posts.Create(ctx, newer))

	t.Run("get returns empty sequences", func(t *testing.T) {
		got, err := repos.Posts.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, older.Text, got.Text)
		assert.NotNil(t, got.Likes)
		assert.NotNil(t, got.Comments)
		assert.Empty(t, got.Likes)
	})

	t.Run("list is newest first", func(t *testing.T) {
		posts, err := repos.Posts.List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, newer.ID, posts[0].ID)
		assert.Equal(t, older.ID, posts[1].ID)
	})

	t.Run("update persists embedded sequences", func(t *testing.T) {
		got, err := repos.Posts.GetByID(ctx, older.ID)
		require.NoError(t, err)
		got.AddLike(models.NewID())
		got.AddComment(models.Comment{ID: models.NewID(), Text: "hi", User: user, Date: base})
		require.NoError(t, repos.Posts.Update(ctx, got))
		assert.Equal(t, int64(1), got.Revision)

		again, err := repos.Posts.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Len(t, again.Likes, 1)
		require.Len(t, again.Comments, 1)
		assert.Equal(t, "hi", again.Comments[0].Text)
		assert.Equal(t, int64(1), again.Revision)
	})

	t.Run("stale revision conflicts", func(t *testing.T) {
		a, err := repos.Posts.GetByID(ctx, newer.ID)
		require.NoError(t, err)
		b, err := repos.Posts.GetByID(ctx, newer.ID)
		require.NoError(t, err)

		a.AddLike("aaaaaaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, repos.Posts.Update(ctx, a))

		b.AddLike("bbbbbbbbbbbbbbbbbbbbbbbb")
		assert.ErrorIs(t, repos.Posts.Update(ctx, b), ErrConflict)

		stored, err := repos.Posts.GetByID(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, []models.Like{{User: "aaaaaaaaaaaaaaaaaaaaaaaa"}}, stored.Likes)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repos.Posts.Delete(ctx, older.ID))
		_, err := repos.Posts.GetByID(ctx, older.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repos.Posts.Delete(ctx, older.ID), ErrNotFound)

		gone := newPost(user, base)
		gone.ID = older.ID
		assert.ErrorIs(t, repos.Posts.Update(ctx, gone), ErrNotFound)
	})
}

func TestPostRepository_RejectsInvalidDocuments(t *testing.T) {
	repos := setupSQLite(t)
	post := newPost("", time.Now())

	err := repos.Posts.Create(context.Background(), post)
	assert.ErrorIs(t, err, ErrUnavailable)

	dup := newPost(models.NewID(), time.Now())
	dup.Likes = []models.Like{{User: "x"}, {User: "x"}}
	assert.ErrorIs(t, repos.Posts.Create(context.Background(), dup), ErrUnavailable)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repos := setupSQLite(t)

	user := &models.User{Name: "Jane", Email: " Jane@Example.com ", Password: "hash"}
	require.NoError(t, repos.Users.Create(ctx, user))
	assert.True(t, models.IsValidID(user.ID))
	assert.Equal(t, "jane@example.com", user.Email)

	got, err := repos.Users.GetByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	err = repos.Users.Create(ctx, &models.User{Name: "Other", Email: "jane@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repos.Users.GetByID(ctx, models.NewID())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repos.Users.Delete(ctx, user.ID))
	assert.ErrorIs(t, repos.Users.Delete(ctx, user.ID), ErrNotFound)
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	repos := setupSQLite(t)
	owner := models.NewID()

	profile := &models.Profile{User: owner, Handle: "jane", Status: "Developer", Date: time.Now().UTC()}
	require.NoError(t, repos.Profiles.Upsert(ctx, profile))
	firstID := profile.ID
	require.NotEmpty(t, firstID)

	profile.Skills = []string{"Go", "SQL"}
	profile.ID = ""
	require.NoError(t, repos.Profiles.Upsert(ctx, profile))
	assert.Equal(t, firstID, profile.ID, "upsert keeps the stored id")

	got, err := repos.Profiles.GetByHandle(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)

	taken := &models.Profile{User: models.NewID(), Handle: "jane", Status: "Other"}
	assert.ErrorIs(t, repos.Profiles.Upsert(ctx, taken), ErrDuplicate)

	all, err := repos.Profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repos.Profiles.DeleteByUserID(ctx, owner))
	_, err = repos.Profiles.GetByUserID(ctx, owner)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repos.Profiles.DeleteByUserID(ctx, owner), ErrNotFound)
}
