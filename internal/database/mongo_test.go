package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/npkumar/social-coder/internal/config"
	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMongo runs a throwaway MongoDB container. The test is skipped when
// Docker is unavailable or -short is set.
func startMongo(t *testing.T) *config.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container test in -short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}
	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("MongoDB container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = mongoC.Terminate(context.Background()) })

	host, err := mongoC.Host(ctx)
	require.NoError(t, err)
	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	return &config.Config{
		StoreDriver:   config.DriverMongo,
		MongoURI:      fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		MongoDatabase: "social_coder_test",
	}
}

func TestMongoRepositories(t *testing.T) {
	cfg := startMongo(t)
	ctx := context.Background()

	client, db, err := ConnectMongo(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	require.NoError(t, PingMongo(ctx, client))

	repos := repository.NewMongoRepositories(db)

	t.Run("users have unique emails", func(t *testing.T) {
		u := &models.User{Name: "Jane", Email: "jane@example.com", Password: "hash"}
		require.NoError(t, repos.Users.Create(ctx, u))
		err := repos.Users.Create(ctx, &models.User{Name: "Dup", Email: "JANE@example.com", Password: "x"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		got, err := repos.Users.GetByEmail(ctx, "Jane@Example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("profile upsert keeps id", func(t *testing.T) {
		owner := models.NewID()
		p := &models.Profile{User: owner, Handle: "mongo-jane", Status: "Developer"}
		require.NoError(t, repos.Profiles.Upsert(ctx, p))
		first := p.ID

		p.ID = ""
		p.Bio = "updated"
		require.NoError(t, repos.Profiles.Upsert(ctx, p))
		assert.Equal(t, first, p.ID)

		got, err := repos.Profiles.GetByHandle(ctx, "mongo-jane")
		require.NoError(t, err)
		assert.Equal(t, "updated", got.Bio)
		assert.Equal(t, []string{}, got.Skills)
	})

	t.Run("post revisions serialize concurrent likes", func(t *testing.T) {
		post := &models.Post{
			ID:            models.NewID(),
			Text:          "concurrent likes",
			User:          models.NewID(),
			Date:          time.Now().UTC(),
			SchemaVersion: models.PostSchemaVersion,
		}
		require.NoError(t, repos.Posts.Create(ctx, post))

		// Each liker retries on conflict, so every like must land exactly once.
		const likers = 8
		var wg sync.WaitGroup
		for i := 0; i < likers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				user := models.NewID()
				for {
					p, err := repos.Posts.GetByID(ctx, post.ID)
					if !assert.NoError(t, err) {
						return
					}
					p.AddLike(user)
					err = repos.Posts.Update(ctx, p)
					if err == nil {
						return
					}
					if !assert.ErrorIs(t, err, repository.ErrConflict) {
						return
					}
				}
			}()
		}
		wg.Wait()

		got, err := repos.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, got.Likes, likers)
		assert.Equal(t, int64(likers), got.Revision)

		require.NoError(t, repos.Posts.Delete(ctx, post.ID))
		_, err = repos.Posts.GetByID(ctx, post.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("invalid ids are misses", func(t *testing.T) {
		_, err := repos.Posts.GetByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, repos.Posts.Delete(ctx, "not-an-id"), repository.ErrNotFound)
	})
}
