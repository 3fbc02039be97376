// Package bootstrap connects the stores selected by configuration and hands
// them to the server as ready dependencies.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/npkumar/social-coder/internal/cache"
	"github.com/npkumar/social-coder/internal/config"
	"github.com/npkumar/social-coder/internal/database"
	"github.com/npkumar/social-coder/internal/repository"
	"github.com/npkumar/social-coder/internal/seed"
	"github.com/npkumar/social-coder/internal/server"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development store with generated data.
	SeedDemo bool
}

// InitRuntime connects the document store and Redis and optionally seeds
// demo data. The returned Deps own both connections.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (server.Deps, error) {
	deps, err := connectStore(ctx, cfg)
	if err != nil {
		return server.Deps{}, fmt.Errorf("store connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	deps.Redis = cache.GetClient()

	storeClose := deps.Close
	deps.Close = func(ctx context.Context) error {
		return errors.Join(storeClose(ctx), cache.Close())
	}

	if opts.SeedDemo {
		if err := seedIfEmpty(ctx, cfg, deps.Repos); err != nil {
			_ = deps.Close(ctx)
			return server.Deps{}, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	return deps, nil
}

func connectStore(ctx context.Context, cfg *config.Config) (server.Deps, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return server.Deps{}, err
		}
		return server.Deps{
			Repos: repository.NewMongoRepositories(db),
			Ping: func(ctx context.Context) error {
				return database.PingMongo(ctx, client)
			},
			Close: client.Disconnect,
		}, nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.Connect(cfg)
		if err != nil {
			return server.Deps{}, err
		}
		return server.Deps{
			Repos: repository.NewGormRepositories(db),
			Ping: func(ctx context.Context) error {
				return database.Ping(ctx, db)
			},
			Close: func(context.Context) error {
				return database.Close(db)
			},
		}, nil
	default:
		return server.Deps{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// seedIfEmpty only runs in development and only against a store without posts.
func seedIfEmpty(ctx context.Context, cfg *config.Config, repos repository.Repositories) error {
	if cfg.Env != "development" {
		return nil
	}
	posts, err := repos.Posts.List(ctx)
	if err != nil {
		return err
	}
	if len(posts) > 0 {
		return nil
	}
	opts := seed.DefaultOptions()
	opts.FastHash = true
	sum, err := seed.NewSeeder(repos, opts).Run(ctx)
	if err != nil {
		return err
	}
	log.Printf("Seeded demo data: %d users, %d posts", sum.Users, sum.Posts)
	return nil
}
