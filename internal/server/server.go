// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"time"

	_ "github.com/npkumar/social-coder/docs" // swagger docs
	"github.com/npkumar/social-coder/internal/config"
	"github.com/npkumar/social-coder/internal/events"
	"github.com/npkumar/social-coder/internal/featureflags"
	"github.com/npkumar/social-coder/internal/middleware"
	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/repository"
	"github.com/npkumar/social-coder/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Deps are the already-initialized dependencies a Server is built from.
type Deps struct {
	Repos repository.Repositories
	Redis *redis.Client
	// Ping reports whether the document store is reachable.
	Ping func(ctx context.Context) error
	// Close releases the store and Redis connections.
	Close func(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	deps           Deps
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	notifier       *events.Notifier
	onPostEvent    func(events.Event)
	stopEvents     context.CancelFunc
	postService    *service.PostService
	profileService *service.ProfileService
	userService    *service.UserService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// The bootstrap layer or a test establishes the store and Redis.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: nil config")
	}
	if deps.Repos.Posts == nil || deps.Repos.Profiles == nil || deps.Repos.Users == nil {
		return nil, errors.New("server: repositories are required")
	}

	middleware.InitMiddleware(cfg)
	flags := featureflags.NewManager(cfg.FeatureFlags)
	notifier := events.NewNotifier(deps.Redis, flags)

	s := &Server{
		config:         cfg,
		deps:           deps,
		promMiddleware: middleware.InitMetrics("social-coder-api"),
		featureFlags:   flags,
		notifier:       notifier,
		onPostEvent:    logPostEvent,
		postService:    service.NewPostService(deps.Repos.Posts, deps.Repos.Profiles, notifier),
		profileService: service.NewProfileService(deps.Repos.Profiles, deps.Repos.Users),
		userService:    service.NewUserService(deps.Repos.Users, cfg.JWTSecret),
	}
	s.app = s.newApp()
	return s, nil
}

// App returns the configured Fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Social Coder API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err, "path", c.Path())
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span per request, before the logger so trace ids are logged
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Message: "Too many requests, please try again later.",
			})
		},
	}))
}

// rateLimit returns the per-route Redis limiter, or a pass-through handler
// when the rate_limits flag is off.
func (s *Server) rateLimit(limit int, window time.Duration, name string) fiber.Handler {
	if !s.featureFlags.EnabledGlobally(featureflags.RateLimits) {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(s.deps.Redis, limit, window, name)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Social Coder Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Get("/feature-flags", middleware.AuthRequired, s.requireAccount, s.GetFeatureFlags)

	// User routes
	users := api.Group("/users")
	users.Get("/test", s.UsersTest)
	users.Post("/register", s.rateLimit(5, 10*time.Minute, "register"), s.Register)
	users.Post("/login", s.rateLimit(10, 5*time.Minute, "login"), s.Login)
	users.Get("/current", middleware.AuthRequired, s.requireAccount, s.CurrentUser)
	users.Post("/logout", middleware.AuthRequired, s.requireAccount, s.Logout)

	// Profile routes; static paths before parameterized ones
	profile := api.Group("/profile")
	profile.Get("/test", s.ProfileTest)
	profile.Get("/all", s.GetAllProfiles)
	profile.Get("/handle/:handle", s.GetProfileByHandle)
	profile.Get("/user/:user_id", s.GetProfileByUserID)
	profile.Get("/", middleware.AuthRequired, s.requireAccount, s.GetCurrentProfile)
	profile.Post("/", middleware.AuthRequired, s.requireAccount, s.UpsertProfile)
	profile.Delete("/", middleware.AuthRequired, s.requireAccount, s.DeleteProfile)

	// Post routes
	posts := api.Group("/posts")
	posts.Get("/test", s.PostsTest)
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.AuthRequired, s.requireAccount, s.rateLimit(10, time.Minute, "create_post"), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/like", middleware.AuthRequired, s.requireAccount, s.LikePost)
	posts.Post("/:id/unlike", middleware.AuthRequired, s.requireAccount, s.UnlikePost)
	posts.Post("/:id/comment", middleware.AuthRequired, s.requireAccount, s.rateLimit(20, time.Minute, "create_comment"), s.AddComment)
	posts.Delete("/:id/comment/:comment_id", middleware.AuthRequired, s.requireAccount, s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", middleware.AuthRequired, s.requireAccount, s.DeletePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if s.deps.Ping == nil {
		storeStatus = "unavailable"
	} else if err := s.deps.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	// Redis is optional: rate limits fail open and events are skipped without it.
	redisStatus := "unavailable"
	if s.deps.Redis != nil {
		redisStatus = "healthy"
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server and blocks until it stops listening.
func (s *Server) Start() error {
	if err := s.startEventLog(); err != nil {
		middleware.Logger.Warn("post event subscriber not started", "error", err)
	}
	middleware.Logger.Info("server starting", "port", s.config.Port, "store", s.config.StoreDriver)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopEvents != nil {
		s.stopEvents()
	}
	var errs []error
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.deps.Close != nil {
		if err := s.deps.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}

// startEventLog subscribes to the post event channel and hands every event
// to onPostEvent until Shutdown. It does nothing when events are disabled.
func (s *Server) startEventLog() error {
	if !s.notifier.Enabled() {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.notifier.Subscribe(ctx, s.onPostEvent); err != nil {
		cancel()
		return err
	}
	s.stopEvents = cancel
	middleware.Logger.Info("post events enabled", "channel", events.Channel)
	return nil
}

func logPostEvent(evt events.Event) {
	middleware.Logger.Info("post event",
		"type", evt.Type,
		"post_id", evt.PostID,
		"user_id", evt.UserID,
		"comment_id", evt.CommentID,
	)
}
