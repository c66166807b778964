// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CROWNARC/animex-tweet-verse/internal/auth"
	"github.com/CROWNARC/animex-tweet-verse/internal/config"
	"github.com/CROWNARC/animex-tweet-verse/internal/database"
	"github.com/CROWNARC/animex-tweet-verse/internal/feed"
	"github.com/CROWNARC/animex-tweet-verse/internal/middleware"
	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/notifications"
	"github.com/CROWNARC/animex-tweet-verse/internal/observability"
	"github.com/CROWNARC/animex-tweet-verse/internal/polls"
	"github.com/CROWNARC/animex-tweet-verse/internal/profile"
	"github.com/CROWNARC/animex-tweet-verse/internal/reactions"
	"github.com/CROWNARC/animex-tweet-verse/internal/repository"
	"github.com/CROWNARC/animex-tweet-verse/internal/session"
	"github.com/CROWNARC/animex-tweet-verse/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	app         *fiber.App
	prom        *fiberprometheus.FiberPrometheus
	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	reactionRepo repository.ReactionRepository
	pollRepo     repository.PollRepository

	bus *notifications.Bus
	hub *notifications.Hub

	blobs        storage.BlobStore
	provider     *auth.Provider
	sessions     *session.Manager
	synchronizer *feed.Synchronizer
	composer     *feed.Composer
	reactions    *reactions.Engine
	polls        *polls.Service
	profiles     *profile.Editor
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := connectRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	bus := notifications.NewBus(redisClient)

	userRepo := repository.NewUserRepository(db, bus)
	postRepo := repository.NewPostRepository(db, bus)
	reactionRepo := repository.NewReactionRepository(db, bus)
	pollRepo := repository.NewPollRepository(db, bus)

	blobs := storage.NewClient(cfg.StorageURL, cfg.StorageKey)
	provider := auth.NewProvider(userRepo, cfg.JWTSecret)

	s := &Server{
		config:       cfg,
		db:           db,
		redis:        redisClient,
		prom:         fiberprometheus.New("animez-api"),
		userRepo:     userRepo,
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		pollRepo:     pollRepo,
		bus:          bus,
		hub:          notifications.NewHub(),
		blobs:        blobs,
		provider:     provider,
		sessions:     session.NewManager(provider, userRepo),
	}

	s.synchronizer = feed.NewSynchronizer(
		postRepo, reactionRepo, bus,
		cfg.FeedPageSize,
		time.Duration(cfg.RefreshDebounceMS)*time.Millisecond,
		nil,
	)
	s.composer = feed.NewComposer(postRepo, pollRepo, userRepo, blobs, cfg.MediaBucket)
	s.reactions = reactions.NewEngine(reactionRepo, nil)
	s.polls = polls.NewService(pollRepo)
	s.profiles = profile.NewEditor(userRepo, blobs, cfg.AvatarBucket)

	return s, nil
}

// connectRedis opens a Redis client, or returns nil when Redis is
// unreachable; the app then degrades to poll-only change propagation.
func connectRedis(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		observability.Logger.Warn("redis unavailable, change notifications disabled", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.prom != nil {
		app.Use(s.prom.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.prom != nil {
		s.prom.RegisterAt(app, "/metrics")
	}

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", s.Logout)

	// Feed routes; the viewer is optional so anonymous browsing works.
	api.Get("/feed", s.GetFeed)

	// Public post routes
	publicPosts := api.Group("/posts")
	publicPosts.Get("/:id/poll", s.GetPoll)
	publicPosts.Get("/:id", s.GetPost)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/retweet", s.ToggleRetweet)
	posts.Delete("/:id", s.DeletePost)

	pollGroup := protected.Group("/polls")
	pollGroup.Post("/:id/vote", s.CastPollVote)

	// Websocket endpoint - protected by AuthRequired
	ws := api.Group("/ws", WebsocketUpgrade(), s.AuthRequired())
	ws.Get("/", s.WebsocketHandler())
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, models.NewAuthRequiredError("use this endpoint"))
		}

		userID, err := s.provider.VerifyToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), observability.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// optionalUserID attempts to extract userID from the Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0
	}
	userID, err := s.provider.VerifyToken(parts[1])
	if err != nil {
		return 0
	}
	return userID
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "AnimeZ API",
		BodyLimit: 8 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			observability.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.bus != nil {
		if err := s.synchronizer.Run(ctx); err != nil {
			observability.Logger.Error("failed to start feed synchronizer", "error", err)
		}
		if err := s.hub.StartWiring(ctx, s.bus, notifications.AllTables()); err != nil {
			observability.Logger.Error("failed to start websocket wiring", "error", err)
		}
	}

	observability.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		observability.Logger.Error("error shutting down websocket hub", "error", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.Logger.Error("error closing redis", "error", rerr)
		}
	}

	observability.Logger.Info("server shutdown complete")
	return nil
}
