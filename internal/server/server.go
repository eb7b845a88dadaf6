// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"sync/atomic"
	"time"

	"inkboard/internal/cache"
	"inkboard/internal/config"
	"inkboard/internal/featureflags"
	"inkboard/internal/ingest"
	"inkboard/internal/middleware"
	"inkboard/internal/store"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Ingestor runs one full ingestion cycle and reports how many posts were added.
type Ingestor interface {
	IngestAll(ctx context.Context) (int, error)
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	posts          store.PostStore
	ingestor       Ingestor
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	// warmedUp arms the at-most-once-per-process lazy ingestion on first
	// feed read. Process-lifetime state only; a restart re-arms it.
	warmedUp atomic.Bool
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	posts := store.NewFileStore(cfg.DataDir, store.SeedPosts())

	estimator := ingest.NewRandomEstimator(time.Now().UnixNano())
	timeout := cfg.SourceTimeout()
	flags := featureflags.NewManager(cfg.SourceFlags)

	// Adapter order fixes the merge order of ingested batches.
	var adapters []ingest.SourceAdapter
	if flags.Enabled("devto") {
		adapters = append(adapters, ingest.NewDevtoAdapter(cfg.DevtoBaseURL, timeout, estimator))
	}
	if flags.Enabled("hashnode") {
		adapters = append(adapters, ingest.NewHashnodeAdapter(cfg.HashnodeURL, timeout, estimator))
	}
	if flags.Enabled("wikinews") {
		adapters = append(adapters, ingest.NewWikinewsAdapter(cfg.WikinewsAPIURL, cfg.WikinewsBaseURL, timeout, estimator))
	}
	if flags.Enabled("guardian") {
		adapters = append(adapters, ingest.NewGuardianAdapter(cfg.GuardianBaseURL, timeout, estimator))
	}

	return NewServerWithDeps(cfg, posts, ingest.NewOrchestrator(posts, adapters...), redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the store and cache.
func NewServerWithDeps(cfg *config.Config, posts store.PostStore, ingestor Ingestor, redisClient *redis.Client) *Server {
	return &Server{
		config:         cfg,
		posts:          posts,
		ingestor:       ingestor,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkboard-api"),
	}
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	cache.Close()
	return nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// OpenTelemetry span per request
	app.Use(middleware.TracingMiddleware())

	// Context middleware to propagate request and trace IDs
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
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

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Inkboard Backend Metrics Dashboard",
	}))

	// Feed and posts
	api.Get("/feed", s.GetFeed)
	api.Post("/posts", s.CreatePost)
	api.Get("/posts/search", s.SearchPosts)
	api.Get("/posts/:id", s.GetPost)
	api.Get("/tags/:name/posts", s.GetTagPosts)
	api.Get("/sources/:name/posts", s.GetSourcePosts)

	// Admin console
	admin := api.Group("/admin")
	admin.Post("/ingest", middleware.RateLimit(s.redis, 5, time.Minute, "admin-ingest"), s.TriggerIngestion)
	admin.Patch("/posts/:id/status", s.UpdatePostStatus)
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the store can serve reads.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	if _, err := s.posts.GetAll(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
