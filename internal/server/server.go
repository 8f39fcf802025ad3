// Package server contains HTTP and WebSocket handlers for the allocation API.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "github.com/Matias7xx/adm-pcpb-sub000/docs" // swagger docs
	"github.com/Matias7xx/adm-pcpb-sub000/internal/cache"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/config"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/database"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/featureflags"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/middleware"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/notifications"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/repository"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config             *config.Config
	db                 *gorm.DB
	redis              *redis.Client
	app                *fiber.App
	promMiddleware     *fiberprometheus.FiberPrometheus
	shutdownCtx        context.Context
	shutdownFn         context.CancelFunc
	reservationRepo    repository.ReservationRepository
	dormitoryRepo      repository.DormitoryRepository
	occupancyRepo      repository.OccupancyRepository
	notifier           *notifications.Notifier
	boardHub           *notifications.BoardHub
	featureFlags       *featureflags.Manager
	reservationService *service.ReservationService
	allocationService  *service.AllocationService
	occupancyService   *service.OccupancyService
	dormitoryService   *service.DormitoryService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	reservationRepo := repository.NewReservationRepository(db)
	dormitoryRepo := repository.NewDormitoryRepository(db)
	occupancyRepo := repository.NewOccupancyRepository(db)

	prom := middleware.InitMetrics("alojamento-api")

	server := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  prom,
		reservationRepo: reservationRepo,
		dormitoryRepo:   dormitoryRepo,
		occupancyRepo:   occupancyRepo,
		featureFlags:    featureflags.NewManager(cfg.FeatureFlags),
	}

	// Notifier and board hub only when Redis is available; the API itself
	// works without them.
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.boardHub = notifications.NewBoardHub()
	}

	server.reservationService = service.NewReservationService(reservationRepo)
	server.allocationService = service.NewAllocationService(db, server.eventPublisher())
	server.occupancyService = service.NewOccupancyService(db, occupancyRepo, server.eventPublisher())
	server.dormitoryService = service.NewDormitoryService(dormitoryRepo, occupancyRepo)

	return server, nil
}

func (s *Server) eventPublisher() service.EventPublisher {
	if s.notifier == nil {
		return nil
	}
	return s.notifier
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and Operator ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
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

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
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
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Alojamento Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public intake routes: requesters submit without an account, tracked
	// by protocol afterwards.
	reservations := api.Group("/reservations")
	reservations.Post("/staff", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "create_reservation"), s.CreateStaffReservation)
	reservations.Post("/visitor", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "create_reservation"), s.CreateVisitorReservation)

	// Public vacancy board
	api.Get("/dormitories/board", s.VacancyBoard)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// Reservation queries and decisions
	protectedReservations := protected.Group("/reservations")
	protectedReservations.Get("/", s.ListReservations)
	protectedReservations.Get("/eligible", middleware.RateLimit(
		s.redis, 30, time.Minute, "eligible_search"), s.SearchEligible)
	protectedReservations.Get("/:kind/:id", s.GetReservation)
	protectedReservations.Post("/:kind/:id/approve", s.ApproveReservation)
	protectedReservations.Post("/:kind/:id/reject", s.RejectReservation)

	// Dormitory inventory
	dormitories := protected.Group("/dormitories")
	dormitories.Post("/", s.CreateDormitory)
	dormitories.Get("/", s.ListDormitories)
	dormitories.Get("/eligible", s.ListEligibleDormitories)
	dormitories.Get("/:id/occupancies", s.ListDormitoryOccupancies)
	dormitories.Put("/:id/status", s.SetDormitoryStatus)
	dormitories.Get("/:id", s.GetDormitory)

	// Occupancy lifecycle
	occupancies := protected.Group("/occupancies")
	occupancies.Post("/checkin", s.Checkin)
	occupancies.Post("/:id/checkout", s.Checkout)
	occupancies.Get("/:id", s.GetOccupancy)

	// WebSocket ticket issuance
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)

	// Websocket endpoints - protected by AuthRequired
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/board", s.BoardWebsocketHandler())

	// Feature flags snapshot for the frontend
	protected.Get("/feature-flags", s.GetFeatureFlags)
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
		// Redis is optional; the board and notifications degrade without it.
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

// GetFeatureFlags returns the evaluated feature flags for the operator.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	operatorID := c.Locals("operatorID").(uint)
	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Snapshot(operatorID),
	})
}

// AuthRequired returns the authentication middleware. Every mutating surface
// except public intake requires an authenticated operator.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws")

		// 1. Try WebSocket ticket first (short-lived, single-use)
		ticket := c.Query("ticket")
		if ticket != "" && s.redis != nil {
			key := fmt.Sprintf("ws_ticket:%s", ticket)
			operatorIDStr, err := s.redis.Get(c.Context(), key).Result()
			if err == nil {
				operatorID, parseErr := strconv.ParseUint(operatorIDStr, 10, 32)
				if parseErr == nil {
					// Delete ticket immediately (single-use)
					s.redis.Del(c.Context(), key)

					c.Locals("operatorID", uint(operatorID))
					ctx := context.WithValue(c.UserContext(), middleware.OperatorIDKey, uint(operatorID))
					c.SetUserContext(ctx)
					return c.Next()
				}
			}
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		// 2. Fall back to JWT issued by the identity service
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "alojamento-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "alojamento-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		operatorID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid operator ID in token"))
		}

		c.Locals("operatorID", uint(operatorID))
		ctx := context.WithValue(c.UserContext(), middleware.OperatorIDKey, uint(operatorID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Alojamento API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the board hub to Redis pub/sub if available
	if s.notifier != nil && s.boardHub != nil {
		go func() {
			if err := s.boardHub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start board hub wiring: %v", err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.boardHub != nil {
		if err := s.boardHub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down board hub: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
