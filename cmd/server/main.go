package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/auth"
	"github.com/alieuroshub001/euroshub-management/internal/cache"
	"github.com/alieuroshub001/euroshub-management/internal/config"
	"github.com/alieuroshub001/euroshub-management/internal/handlers"
	"github.com/alieuroshub001/euroshub-management/internal/handlers/ws"
	"github.com/alieuroshub001/euroshub-management/internal/logger"
	"github.com/alieuroshub001/euroshub-management/internal/metrics"
	"github.com/alieuroshub001/euroshub-management/internal/middleware"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/alieuroshub001/euroshub-management/internal/repository"
	"github.com/alieuroshub001/euroshub-management/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Initialize database connection
	db, err := repository.InitDB(cfg.DB)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Initialize Redis cache (optional)
	var redisCache *cache.RedisCache
	if !cfg.Redis.Disabled {
		redisCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(); err != nil {
			zlog.Warn("redis connection failed, running without presence cache", zap.Error(err))
			_ = redisCache.Close()
			redisCache = nil
		} else {
			zlog.Info("redis cache connected", zap.String("addr", cfg.Redis.Addr))
			defer func() { _ = redisCache.Close() }()
		}
	}
	presenceCache := cache.NewPresenceCache(redisCache)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chatMetrics := metrics.New(registry)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Online flags left by a previous process have no live connection behind them.
	if cleared, err := userRepo.ResetPresence(context.Background()); err != nil {
		zlog.Fatal("failed to reset presence", zap.Error(err))
	} else if cleared > 0 {
		zlog.Info("cleared stale online flags", zap.Int64("users", cleared))
	}
	if err := presenceCache.ResetOnline(); err != nil {
		zlog.Warn("failed to reset cached online set", zap.Error(err))
	}

	// Initialize services
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	hub := ws.NewHub(cfg.OutboundQueueSize, chatMetrics, zlog.Named("hub"))
	presence := service.NewPresenceTracker(userRepo, presenceCache, hub, chatMetrics, zlog.Named("presence"))
	messageService := service.NewMessageService(messageRepo, userRepo, cfg.MaxMessageLength, chatMetrics)
	router := service.NewMessageRouter(messageService, presence, hub, chatMetrics, zlog.Named("router"))
	typing := service.NewTypingNotifier(presence, hub)
	authenticator := service.NewConnectionAuthenticator(tokens, userRepo, chatMetrics, zlog.Named("auth"))
	authService := service.NewAuthService(userRepo, tokens, zlog.Named("auth"))
	userService := service.NewUserService(userRepo, presence)

	if err := authService.EnsureSuperAdmin(context.Background(), cfg.SuperAdminUsername, cfg.SuperAdminPassword); err != nil {
		zlog.Fatal("failed to seed superadmin", zap.Error(err))
	}

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(hub, presence, router, typing, zlog.Named("ws"))
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, presence)
	messageHandler := handlers.NewMessageHandler(messageService, router)
	healthHandler := handlers.NewHealthHandler(db, hub, presence)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "EurosHub Management API",
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PATCH, OPTIONS",
		AllowCredentials: true,
	}))

	api := app.Group("/api")

	// Public routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}), authHandler.Login)
	authRoutes.Post("/logout", middleware.AuthRequired(authenticator), authHandler.Logout)

	admin := authRoutes.Group("/users",
		middleware.AuthRequired(authenticator),
		middleware.RequireCapability(models.CapManageUsers),
	)
	admin.Get("/", authHandler.ListUsers)
	admin.Post("/", authHandler.CreateUser)
	admin.Patch("/:id/status", authHandler.UpdateUserStatus)

	// Protected routes
	chat := api.Group("/chat", middleware.AuthRequired(authenticator))
	chat.Get("/users", userHandler.ListUsers)
	chat.Get("/me", userHandler.GetCurrentUser)
	chat.Get("/messages/:receiverId", messageHandler.GetMessages)
	chat.Post("/messages", messageHandler.SendMessage)
	chat.Get("/unread-count", messageHandler.UnreadCount)
	chat.Get("/presence/:userId", userHandler.GetPresence)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(cfg.AllowedOrigins),
		middleware.WebSocketAuth(authenticator),
		wsHandler.RequireUpgrade,
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	app.Get("/health", healthHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zlog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("shutdown", zap.Error(err))
		}
	}()

	zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}
