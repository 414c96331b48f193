package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/saeid-a/CoachAcademyBack/internal/config"
	"github.com/saeid-a/CoachAcademyBack/internal/database"
	"github.com/saeid-a/CoachAcademyBack/internal/email"
	"github.com/saeid-a/CoachAcademyBack/internal/logger"
	"github.com/saeid-a/CoachAcademyBack/internal/metrics"
	"github.com/saeid-a/CoachAcademyBack/internal/middleware"
	"github.com/saeid-a/CoachAcademyBack/internal/render"
	"github.com/saeid-a/CoachAcademyBack/internal/routes"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
	schedulews "github.com/saeid-a/CoachAcademyBack/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		zl.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(ctx, cfg.DBUrl, config.DBMaxConns(), zl); err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB()

	// 3. Collaborators
	hub := schedulews.NewHub(zl.Named("events"))
	go hub.Run(ctx)

	deps := routes.Dependencies{
		Log:     zl,
		Hub:     hub,
		Metrics: metrics.New(),
		Mailer:  email.NewNoopSender(zl.Named("email")),
	}
	if cfg.ResendAPIKey != "" {
		deps.Mailer = email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, zl.Named("email"))
	}
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		deps.Storage = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}
	if cfg.PDFRendererEnabled {
		converter, err := render.NewChromiumConverter()
		if err != nil {
			zl.Warn("pdf renderer disabled", zap.Error(err))
		} else {
			deps.Converter = converter
			defer func() {
				if err := converter.Close(); err != nil {
					zl.Warn("close pdf renderer", zap.Error(err))
				}
			}()
		}
	}

	// 4. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "coach-academy",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New())
	app.Use(helmet.New())
	app.Use(compress.New())
	app.Use(etag.New())
	if cfg.IsDevelopment() {
		app.Use(fiberlogger.New())
	} else {
		app.Use(middleware.AccessLog(zl.Named("http")))
	}

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if err := routes.RegisterRoutes(app, cfg, database.DB, deps); err != nil {
		zl.Fatal("failed to register routes", zap.Error(err))
	}

	// 5. Start Server
	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Warn("shutdown", zap.Error(err))
	}
}
