package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PYTHTRADER/findtrader/docs"
	"github.com/PYTHTRADER/findtrader/internal/analysis"
	"github.com/PYTHTRADER/findtrader/internal/config"
	"github.com/PYTHTRADER/findtrader/internal/database"
	"github.com/PYTHTRADER/findtrader/internal/database/migration"
	handlers "github.com/PYTHTRADER/findtrader/internal/http/handler"
	"github.com/PYTHTRADER/findtrader/internal/http/middleware"
	"github.com/PYTHTRADER/findtrader/internal/identity"
	"github.com/PYTHTRADER/findtrader/internal/intake"
	"github.com/PYTHTRADER/findtrader/internal/kms"
	"github.com/PYTHTRADER/findtrader/internal/logging"
	"github.com/PYTHTRADER/findtrader/internal/notify"
	"github.com/PYTHTRADER/findtrader/internal/otel"
	"github.com/PYTHTRADER/findtrader/internal/repository/postgres"
	"github.com/PYTHTRADER/findtrader/internal/service"
	"github.com/PYTHTRADER/findtrader/internal/storage"
)

// @title FindTrader Intake API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("tracing_init_failed", "error", err.Error())
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.Database, log)
	if err != nil {
		log.Error("db_connect_failed", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Error("startup_aborted", "stage", "migration", "error", err.Error())
		os.Exit(1)
	}

	objStore, err := storage.New(ctx, cfg)
	if err != nil {
		log.Error("storage_init_failed", "driver", cfg.Storage.Driver, "error", err.Error())
		os.Exit(1)
	}

	verifier, err := identity.NewJWTVerifier(cfg.Auth)
	if err != nil {
		log.Error("auth_init_failed", "error", err.Error())
		os.Exit(1)
	}

	// Encryption, events and analysis are optional; each degrades instead of failing startup.
	enc, err := kms.New(ctx, cfg.KMS)
	if err != nil {
		log.Error("kms_init_failed", "provider", cfg.KMS.Provider, "error", err.Error())
		enc = nil
	}
	publisher, err := notify.New(cfg.AMQP, log)
	if err != nil {
		log.Error("amqp_init_failed", "error", err.Error())
		publisher = notify.Noop{}
	}
	defer publisher.Close()

	var analyzer analysis.Analyzer
	if cfg.Gemini.APIKey != "" {
		g, err := analysis.NewGemini(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("analysis_init_failed", "error", err.Error())
		} else {
			defer g.Close()
			analyzer = g
		}
	}

	subRepo := postgres.NewSubmissionPostgres(db)
	noteRepo := postgres.NewNotificationPostgres(db)
	userRepo := postgres.NewUserPostgres(db)

	submissionSvc := service.NewSubmissionService(objStore, subRepo, noteRepo, kms.NewGateway(enc, log), publisher, log)
	adminSvc := service.NewAdminService(subRepo, noteRepo, userRepo, objStore, analyzer, cfg.Storage.PresignExpiry, log)
	limiter := service.NewRateLimiter(subRepo, cfg.RateLimit)

	app := fiber.New(fiber.Config{
		ErrorHandler:      handlers.ErrorHandler(log),
		BodyLimit:         cfg.Intake.BodyLimitBytes,
		StreamRequestBody: true,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Error("metrics_init_failed", "error", err.Error())
		os.Exit(1)
	}

	// RequestID first so every later log line and error body carries it.
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:          db,
		Verifier:    verifier,
		RateLimiter: limiter,
		Submissions: submissionSvc,
		Admin:       adminSvc,
		Limits: intake.Limits{
			MaxAttachmentBytes: cfg.Intake.MaxAttachmentBytes,
			MaxFieldBytes:      cfg.Intake.MaxFieldBytes,
		},
		Log: log,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info("server_shutdown_start")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server_shutdown_failed", "error", err.Error())
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("tracing_shutdown_failed", "error", err.Error())
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server_start", "addr", addr, "storage_driver", cfg.Storage.Driver, "kms_provider", cfg.KMS.Provider)
	if err := app.Listen(addr); err != nil {
		log.Error("server_start_failed", "error", err.Error())
		os.Exit(1)
	}
}
