package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"plagcheck/docs"
	"plagcheck/internal/cache"
	"plagcheck/internal/config"
	"plagcheck/internal/database"
	"plagcheck/internal/database/migration"
	handlers "plagcheck/internal/http/handler"
	"plagcheck/internal/http/middleware"
	"plagcheck/internal/logger"
	"plagcheck/internal/metrics"
	"plagcheck/internal/otel"
	"plagcheck/internal/repository/postgres"
	"plagcheck/internal/service"
	"plagcheck/internal/storage"
	"plagcheck/internal/suggest"
)

// @title Plagiarism Check API
// @version 1.0
// @BasePath /
func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.Level, logger.Location(cfg.Log.Timezone))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, zl)
	if err != nil {
		zl.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, zl, cfg.Database.Host); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		zl.Fatal("failed to initialize object storage", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkMetrics, err := metrics.NewCheckMetrics(reg)
	if err != nil {
		zl.Fatal("failed to register metrics", zap.Error(err))
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		zl.Fatal("failed to register metrics", zap.Error(err))
	}

	opts := []service.Option{
		service.WithLogger(zl.Named("check")),
		service.WithMetrics(checkMetrics),
		service.WithWorkers(cfg.Check.Workers),
	}
	if cfg.Redis.Addr != "" {
		cmpCache, rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			// the cache only saves work; run without it
			zl.Warn("comparison cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			opts = append(opts, service.WithCache(cmpCache))
		}
	}

	var suggester suggest.Suggester = suggest.Heuristic{}
	if cfg.OpenAI.APIKey != "" {
		suggester = suggest.Fallback{
			Primary:   suggest.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
			Secondary: suggest.Heuristic{},
			Log:       zl.Named("suggest"),
		}
	}

	reportRepo := postgres.NewReportPostgres(db)
	checkSvc := service.NewCheckService(objStore, reportRepo, suggester, opts...)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.Check.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(cors.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(zl))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, db, checkSvc, reg)

	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		zl.Info("server_starting", zap.String("addr", addr), zap.String("app_host", cfg.AppHost))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zl.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		zl.Info("server_shutting_down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			zl.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
