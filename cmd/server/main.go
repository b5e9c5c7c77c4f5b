package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"rmtl/internal/backend"
	rediscache "rmtl/internal/cache/redis"
	"rmtl/internal/config"
	"rmtl/internal/document"
	"rmtl/internal/handler"
	"rmtl/internal/logger"
	"rmtl/internal/metrics"
	"rmtl/internal/port"
	"rmtl/internal/repository/postgres"
	"rmtl/internal/router"
	"rmtl/internal/rowstore"
	"rmtl/internal/service"
	s3storage "rmtl/internal/storage/s3"
	"rmtl/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, "rmtl-server")
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	metrics.Init()
	checks := make(map[string]handler.HealthCheck)

	// Assignment, enum and report backends
	var (
		assignments port.AssignmentSource
		enumSource  port.EnumSource
		submitter   port.ReportSubmitter
	)
	switch cfg.Backend.Mode {
	case "postgres":
		db, dbErr := postgres.NewDB(&cfg.DB)
		if dbErr != nil {
			return fmt.Errorf("failed to connect to database: %w", dbErr)
		}
		defer db.Close()
		assignments = postgres.NewAssignmentRepo(db)
		enumSource = postgres.NewEnumRepo(db)
		submitter = postgres.NewTestReportRepo(db)
		checks["database"] = pingDB(db)
	default:
		client := backend.NewClient(backend.Config{
			BaseURL:      cfg.Backend.BaseURL,
			APIToken:     cfg.Backend.APIToken,
			Timeout:      cfg.Backend.Timeout,
			FetchRetries: cfg.Backend.FetchRetries,
		}, zl)
		assignments, enumSource, submitter = client, client, client
	}

	// Enum cache
	var enumCache port.EnumCache
	if cfg.Cache.Provider == "redis" {
		rdb := rediscache.NewClient(&cfg.Redis)
		defer rdb.Close()
		enumCache = rediscache.NewEnumCache(rdb)
		checks["redis"] = func(ctx context.Context) error { return rediscache.Ping(ctx, rdb) }
	}

	// Document hand-off
	var documents port.DocumentGenerator = document.NewNoop()
	if cfg.Document.Provider == "s3" {
		storage, s3Err := s3storage.NewS3Client(context.Background(), &cfg.S3)
		if s3Err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", s3Err)
		}
		documents = document.NewS3Handoff(storage, document.S3HandoffConfig{
			Bucket:        cfg.S3.Bucket,
			KeyPrefix:     cfg.Document.KeyPrefix,
			PresignExpiry: cfg.S3.PresignExpiry,
		}, zl)
		bucket := cfg.S3.Bucket
		checks["s3"] = func(ctx context.Context) error { return storage.Ping(ctx, bucket) }
	}

	// Initialize services
	engine := validator.NewDefaultEngine()
	zl.Info("batch validation rules loaded", zap.Strings("rules", engine.Rules()))
	enumSvc := service.NewEnumService(enumSource, enumCache, cfg.Cache.EnumTTL, zl)
	submissions := service.NewSubmissionController(engine, submitter, documents, zl)
	workspaceSvc := service.NewWorkspaceService(assignments, enumSvc, submissions, engine, service.WorkspaceOptions{
		MaxIdle: cfg.Workspace.MaxIdle,
		Store:   rowstore.Options{InferResultFromRemarks: cfg.Engine.InferResultFromRemarks},
	}, zl)

	// Initialize handlers
	workspaceH := handler.NewWorkspaceHandler(workspaceSvc)
	enumH := handler.NewEnumHandler(enumSvc)
	healthH := handler.NewHealthHandler(checks)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.Setup(zl, cfg.CORS.AllowedOrigins, workspaceH, enumH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("backend_mode", cfg.Backend.Mode),
			zap.String("document_provider", cfg.Document.Provider),
			zap.String("cache_provider", cfg.Cache.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func pingDB(db *sqlx.DB) handler.HealthCheck {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}
