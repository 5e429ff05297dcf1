// jobly catalog-service
//
// REST backend for the Jobly job board: companies and the jobs they post.
// Exposes:
//   - HTTP/JSON API (gin) for listing, filtering and admin CRUD
//   - read-only gRPC Catalog service for internal callers (GRPC_PORT)
//
// Publishes catalog.company.* / catalog.job.* events to Redis when
// REDIS_URL is set. A cron probe keeps /health honest about PostgreSQL.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"jobly/catalog-service/internal/api"
	"jobly/catalog-service/internal/auth"
	"jobly/catalog-service/internal/catalog"
	"jobly/catalog-service/internal/config"
	"jobly/catalog-service/internal/db"
	"jobly/catalog-service/internal/events"
	"jobly/catalog-service/internal/grpcserver"
	"jobly/catalog-service/internal/scheduler"
)

const version = "1.0.0"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "catalog-service"))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("stopped")
}

func run() error {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	slog.Info("connecting to PostgreSQL")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	slog.Info("PostgreSQL connected")

	// ── Redis (optional) ─────────────────────────────────────────────────────
	var pub catalog.Publisher
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		pub = events.NewRedisPublisher(rdb)
		slog.Info("Redis connected, publishing catalog events")
	}

	companies := catalog.NewCompanyStore(pool, pub)
	jobs := catalog.NewJobStore(pool, pub)

	// ── Health probe ─────────────────────────────────────────────────────────
	probe := scheduler.NewHealthProbe(pool, cfg.HealthInterval)
	if err := probe.Start(ctx); err != nil {
		return err
	}
	defer probe.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Companies: companies,
		Jobs:      jobs,
		Verifier:  auth.NewKeys(cfg.SecretKey, cfg.TokenTTL),
		Health:    probe,
		Version:   version,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("HTTP listening", "version", version, "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// ── gRPC server (optional) ───────────────────────────────────────────────
	var gs *grpc.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		gs = grpc.NewServer(grpc.UnaryInterceptor(grpcserver.UnaryLogger()))
		grpcserver.Register(gs, grpcserver.NewServer(companies, jobs))
		go func() {
			slog.Info("gRPC listening", "port", cfg.GRPCPort, "service", grpcserver.ServiceName)
			if err := gs.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if gs != nil {
		gs.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}
