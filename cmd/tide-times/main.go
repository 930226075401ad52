package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yakshaver/go-tide-times/internal/api"
	"github.com/yakshaver/go-tide-times/internal/config"
	"github.com/yakshaver/go-tide-times/internal/ingestion"
	"github.com/yakshaver/go-tide-times/internal/logging"
	"github.com/yakshaver/go-tide-times/internal/repository"
	"github.com/yakshaver/go-tide-times/internal/schedule"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	// The store and fetchers open lazily on the first schedule request, so a
	// bad database path surfaces as an initialization error per request
	// instead of a crash at boot.
	builder := schedule.New(cfg.Sources.ReferenceStation, func(ctx context.Context) (*schedule.Deps, error) {
		db, err := repository.Open(cfg.DB.Path)
		if err != nil {
			return nil, err
		}
		return &schedule.Deps{
			Store:    db,
			Tides:    ingestion.NewTideFetcher(db, cfg.Sources.TideURL, cfg.Sources.ReferenceStation),
			Moons:    ingestion.NewMoonCache(db, cfg.Sources.MoonURL),
			Warnings: ingestion.NewWarningCache(db, cfg.Sources.WarningURL),
			Path:     cfg.DB.Path,
			Close:    db.Close,
		}, nil
	})
	defer builder.Close()

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(5)) // 5 req/s global limit

	handler := api.NewHandler(builder)
	handler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
