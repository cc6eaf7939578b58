package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/MarkCarsonDev/PhotoBomb/internal/api"
	"github.com/MarkCarsonDev/PhotoBomb/internal/api/ws"
	"github.com/MarkCarsonDev/PhotoBomb/internal/config"
	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
	"github.com/MarkCarsonDev/PhotoBomb/internal/observability"
	"github.com/MarkCarsonDev/PhotoBomb/internal/queue"
	"github.com/MarkCarsonDev/PhotoBomb/internal/storage"
	"github.com/MarkCarsonDev/PhotoBomb/pkg/dto"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting PhotoBomb API service", "port", cfg.Server.Port)

	// Connect to Postgres
	pool, err := storage.NewPostgresPool(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := storage.Migrate(context.Background(), pool); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	photoStore := storage.NewPostgresPhotoStore(pool)
	accountStore := storage.NewPostgresAccountStore(pool)

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Start suggestion consumer to broadcast updates via WebSocket
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create suggestion consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeSuggestions(ctx, "api-suggestions", func(ctx context.Context, msg jetstream.Msg) error {
		var event models.SuggestionEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			return err
		}

		hub.BroadcastEvent(&dto.WSEvent{
			Type:       "suggestions_updated",
			AccountUID: event.AccountUID,
			Predicted:  event.Predicted,
			UpdatedAt:  event.UpdatedAt.UTC().Format(time.RFC3339),
		})

		return nil
	})
	if err != nil {
		slog.Warn("start suggestion consumer", "error", err)
	}

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:   cfg.Server.APIKey,
		Pool:     pool,
		Photos:   photoStore,
		Accounts: accountStore,
		MinIO:    minioStore,
		Producer: producer,
		Hub:      hub,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
