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
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/MarkCarsonDev/PhotoBomb/internal/config"
	"github.com/MarkCarsonDev/PhotoBomb/internal/identity"
	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
	"github.com/MarkCarsonDev/PhotoBomb/internal/observability"
	"github.com/MarkCarsonDev/PhotoBomb/internal/queue"
	"github.com/MarkCarsonDev/PhotoBomb/internal/storage"
	"github.com/MarkCarsonDev/PhotoBomb/internal/vision"
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

	slog.Info("starting PhotoBomb pipeline worker",
		"workers", cfg.Vision.WorkerCount,
		"cpu_cores", runtime.NumCPU(),
	)

	// Initialize ONNX Runtime
	ort.SetSharedLibraryPath(getONNXLibPath())
	if err := ort.InitializeEnvironment(); err != nil {
		slog.Error("init onnx runtime", "error", err)
		os.Exit(1)
	}
	defer ort.DestroyEnvironment()

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

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// Face extraction models
	extractor, err := vision.NewONNXExtractor(cfg.Vision)
	if err != nil {
		slog.Error("init face extractor", "error", err)
		os.Exit(1)
	}
	defer extractor.Close()

	pipeline := identity.NewPipeline(photoStore, accountStore, minioStore, extractor, cfg.Clustering, producer)

	slog.Info("identity pipeline initialized",
		"epsilon", cfg.Clustering.Epsilon,
		"min_samples", cfg.Clustering.MinSamples,
	)

	// Create NATS consumer
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consuming photo changes. Each message gets its own deadline,
	// aligned with the consumer's 60s AckWait: a hung blob fetch or model
	// call fails the attempt and the message is redelivered.
	err = consumer.ConsumePhotoChanges(ctx, "pipeline-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var change models.PhotoChange
		if err := json.Unmarshal(msg.Data(), &change); err != nil {
			slog.Error("unmarshal photo change", "error", err)
			return nil // Don't retry on unmarshal errors
		}

		msgCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()

		if err := pipeline.OnPhotoChange(msgCtx, change.PhotoID); err != nil {
			return fmt.Errorf("process photo %s: %w", change.PhotoID, err)
		}

		return nil
	}, cfg.Vision.WorkerCount)
	if err != nil {
		slog.Error("start photo change consumer", "error", err)
		os.Exit(1)
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("worker metrics listening", "addr", ":8082")
		if err := http.ListenAndServe(":8082", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// Periodically report queue depth
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				depth, err := producer.QueueDepth(ctx)
				if err == nil {
					observability.QueueDepth.Set(float64(depth))
				}
			}
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	cancel()
	time.Sleep(2 * time.Second)
	slog.Info("worker stopped")
}

// getONNXLibPath returns the ONNX Runtime shared library path
// based on the operating system.
func getONNXLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "linux":
		return "libonnxruntime.so"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "onnxruntime.dll"
	}
}
