package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d; want 8080", cfg.Server.Port)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("database port = %d; want 5432", cfg.Database.Port)
	}
	if cfg.Clustering.Epsilon != 0.5 {
		t.Errorf("epsilon = %g; want 0.5", cfg.Clustering.Epsilon)
	}
	if cfg.Clustering.MinSamples != 1 {
		t.Errorf("min samples = %d; want 1", cfg.Clustering.MinSamples)
	}
	if cfg.Vision.EmbeddingDim != 128 {
		t.Errorf("embedding dim = %d; want 128", cfg.Vision.EmbeddingDim)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %s/%s; want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  api_key: secret
clustering:
  epsilon: 0.42
  min_samples: 3
minio:
  bucket: test-bucket
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d; want 9090", cfg.Server.Port)
	}
	if cfg.Server.APIKey != "secret" {
		t.Errorf("api key = %q; want secret", cfg.Server.APIKey)
	}
	if cfg.Clustering.Epsilon != 0.42 {
		t.Errorf("epsilon = %g; want 0.42", cfg.Clustering.Epsilon)
	}
	if cfg.Clustering.MinSamples != 3 {
		t.Errorf("min samples = %d; want 3", cfg.Clustering.MinSamples)
	}
	if cfg.MinIO.Bucket != "test-bucket" {
		t.Errorf("bucket = %q; want test-bucket", cfg.MinIO.Bucket)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	t.Setenv("PB_SERVER_PORT", "7070")
	t.Setenv("PB_NATS_URL", "nats://elsewhere:4222")
	t.Setenv("PB_CLUSTER_EPSILON", "0.3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("server port = %d; want env override 7070", cfg.Server.Port)
	}
	if cfg.NATS.URL != "nats://elsewhere:4222" {
		t.Errorf("nats url = %q; want env override", cfg.NATS.URL)
	}
	if cfg.Clustering.Epsilon != 0.3 {
		t.Errorf("epsilon = %g; want env override 0.3", cfg.Clustering.Epsilon)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("loading a missing file should fail")
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "photobomb", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/photobomb?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q; want %q", got, want)
	}
}
