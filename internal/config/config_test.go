package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "POLL_INTERVAL_SECONDS", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.StoreDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %s", cfg.StoreDriver)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Fatalf("expected 10s poll interval, got %v", cfg.PollInterval)
	}
	if cfg.TraceEndpoint != "" || cfg.TraceInsecure {
		t.Fatalf("tracing must be off by default: %q %v", cfg.TraceEndpoint, cfg.TraceInsecure)
	}
}

func TestLoadTraceSettings(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	cfg := Load()
	if cfg.TraceEndpoint != "collector:4317" {
		t.Fatalf("expected trace endpoint, got %q", cfg.TraceEndpoint)
	}
	if !cfg.TraceInsecure {
		t.Fatalf("expected insecure tracing enabled")
	}
}

func TestReadHelpers(t *testing.T) {
	t.Setenv("POLL_INTERVAL_SECONDS", "not-a-number")
	if got := readInt("POLL_INTERVAL_SECONDS", 10); got != 10 {
		t.Fatalf("bad int must fall back, got %d", got)
	}

	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "definitely")
	if readBool("OTEL_EXPORTER_OTLP_INSECURE", false) {
		t.Fatalf("bad bool must fall back")
	}

	t.Setenv("ANNOUNCE_COOLDOWN_SECONDS", "0")
	if got := readDurationSeconds("ANNOUNCE_COOLDOWN_SECONDS", 3); got != 0 {
		t.Fatalf("explicit zero must disable, got %v", got)
	}
}
