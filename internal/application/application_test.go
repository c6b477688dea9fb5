package application

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/fee-simulator/internal/config"
	"github.com/eugenenazirov/fee-simulator/internal/render"
)

func writeTestSnapshot(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mempool.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		BlockSize:            1000,
		Source:               config.SourceSynthetic,
		SyntheticCount:       16,
		TopN:                 5,
		Port:                 port,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	logger := zaptest.NewLogger(t)

	app, err := New(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	candidates, err := app.storage.Candidates()
	if err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	if len(candidates) != 16 {
		t.Fatalf("expected 16 seeded candidates, got %d", len(candidates))
	}
	if app.server == nil || app.router == nil || app.handler == nil {
		t.Fatalf("expected server, router, and handler to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestBuildSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantName string
	}{
		{
			name:     "AutoWithoutSnapshotIsLive",
			mutate:   func(cfg *config.Config) { cfg.Source = config.SourceAuto },
			wantName: "live",
		},
		{
			name: "AutoWithSnapshotPath",
			mutate: func(cfg *config.Config) {
				cfg.Source = config.SourceAuto
				cfg.SnapshotPath = "mempool.json"
			},
			wantName: "snapshot",
		},
		{
			name:     "ExplicitSynthetic",
			mutate:   func(cfg *config.Config) { cfg.Source = config.SourceSynthetic },
			wantName: "synthetic",
		},
		{
			name: "ExplicitLiveIgnoresSnapshotPath",
			mutate: func(cfg *config.Config) {
				cfg.Source = config.SourceLive
				cfg.SnapshotPath = "mempool.json"
			},
			wantName: "live",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := baseTestConfig(":0")
			tc.mutate(&cfg)

			if got := BuildSource(cfg).Name(); got != tc.wantName {
				t.Fatalf("expected source %q, got %q", tc.wantName, got)
			}
		})
	}
}

func TestRunOnceRendersSnapshotSimulation(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Source = config.SourceSnapshot
	cfg.SnapshotPath = writeTestSnapshot(t, `[
		{"txid": "tx_top", "fee": 8000, "vsize": 400},
		{"txid": "tx_mid", "fee": 4000, "vsize": 400},
		{"txid": "tx_low", "fee": 1200, "vsize": 400}
	]`)

	var buf bytes.Buffer
	err := RunOnce(context.Background(), cfg, render.NewTableRenderer(&buf), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"source: snapshot", "Total fees:    12000 sats", "Excluded:      1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunOnceSnapshotErrorDoesNotFallBack(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Source = config.SourceSnapshot
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "absent.json")

	var buf bytes.Buffer
	err := RunOnce(context.Background(), cfg, render.NewTableRenderer(&buf), zaptest.NewLogger(t))
	if err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be rendered on failure, got:\n%s", buf.String())
	}
}

func TestRunOnceLiveFailureFallsBackToSynthetic(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Source = config.SourceLive
	// Unroutable per RFC 5737; the fetch fails fast and the orchestrator
	// switches to synthetic data.
	cfg.APIURL = "http://192.0.2.1/api/mempool/recent"
	cfg.FetchTimeout = 100 * time.Millisecond

	var buf bytes.Buffer
	err := RunOnce(context.Background(), cfg, render.NewTableRenderer(&buf), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}

	if !strings.Contains(buf.String(), "source: synthetic") {
		t.Fatalf("expected synthetic fallback, got:\n%s", buf.String())
	}
}

func TestRunOnceEmptySnapshotReportsNothingToSimulate(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Source = config.SourceSnapshot
	cfg.SnapshotPath = writeTestSnapshot(t, `[{"txid": "incomplete"}]`)

	var buf bytes.Buffer
	err := RunOnce(context.Background(), cfg, render.NewTableRenderer(&buf), zaptest.NewLogger(t))
	if !errors.Is(err, ErrNothingToSimulate) {
		t.Fatalf("expected ErrNothingToSimulate, got %v", err)
	}
}

func TestFetchWithFallbackReturnsSetForSynthetic(t *testing.T) {
	cfg := baseTestConfig(":0")

	set, name, err := fetchWithFallback(context.Background(), cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "synthetic" {
		t.Fatalf("expected synthetic source, got %q", name)
	}
	if len(set.Candidates) != cfg.SyntheticCount {
		t.Fatalf("expected %d candidates, got %d", cfg.SyntheticCount, len(set.Candidates))
	}
}
