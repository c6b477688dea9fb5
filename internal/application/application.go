package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/fee-simulator/internal/api"
	"github.com/eugenenazirov/fee-simulator/internal/config"
	"github.com/eugenenazirov/fee-simulator/internal/mempool"
	"github.com/eugenenazirov/fee-simulator/internal/packer"
	"github.com/eugenenazirov/fee-simulator/internal/render"
	"github.com/eugenenazirov/fee-simulator/internal/storage"
)

// ErrNothingToSimulate is returned when every configured source produced an
// empty candidate set.
var ErrNothingToSimulate = errors.New("no valid candidates to simulate")

// App encapsulates the serve-mode dependencies and HTTP server.
type App struct {
	storage *storage.MempoolStore
	packer  packer.Packer
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the serve-mode application: the mempool store is seeded
// from the configured source (falling back to synthetic data when the fetch
// fails), and the API server is wired on top of it.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMempoolStore()

	set, sourceName, err := fetchWithFallback(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	if len(set.Candidates) == 0 {
		return nil, ErrNothingToSimulate
	}
	if err := store.Replace(set.Candidates); err != nil {
		return nil, fmt.Errorf("seed mempool store: %w", err)
	}
	logger.Info("mempool store seeded",
		zap.String("source", sourceName),
		zap.Int("candidates", len(set.Candidates)),
		zap.Int("skipped", set.Skipped),
	)

	p := packer.New()
	handler := api.NewHandler(p, store, cfg.BlockSize, api.WithTopN(cfg.TopN))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage: store,
		packer:  p,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, apiRouter),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// RunOnce executes a single simulation: fetch candidates from the configured
// source, pack one block, and hand the result to the renderer.
func RunOnce(ctx context.Context, cfg config.Config, renderer render.Renderer, logger *zap.Logger) error {
	set, sourceName, err := fetchWithFallback(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("fetch candidates: %w", err)
	}
	if len(set.Candidates) == 0 {
		return ErrNothingToSimulate
	}
	if set.Skipped > 0 {
		logger.Warn("skipped malformed mempool records", zap.Int("skipped", set.Skipped))
	}
	logger.Info("candidates loaded",
		zap.String("source", sourceName),
		zap.Int("candidates", len(set.Candidates)),
	)

	result, err := packer.New().Pack(cfg.BlockSize, set.Candidates)
	if err != nil {
		return fmt.Errorf("pack block: %w", err)
	}

	report := render.Report{
		Source:   sourceName,
		Capacity: cfg.BlockSize,
		TopN:     cfg.TopN,
		Result:   result,
	}
	if err := renderer.Render(report); err != nil {
		return fmt.Errorf("render result: %w", err)
	}
	return nil
}

// BuildSource resolves the configured data source. With no explicit source
// selection, a snapshot path implies the snapshot source and the live API is
// used otherwise.
func BuildSource(cfg config.Config) mempool.Source {
	selected := cfg.Source
	if selected == config.SourceAuto {
		if cfg.SnapshotPath != "" {
			selected = config.SourceSnapshot
		} else {
			selected = config.SourceLive
		}
	}

	switch selected {
	case config.SourceSnapshot:
		return mempool.NewSnapshotSource(cfg.SnapshotPath)
	case config.SourceSynthetic:
		return mempool.NewSyntheticSource(cfg.SyntheticCount)
	default:
		return mempool.NewLiveSource(cfg.APIURL, mempool.WithFetchTimeout(cfg.FetchTimeout))
	}
}

// fetchWithFallback fetches from the configured source. A failed live fetch
// falls back to synthetic data; a failed snapshot read is a user error and
// propagates. The fallback decision lives here, at the orchestration layer,
// so sources stay honest about their own failures.
func fetchWithFallback(ctx context.Context, cfg config.Config, logger *zap.Logger) (mempool.Set, string, error) {
	source := BuildSource(cfg)

	set, err := source.Fetch(ctx)
	if err == nil {
		return set, source.Name(), nil
	}
	if source.Name() != "live" {
		return mempool.Set{}, source.Name(), err
	}

	logger.Warn("live fetch failed, falling back to synthetic data",
		zap.Error(err),
	)

	fallback := mempool.NewSyntheticSource(cfg.SyntheticCount)
	set, err = fallback.Fetch(ctx)
	if err != nil {
		// Only a cancelled context can get here.
		return mempool.Set{}, fallback.Name(), err
	}
	return set, fallback.Name(), nil
}
