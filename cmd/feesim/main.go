package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/fee-simulator/internal/application"
	"github.com/eugenenazirov/fee-simulator/internal/config"
	"github.com/eugenenazirov/fee-simulator/internal/logging"
	"github.com/eugenenazirov/fee-simulator/internal/render"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("feesim", "Mempool Fee Simulator - predicts which transactions a profit-maximizing miner packs into the next block")
	snapshotArg := kingpinApp.Arg("snapshot", "Path to a local JSON mempool snapshot").String()
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	blockSizeFlag := kingpinApp.Flag("block-size", "Max block size in vbytes").Default("0").Int64()
	sourceFlag := kingpinApp.Flag("source", "Data source: live, snapshot, or synthetic").String()
	apiURLFlag := kingpinApp.Flag("api-url", "Mempool API endpoint for the live source").String()
	topFlag := kingpinApp.Flag("top", "How many included transactions to list").Default("0").Int()
	syntheticCountFlag := kingpinApp.Flag("synthetic-count", "How many transactions the synthetic source generates").Default("0").Int()
	serveFlag := kingpinApp.Flag("serve", "Run the simulation HTTP API instead of a one-shot simulation").Bool()
	port := kingpinApp.Flag("port", "HTTP port exposed in serve mode").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *snapshotArg != "" {
		overrides.SnapshotPath = snapshotArg
	}

	if *blockSizeFlag > 0 {
		overrides.BlockSize = blockSizeFlag
	}

	if *sourceFlag != "" {
		overrides.Source = sourceFlag
	}

	if *apiURLFlag != "" {
		overrides.APIURL = apiURLFlag
	}

	if *topFlag > 0 {
		overrides.TopN = topFlag
	}

	if *syntheticCountFlag > 0 {
		overrides.SyntheticCount = syntheticCountFlag
	}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	if *serveFlag {
		runServer(cfg)
		return
	}

	runSimulation(cfg)
}

func runSimulation(cfg config.Config) {
	logger := logging.NewCLI()
	defer func() {
		_ = logger.Sync()
	}()

	renderer := render.NewTableRenderer(os.Stdout)
	err := application.RunOnce(context.Background(), cfg, renderer, logger)
	if err == nil {
		return
	}

	if errors.Is(err, application.ErrNothingToSimulate) {
		logger.Error("nothing to simulate: no valid candidates from any source")
	} else {
		logger.Error("simulation failed", zap.Error(err))
	}
	os.Exit(1)
}

func runServer(cfg config.Config) {
	logger, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
