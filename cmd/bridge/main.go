package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/api"
	"github.com/chainsafe/wpaw-bridge/pkg/apphttp"
	"github.com/chainsafe/wpaw-bridge/pkg/bridge"
	"github.com/chainsafe/wpaw-bridge/pkg/config"
	"github.com/chainsafe/wpaw-bridge/pkg/evmchain"
	"github.com/chainsafe/wpaw-bridge/pkg/l1chain"
	"github.com/chainsafe/wpaw-bridge/pkg/ledger"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

var configPath = flag.String("config", "config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting wPAW bridge")

	store, err := ledger.NewStore(cfg.Database.GetConnectionString(), cfg.Bridge.ClaimTTL, logger)
	if err != nil {
		logger.Fatal("failed to open ledger store", zap.Error(err))
	}
	defer store.Close()

	q, err := queue.NewStore(cfg.Database.GetConnectionString(), logger)
	if err != nil {
		logger.Fatal("failed to open queue store", zap.Error(err))
	}
	defer q.Close()

	l1Client := l1chain.NewClient(&cfg.L1, logger)

	evmSignerKey := os.Getenv(cfg.Evm.BridgeSignerKeyEnv)
	if evmSignerKey == "" {
		logger.Fatal("EVM bridge signer key env var is unset or empty", zap.String("env", cfg.Evm.BridgeSignerKeyEnv))
	}
	evmClient, err := evmchain.NewClient(&cfg.Evm, evmSignerKey, logger)
	if err != nil {
		logger.Fatal("failed to initialize EVM client", zap.Error(err))
	}
	defer evmClient.Close()

	hotMinimum, err := money.ParseDecimal(cfg.L1.HotMinimum, money.NativeDecimals)
	if err != nil {
		logger.Fatal("invalid hot wallet minimum", zap.Error(err))
	}

	blacklist := bridge.NewHTTPBlacklistOracle(cfg.Bridge.BlacklistURL, cfg.Bridge.BlacklistCacheTTL)
	events := api.NewEventHub(logger)

	svc := bridge.NewService(store, q, l1Client, evmClient, blacklist, events, bridge.Config{
		NativeSymbol:   cfg.L1.NativeSymbol,
		HotMinimum:     hotMinimum,
		HotColdRatio:   cfg.L1.HotColdRatio,
		DepositAddress: cfg.L1.HotWallet,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l1Watcher := l1chain.NewWatcher(l1Client, q, &cfg.L1, logger)
	evmWatcher := evmchain.NewWatcher(evmClient, store, q, &cfg.Evm, logger)
	evmScanner := evmchain.NewScanner(evmClient, store, q, &cfg.Evm, logger)

	q.Start(ctx)
	defer q.Stop()

	if err := evmScanner.EnqueueCatchUp(ctx); err != nil {
		logger.Error("failed to enqueue EVM catch-up scan", zap.Error(err))
	}

	go func() {
		if err := l1Watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("L1 watcher stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := evmWatcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("EVM watcher stopped", zap.Error(err))
		}
	}()

	router := api.NewRouter(svc, store, q, events, logger)
	if err := apphttp.ServeAndWait(ctx, router, logger, &cfg.Server); err != nil {
		logger.Fatal("HTTP server exited with error", zap.Error(err))
	}

	logger.Info("wPAW bridge stopped")
}
