package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openminter/nft-aggregator/internal/adapter"
	"github.com/openminter/nft-aggregator/internal/api/server"
	"github.com/openminter/nft-aggregator/internal/config"
	"github.com/openminter/nft-aggregator/internal/contracts"
	"github.com/openminter/nft-aggregator/internal/logger"
	"github.com/openminter/nft-aggregator/internal/marketplace"
	"github.com/openminter/nft-aggregator/internal/metadata"
	"github.com/openminter/nft-aggregator/internal/nft"
	"github.com/openminter/nft-aggregator/internal/providers/tezos"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting NFT aggregator API")

	// Initialize adapters and providers
	httpClient := adapter.NewHTTPClient(30 * time.Second)
	tzktClient := tezos.NewTzKTClient(cfg.Tezos.APIURL, httpClient)

	metadataResolver, err := metadata.NewResolver(httpClient, &metadata.Config{
		IPFSGateways: cfg.URI.IPFSGateways,
		CacheSize:    cfg.Metadata.CacheSize,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create metadata resolver", zap.Error(err))
	}

	// Initialize services
	nameResolver := contracts.NewNameResolver(tzktClient, contracts.NameResolverConfig{
		FactoryAddress: cfg.Contracts.NFTFactory,
		MinterAddress:  cfg.Contracts.Minter,
		Workers:        cfg.Worker.WorkerPoolSize,
	})
	aggregator := nft.NewAggregator(tzktClient, metadataResolver, nft.AggregatorConfig{
		MarketplaceAddress: cfg.Contracts.Marketplace,
		Workers:            cfg.Worker.WorkerPoolSize,
	})
	assetResolver := nft.NewAssetContractResolver(tzktClient, metadataResolver, cfg.Worker.WorkerPoolSize)
	listingPipeline := marketplace.NewPipeline(tzktClient, metadataResolver, aggregator)

	logger.InfoCtx(ctx, "Connected to TzKT",
		zap.String("api_url", cfg.Tezos.APIURL),
		zap.String("marketplace", cfg.Contracts.Marketplace),
		zap.String("nft_factory", cfg.Contracts.NFTFactory),
	)

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Workers:      cfg.Worker.WorkerPoolSize,
	}

	// Create and start server
	srv := server.New(serverConfig, nameResolver, aggregator, assetResolver, listingPipeline)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
