package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/lotscout/hibid-scanner/internal/api"
	"github.com/lotscout/hibid-scanner/internal/auction"
	"github.com/lotscout/hibid-scanner/internal/config"
	"github.com/lotscout/hibid-scanner/internal/database"
	"github.com/lotscout/hibid-scanner/internal/fetch"
	"github.com/lotscout/hibid-scanner/internal/logging"
	"github.com/lotscout/hibid-scanner/internal/models"
	"github.com/lotscout/hibid-scanner/internal/pipeline"
	"github.com/lotscout/hibid-scanner/internal/pricing"
	"github.com/lotscout/hibid-scanner/internal/ratelimit"
	"github.com/lotscout/hibid-scanner/internal/report"
	"github.com/lotscout/hibid-scanner/internal/scan"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting HiBid scanner")

	baseURL, err := promptBaseURL(os.Stdin)
	if err != nil {
		logger.Error("No auction URL provided", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	session := models.NewSession(baseURL)
	logger.Info("Scan session created", "run_id", session.RunID, "url", baseURL)

	client := fetch.NewClient(cfg.Scraper, logger)

	var ebay pricing.Source = pricing.NewEbaySource(client, logger)
	var yahoo pricing.Source = pricing.NewYahooSource(client, logger)

	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, quote cache disabled", "error", err)
		} else {
			logger.Info("Quote cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.QuoteTTL)
			ebay = pricing.NewCachedSource(ebay, redisClient, cfg.Redis.QuoteTTL, logger)
			yahoo = pricing.NewCachedSource(yahoo, redisClient, cfg.Redis.QuoteTTL, logger)
		}
	}

	enricher := pricing.NewEnricher(ebay, yahoo, logger)
	pacer := ratelimit.NewFixedPacer(cfg.Scraper.Pacing)
	scheduler := pipeline.NewScheduler(enricher, pacer, cfg.Scraper.Workers, logger)

	var writer report.Writer
	switch cfg.Output.Format {
	case "csv":
		writer = report.NewCSVWriter()
	default:
		writer = report.NewExcelWriter()
	}
	assembler := report.NewAssembler(writer, cfg.Output.SnapshotPages, logger)

	var sink scan.RecordSink
	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		store := database.NewRunStore(db, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to prepare database schema", "error", err)
			os.Exit(1)
		}
		sink = store
	}

	var progress scan.ProgressTracker
	if cfg.Status.Enabled() {
		tracker := &api.Tracker{}
		progress = tracker

		statusServer := api.NewServer(cfg.Status.Addr, session, assembler, tracker, logger)
		statusServer.Start()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Status.ShutdownTimeout)
			defer shutdownCancel()
			statusServer.Shutdown(shutdownCtx)
		}()
	}

	walker := auction.NewWalker(client, logger)
	runner := scan.NewRunner(walker, scheduler, assembler, sink, progress, cfg.Output.Dir, writer.Ext(), logger)

	path, result, err := runner.Run(ctx, session)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Scan interrupted", "pages", result.Pages, "report", path)
		} else {
			logger.Error("Scan failed", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("Scan complete",
		"pages", result.Pages,
		"items", assembler.Len(),
		"reason", result.Reason,
		"report", path,
	)
}

// promptBaseURL reads the auction listing URL from one interactive prompt.
func promptBaseURL(r io.Reader) (string, error) {
	fmt.Print("Enter Auction URL: ")

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read auction url: %w", err)
	}

	url := strings.TrimSpace(line)
	if url == "" {
		return "", fmt.Errorf("auction url is required")
	}

	return url, nil
}
