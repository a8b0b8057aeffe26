package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"lease-scraper/config"
	"lease-scraper/scheduler"
	"lease-scraper/scraper/anwb"
	"lease-scraper/services"
	"lease-scraper/storage"
	"lease-scraper/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== ANWB Private Lease Scraper starting ===")
	logger.Info("Config — concurrency: %d | rate: %dms | page retries: %d | cycle retries: %d",
		cfg.MaxConcurrency, cfg.RateLimitMs, cfg.MaxRetries, cfg.SchedulerRetries)

	runner := &scheduler.Runner{
		MaxRetries: cfg.SchedulerRetries,
		RetryDelay: time.Duration(cfg.SchedulerRetryDelaySec) * time.Second,
		OutputDir:  cfg.OutputDir,
		LogPath:    cfg.SchedulerLogPath,
		Logger:     logger,
	}

	ok := runner.Run(func() (string, error) {
		return runCycle(cfg, logger)
	})
	if !ok {
		logger.Error("Scraper failed after %d attempts. Check %s and %s for details.",
			cfg.SchedulerRetries, cfg.SchedulerLogPath, cfg.OutputDir)
		os.Exit(1)
	}

	logger.Info("Scraper completed successfully. Output in %s", cfg.OutputDir)
}

// runCycle performs one crawl → normalize → validate → persist pass and
// returns the run summary recorded by the scheduler.
func runCycle(cfg *config.Config, logger *utils.Logger) (string, error) {
	crawler := anwb.New(cfg, logger)
	rawOffers, err := crawler.Scrape()
	if err != nil {
		return "", fmt.Errorf("crawl: %w", err)
	}
	if len(rawOffers) == 0 {
		return "", errors.New("no offers were scraped")
	}
	logger.Info("Scraped %d raw offers — normalizing...", len(rawOffers))

	pipeline := services.NewPipeline(logger)
	for _, raw := range rawOffers {
		// Ingest isolates and logs per-record failures; the run continues.
		pipeline.Ingest(raw)
	}
	accepted := pipeline.Accepted()
	logger.Info("Pipeline done — accepted %d, rejected %d, flagged %d",
		len(accepted), pipeline.Rejected(), pipeline.Flagged())

	jsonWriter, err := storage.NewJSONWriter(cfg.OutputDir, logger)
	if err != nil {
		return "", err
	}
	csvWriter, err := storage.NewCSVWriter(cfg.OutputDir, logger)
	if err != nil {
		return "", err
	}
	for _, w := range []storage.OfferWriter{jsonWriter, csvWriter} {
		if err := w.Write(accepted); err != nil {
			return "", fmt.Errorf("write output: %w", err)
		}
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(accepted))

	summary := fmt.Sprintf(
		"scraped=%d accepted=%d rejected=%d flagged=%d\njson=%s\ncsv=%s\n",
		len(rawOffers), len(accepted), pipeline.Rejected(), pipeline.Flagged(),
		jsonWriter.Path(), csvWriter.Path(),
	)
	return summary, nil
}
