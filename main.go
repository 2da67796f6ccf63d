package main

import (
	"context"
	"os"

	"listing-triage/config"
	"listing-triage/gemini"
	"listing-triage/models"
	"listing-triage/pipeline"
	"listing-triage/services"
	"listing-triage/storage"
	"listing-triage/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Listing Triage Pipeline starting ===")

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	logger.Info("Config — keys: %d | models: %d | rpm/key: %d | delay: %v | max rows: %d",
		len(cfg.APIKeys), len(cfg.VisionModels), cfg.RPMPerKey, cfg.Delay(), cfg.MaxToProcess)

	rawListings, err := storage.ReadListings(cfg.InputCSV)
	if err != nil {
		logger.Error("Failed to read input CSV: %v", err)
		os.Exit(1)
	}

	cleaner := services.NewCleaner(logger)
	listings := cleaner.Clean(rawListings)

	if len(listings) == 0 {
		logger.Error("No usable listings in %s. Exiting.", cfg.InputCSV)
		os.Exit(1)
	}

	results, err := storage.NewResultWriter(cfg.OutputCSV, logger)
	if err != nil {
		logger.Error("Failed to open result sink: %v", err)
		os.Exit(1)
	}
	defer results.Close()

	driver, err := pipeline.NewDriver(cfg, logger, gemini.NewInvoker(), results)
	if err != nil {
		logger.Error("Failed to build pipeline driver: %v", err)
		os.Exit(1)
	}

	processed, err := driver.Run(context.Background(), listings)
	if err != nil {
		logger.Error("Pipeline run failed after %d rows: %v", processed, err)
		os.Exit(1)
	}

	evals, err := storage.ReadEvaluations(cfg.OutputCSV)
	if err != nil {
		logger.Error("Failed to read results for the report: %v", err)
		os.Exit(1)
	}

	if cfg.PostgresEnabled {
		evals = syncPostgres(cfg, logger, evals)
	}

	triage := services.NewTriageService(logger)
	triage.Print(triage.Generate(evals, listings))

	logger.Info("Done. Processed %d listings this run — results → %s (%d total)",
		processed, cfg.OutputCSV, results.Processed())
}

// syncPostgres mirrors the CSV results into PostgreSQL and, when that
// works, reads the full accumulated set back so the report covers every
// run, not just this one's output file.
func syncPostgres(cfg *config.Config, logger *utils.Logger, evals []*models.Evaluation) []*models.Evaluation {
	pg, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		return evals
	}
	defer pg.Close()

	if err := pg.Write(evals); err != nil {
		logger.Error("PostgreSQL sync failed: %v", err)
		return evals
	}
	logger.Info("Results mirrored to PostgreSQL (table: evaluations)")

	var fetcher storage.EvaluationFetcher = pg
	stored, err := fetcher.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch evaluations from DB: %v", err)
		return evals
	}
	return stored
}
