package main

import (
	"flag"
	"os"

	"ica-price-tracker/config"
	"ica-price-tracker/ingest"
	"ica-price-tracker/scraper/ica"
	"ica-price-tracker/search"
	"ica-price-tracker/server"
	"ica-price-tracker/services"
	"ica-price-tracker/storage"
	"ica-price-tracker/utils"
)

func main() {
	scrapeMode := flag.Bool("scrape", false, "fetch today's snapshot from the store API and exit")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug)

	logger.Info("=== Grocery price tracker starting ===")
	logger.Info("Config — data root: %s | cache: %s | concurrency: %d",
		cfg.DataRoot, cfg.CachePath, cfg.MaxConcurrency)

	if *scrapeMode {
		scraper := ica.New(cfg, logger)
		if err := scraper.Scrape(); err != nil {
			logger.Error("Scrape failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Scrape done. Delete %s before restarting the server to pick up the new snapshot.", cfg.CachePath)
		return
	}

	cache := storage.NewCache(cfg.CachePath, logger)
	snapshots, cached, err := cache.Load()
	if err != nil {
		logger.Error("Snapshot cache is unreadable: %v", err)
		os.Exit(1)
	}

	if cached {
		logger.Info("Loaded %d snapshots from cache — skipping ingestion", len(snapshots))
	} else {
		reader := ingest.NewReader(cfg, logger)
		snapshots, err = reader.Load()
		if err != nil {
			logger.Error("Ingestion failed: %v", err)
			os.Exit(1)
		}
		if err := cache.Save(snapshots); err != nil {
			logger.Warn("Could not write snapshot cache: %v", err)
		}
	}

	transposer := services.NewTransposer(logger)
	index := search.NewIndex(transposer.Transpose(snapshots))

	srv := server.New(cfg, logger, index)
	if err := srv.Listen(); err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
