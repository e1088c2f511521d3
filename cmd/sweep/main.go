package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/casa-acolhe/records-service/internal/client"
	"github.com/casa-acolhe/records-service/internal/config"
	"github.com/casa-acolhe/records-service/internal/db"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	log.Println("Orphan Episode Sweep Job - Starting")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.Connect(cfg.Database.Path, cfg.Database.BusyTimeout,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	repo := client.NewRepository(database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	removed, err := repo.SweepOrphanEpisodes(ctx)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	if removed == 0 {
		log.Println("No orphan episodes found. Exiting.")
		os.Exit(0)
	}

	log.Printf("✓ Sweep completed successfully: %d orphan episodes removed", removed)
	log.Println("Sweep Job - Finished")
}
