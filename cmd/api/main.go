package main

import (
	"context"
	"errors"
	"flag"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/casa-acolhe/records-service/internal/config"
	"github.com/casa-acolhe/records-service/internal/db"
	"github.com/casa-acolhe/records-service/internal/document"
	"github.com/casa-acolhe/records-service/internal/http"
	"github.com/casa-acolhe/records-service/internal/messaging"
	"github.com/casa-acolhe/records-service/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	log.Println("records-service starting")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry degrades gracefully when no collector is reachable.
	otelProvider, err := telemetry.InitProvider(ctx, telemetry.LoadConfig())
	if err != nil {
		log.Printf("Warning: telemetry initialization failed: %v", err)
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			otelProvider.Shutdown(shutdownCtx)
		}()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Warning: failed to initialize custom metrics: %v", err)
	}

	database, err := db.Connect(cfg.Database.Path, cfg.Database.BusyTimeout,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()
	log.Printf("✓ Database ready at %s", cfg.Database.Path)

	store, err := document.NewStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}
	log.Printf("✓ Upload directory ready at %s", cfg.Uploads.Dir)

	// The publisher is optional: a nil publisher disables event
	// publishing without affecting request handling.
	var publisher messaging.EventPublisher
	if p, err := messaging.NewPublisher(); err != nil {
		log.Printf("Warning: RabbitMQ unavailable, events disabled: %v", err)
	} else {
		publisher = p
		defer p.Close()
	}

	router := http.SetupRouter(database, store, publisher, metrics, cfg)

	server := &stdhttp.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("records-service listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	} else {
		log.Println("✓ Server shut down gracefully")
	}
}
