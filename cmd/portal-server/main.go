// Package main runs the Portal MTG collection tracker server: REST API,
// WebSocket event stream, price lookup worker and optional import watcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/portalmtg/portal/internal/api"
	"github.com/portalmtg/portal/internal/collection"
	"github.com/portalmtg/portal/internal/config"
	"github.com/portalmtg/portal/internal/events"
	"github.com/portalmtg/portal/internal/importer"
	"github.com/portalmtg/portal/internal/importwatch"
	"github.com/portalmtg/portal/internal/pricing"
	"github.com/portalmtg/portal/internal/scryfall"
	"github.com/portalmtg/portal/internal/store"
)

var (
	port     = flag.Int("port", 0, "API server port (overrides config)")
	dbPath   = flag.String("db-path", "", "Database path (default: ~/.portal-mtg/portal.db)")
	watchDir = flag.String("watch-dir", "", "Import drop directory (overrides config)")
)

func main() {
	flag.Parse()

	fmt.Println("Portal MTG - Collection Tracker Server")
	fmt.Println("======================================")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *watchDir != "" {
		cfg.Watch.Enabled = true
		cfg.Watch.Dir = *watchDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Setup database path
	finalDBPath := cfg.Store.Path
	if finalDBPath == "" {
		finalDBPath, err = config.DataPath()
		if err != nil {
			log.Fatalf("Failed to resolve database path: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(finalDBPath), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	fmt.Printf("Database: %s\n", finalDBPath)

	// Open database
	dbConfig := store.DefaultConfig(finalDBPath)
	dbConfig.AutoMigrate = true
	db, err := store.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	st := store.NewStore(db)
	dispatcher := events.NewDispatcher()

	// Card catalog client
	chunkDelay, err := cfg.GetChunkDelay()
	if err != nil {
		log.Fatalf("Invalid chunk delay: %v", err)
	}
	catalog := scryfall.NewClient(scryfall.Options{
		BaseURL:    cfg.Catalog.BaseURL,
		ChunkDelay: chunkDelay,
	})

	// Price lookup worker
	queueDelay, err := cfg.GetQueueDelay()
	if err != nil {
		log.Fatalf("Invalid queue delay: %v", err)
	}
	cache := pricing.NewSessionCache()
	prices := pricing.NewService(cache, dispatcher, pricing.Options{
		RelayURL:   cfg.Pricing.RelayURL,
		SourceURL:  cfg.Pricing.SourceURL,
		QueueDelay: queueDelay,
		RateURL:    cfg.Pricing.RateURL,
	})
	go prices.Run()
	defer prices.Stop()

	// Collections
	manager := collection.NewManager(st, dispatcher)
	ctx := context.Background()
	if err := manager.Load(ctx); err != nil {
		log.Fatalf("Failed to load collections: %v", err)
	}

	importSvc := importer.NewService(catalog, nil)

	// API server
	server := api.NewServer(&api.Config{Port: cfg.API.Port}, &api.Services{
		Collections: manager,
		Importer:    importSvc,
		Pricing:     prices,
		Catalog:     catalog,
		Cache:       cache,
		Store:       st,
	})

	// Forward domain events to WebSocket clients
	dispatcher.Register(server.NewEventObserver())

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	// Optional import drop directory
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	if cfg.Watch.Enabled {
		watcher, err := importwatch.New(cfg.Watch.Dir, importSvc, manager, dispatcher)
		if err != nil {
			log.Fatalf("Failed to create import watcher: %v", err)
		}
		go func() {
			if err := watcher.Run(watchCtx); err != nil && err != context.Canceled {
				log.Printf("Import watcher stopped: %v", err)
			}
		}()
	}

	fmt.Println()
	fmt.Printf("Server running at http://localhost:%d\n", cfg.API.Port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")

	cancelWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	// Let in-flight collection syncs settle before the database closes.
	manager.Flush()

	fmt.Println("Server stopped.")
}
