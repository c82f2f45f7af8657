// Package main is the entry point for the AtlasView engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlasview/engine/internal/api"
	"github.com/atlasview/engine/internal/cache"
	"github.com/atlasview/engine/internal/config"
	"github.com/atlasview/engine/internal/data/montage"
	"github.com/atlasview/engine/internal/data/positions"
	"github.com/atlasview/engine/internal/history"
	"github.com/atlasview/engine/internal/progress"
	"github.com/atlasview/engine/internal/render"
	"github.com/atlasview/engine/internal/scene"
	"github.com/atlasview/engine/internal/service"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/engine.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting AtlasView engine on port %d", cfg.Server.Port)

	ctx := context.Background()

	// Initialize cache manager (shared across all collections)
	cacheManager, err := cache.NewManager(cache.Config{
		TextureCacheSizeMB: cfg.Cache.TextureSizeMB,
		TextureTTL:         time.Duration(cfg.Cache.TextureTTLMinutes) * time.Minute,
		PreviewCacheSize:   cfg.Cache.PreviewEntries,
	})
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer cacheManager.Close()

	// Initialize preview renderer (shared across all collections)
	previewRenderer := render.NewPreviewRenderer(render.Config{
		PreviewSize:     cfg.Render.PreviewSize,
		DefaultColormap: cfg.Render.DefaultColormap,
	})

	// Initialize load-cycle history store
	historyStore, err := history.NewStore(cfg.History.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to initialize history store: %v", err)
	}
	defer historyStore.Close()
	log.Printf("History store: retention_days=%d, sqlite=%s",
		cfg.History.RetentionDays, cfg.History.SQLitePath)

	// Periodic history cleanup
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupDone:
				return
			case <-ticker.C:
				if n, err := historyStore.Cleanup(cfg.History.RetentionDays); err != nil {
					log.Printf("History cleanup failed: %v", err)
				} else if n > 0 {
					log.Printf("History cleanup removed %d entries", n)
				}
			}
		}
	}()
	defer close(cleanupDone)

	// Event hub for SSE progress streaming
	hub := api.NewEventHub()

	// Initialize collection registry
	collectionIDs := cfg.Collections.IDs()
	registry := api.NewCollectionRegistry(cfg.Collections.Default, collectionIDs, cfg.Server.Title)

	log.Printf("Initializing %d collection(s), default: %s", len(collectionIDs), cfg.Collections.Default)

	defaultMode, err := scene.ParseMode(cfg.Viz.DefaultMode)
	if err != nil {
		log.Fatalf("Invalid default mode %q: %v", cfg.Viz.DefaultMode, err)
	}

	// Initialize each collection
	for _, collectionID := range collectionIDs {
		cc := cfg.Collections.Collections[collectionID]

		dataset, err := positions.NewDataset(cc.MontageDir, cc.Datasets)
		if err != nil {
			log.Fatalf("Failed to initialize dataset for collection %q: %v", collectionID, err)
		}
		defer dataset.Close()

		probe := &montage.Probe{
			Dir:      cc.MontageDir,
			Template: cc.MontageTemplate,
			Policy: montage.StopPolicy{
				MaxFiles:    cfg.Viz.MaxMontageFiles,
				ExtraMisses: montage.DefaultStopPolicy().ExtraMisses,
			},
		}

		ctrl := service.NewController(service.ControllerConfig{
			Collection: collectionID,
			Grid: montage.Grid{
				TilesPerRow:    cc.TilesPerRow,
				TileRows:       cc.TileRows,
				TileResolution: cc.TileResolution,
			},
			Probe:          probe,
			Dataset:        dataset,
			Scene:          scene.NewManager(),
			Camera:         scene.NewCamera(),
			Tracker:        progress.NewTracker(),
			Notifier:       hub.NotifierFor(collectionID),
			DefaultMode:    defaultMode,
			DefaultSpacing: cfg.Viz.DefaultSpacing,
			SettleDelay:    time.Duration(cfg.Viz.SettleDelayMS) * time.Millisecond,
		})
		ctrl.OnCycleComplete = func(rec service.CycleRecord) {
			if err := historyStore.Record(history.Entry{
				Collection:   rec.Collection,
				Mode:         rec.Mode,
				MontageFiles: rec.MontageFiles,
				TilesPlaced:  rec.TilesPlaced,
				DurationMS:   rec.Duration.Milliseconds(),
				Status:       rec.Status,
				Error:        rec.Error,
			}); err != nil {
				log.Printf("  [%s] Failed to record load cycle: %v", rec.Collection, err)
			}
		}

		registry.Register(collectionID, ctrl)
		log.Printf("  [%s] Montage dir: %s (%dx%d tiles @ %dpx)",
			collectionID, cc.MontageDir, cc.TilesPerRow, cc.TileRows, cc.TileResolution)

		// Run the initial load cycle off the main goroutine so a slow or
		// missing montage directory does not delay startup.
		go func(id string, c *service.Controller) {
			if err := c.Start(ctx); err != nil {
				log.Printf("  [%s] Initial load cycle failed: %v", id, err)
			} else {
				log.Printf("  [%s] Ready: %d tiles in mode %s", id, c.Scene().Count(), c.Mode())
			}
		}(collectionID, ctrl)
	}

	// Set up HTTP router
	router := api.NewRouter(api.RouterConfig{
		Registry:    registry,
		CORSOrigins: cfg.Server.CORSOrigins,
		Cache:       cacheManager,
		Renderer:    previewRenderer,
		History:     historyStore,
		Events:      hub,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Engine listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down engine...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Engine stopped")
}
