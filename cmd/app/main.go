package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nvallee/cityforge/internal/catalog"
	"github.com/nvallee/cityforge/internal/config"
	"github.com/nvallee/cityforge/internal/construction"
	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/handler"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/progression"
	"github.com/nvallee/cityforge/internal/region"
	"github.com/nvallee/cityforge/internal/scheduler"
	"github.com/nvallee/cityforge/internal/server"
	"github.com/nvallee/cityforge/internal/store"
	"github.com/nvallee/cityforge/internal/tasklist"
	"github.com/nvallee/cityforge/internal/unlock"
	"github.com/nvallee/cityforge/internal/worker"
)

const (
	workerCount     = 4
	workerQueueSize = 64
	shutdownTimeout = 10 * time.Second
)

// staticDiscount is a DiscountProvider backed by configuration. In the full
// game the premium state would come from the player's account.
type staticDiscount struct {
	active     bool
	multiplier float64
}

func (d staticDiscount) HasConstructionDiscount() bool { return d.active }
func (d staticDiscount) DiscountMultiplier() float64   { return d.multiplier }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})

	slog.Info("Starting cityforge",
		"environment", cfg.Environment,
		"version", cfg.Version,
		"store_backend", cfg.StoreBackend,
		"port", cfg.Port)

	ctx := context.Background()

	// Persistence
	var (
		kv     store.KV
		pinger handler.Pinger
	)
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		pg, err := store.NewPostgres(ctx, cfg.GetDBConnString())
		if err != nil {
			slog.Error("Failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		kv = pg
		pinger = pg
	default:
		kv = store.NewMemory()
	}

	// Game data
	catalogs, err := catalog.LoadAreas(cfg.AreaCatalogPath)
	if err != nil {
		slog.Error("Failed to load area catalog", "path", cfg.AreaCatalogPath, "error", err)
		os.Exit(1)
	}
	questPool, err := catalog.LoadQuestPool(cfg.QuestPoolPath)
	if err != nil {
		slog.Error("Failed to load quest pool", "path", cfg.QuestPoolPath, "error", err)
		os.Exit(1)
	}

	// Event system
	bus := event.NewMemoryBus()
	publisher := event.NewResilientPublisher(bus, event.ResilientConfig{
		MaxRetries:     cfg.EventMaxRetries,
		RetryDelay:     cfg.EventRetryDelay,
		DeadLetterPath: cfg.EventDeadLetterPath,
	})

	// Services
	progressionService := progression.NewService(kv, publisher, progression.Config{
		XPBase:       cfg.XPBase,
		XPMultiplier: cfg.XPMultiplier,
	})
	assigner := unlock.NewAssigner(kv, unlock.Config{
		MaxLevel:        cfg.MaxUnlockLevel,
		MinMinutes:      cfg.MinBuildMinutes,
		MaxMinutes:      cfg.MaxBuildMinutes,
		FallbackMinutes: cfg.FallbackBuildMinutes,
	})
	regionService := region.NewService(kv, publisher, assigner, catalogs, region.Config{
		BuildingThreshold: cfg.RegionBuildingThreshold,
	})
	taskList := tasklist.NewMemory()
	discount := staticDiscount{active: cfg.DiscountActive, multiplier: cfg.DiscountMultiplier}
	constructionService := construction.NewService(kv, publisher, questPool, taskList, discount)

	// Level-up fan-out: buildings unlock and regions open off the same event.
	unlock.NewEventHandler(assigner, publisher).Register(bus)
	region.NewEventHandler(regionService).Register(bus)

	// Construction ticks run on the shared worker pool.
	pool := worker.NewPool(workerCount, workerQueueSize)
	pool.Start()
	sched := scheduler.New(pool)
	sched.Schedule(cfg.TickInterval, construction.NewTickJob(constructionService))

	srv := server.NewServer(cfg.Port, server.Deps{
		Progression:  progressionService,
		Assigner:     assigner,
		Region:       regionService,
		Construction: constructionService,
		TaskList:     taskList,
		Pinger:       pinger,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Block until shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server forced shutdown", "error", err)
	}
	sched.Stop()
	pool.Stop()
	kv.Flush()

	slog.Info("Server stopped")
}
