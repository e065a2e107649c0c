package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/StreamRealm_Go/internal/bootstrap"
	"github.com/osse101/StreamRealm_Go/internal/concurrency"
	"github.com/osse101/StreamRealm_Go/internal/config"
	"github.com/osse101/StreamRealm_Go/internal/eventlog"
	"github.com/osse101/StreamRealm_Go/internal/gameevent"
	"github.com/osse101/StreamRealm_Go/internal/inventory"
	"github.com/osse101/StreamRealm_Go/internal/market"
	"github.com/osse101/StreamRealm_Go/internal/repository"
	"github.com/osse101/StreamRealm_Go/internal/scheduler"
	"github.com/osse101/StreamRealm_Go/internal/server"
	"github.com/osse101/StreamRealm_Go/internal/session"
	"github.com/osse101/StreamRealm_Go/internal/sse"
	"github.com/osse101/StreamRealm_Go/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("StreamRealm exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.InitializeStorage(ctx, cfg)
	if err != nil {
		return err
	}

	catalog, err := bootstrap.LoadCatalog(cfg)
	if err != nil {
		storage.Close()
		return err
	}

	bus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		storage.Close()
		return err
	}

	hub := sse.NewHub()
	sink := gameevent.NewSink(storage.GameEvents, hub)
	audit := eventlog.NewService(storage.EventLog)
	bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus:        bus,
		GameEvents:      sink,
		EventLogService: audit,
	})

	retry := repository.RetryPolicy{
		MaxAttempts: cfg.TradeMaxAttempts,
		BaseDelay:   cfg.TradeRetryDelay,
		MaxDelay:    repository.DefaultRetryPolicy.MaxDelay,
	}
	guard := session.NewGuard()
	locks := concurrency.NewLockManager()
	validator := inventory.NewValidator(storage.Store, catalog, inventory.NewReporter(storage.EventLog))

	svcs := server.Services{
		Sessions:  session.NewRegistry(storage.Store, cfg.SessionCacheSize, cfg.SessionTTL),
		Inventory: inventory.NewService(storage.Store, catalog, guard, locks, validator, retry),
		Market:    market.NewService(storage.Store, catalog, guard, locks, validator, publisher, retry),
		Events:    sink,
		Hub:       hub,
		Audit:     audit,
	}
	// a typed nil pool would make readiness ping a nil pointer
	if storage.Pool != nil {
		svcs.DBPool = storage.Pool
	}

	pool := worker.NewPool(worker.DefaultWorkerCount, worker.DefaultQueueSize)
	pool.Start()
	jobs := scheduler.New(pool)
	if cfg.EventLogRetentionDays > 0 && cfg.EventLogCleanupEvery > 0 {
		jobs.Schedule(bootstrap.JobNameEventCleanup, cfg.EventLogCleanupEvery, eventlog.NewCleanupJob(audit, cfg.EventLogRetentionDays))
	}

	hub.Start()

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, svcs)
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:             srv,
		Scheduler:          jobs,
		WorkerPool:         pool,
		Hub:                hub,
		ResilientPublisher: publisher,
		Storage:            storage,
	})

	return runErr
}
