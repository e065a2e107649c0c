package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/scheduler"
	"github.com/osse101/StreamRealm_Go/internal/server"
	"github.com/osse101/StreamRealm_Go/internal/sse"
	"github.com/osse101/StreamRealm_Go/internal/worker"
)

// ShutdownComponents holds everything that needs graceful shutdown
type ShutdownComponents struct {
	Server             *server.Server
	Scheduler          *scheduler.Scheduler
	WorkerPool         *worker.Pool
	Hub                *sse.Hub
	ResilientPublisher *event.ResilientPublisher
	Storage            *Storage
}

// GracefulShutdown stops components in dependency order:
// 1. HTTP server (no new requests)
// 2. Scheduler and worker pool (no new background jobs)
// 3. SSE hub (close streams)
// 4. Event publisher (dead-letter anything still pending)
// 5. Storage
//
// Errors are logged and do not stop the sequence.
func GracefulShutdown(ctx context.Context, c ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)
	if c.Server != nil {
		if err := c.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	slog.Info(LogMsgShuttingDownWorkers)
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.WorkerPool != nil {
		c.WorkerPool.Stop()
	}

	if c.Hub != nil {
		c.Hub.Stop()
	}

	slog.Info(LogMsgShuttingDownEventPublisher)
	if c.ResilientPublisher != nil {
		if err := c.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if c.Storage != nil {
		c.Storage.Close()
	}

	slog.Info(LogMsgServerStopped)
}
