package bootstrap

import (
	"log/slog"

	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/eventlog"
	"github.com/osse101/StreamRealm_Go/internal/gameevent"
	"github.com/osse101/StreamRealm_Go/internal/metrics"
)

// EventHandlerDependencies holds the subscribers wired onto the bus
type EventHandlerDependencies struct {
	EventBus        event.Bus
	GameEvents      *gameevent.Sink
	EventLogService eventlog.Service
}

// RegisterEventHandlers subscribes the metrics collector, the per-session
// game event sink and the audit log to the bus
func RegisterEventHandlers(deps EventHandlerDependencies) {
	metrics.NewEventMetricsCollector().Register(deps.EventBus)
	slog.Info(LogMsgMetricsCollectorRegistered)

	deps.GameEvents.Subscribe(deps.EventBus)
	slog.Info(LogMsgGameEventSinkInitialized)

	deps.EventLogService.Subscribe(deps.EventBus)
	slog.Info(LogMsgEventLoggerInitialized)
}
