package metrics

import (
	"context"

	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/logger"
)

// EventMetricsCollector subscribes to market events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to every market event type
func (e *EventMetricsCollector) Register(bus event.Bus) {
	for _, eventType := range []event.Type{event.TradeSettled, event.ListingCreated, event.ListingCanceled} {
		bus.Subscribe(eventType, e.HandleEvent)
	}
}

// HandleEvent updates counters for a single event. Payload problems are logged, never returned.
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.TradeSettled:
		p, err := event.DecodePayload[event.TradeSettledPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgUnexpectedPayload, "type", evt.Type, "error", err)
			return nil
		}
		UnitsTraded.WithLabelValues(p.Settlement.ItemID).Add(float64(p.Settlement.Amount))
		CoinsTraded.Add(float64(p.Settlement.Cost))

	case event.ListingCreated:
		p, err := event.DecodePayload[event.ListingPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgUnexpectedPayload, "type", evt.Type, "error", err)
			return nil
		}
		ListingsCreated.WithLabelValues(p.Listing.ItemID).Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

// CountErrors wraps a bus handler so every error it returns is counted per event type
func CountErrors(h event.Handler) event.Handler {
	return func(ctx context.Context, evt event.Event) error {
		err := h(ctx, evt)
		if err != nil {
			EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		}
		return err
	}
}
