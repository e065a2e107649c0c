package eventlog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/metrics"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// Service writes the market audit trail
type Service interface {
	// Subscribe registers the audit handlers on the bus
	Subscribe(bus event.Bus)

	// History returns audited events newest first
	History(ctx context.Context, filter repository.EventLogFilter) ([]repository.EventLogEntry, error)

	// CleanupOldEvents removes events older than retention period
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo repository.EventLog
}

// NewService creates a new event logging service
func NewService(repo repository.EventLog) Service {
	return &service{repo: repo}
}

// AuditedTypes lists the event types written to the audit log
var AuditedTypes = []event.Type{
	event.TradeSettled,
	event.ListingCreated,
	event.ListingCanceled,
}

func (s *service) Subscribe(bus event.Bus) {
	for _, eventType := range AuditedTypes {
		bus.Subscribe(eventType, metrics.CountErrors(s.handleEvent))
	}
}

func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	switch evt.Type {
	case event.TradeSettled:
		p, err := event.DecodePayload[event.TradeSettledPayloadV1](evt.Payload)
		if err != nil {
			log.Warn(LogMsgPayloadDecodeFailed, LogFieldType, evt.Type, LogFieldError, err)
			return nil
		}
		payload, err := toMap(p.Settlement)
		if err != nil {
			return err
		}
		buyer := p.Settlement.BuyerID.String()
		seller := p.Settlement.SellerID.String()

		// One entry per side so either character's history shows the trade.
		return errors.Join(
			s.write(ctx, evt, &buyer, payload, RoleBuyer, seller),
			s.write(ctx, evt, &seller, payload, RoleSeller, buyer),
		)

	case event.ListingCreated, event.ListingCanceled:
		p, err := event.DecodePayload[event.ListingPayloadV1](evt.Payload)
		if err != nil {
			log.Warn(LogMsgPayloadDecodeFailed, LogFieldType, evt.Type, LogFieldError, err)
			return nil
		}
		payload, err := toMap(p.Listing)
		if err != nil {
			return err
		}
		seller := p.Listing.SellerCharacterID.String()
		return s.write(ctx, evt, &seller, payload, RoleSeller, "")
	}
	return nil
}

func (s *service) write(ctx context.Context, evt event.Event, characterID *string, payload map[string]interface{}, role, counterpart string) error {
	log := logger.FromContext(ctx)

	metadata := map[string]interface{}{
		MetaKeySchemaVersion: evt.Version,
		MetaKeyRole:          role,
	}
	if counterpart != "" {
		metadata[MetaKeyCounterpart] = counterpart
	}
	for k, v := range evt.Metadata {
		metadata[k] = v
	}

	if err := s.repo.LogEvent(ctx, string(evt.Type), characterID, payload, metadata); err != nil {
		log.Error(LogMsgFailedToLogEvent, LogFieldError, err, LogFieldType, evt.Type)
		return err
	}

	log.Debug(LogMsgEventLogged, LogFieldType, evt.Type, LogFieldCharacterID, *characterID)
	return nil
}

func (s *service) History(ctx context.Context, filter repository.EventLogFilter) ([]repository.EventLogEntry, error) {
	return s.repo.GetEvents(ctx, filter)
}

func (s *service) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOldEvents(ctx, retentionDays)
}

func toMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
