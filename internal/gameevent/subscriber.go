package gameevent

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/metrics"
)

// Subscribe routes market events from the bus into the sessions they concern
func (s *Sink) Subscribe(bus event.Bus) {
	bus.Subscribe(event.TradeSettled, metrics.CountErrors(s.handleTradeSettled))
	bus.Subscribe(event.ListingCreated, metrics.CountErrors(s.handleListing(domain.GameEventListingCreated)))
	bus.Subscribe(event.ListingCanceled, metrics.CountErrors(s.handleListing(domain.GameEventListingClosed)))
	logger.Info(LogMsgSinkSubscribed)
}

func (s *Sink) handleTradeSettled(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[event.TradeSettledPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgDecodeFailed, "event_type", evt.Type, "error", err)
		return nil
	}

	var errs []error
	for _, sessionID := range distinct(p.BuyerSessionID, p.SellerSessionID) {
		if _, err := s.Append(ctx, sessionID, domain.GameEventTradeSettled, p.Settlement); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sink) handleListing(eventType domain.GameEventType) event.Handler {
	return func(ctx context.Context, evt event.Event) error {
		p, err := event.DecodePayload[event.ListingPayloadV1](evt.Payload)
		if err != nil {
			logger.FromContext(ctx).Warn(LogMsgDecodeFailed, "event_type", evt.Type, "error", err)
			return nil
		}
		if p.SessionID == nil {
			logger.FromContext(ctx).Debug(LogMsgNoSession, "listing_id", p.Listing.ID)
			return nil
		}
		_, err = s.Append(ctx, *p.SessionID, eventType, p.Listing)
		return err
	}
}

// distinct drops nil and duplicate sessions, so one session trading with
// itself through two characters hears about the fill once
func distinct(ids ...*uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == *id {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, *id)
		}
	}
	return out
}
