package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version  string                 `json:"version"`
	Type     Type                   `json:"type"`
	Payload  interface{}            `json:"payload"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Market event types
const (
	TradeSettled    Type = "trade.settled"
	ListingCreated  Type = "listing.created"
	ListingCanceled Type = "listing.cancelled"
)

// TradeSettledPayloadV1 carries one settlement and the sessions that should hear about it
type TradeSettledPayloadV1 struct {
	Settlement      domain.TradeSettlement `json:"settlement"`
	BuyerSessionID  *uuid.UUID             `json:"buyer_session_id,omitempty"`
	SellerSessionID *uuid.UUID             `json:"seller_session_id,omitempty"`
}

// ListingPayloadV1 describes a listing that was created or cancelled
type ListingPayloadV1 struct {
	Listing   domain.MarketListing `json:"listing"`
	SessionID *uuid.UUID           `json:"session_id,omitempty"`
}

// NewTradeSettledEvent creates a trade settlement event
func NewTradeSettledEvent(s domain.TradeSettlement, buyerSession, sellerSession *uuid.UUID) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    TradeSettled,
		Payload: TradeSettledPayloadV1{
			Settlement:      s,
			BuyerSessionID:  buyerSession,
			SellerSessionID: sellerSession,
		},
	}
}

// NewListingEvent creates a listing lifecycle event
func NewListingEvent(eventType Type, listing domain.MarketListing, sessionID *uuid.UUID) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: ListingPayloadV1{Listing: listing, SessionID: sessionID},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish runs every subscriber synchronously and joins their errors
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
