package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GameEventType identifies the payload of a game event
type GameEventType string

const (
	GameEventTradeSettled   GameEventType = "trade.settled"
	GameEventListingCreated GameEventType = "listing.created"
	GameEventListingClosed  GameEventType = "listing.cancelled"
)

// GameEvent is an entry in a session's event stream.
// Revision is strictly increasing per session.
type GameEvent struct {
	SessionID uuid.UUID       `json:"session_id"`
	Revision  int64           `json:"revision"`
	Type      GameEventType   `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
