package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
)

// GameEvents is the per-session event sink storage
type GameEvents interface {
	// Append stores an event and assigns it the next revision of its session
	Append(ctx context.Context, sessionID uuid.UUID, eventType domain.GameEventType, payload []byte) (domain.GameEvent, error)
	// EventsAbove returns the session's events with revision > revision, oldest first
	EventsAbove(ctx context.Context, sessionID uuid.UUID, revision int64, limit int) ([]domain.GameEvent, error)
}
