package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// GameEvents is an in-memory repository.GameEvents
type GameEvents struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID][]domain.GameEvent
}

// NewGameEvents creates an empty event sink
func NewGameEvents() *GameEvents {
	return &GameEvents{sessions: make(map[uuid.UUID][]domain.GameEvent)}
}

var _ repository.GameEvents = (*GameEvents)(nil)

func (g *GameEvents) Append(ctx context.Context, sessionID uuid.UUID, eventType domain.GameEventType, payload []byte) (domain.GameEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	events := g.sessions[sessionID]
	ev := domain.GameEvent{
		SessionID: sessionID,
		Revision:  int64(len(events)) + 1,
		Type:      eventType,
		Payload:   append([]byte(nil), payload...),
		CreatedAt: time.Now(),
	}
	g.sessions[sessionID] = append(events, ev)
	return ev, nil
}

func (g *GameEvents) EventsAbove(ctx context.Context, sessionID uuid.UUID, revision int64, limit int) ([]domain.GameEvent, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	events := g.sessions[sessionID]
	if revision < 0 {
		revision = 0
	}
	if revision >= int64(len(events)) {
		return nil, nil
	}
	// Revisions are dense and 1-based, so revision N is at index N-1
	out := events[revision:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return append([]domain.GameEvent(nil), out...), nil
}
