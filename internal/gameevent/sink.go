// Package gameevent is the per-session event sink. Every appended event gets
// the next revision of its session and is pushed to a Notifier so streaming
// clients see it without polling.
package gameevent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// Notifier receives events after they are stored
type Notifier interface {
	Notify(ev domain.GameEvent)
}

// Sink stores game events and notifies listeners
type Sink struct {
	repo     repository.GameEvents
	notifier Notifier
}

// NewSink wraps repo. notifier may be nil.
func NewSink(repo repository.GameEvents, notifier Notifier) *Sink {
	return &Sink{repo: repo, notifier: notifier}
}

// Append marshals payload and stores it as the session's next event
func (s *Sink) Append(ctx context.Context, sessionID uuid.UUID, eventType domain.GameEventType, payload interface{}) (domain.GameEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return domain.GameEvent{}, fmt.Errorf(ErrMsgMarshalPayload, err)
	}
	ev, err := s.repo.Append(ctx, sessionID, eventType, data)
	if err != nil {
		return domain.GameEvent{}, fmt.Errorf(ErrMsgAppendFailed, err)
	}
	logger.FromContext(ctx).Debug(LogMsgEventAppended, "session_id", sessionID, "type", eventType, "revision", ev.Revision)
	if s.notifier != nil {
		s.notifier.Notify(ev)
	}
	return ev, nil
}

// EventsAbove returns the session's events newer than revision, oldest first
func (s *Sink) EventsAbove(ctx context.Context, sessionID uuid.UUID, revision int64, limit int) ([]domain.GameEvent, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	events, err := s.repo.EventsAbove(ctx, sessionID, revision, limit)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadFailed, err)
	}
	if events == nil {
		events = []domain.GameEvent{}
	}
	return events, nil
}
