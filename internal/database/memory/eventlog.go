package memory

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// EventLog is an in-memory repository.EventLog
type EventLog struct {
	mu      sync.RWMutex
	entries []repository.EventLogEntry
	nextID  int64
}

// NewEventLog creates an empty EventLog
func NewEventLog() *EventLog {
	return &EventLog{}
}

var _ repository.EventLog = (*EventLog)(nil)

func (e *EventLog) LogEvent(ctx context.Context, eventType string, characterID *string, payload, metadata map[string]interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.entries = append(e.entries, repository.EventLogEntry{
		ID:          e.nextID,
		EventType:   eventType,
		CharacterID: characterID,
		Payload:     payload,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (e *EventLog) GetEvents(ctx context.Context, filter repository.EventLogFilter) ([]repository.EventLogEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []repository.EventLogEntry
	for i := len(e.entries) - 1; i >= 0; i-- {
		entry := e.entries[i]
		if filter.EventType != nil && entry.EventType != *filter.EventType {
			continue
		}
		if filter.CharacterID != nil && (entry.CharacterID == nil || *entry.CharacterID != *filter.CharacterID) {
			continue
		}
		if filter.Since != nil && entry.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && entry.CreatedAt.After(*filter.Until) {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (e *EventLog) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.entries[:0]
	var removed int64
	for _, entry := range e.entries {
		if entry.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	e.entries = kept
	return removed, nil
}
