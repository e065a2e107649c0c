package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

type gameEventRepository struct {
	db *pgxpool.Pool
}

// NewGameEventRepository creates the per-session event sink storage
func NewGameEventRepository(db *pgxpool.Pool) repository.GameEvents {
	return &gameEventRepository{db: db}
}

// Append bumps the session head row and inserts the event under the new revision.
// The head row lock serializes concurrent appends for one session.
func (r *gameEventRepository) Append(ctx context.Context, sessionID uuid.UUID, eventType domain.GameEventType, payload []byte) (domain.GameEvent, error) {
	ev := domain.GameEvent{SessionID: sessionID, Type: eventType, Payload: payload}
	if len(payload) == 0 {
		ev.Payload = []byte("null")
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO game_event_heads (session_id, revision) VALUES ($1, 1)
			ON CONFLICT (session_id) DO UPDATE SET revision = game_event_heads.revision + 1
			RETURNING revision`, sessionID).Scan(&ev.Revision); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO game_events (session_id, revision, type, payload)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at`, sessionID, ev.Revision, string(eventType), []byte(ev.Payload)).Scan(&ev.CreatedAt)
	})
	if err != nil {
		return domain.GameEvent{}, fmt.Errorf("failed to append game event: %w", err)
	}
	return ev, nil
}

func (r *gameEventRepository) EventsAbove(ctx context.Context, sessionID uuid.UUID, revision int64, limit int) ([]domain.GameEvent, error) {
	query := `
		SELECT session_id, revision, type, payload, created_at
		FROM game_events
		WHERE session_id = $1 AND revision > $2
		ORDER BY revision ASC`
	args := []any{sessionID, revision}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.GameEvent
	for rows.Next() {
		var ev domain.GameEvent
		var eventType string
		var payload []byte
		if err := rows.Scan(&ev.SessionID, &ev.Revision, &eventType, &payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Type = domain.GameEventType(eventType)
		ev.Payload = payload
		events = append(events, ev)
	}
	return events, rows.Err()
}
