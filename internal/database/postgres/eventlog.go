package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StreamRealm_Go/internal/repository"
)

type eventLogRepository struct {
	db *pgxpool.Pool
}

// NewEventLogRepository creates a new PostgreSQL event log repository
func NewEventLogRepository(db *pgxpool.Pool) repository.EventLog {
	return &eventLogRepository{db: db}
}

func (r *eventLogRepository) LogEvent(ctx context.Context, eventType string, characterID *string, payload, metadata map[string]interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var metadataJSON []byte
	if metadata != nil {
		if metadataJSON, err = json.Marshal(metadata); err != nil {
			return err
		}
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO events (event_type, character_id, payload, metadata)
		VALUES ($1, $2, $3, $4)`, eventType, characterID, payloadJSON, metadataJSON)
	return err
}

// GetEvents builds the WHERE clause from whichever filter fields are set
func (r *eventLogRepository) GetEvents(ctx context.Context, filter repository.EventLogFilter) ([]repository.EventLogEntry, error) {
	var qb strings.Builder
	qb.WriteString(`
		SELECT id, event_type, character_id, payload, metadata, created_at
		FROM events
		WHERE 1=1`)

	var args []interface{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		fmt.Fprintf(&qb, clause, len(args))
	}
	if filter.CharacterID != nil {
		add(" AND character_id = $%d", *filter.CharacterID)
	}
	if filter.EventType != nil {
		add(" AND event_type = $%d", *filter.EventType)
	}
	if filter.Since != nil {
		add(" AND created_at >= $%d", *filter.Since)
	}
	if filter.Until != nil {
		add(" AND created_at <= $%d", *filter.Until)
	}
	qb.WriteString(" ORDER BY created_at DESC, id DESC")
	if filter.Limit > 0 {
		add(" LIMIT $%d", filter.Limit)
	}

	rows, err := r.db.Query(ctx, qb.String(), args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventLogRepository) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM events
		WHERE created_at < NOW() - INTERVAL '1 day' * $1`, retentionDays)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanEvents(rows pgx.Rows) ([]repository.EventLogEntry, error) {
	defer rows.Close()
	var events []repository.EventLogEntry
	for rows.Next() {
		var evt repository.EventLogEntry
		var payloadJSON, metadataJSON []byte
		if err := rows.Scan(&evt.ID, &evt.EventType, &evt.CharacterID, &payloadJSON, &metadataJSON, &evt.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payloadJSON, &evt.Payload); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &evt.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}
