package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shaiso/funckabots/internal/events"
)

const eventLogSchema = `
	CREATE TABLE IF NOT EXISTS funcka_events (
		id          BIGSERIAL PRIMARY KEY,
		queue       TEXT        NOT NULL,
		variant     TEXT        NOT NULL,
		summary     TEXT        NOT NULL,
		attachments JSONB       NOT NULL,
		received_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// EventRecord — запись журнала событий.
type EventRecord struct {
	ID          int64
	Queue       string
	Variant     string
	Summary     string
	Attachments map[string]any
	ReceivedAt  time.Time
}

// EventLog — журнал полученных событий.
type EventLog struct {
	db TxBeginner
}

// NewEventLog создаёт новый EventLog.
func NewEventLog(db TxBeginner) *EventLog {
	return &EventLog{db: db}
}

// EnsureSchema создаёт таблицу журнала, если её нет.
func (l *EventLog) EnsureSchema(ctx context.Context) error {
	return WithTx(ctx, l.db, "event_log_schema", func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, eventLogSchema); err != nil {
			return fmt.Errorf("create funcka_events: %w", err)
		}
		return nil
	})
}

// Record записывает событие, полученное из очереди queue.
func (l *EventLog) Record(ctx context.Context, queue string, ev events.Event) error {
	attachmentsJSON, err := json.Marshal(ev.AsMap())
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}

	return WithTx(ctx, l.db, "event_log_record", func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO funcka_events (queue, variant, summary, attachments)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.Exec(ctx, query, queue, ev.Name(), ev.String(), attachmentsJSON); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		return nil
	})
}

// Recent возвращает последние limit записей журнала, новые первыми.
func (l *EventLog) Recent(ctx context.Context, limit int) ([]EventRecord, error) {
	return Script(ctx, l.db, "event_log_recent", false, func(ctx context.Context, tx pgx.Tx) ([]EventRecord, error) {
		query := `
			SELECT id, queue, variant, summary, attachments, received_at
			FROM funcka_events
			ORDER BY id DESC
			LIMIT $1
		`
		rows, err := tx.Query(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		defer rows.Close()

		var records []EventRecord
		for rows.Next() {
			var rec EventRecord
			var attachmentsJSON []byte
			if err := rows.Scan(
				&rec.ID,
				&rec.Queue,
				&rec.Variant,
				&rec.Summary,
				&attachmentsJSON,
				&rec.ReceivedAt,
			); err != nil {
				return nil, fmt.Errorf("scan event: %w", err)
			}
			if err := json.Unmarshal(attachmentsJSON, &rec.Attachments); err != nil {
				return nil, fmt.Errorf("unmarshal attachments: %w", err)
			}
			records = append(records, rec)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate events: %w", err)
		}
		return records, nil
	})
}
