package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"liquid_handler/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const (
	insertEventSQL = `INSERT INTO pump_events (id, occurred_at, pump, type, message, meta) VALUES (?, ?, ?, ?, ?, ?)`
	selectEventSQL = `SELECT id, occurred_at, pump, type, message, meta FROM pump_events`
)

// Append inserts a new event. If EventID or OccurredAt are empty, they’re set.
// occurred_at is stored as Unix milliseconds so range filters compare integers.
func (r *EventSQLite) Append(ctx context.Context, e models.PumpEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	// marshal metadata if present
	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.UnixMilli(),
		strings.ToLower(strings.TrimSpace(e.Pump)),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		metaPtr,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive), pump and type, ordered ASC.
func (r *EventSQLite) List(ctx context.Context, f EventFilter) ([]models.PumpEvent, error) {
	q, args := buildListQuery(f)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PumpEvent, 0, 64)
	for rows.Next() {
		var (
			ev      models.PumpEvent
			atMilli int64
			metaStr sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &atMilli, &ev.Pump, &ev.Type, &ev.Description, &metaStr); err != nil {
			return nil, err
		}
		ev.OccurredAt = time.UnixMilli(atMilli).UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func buildListQuery(f EventFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, f.From.UnixMilli())
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, f.To.UnixMilli())
	}
	if pump := strings.ToLower(strings.TrimSpace(f.Pump)); pump != "" {
		conds = append(conds, "pump = ?")
		args = append(args, pump)
	}
	if typ := strings.ToUpper(strings.TrimSpace(f.Type)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := selectEventSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	// events in the same millisecond keep insertion order
	q += " ORDER BY occurred_at ASC, rowid ASC"
	return q, args
}
