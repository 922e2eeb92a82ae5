package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"reflow_predictor/internal/models"

	"github.com/google/uuid"
)

const (
	insertEventSQL = `
		INSERT INTO wizard_events (id, session_id, operator_id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	selectEventsSQL = `SELECT id, session_id, operator_id, occurred_at, type, message, meta FROM wizard_events`
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

// Append inserts a new event. If EventID or OccurredAt are empty, they're set.
func (r *EventSQLite) Append(ctx context.Context, e models.WizardEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	var sessionPtr *string
	if e.SessionID != "" {
		sessionPtr = &e.SessionID
	}

	// events outside a signed-in request carry no operator
	var operatorPtr *int
	if e.OperatorID > 0 {
		operatorPtr = &e.OperatorID
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		sessionPtr,
		operatorPtr,
		e.OccurredAt,
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		metaPtr,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive), type, session and operator, ordered ASC.
func (r *EventSQLite) List(ctx context.Context, q EventQuery) ([]models.WizardEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !q.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, q.From.UTC())
	}
	if !q.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, q.To.UTC())
	}
	if typ := strings.ToUpper(strings.TrimSpace(q.Type)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if sid := strings.TrimSpace(q.SessionID); sid != "" {
		conds = append(conds, "session_id = ?")
		args = append(args, sid)
	}
	if q.OperatorID > 0 {
		conds = append(conds, "operator_id = ?")
		args = append(args, q.OperatorID)
	}

	query := selectEventsSQL
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurred_at ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.WizardEvent, 0, 64)
	for rows.Next() {
		var (
			ev         models.WizardEvent
			sessionStr sql.NullString
			operator   sql.NullInt64
			metaStr    sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &sessionStr, &operator, &ev.OccurredAt, &ev.Type, &ev.Description, &metaStr); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.SessionID = sessionStr.String
		ev.OperatorID = int(operator.Int64)

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
