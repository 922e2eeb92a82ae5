package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reflow_predictor/internal/models"
)

type StatusSQLite struct {
	db *sql.DB
}

func NewStatusSQLite(db *sql.DB) *StatusSQLite {
	return &StatusSQLite{db: db}
}

const (
	backendStatusRowID = 1

	upsertStatusSQL = `
		INSERT INTO backend_status (id, address, reachable, last_error, failures, checked_at, reachable_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			address=excluded.address,
			reachable=excluded.reachable,
			last_error=excluded.last_error,
			failures=excluded.failures,
			checked_at=excluded.checked_at,
			reachable_at=excluded.reachable_at
	`

	selectStatusSQL = `
		SELECT id, address, reachable, last_error, failures, checked_at, reachable_at
		FROM backend_status WHERE id=?
	`
)

// nullableTime stores zero times as NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// Save upserts the status row (id always 1). A zero CheckedAt is stamped with now.
func (r *StatusSQLite) Save(ctx context.Context, s models.BackendStatus) error {
	checked := s.CheckedAt
	if checked.IsZero() {
		checked = time.Now().UTC()
	} else {
		checked = checked.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertStatusSQL,
		backendStatusRowID,
		s.Address,
		s.Reachable,
		s.LastError,
		s.Failures,
		checked,
		nullableTime(s.ReachableAt),
	)
	return err
}

// Load fetches the status row. A missing row yields the zero value (ID 0).
func (r *StatusSQLite) Load(ctx context.Context) (models.BackendStatus, error) {
	row := r.db.QueryRowContext(ctx, selectStatusSQL, backendStatusRowID)

	var (
		s           models.BackendStatus
		lastErr     sql.NullString
		reachableAt sql.NullTime
	)
	if err := row.Scan(
		&s.ID,
		&s.Address,
		&s.Reachable,
		&lastErr,
		&s.Failures,
		&s.CheckedAt,
		&reachableAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BackendStatus{}, nil
		}
		return models.BackendStatus{}, err
	}

	s.LastError = lastErr.String
	s.CheckedAt = s.CheckedAt.UTC()
	if reachableAt.Valid {
		s.ReachableAt = reachableAt.Time.UTC()
	}
	return s, nil
}
