package repository

import (
	"context"
	"database/sql"
	"time"

	"reflow_predictor/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

// StatusRepo persists the single predictor backend status row.
type StatusRepo interface {
	Save(ctx context.Context, s models.BackendStatus) error
	Load(ctx context.Context) (models.BackendStatus, error)
}

// EventQuery filters the wizard journal. Zero values mean "no bound".
type EventQuery struct {
	From      time.Time
	To        time.Time
	Type      string
	SessionID string
	// OperatorID 0 means any operator.
	OperatorID int
	Limit      int
}

type EventRepo interface {
	Append(ctx context.Context, e models.WizardEvent) error
	List(ctx context.Context, q EventQuery) ([]models.WizardEvent, error)
}

type Repository struct {
	StatusRepo StatusRepo
	EventRepo  EventRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StatusRepo: NewStatusSQLite(db),
		EventRepo:  NewEventSQLite(db),
		Auth:       NewOperatorRepository(db),
	}
}
