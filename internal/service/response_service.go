package service

import (
	"time"

	"reflow_predictor/internal/wizard"
)

// LogFilter supports history filtering by time range, type and session.
type LogFilter struct {
	From       time.Time // inclusive; zero means no lower bound
	To         time.Time // inclusive; zero means no upper bound
	Type       string    // "", "SESSION_START", "BOARD_ACCEPTED", "PREDICTION", ...
	SessionID  string
	OperatorID int // 0 means any operator
	Limit      int // 0 means unlimited
}

// SessionInfo is returned when a wizard session starts.
type SessionInfo struct {
	ID         string          `json:"id"`
	OperatorID int             `json:"operator_id"`
	StartedAt  time.Time       `json:"started_at"`
	Snapshot   wizard.Snapshot `json:"snapshot"`
}
