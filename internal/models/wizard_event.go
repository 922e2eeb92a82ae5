package models

import "time"

// Wizard journal event types.
const (
	EventSessionStart     = "SESSION_START"
	EventSessionEnd       = "SESSION_END"
	EventBoardAccepted    = "BOARD_ACCEPTED"
	EventValidationFailed = "VALIDATION_FAILED"
	EventPrediction       = "PREDICTION"
	EventPredictionFailed = "PREDICTION_FAILED"
	EventRenderAborted    = "RENDER_ABORTED"
	EventBack             = "BACK"
	EventWindowClosed     = "WINDOW_CLOSED"
	EventSpreadsheet      = "SPREADSHEET_OPENED"
	EventBackendStatus    = "BACKEND_STATUS"
)

// WizardEvent is a single journal entry.
type WizardEvent struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id,omitempty"`
	OperatorID  int       `json:"operator_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
