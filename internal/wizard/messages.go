package wizard

import "reflow_predictor/internal/models"

// Message is a window transition handled by the orchestrator.
type Message interface {
	message()
}

// OpenStage1 opens a fresh, unseeded board parameters window and closes the process window.
type OpenStage1 struct{}

// OpenStage2 opens the process parameters window seeded with Board and closes the board window.
type OpenStage2 struct {
	Board models.BoardRecord
}

// OpenPresenter renders Outcome in the prediction window. The process window stays open.
type OpenPresenter struct {
	Outcome models.Outcome
}

func (OpenStage1) message()    {}
func (OpenStage2) message()    {}
func (OpenPresenter) message() {}
