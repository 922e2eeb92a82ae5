package wizard

import (
	"context"
	"time"

	"reflow_predictor/internal/models"
)

// Stage names a wizard window.
type Stage string

const (
	StageBoard      Stage = "board"
	StageProcess    Stage = "process"
	StagePrediction Stage = "prediction"
)

// Stages lists the stages in wizard order.
func Stages() []Stage { return []Stage{StageBoard, StageProcess, StagePrediction} }

// ParseStage validates a stage name.
func ParseStage(s string) (Stage, bool) {
	for _, st := range Stages() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// window is a live wizard surface. Only the orchestrator loop touches it.
type window struct {
	id       string
	stage    Stage
	openedAt time.Time
	ctx      context.Context
	cancel   context.CancelFunc

	board   *BoardStage
	process *ProcessStage
	pending bool
	outcome *models.Outcome
	view    *View
}

// WindowView is a read-only snapshot of a window.
type WindowView struct {
	ID         string              `json:"id"`
	Stage      Stage               `json:"stage"`
	OpenedAt   time.Time           `json:"opened_at"`
	Fields     []FieldView         `json:"fields,omitempty"`
	PasteTypes []string            `json:"paste_types,omitempty"`
	Ready      bool                `json:"ready"`
	Pending    bool                `json:"pending,omitempty"`
	Board      *models.BoardRecord `json:"board,omitempty"`
	Outcome    *models.Outcome     `json:"outcome,omitempty"`
	View       *View               `json:"view,omitempty"`
}

func (w *window) snapshot() WindowView {
	v := WindowView{ID: w.id, Stage: w.stage, OpenedAt: w.openedAt}
	switch w.stage {
	case StageBoard:
		v.Fields = BoardForm.View()
		v.PasteTypes = w.board.PasteTypes()
		v.Ready = true
	case StageProcess:
		v.Fields = ProcessForm.View()
		v.Pending = w.pending
		if b, ok := w.process.Board(); ok {
			v.Board = &b
			v.Ready = true
		}
	case StagePrediction:
		v.Outcome = w.outcome
		v.View = w.view
		v.Ready = w.view != nil
	}
	return v
}

// Snapshot lists the open windows in wizard order.
type Snapshot struct {
	Windows []WindowView `json:"windows"`
}

// Window returns the view of stage st, if open.
func (s Snapshot) Window(st Stage) (WindowView, bool) {
	for _, w := range s.Windows {
		if w.Stage == st {
			return w, true
		}
	}
	return WindowView{}, false
}
