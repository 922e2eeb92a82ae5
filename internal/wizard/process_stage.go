package wizard

import (
	"sync"

	"reflow_predictor/internal/models"
	"reflow_predictor/internal/validate"
)

// ProcessInput is the raw text of the process parameters form.
type ProcessInput struct {
	T1            string `json:"t1"`
	T2            string `json:"t2"`
	T3            string `json:"t3"`
	T4            string `json:"t4"`
	T5            string `json:"t5"`
	T6            string `json:"t6"`
	T7            string `json:"t7"`
	T8            string `json:"t8"`
	T9            string `json:"t9"`
	T10           string `json:"t10"`
	ConveyorSpeed string `json:"conveyorSpeed"`
}

// Temps returns T1..T10 in zone order.
func (in ProcessInput) Temps() [models.ZoneCount]string {
	return [models.ZoneCount]string{in.T1, in.T2, in.T3, in.T4, in.T5, in.T6, in.T7, in.T8, in.T9, in.T10}
}

// ProcessStage collects oven readings. It starts without a board record;
// the record arrives later through Seed.
type ProcessStage struct {
	mu    sync.Mutex
	board *models.BoardRecord
	ready chan struct{}
}

// NewProcessStage returns an unseeded stage.
func NewProcessStage() *ProcessStage {
	return &ProcessStage{ready: make(chan struct{})}
}

// Seed delivers the board record. Only the first seed is kept.
func (s *ProcessStage) Seed(b models.BoardRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board != nil {
		return false
	}
	s.board = &b
	close(s.ready)
	return true
}

// Ready is closed once the board record has arrived.
func (s *ProcessStage) Ready() <-chan struct{} { return s.ready }

// Board returns the seeded record, if any.
func (s *ProcessStage) Board() (models.BoardRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return models.BoardRecord{}, false
	}
	return *s.board, true
}

// Submit validates T1..T10 then the conveyor speed and merges them with the board record.
func (s *ProcessStage) Submit(in ProcessInput) (models.PredictionRequest, error) {
	board, ok := s.Board()
	if !ok {
		return models.PredictionRequest{}, &MissingDataError{What: "board parameters not received yet"}
	}

	var readings models.ProcessReadings
	for i, raw := range in.Temps() {
		v, ok := validate.ParseNumber(raw)
		if !ok {
			return models.PredictionRequest{}, invalidNumber(ProcessForm.field(TempKey(i + 1)))
		}
		readings.Temps[i] = v
	}

	speed, ok := validate.ParseNumber(in.ConveyorSpeed)
	if !ok {
		return models.PredictionRequest{}, invalidNumber(ProcessForm.field(FieldConveyorSpeed))
	}
	readings.ConveyorSpeed = speed

	return models.NewPredictionRequest(board, readings), nil
}

// Back asks for a fresh board parameters window.
func (s *ProcessStage) Back() OpenStage1 { return OpenStage1{} }
