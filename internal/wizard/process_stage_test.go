package wizard

import (
	"testing"

	"reflow_predictor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProcessInput() ProcessInput {
	return ProcessInput{
		T1: "110", T2: "130", T3: "150", T4: "165", T5: "175",
		T6: "185", T7: "200", T8: "235", T9: "245", T10: "240",
		ConveyorSpeed: "800",
	}
}

func testBoard() models.BoardRecord {
	return models.BoardRecord{Length: 100, Width: 50, Thickness: 1.6, Layers: 4, CuOuter: 35, CuInner: 18, SolderPasteType: models.PasteKoki}
}

func TestProcessStage_SubmitBeforeSeed(t *testing.T) {
	s := NewProcessStage()
	select {
	case <-s.Ready():
		t.Fatal("stage must not be ready before the seed")
	default:
	}

	_, err := s.Submit(validProcessInput())
	var missing *MissingDataError
	require.ErrorAs(t, err, &missing)
}

func TestProcessStage_SeedOnce(t *testing.T) {
	s := NewProcessStage()
	assert.True(t, s.Seed(testBoard()))
	<-s.Ready()

	other := testBoard()
	other.Layers = 8
	assert.False(t, s.Seed(other))
	b, ok := s.Board()
	require.True(t, ok)
	assert.Equal(t, 4, b.Layers)
}

func TestProcessStage_SubmitMerges(t *testing.T) {
	s := NewProcessStage()
	s.Seed(testBoard())

	req, err := s.Submit(validProcessInput())
	require.NoError(t, err)
	assert.Equal(t, models.PasteKoki, req.SolderPasteType)
	assert.Equal(t, 4, req.Layers)
	assert.Equal(t, 110.0, req.T1)
	assert.Equal(t, 240.0, req.T10)
	assert.Equal(t, 800.0, req.ConveyorSpeed)
}

func TestProcessStage_FirstInvalidReading(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*ProcessInput)
		wantField string
		wantLabel string
	}{
		{"t1", func(in *ProcessInput) { in.T1 = "" }, "t1", "T1"},
		{"t4 before t7", func(in *ProcessInput) { in.T4 = "hot"; in.T7 = "x" }, "t4", "T4"},
		{"t10", func(in *ProcessInput) { in.T10 = "Infinity" }, "t10", "T10"},
		{"conveyor", func(in *ProcessInput) { in.ConveyorSpeed = "fast" }, FieldConveyorSpeed, "Conveyor Speed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewProcessStage()
			s.Seed(testBoard())
			in := validProcessInput()
			tc.mutate(&in)

			req, err := s.Submit(in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantField, verr.Field)
			assert.Equal(t, tc.wantLabel, verr.Label)
			assert.Equal(t, models.PredictionRequest{}, req)
		})
	}
}
