package models

// ZoneCount is the number of oven zone temperature readings (T1..T10).
const ZoneCount = 10

// ProcessReadings holds the oven zone temperatures and the conveyor speed.
type ProcessReadings struct {
	Temps         [ZoneCount]float64 `json:"temps"`         // °C, T1..T10
	ConveyorSpeed float64            `json:"conveyorSpeed"` // mm/min
}

// PredictionRequest is the flat body sent to the predictor.
type PredictionRequest struct {
	Length          float64 `json:"length"`
	Width           float64 `json:"width"`
	Thickness       float64 `json:"thickness"`
	Layers          int     `json:"layers"`
	CuOuter         float64 `json:"cuOuter"`
	CuInner         float64 `json:"cuInner"`
	SolderPasteType string  `json:"solderPasteType"`
	T1              float64 `json:"t1"`
	T2              float64 `json:"t2"`
	T3              float64 `json:"t3"`
	T4              float64 `json:"t4"`
	T5              float64 `json:"t5"`
	T6              float64 `json:"t6"`
	T7              float64 `json:"t7"`
	T8              float64 `json:"t8"`
	T9              float64 `json:"t9"`
	T10             float64 `json:"t10"`
	ConveyorSpeed   float64 `json:"conveyorSpeed"`
}

// NewPredictionRequest merges the board record with the process readings.
func NewPredictionRequest(b BoardRecord, p ProcessReadings) PredictionRequest {
	t := p.Temps
	return PredictionRequest{
		Length:          b.Length,
		Width:           b.Width,
		Thickness:       b.Thickness,
		Layers:          b.Layers,
		CuOuter:         b.CuOuter,
		CuInner:         b.CuInner,
		SolderPasteType: b.SolderPasteType,
		T1:              t[0],
		T2:              t[1],
		T3:              t[2],
		T4:              t[3],
		T5:              t[4],
		T6:              t[5],
		T7:              t[6],
		T8:              t[7],
		T9:              t[8],
		T10:             t[9],
		ConveyorSpeed:   p.ConveyorSpeed,
	}
}
