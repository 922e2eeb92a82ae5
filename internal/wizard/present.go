package wizard

import (
	"strconv"

	"reflow_predictor/internal/models"
	"reflow_predictor/internal/ranges"
)

// Presentation styles of a metric.
const (
	NotAvailable    = "N/A"
	StyleInRange    = "in-range"
	StyleOutOfRange = "out-of-range"
)

const displayDecimals = 3

// MetricView is one rendered metric. Present is false when the predictor did not return it.
type MetricView struct {
	Metric  models.Metric `json:"metric"`
	Label   string        `json:"label"`
	Value   string        `json:"value"`
	Present bool          `json:"present"`
	InRange bool          `json:"in_range"`
	Style   string        `json:"style,omitempty"`
	Range   ranges.Bound  `json:"range"`
}

// View is the rendered prediction window.
type View struct {
	SolderPasteType string       `json:"solderPasteType"`
	Metrics         []MetricView `json:"metrics"`
}

// Present renders a prediction against the range table. It has no side effects, so
// presenting the same result twice yields the same view.
func Present(tbl *ranges.Table, r *models.PredictionResult) (View, error) {
	if r == nil {
		return View{}, &MissingDataError{What: "no prediction received"}
	}
	if r.SolderPasteType == "" {
		return View{}, &MissingDataError{What: "solder paste type not received"}
	}
	entry, ok := tbl.Lookup(r.SolderPasteType)
	if !ok {
		return View{}, &MissingDataError{What: "no range entry for solder paste type " + strconv.Quote(r.SolderPasteType)}
	}

	view := View{SolderPasteType: r.SolderPasteType, Metrics: make([]MetricView, 0, len(models.Metrics()))}
	for _, m := range models.Metrics() {
		bound, _ := entry.Bound(m)
		mv := MetricView{Metric: m, Label: m.Label(), Value: NotAvailable, Range: bound}
		if v, ok := r.Value(m); ok {
			shown := strconv.FormatFloat(v, 'f', displayDecimals, 64)
			// compare what the operator sees, not the unrounded prediction
			rounded, _ := strconv.ParseFloat(shown, 64)
			mv.Value = shown
			mv.Present = true
			mv.InRange = bound.Contains(rounded)
			mv.Style = StyleOutOfRange
			if mv.InRange {
				mv.Style = StyleInRange
			}
		}
		view.Metrics = append(view.Metrics, mv)
	}
	return view, nil
}
