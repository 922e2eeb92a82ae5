package models

// Metric identifies one predicted reflow process metric.
type Metric string

const (
	MetricMaxRisingSlope Metric = "max_rising_slope"
	MetricSoakTime       Metric = "soak_time"
	MetricReflowTime     Metric = "reflow_time"
	MetricPeakTemp       Metric = "peak_temp"
)

// Metrics returns the predicted metrics in display order.
func Metrics() []Metric {
	return []Metric{MetricMaxRisingSlope, MetricSoakTime, MetricReflowTime, MetricPeakTemp}
}

// Label is the human-readable metric name.
func (m Metric) Label() string {
	switch m {
	case MetricMaxRisingSlope:
		return "Max Rising Slope"
	case MetricSoakTime:
		return "Soak Time"
	case MetricReflowTime:
		return "Reflow Time"
	case MetricPeakTemp:
		return "Peak Temp"
	default:
		return string(m)
	}
}

// PredictionResult is the predictor's answer. A nil metric was not returned;
// zero is a real value.
type PredictionResult struct {
	MaxRisingSlope  *float64 `json:"max_rising_slope,omitempty"` // °C/s
	SoakTime        *float64 `json:"soak_time,omitempty"`        // s
	ReflowTime      *float64 `json:"reflow_time,omitempty"`      // s
	PeakTemp        *float64 `json:"peak_temp,omitempty"`        // °C
	SolderPasteType string   `json:"solderPasteType,omitempty"`
}

// Value returns the metric value and whether it was present.
func (r PredictionResult) Value(m Metric) (float64, bool) {
	var p *float64
	switch m {
	case MetricMaxRisingSlope:
		p = r.MaxRisingSlope
	case MetricSoakTime:
		p = r.SoakTime
	case MetricReflowTime:
		p = r.ReflowTime
	case MetricPeakTemp:
		p = r.PeakTemp
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// HasAnyMetric reports whether at least one metric is present.
func (r PredictionResult) HasAnyMetric() bool {
	for _, m := range Metrics() {
		if _, ok := r.Value(m); ok {
			return true
		}
	}
	return false
}

// Outcome is what the presenter receives: the prediction plus the board it was made for.
type Outcome struct {
	Result PredictionResult `json:"result"`
	Board  BoardRecord      `json:"board"`
}

// NewOutcome carries the board's paste type into the result.
func NewOutcome(r PredictionResult, b BoardRecord) Outcome {
	r.SolderPasteType = b.SolderPasteType
	return Outcome{Result: r, Board: b}
}

// Float returns a pointer to v, for building results.
func Float(v float64) *float64 { return &v }
