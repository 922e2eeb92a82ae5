package wizard

import (
	"testing"

	"reflow_predictor/internal/models"
	"reflow_predictor/internal/ranges"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(t *testing.T) *ranges.Table {
	t.Helper()
	tbl, err := ranges.Default()
	require.NoError(t, err)
	return tbl
}

func kokiResult(peak float64) *models.PredictionResult {
	return &models.PredictionResult{
		MaxRisingSlope:  models.Float(1.5),
		SoakTime:        models.Float(100),
		ReflowTime:      models.Float(50),
		PeakTemp:        models.Float(peak),
		SolderPasteType: models.PasteKoki,
	}
}

func metric(t *testing.T, v View, m models.Metric) MetricView {
	t.Helper()
	for _, mv := range v.Metrics {
		if mv.Metric == m {
			return mv
		}
	}
	t.Fatalf("metric %s not rendered", m)
	return MetricView{}
}

func TestPresent_InclusiveBounds(t *testing.T) {
	tbl := table(t)
	cases := []struct {
		peak    float64
		value   string
		inRange bool
	}{
		{230.000, "230.000", true},
		{250.000, "250.000", true},
		{229.999, "229.999", false},
		{250.0004, "250.000", true}, // compared after rounding to what is shown
		{229.9996, "230.000", true},
		{250.001, "250.001", false},
	}
	for _, tc := range cases {
		v, err := Present(tbl, kokiResult(tc.peak))
		require.NoError(t, err)
		mv := metric(t, v, models.MetricPeakTemp)
		assert.Equal(t, tc.value, mv.Value)
		assert.Equal(t, tc.inRange, mv.InRange, "peak %v", tc.peak)
		if tc.inRange {
			assert.Equal(t, StyleInRange, mv.Style)
		} else {
			assert.Equal(t, StyleOutOfRange, mv.Style)
		}
	}
}

func TestPresent_MissingMetricRendersNA(t *testing.T) {
	r := kokiResult(240)
	r.SoakTime = nil

	v, err := Present(table(t), r)
	require.NoError(t, err)
	soak := metric(t, v, models.MetricSoakTime)
	assert.Equal(t, NotAvailable, soak.Value)
	assert.False(t, soak.Present)
	assert.Empty(t, soak.Style)
	assert.Len(t, v.Metrics, 4)
}

func TestPresent_ZeroIsAValue(t *testing.T) {
	r := kokiResult(240)
	r.ReflowTime = models.Float(0)

	v, err := Present(table(t), r)
	require.NoError(t, err)
	reflow := metric(t, v, models.MetricReflowTime)
	assert.Equal(t, "0.000", reflow.Value)
	assert.True(t, reflow.Present)
	assert.Equal(t, StyleOutOfRange, reflow.Style)
}

func TestPresent_AbortsWithoutPartialView(t *testing.T) {
	tbl := table(t)
	unknown := kokiResult(240)
	unknown.SolderPasteType = "Generic"
	noType := kokiResult(240)
	noType.SolderPasteType = ""

	for name, r := range map[string]*models.PredictionResult{
		"nil result":    nil,
		"no paste type": noType,
		"unknown type":  unknown,
	} {
		t.Run(name, func(t *testing.T) {
			v, err := Present(tbl, r)
			var missing *MissingDataError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, View{}, v)
		})
	}
}

func TestPresent_Idempotent(t *testing.T) {
	tbl := table(t)
	r := kokiResult(241.23456)

	first, err := Present(tbl, r)
	require.NoError(t, err)
	second, err := Present(tbl, r)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second render differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, "241.235", metric(t, first, models.MetricPeakTemp).Value)
}

func TestPresent_QualitekRanges(t *testing.T) {
	r := &models.PredictionResult{
		MaxRisingSlope:  models.Float(0.5),
		SoakTime:        models.Float(125),
		ReflowTime:      models.Float(45),
		PeakTemp:        models.Float(256),
		SolderPasteType: models.PasteQualitek,
	}
	v, err := Present(table(t), r)
	require.NoError(t, err)

	want := map[models.Metric]bool{
		models.MetricMaxRisingSlope: false,
		models.MetricSoakTime:       true,
		models.MetricReflowTime:     true,
		models.MetricPeakTemp:       false,
	}
	for m, in := range want {
		assert.Equal(t, in, metric(t, v, m).InRange, string(m))
	}
}
