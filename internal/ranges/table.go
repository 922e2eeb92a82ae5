// Package ranges holds the acceptable reflow metric bounds per solder paste type.
package ranges

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"reflow_predictor/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed ranges.yaml
var defaultTable []byte

var (
	ErrEmptyTable   = errors.New("range table is empty")
	ErrMissingEntry = errors.New("range table has no entry")
	ErrBadBounds    = errors.New("range bounds invalid")
)

// Bound is an inclusive [Min, Max] interval.
type Bound struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether Min <= v <= Max.
func (b Bound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Entry holds the four metric bounds of one paste type.
type Entry struct {
	MaxRisingSlope Bound `yaml:"max_rising_slope" json:"max_rising_slope"`
	SoakTime       Bound `yaml:"soak_time" json:"soak_time"`
	ReflowTime     Bound `yaml:"reflow_time" json:"reflow_time"`
	PeakTemp       Bound `yaml:"peak_temp" json:"peak_temp"`
}

// Bound returns the interval for metric m.
func (e Entry) Bound(m models.Metric) (Bound, bool) {
	switch m {
	case models.MetricMaxRisingSlope:
		return e.MaxRisingSlope, true
	case models.MetricSoakTime:
		return e.SoakTime, true
	case models.MetricReflowTime:
		return e.ReflowTime, true
	case models.MetricPeakTemp:
		return e.PeakTemp, true
	default:
		return Bound{}, false
	}
}

// rawEntry keeps pointers so a metric missing from the YAML is detectable.
type rawEntry struct {
	MaxRisingSlope *Bound `yaml:"max_rising_slope"`
	SoakTime       *Bound `yaml:"soak_time"`
	ReflowTime     *Bound `yaml:"reflow_time"`
	PeakTemp       *Bound `yaml:"peak_temp"`
}

// Table is an immutable paste type -> Entry mapping. Build it with Load or Default.
type Table struct {
	entries map[string]Entry
}

// Lookup returns the entry for a paste type.
func (t *Table) Lookup(pasteType string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[pasteType]
	return e, ok
}

// PasteTypes returns the table keys, sorted.
func (t *Table) PasteTypes() []string {
	out := make([]string, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load parses a YAML table and checks it against the offered paste types:
// every type needs an entry with all four metrics and Min <= Max.
func Load(data []byte, pasteTypes []string) (*Table, error) {
	var raw map[string]rawEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse range table: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyTable
	}

	entries := make(map[string]Entry, len(raw))
	for name, r := range raw {
		e, err := r.toEntry(name)
		if err != nil {
			return nil, err
		}
		entries[name] = e
	}
	for _, p := range pasteTypes {
		if _, ok := entries[p]; !ok {
			return nil, fmt.Errorf("%w for paste type %q", ErrMissingEntry, p)
		}
	}
	return &Table{entries: entries}, nil
}

// Default loads the embedded table checked against models.PasteTypes.
func Default() (*Table, error) {
	return Load(defaultTable, models.PasteTypes())
}

// MustDefault is Default for startup wiring; it panics on a broken table.
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

func (r rawEntry) toEntry(name string) (Entry, error) {
	fields := []struct {
		metric models.Metric
		b      *Bound
	}{
		{models.MetricMaxRisingSlope, r.MaxRisingSlope},
		{models.MetricSoakTime, r.SoakTime},
		{models.MetricReflowTime, r.ReflowTime},
		{models.MetricPeakTemp, r.PeakTemp},
	}
	for _, f := range fields {
		if f.b == nil {
			return Entry{}, fmt.Errorf("%w: %q lacks %s", ErrMissingEntry, name, f.metric)
		}
		if f.b.Min > f.b.Max {
			return Entry{}, fmt.Errorf("%w: %q %s min %.3f > max %.3f", ErrBadBounds, name, f.metric, f.b.Min, f.b.Max)
		}
	}
	return Entry{
		MaxRisingSlope: *r.MaxRisingSlope,
		SoakTime:       *r.SoakTime,
		ReflowTime:     *r.ReflowTime,
		PeakTemp:       *r.PeakTemp,
	}, nil
}
