package wizard

import (
	"math"
	"strings"

	"reflow_predictor/internal/models"
	"reflow_predictor/internal/validate"
)

// BoardInput is the raw text of the board parameters form.
type BoardInput struct {
	Length          string `json:"length"`
	Width           string `json:"width"`
	Thickness       string `json:"thickness"`
	Layers          string `json:"layers"`
	CuOuter         string `json:"cuOuter"`
	CuInner         string `json:"cuInner"`
	SolderPasteType string `json:"solderPasteType"`
}

// maxLayers is the largest layer count that fits an int on every platform.
const maxLayers = math.MaxInt32

// BoardStage collects board geometry and material parameters.
type BoardStage struct {
	pasteTypes []string
}

// NewBoardStage offers the given paste types for selection.
func NewBoardStage(pasteTypes []string) *BoardStage {
	return &BoardStage{pasteTypes: append([]string(nil), pasteTypes...)}
}

// PasteTypes returns the selectable paste types.
func (s *BoardStage) PasteTypes() []string {
	return append([]string(nil), s.pasteTypes...)
}

// Submit validates the fields in form order and stops at the first failure.
func (s *BoardStage) Submit(in BoardInput) (OpenStage2, error) {
	var rec models.BoardRecord
	var err error

	if rec.Length, err = positive(FieldLength, in.Length); err != nil {
		return OpenStage2{}, err
	}
	if rec.Width, err = positive(FieldWidth, in.Width); err != nil {
		return OpenStage2{}, err
	}
	if rec.Thickness, err = positive(FieldThickness, in.Thickness); err != nil {
		return OpenStage2{}, err
	}

	layers := BoardForm.field(FieldLayers)
	v, ok := validate.ParseNumber(in.Layers)
	if !ok {
		return OpenStage2{}, invalidNumber(layers)
	}
	// bounds are checked before the int conversion, which is undefined out of range
	if v < 1 {
		return OpenStage2{}, invalidField(layers, "must be at least 1")
	}
	if v > maxLayers {
		return OpenStage2{}, invalidField(layers, "must be at most %d", maxLayers)
	}
	rec.Layers = int(math.Trunc(v))

	if rec.CuOuter, err = nonNegative(FieldCuOuter, in.CuOuter); err != nil {
		return OpenStage2{}, err
	}
	if rec.CuInner, err = nonNegative(FieldCuInner, in.CuInner); err != nil {
		return OpenStage2{}, err
	}

	paste := BoardForm.field(FieldSolderType)
	rec.SolderPasteType = strings.TrimSpace(in.SolderPasteType)
	if rec.SolderPasteType == "" {
		return OpenStage2{}, &ValidationError{Field: paste.Key, Label: paste.Label, Message: "Please select a Solder Paste Type!"}
	}
	if !s.offers(rec.SolderPasteType) {
		return OpenStage2{}, invalidField(paste, "%q is not offered", rec.SolderPasteType)
	}

	return OpenStage2{Board: rec}, nil
}

func (s *BoardStage) offers(p string) bool {
	for _, t := range s.pasteTypes {
		if t == p {
			return true
		}
	}
	return false
}

func positive(key, raw string) (float64, error) {
	f := BoardForm.field(key)
	v, ok := validate.ParseNumber(raw)
	if !ok {
		return 0, invalidNumber(f)
	}
	if v <= 0 {
		return 0, invalidField(f, "must be greater than 0")
	}
	return v, nil
}

func nonNegative(key, raw string) (float64, error) {
	f := BoardForm.field(key)
	v, ok := validate.ParseNumber(raw)
	if !ok {
		return 0, invalidNumber(f)
	}
	if v < 0 {
		return 0, invalidField(f, "must not be negative")
	}
	return v, nil
}
