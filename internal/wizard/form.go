package wizard

import (
	"fmt"

	"reflow_predictor/internal/models"
)

// SubmitAction is what confirming the last field of a form triggers.
const SubmitAction = "submit"

// Field is one input of a stage form.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Form is an ordered list of fields. Confirming a field moves focus to the next one.
type Form struct {
	fields []Field
}

// Fields returns a copy of the fields in focus order.
func (f Form) Fields() []Field {
	return append([]Field(nil), f.fields...)
}

// Next returns the key to focus after confirming key, or SubmitAction after the last field.
// It has no side effects.
func (f Form) Next(key string) (string, error) {
	for i, fld := range f.fields {
		if fld.Key != key {
			continue
		}
		if i == len(f.fields)-1 {
			return SubmitAction, nil
		}
		return f.fields[i+1].Key, nil
	}
	return "", fmt.Errorf("unknown field %q", key)
}

func (f Form) field(key string) Field {
	for _, fld := range f.fields {
		if fld.Key == key {
			return fld
		}
	}
	return Field{Key: key, Label: key}
}

// FieldView is a field with its focus successor, as served to the UI.
type FieldView struct {
	Field
	Next string `json:"next"`
}

// View lists the fields with their successors.
func (f Form) View() []FieldView {
	out := make([]FieldView, 0, len(f.fields))
	for _, fld := range f.fields {
		next, _ := f.Next(fld.Key)
		out = append(out, FieldView{Field: fld, Next: next})
	}
	return out
}

// Board form field keys.
const (
	FieldLength     = "length"
	FieldWidth      = "width"
	FieldThickness  = "thickness"
	FieldLayers     = "layers"
	FieldCuOuter    = "cuOuter"
	FieldCuInner    = "cuInner"
	FieldSolderType = "solderPasteType"

	FieldConveyorSpeed = "conveyorSpeed"
)

// BoardForm is the stage 1 form.
var BoardForm = Form{fields: []Field{
	{FieldLength, "Length"},
	{FieldWidth, "Width"},
	{FieldThickness, "Thickness"},
	{FieldLayers, "Layers"},
	{FieldCuOuter, "Cu Thickness (Outer)"},
	{FieldCuInner, "Cu Thickness (Inner)"},
	{FieldSolderType, "Solder Paste Type"},
}}

// ProcessForm is the stage 2 form: T1..T10 then conveyor speed.
var ProcessForm = func() Form {
	fields := make([]Field, 0, models.ZoneCount+1)
	for i := 1; i <= models.ZoneCount; i++ {
		fields = append(fields, Field{Key: TempKey(i), Label: fmt.Sprintf("T%d", i)})
	}
	fields = append(fields, Field{FieldConveyorSpeed, "Conveyor Speed"})
	return Form{fields: fields}
}()

// TempKey returns the form key of zone i (1-based).
func TempKey(i int) string { return fmt.Sprintf("t%d", i) }
