package models

// Solder paste types offered on the board parameters stage.
const (
	PasteKoki     = "Koki S3X58-M406-3"
	PasteQualitek = "QUALITEK 6701 NC SnPb"
)

// PasteTypes lists the selectable solder paste types in display order.
// Every entry must have a matching range table row.
func PasteTypes() []string {
	return []string{PasteKoki, PasteQualitek}
}

// IsPasteType reports whether s is one of the offered solder paste types.
func IsPasteType(s string) bool {
	for _, p := range PasteTypes() {
		if p == s {
			return true
		}
	}
	return false
}

// BoardRecord holds the board geometry and material parameters of one wizard run.
type BoardRecord struct {
	Length          float64 `json:"length"`    // mm
	Width           float64 `json:"width"`     // mm
	Thickness       float64 `json:"thickness"` // mm
	Layers          int     `json:"layers"`
	CuOuter         float64 `json:"cuOuter"` // µm
	CuInner         float64 `json:"cuInner"` // µm
	SolderPasteType string  `json:"solderPasteType"`
}
