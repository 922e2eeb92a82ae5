// Package validate checks raw form input typed by the operator.
package validate

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a trimmed decimal number with an optional sign.
// Empty input, hex literals, underscores and non-finite values are rejected.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	// ParseFloat also understands hex floats and digit separators; form input does not.
	if strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsNumeric reports whether raw is a finite decimal number after trimming.
func IsNumeric(raw string) bool {
	_, ok := ParseNumber(raw)
	return ok
}
