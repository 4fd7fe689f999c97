package report

import (
	"math"
	"strconv"
)

// Labels holds the fixed strings printed by the report.
type Labels struct {
	NotAvailable string
	FirstRecord  string
	Truncated    string
	Continued    string
}

// DefaultLabels returns the English label set.
func DefaultLabels() Labels {
	return Labels{
		NotAvailable: "N/A",
		FirstRecord:  "not comparable — first record",
		Truncated:    "content truncated",
		Continued:    "(cont.)",
	}
}

// Delta arrows.
const (
	ArrowUp   = "↑"
	ArrowDown = "↓"
	ArrowFlat = "→"
)

const deltaEpsilon = 1e-9

func present(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Delta formats the change from previous to current as an arrow followed
// by the signed difference at the given precision, plus the unit when one
// is set. Either side missing yields NotAvailable.
func (l Labels) Delta(current, previous *float64, decimals int, unit string) string {
	if !present(current) || !present(previous) {
		return l.NotAvailable
	}
	d := *current - *previous
	arrow := ArrowDown
	switch {
	case math.Abs(d) < deltaEpsilon:
		arrow, d = ArrowFlat, 0
	case d > 0:
		arrow = ArrowUp
	}
	s := arrow + " " + signed(d, decimals)
	if unit != "" {
		s += " " + unit
	}
	return s
}

func signed(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if v >= 0 {
		s = "+" + s
	}
	return s
}

// Value formats v to decimals with an optional unit suffix. The boolean is
// false when v is missing, in which case the string is NotAvailable.
func (l Labels) Value(v *float64, decimals int, unit string) (string, bool) {
	if !present(v) {
		return l.NotAvailable, false
	}
	s := strconv.FormatFloat(*v, 'f', decimals, 64)
	if unit != "" {
		s += " " + unit
	}
	return s, true
}
