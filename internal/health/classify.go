package health

import (
	"math"
	"strconv"
)

type Class string

const (
	ClassGood    Class = "good"
	ClassBad     Class = "bad"
	ClassUnknown Class = "unknown"
)

// CSS returns the class name the templates colour a value with.
func (c Class) CSS() string {
	switch c {
	case ClassGood:
		return "text-success"
	case ClassBad:
		return "text-danger"
	default:
		return "text-muted"
	}
}

// Classify compares a value against its criterion. The threshold itself passes.
func Classify(value float64, present bool, c Criterion) Class {
	if !present || math.IsNaN(value) {
		return ClassUnknown
	}
	if c.HigherIsBetter {
		if value >= c.Threshold {
			return ClassGood
		}
		return ClassBad
	}
	if value <= c.Threshold {
		return ClassGood
	}
	return ClassBad
}

// FormatValue renders a metric for display: "N/A" when missing, integers
// bare, everything else with one decimal.
func FormatValue(value float64, present bool, percent bool) string {
	if !present || math.IsNaN(value) {
		return "N/A"
	}
	if percent {
		return strconv.FormatFloat(value, 'f', 1, 64) + "%"
	}
	if value == math.Trunc(value) && !math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', 0, 64)
	}
	return strconv.FormatFloat(value, 'f', 1, 64)
}
