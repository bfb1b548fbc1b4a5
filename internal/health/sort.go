package health

import (
	"slices"
	"strings"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortState struct {
	Column    string        `json:"column,omitempty"`
	Direction SortDirection `json:"direction,omitempty"`
}

// Toggle flips the direction when column is already sorted, otherwise starts
// ascending on column.
func (s SortState) Toggle(column string) SortState {
	if s.Column == column && s.Direction == SortAsc {
		return SortState{Column: column, Direction: SortDesc}
	}
	return SortState{Column: column, Direction: SortAsc}
}

func (s SortState) directionFor(column string) SortDirection {
	if s.Column == column {
		return s.Direction
	}
	return ""
}

// SortRecords returns a sorted copy. Metrics compare numerically when both
// sides are present; a missing value sorts before any present one.
func SortRecords(records []PerformanceRecord, s SortState) []PerformanceRecord {
	out := slices.Clone(records)
	if s.Column == "" {
		return out
	}
	slices.SortStableFunc(out, func(a, b PerformanceRecord) int {
		c := compareRecords(a, b, s.Column)
		if s.Direction == SortDesc {
			return -c
		}
		return c
	})
	return out
}

func compareRecords(a, b PerformanceRecord, column string) int {
	if column == ShopNameColumn {
		return strings.Compare(strings.ToLower(a.ShopName), strings.ToLower(b.ShopName))
	}
	av, aok := a.Value(column)
	bv, bok := b.Value(column)
	switch {
	case aok && bok:
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case aok:
		return 1
	case bok:
		return -1
	}
	return 0
}
