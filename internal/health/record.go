package health

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidResponse = errors.New("invalid response shape")

// PerformanceRecord is one shop's metrics for one day. Values holds only the
// metrics the upstream supplied as numbers; zero is a present value.
type PerformanceRecord struct {
	ShopName string             `json:"shop_name"`
	Date     string             `json:"date,omitempty"`
	Values   map[string]float64 `json:"values"`
}

func (r PerformanceRecord) Value(metric string) (float64, bool) {
	v, ok := r.Values[metric]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Snapshot is one parsed upstream response.
type Snapshot struct {
	Records  []PerformanceRecord
	DateData map[string]any
	// Overview is set only when the upstream supplied overviewMetrics.
	Overview Overview
}

// ParseSnapshot accepts either a bare array of records or an envelope with
// performanceData, dateData and overviewMetrics.
func ParseSnapshot(body []byte, set MetricSet) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var snap Snapshot
	switch v := raw.(type) {
	case []any:
		records, err := parseRecords(v, set)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Records = records
	case map[string]any:
		if items, ok := v["performanceData"]; ok && items != nil {
			list, ok := items.([]any)
			if !ok {
				return Snapshot{}, fmt.Errorf("%w: performanceData is not a list", ErrInvalidResponse)
			}
			records, err := parseRecords(list, set)
			if err != nil {
				return Snapshot{}, err
			}
			snap.Records = records
		}
		if dd, ok := v["dateData"].(map[string]any); ok {
			snap.DateData = dd
		}
		if om, ok := v["overviewMetrics"].(map[string]any); ok && len(om) > 0 {
			snap.Overview = parseOverview(om, set)
		}
	default:
		return Snapshot{}, fmt.Errorf("%w: expected array or object", ErrInvalidResponse)
	}
	return snap, nil
}

func parseRecords(items []any, set MetricSet) ([]PerformanceRecord, error) {
	records := make([]PerformanceRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrInvalidResponse, i)
		}
		rec := PerformanceRecord{Values: make(map[string]float64, len(set.Criteria))}
		if s, ok := obj["shop_name"].(string); ok {
			rec.ShopName = strings.TrimSpace(s)
		}
		if s, ok := obj["date"].(string); ok {
			rec.Date = s
		}
		for _, c := range set.Criteria {
			raw, ok := obj[c.sourceField()]
			if !ok {
				raw, ok = obj[c.Metric]
			}
			if !ok {
				continue
			}
			if f, ok := toNumber(raw); ok {
				rec.Values[c.Metric] = f
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseOverview(obj map[string]any, set MetricSet) Overview {
	out := make(Overview, len(set.Criteria))
	for _, c := range set.Criteria {
		for _, key := range c.overviewKeys() {
			if raw, ok := obj[key]; ok {
				if f, ok := toNumber(raw); ok {
					out[c.Metric] = f
				}
				break
			}
		}
	}
	return out
}

// toNumber reports whether raw is a usable number. Numeric strings with a
// trailing percent sign are accepted.
func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(v), "%")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func camelCase(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
