package health

import "fmt"

type Kind string

const (
	KindShopee Kind = "shopee"
	KindTikTok Kind = "tiktok"
)

// Criterion is the pass/fail rule and presentation of one metric.
type Criterion struct {
	Metric         string
	Source         string   // upstream field name when it differs from Metric
	Aliases        []string // extra overviewMetrics keys accepted for this metric
	Label          string
	Threshold      float64
	HigherIsBetter bool
	Percent        bool
	Sum            bool
	Column         bool // shown as a table column, otherwise only as a card
}

// MetricSet is the field set and criteria of one platform kind.
type MetricSet struct {
	Kind     Kind
	Criteria []Criterion
}

var shopeeCriteria = []Criterion{
	{Metric: "non_fulfillment_rate", Aliases: []string{"nonFulfillRate"}, Label: "Non-Fulfillment Rate", Threshold: 2.0, Percent: true, Column: true},
	{Metric: "late_shipment_rate", Label: "Late Shipment Rate", Threshold: 1.0, Percent: true, Column: true},
	{Metric: "preparation_time", Label: "Preparation Time", Threshold: 1.0, Column: true},
	{Metric: "fast_handover_rate", Label: "Fast Handover Rate", Threshold: 95, HigherIsBetter: true, Percent: true, Column: true},
	{Metric: "response_rate", Aliases: []string{"response_Rate"}, Label: "Response Rate", Threshold: 98, HigherIsBetter: true, Percent: true, Column: true},
	{Metric: "average_response_time", Label: "Avg Response Time", Threshold: 2.0, Column: true},
	{Metric: "shop_rating", Label: "Shop Rating", Threshold: 4.7, HigherIsBetter: true, Column: true},
	{Metric: "penalty_points", Aliases: []string{"penalty"}, Label: "Penalty Points", Threshold: 0, Sum: true, Column: true},
	{Metric: "on_time_rate", Source: "on_Time_Rate", Label: "On-Time Rate", Threshold: 95, HigherIsBetter: true, Percent: true},
	{Metric: "low_rated_orders", Source: "low_Rated_Orders", Label: "Low Rated Orders", Threshold: 1, Sum: true},
}

var tiktokCriteria = []Criterion{
	{Metric: "shop_violations", Label: "Shop Violations", Threshold: 0, Sum: true, Column: true},
	{Metric: "product_violations", Label: "Product Violations", Threshold: 0, Sum: true, Column: true},
	{Metric: "late_dispatch_rate", Label: "Late Dispatch Rate", Threshold: 4.0, Percent: true, Column: true},
	{Metric: "response_rate", Label: "Response Rate", Threshold: 85, HigherIsBetter: true, Percent: true, Column: true},
	{Metric: "negative_review_rate", Label: "Negative Review Rate", Threshold: 0.5, Percent: true, Column: true},
	{Metric: "defective_order_return", Label: "Defective Order Return", Threshold: 1.5, Percent: true, Column: true},
	{Metric: "store_ratings", Label: "Store Ratings", Threshold: 4.5, HigherIsBetter: true, Column: true},
}

func MetricSetFor(kind Kind) (MetricSet, error) {
	switch kind {
	case KindShopee:
		return MetricSet{Kind: kind, Criteria: shopeeCriteria}, nil
	case KindTikTok:
		return MetricSet{Kind: kind, Criteria: tiktokCriteria}, nil
	default:
		return MetricSet{}, fmt.Errorf("unknown platform kind %q", kind)
	}
}

// Columns returns the criteria rendered as table columns, in display order.
func (m MetricSet) Columns() []Criterion {
	cols := make([]Criterion, 0, len(m.Criteria))
	for _, c := range m.Criteria {
		if c.Column {
			cols = append(cols, c)
		}
	}
	return cols
}

// ColumnCount includes the shop name column.
func (m MetricSet) ColumnCount() int {
	return len(m.Columns()) + 1
}

func (m MetricSet) Criterion(metric string) (Criterion, bool) {
	for _, c := range m.Criteria {
		if c.Metric == metric {
			return c, true
		}
	}
	return Criterion{}, false
}

func (c Criterion) sourceField() string {
	if c.Source != "" {
		return c.Source
	}
	return c.Metric
}

// overviewKeys lists the envelope keys tried for an upstream overview value,
// most specific first.
func (c Criterion) overviewKeys() []string {
	keys := []string{c.Metric, c.sourceField(), camelCase(c.Metric)}
	return append(keys, c.Aliases...)
}
