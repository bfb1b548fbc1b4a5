package health

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopee(t *testing.T) MetricSet {
	t.Helper()
	set, err := MetricSetFor(KindShopee)
	require.NoError(t, err)
	return set
}

func tiktok(t *testing.T) MetricSet {
	t.Helper()
	set, err := MetricSetFor(KindTikTok)
	require.NoError(t, err)
	return set
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil, shopee(t))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateSingleRecordEqualsRawValues(t *testing.T) {
	rec := PerformanceRecord{ShopName: "A", Values: map[string]float64{
		"response_rate":  97.5,
		"shop_rating":    4.8,
		"penalty_points": 2,
	}}
	got := Aggregate([]PerformanceRecord{rec}, shopee(t))
	assert.Equal(t, Overview{"response_rate": 97.5, "shop_rating": 4.8, "penalty_points": 2}, got)
}

func TestAggregateIdenticalRecords(t *testing.T) {
	rec := PerformanceRecord{Values: map[string]float64{
		"late_dispatch_rate": 3.5,
		"shop_violations":    2,
		"store_ratings":      4.6,
	}}
	records := []PerformanceRecord{rec, rec, rec, rec}
	got := Aggregate(records, tiktok(t))

	assert.InDelta(t, 3.5, got["late_dispatch_rate"], 1e-9)
	assert.InDelta(t, 4.6, got["store_ratings"], 1e-9)
	assert.InDelta(t, 8.0, got["shop_violations"], 1e-9)
}

func TestAggregateKeepsExplicitZero(t *testing.T) {
	records := []PerformanceRecord{{Values: map[string]float64{"response_rate": 0}}}
	got := Aggregate(records, shopee(t))

	v, ok := got.Value("response_rate")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
	_, ok = got.Value("shop_rating")
	assert.False(t, ok, "metric absent from every record must stay absent")
}

func TestAggregateMeanIgnoresMissing(t *testing.T) {
	records := []PerformanceRecord{
		{Values: map[string]float64{"shop_rating": 4.0}},
		{Values: map[string]float64{}},
		{Values: map[string]float64{"shop_rating": 5.0}},
	}
	got := Aggregate(records, shopee(t))
	assert.InDelta(t, 4.5, got["shop_rating"], 1e-9)
}

func TestClassify(t *testing.T) {
	higher := Criterion{Metric: "fast_handover_rate", Threshold: 95, HigherIsBetter: true}
	lower := Criterion{Metric: "late_shipment_rate", Threshold: 1.0}

	assert.Equal(t, ClassGood, Classify(95, true, higher))
	assert.Equal(t, ClassBad, Classify(94.999, true, higher))
	assert.Equal(t, ClassUnknown, Classify(0, false, higher))
	assert.Equal(t, ClassUnknown, Classify(math.NaN(), true, higher))

	assert.Equal(t, ClassGood, Classify(1.0, true, lower))
	assert.Equal(t, ClassBad, Classify(1.01, true, lower))
	assert.Equal(t, ClassGood, Classify(0, true, lower))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value   float64
		present bool
		percent bool
		want    string
	}{
		{0, false, false, "N/A"},
		{4, true, false, "4"},
		{4.76, true, false, "4.8"},
		{0, true, false, "0"},
		{97.26, true, true, "97.3%"},
		{100, true, true, "100.0%"},
		{-1.04, true, false, "-1.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.value, tt.present, tt.percent), "FormatValue(%v, %v, %v)", tt.value, tt.present, tt.percent)
	}
}

func TestClassCSS(t *testing.T) {
	assert.Equal(t, "text-success", ClassGood.CSS())
	assert.Equal(t, "text-danger", ClassBad.CSS())
	assert.Equal(t, "text-muted", ClassUnknown.CSS())
}
