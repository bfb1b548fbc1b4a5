package health

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnapshotBareArray(t *testing.T) {
	body := []byte(`[
		{"shop_name": " A ", "shop_rating": 4.8, "penalty_points": 0, "response_rate": "97.5%"},
		{"shop_name": "B", "shop_rating": null, "penalty_points": "-", "on_Time_Rate": "96", "low_Rated_Orders": 3}
	]`)

	snap, err := ParseSnapshot(body, shopee(t))
	require.NoError(t, err)
	require.Len(t, snap.Records, 2)

	a := snap.Records[0]
	assert.Equal(t, "A", a.ShopName)
	v, ok := a.Value("penalty_points")
	assert.True(t, ok, "zero must be present")
	assert.Equal(t, 0.0, v)
	v, _ = a.Value("response_rate")
	assert.Equal(t, 97.5, v)

	b := snap.Records[1]
	_, ok = b.Value("shop_rating")
	assert.False(t, ok)
	_, ok = b.Value("penalty_points")
	assert.False(t, ok)
	v, _ = b.Value("on_time_rate")
	assert.Equal(t, 96.0, v)
	v, _ = b.Value("low_rated_orders")
	assert.Equal(t, 3.0, v)

	assert.Nil(t, snap.Overview)
}

func TestParseSnapshotEnvelope(t *testing.T) {
	body := []byte(`{
		"performanceData": [{"shop_name": "T1", "store_ratings": 4.9, "shop_violations": 1}],
		"dateData": {"updated": "2025-03-03"},
		"overviewMetrics": {"storeRatings": 4.2, "shop_violations": 7}
	}`)

	snap, err := ParseSnapshot(body, tiktok(t))
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "2025-03-03", snap.DateData["updated"])
	assert.Equal(t, Overview{"store_ratings": 4.2, "shop_violations": 7}, snap.Overview)
}

func TestParseSnapshotOverviewLegacyKeys(t *testing.T) {
	body := []byte(`{
		"performanceData": [{"shop_name": "Chairsy", "shop_rating": 4.8, "penalty_points": 3}],
		"overviewMetrics": {"shop_rating": 4.8, "onTimeRate": 96, "lowRatedOrders": 2, "penalty": 3, "nonFulfillRate": 1.5}
	}`)
	set := shopee(t)

	snap, err := ParseSnapshot(body, set)
	require.NoError(t, err)
	assert.Equal(t, Overview{
		"shop_rating":          4.8,
		"on_time_rate":         96,
		"low_rated_orders":     2,
		"penalty_points":       3,
		"non_fulfillment_rate": 1.5,
	}, snap.Overview)

	for _, card := range BuildCards(snap.Overview, set) {
		if card.Metric == "penalty_points" {
			assert.Equal(t, "3", card.Text)
			assert.Equal(t, ClassBad, card.Class)
		}
	}
}

func TestParseSnapshotEmptyShapes(t *testing.T) {
	for _, body := range []string{`[]`, `{}`, `{"performanceData": []}`} {
		snap, err := ParseSnapshot([]byte(body), shopee(t))
		require.NoError(t, err, body)
		assert.Empty(t, snap.Records, body)
	}
}

func TestParseSnapshotRejectsBadShapes(t *testing.T) {
	for _, body := range []string{`"text"`, `42`, `{"performanceData": "x"}`, `[1, 2]`, `not json`} {
		_, err := ParseSnapshot([]byte(body), shopee(t))
		assert.True(t, errors.Is(err, ErrInvalidResponse), "body %s: err = %v", body, err)
	}
}
