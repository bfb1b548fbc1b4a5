package health

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(d *Dashboard, policy RefreshPolicy) *Registry {
	return &Registry{
		order:      []string{d.Key()},
		dashboards: map[string]*Dashboard{d.Key(): d},
		policy:     policy,
	}
}

func TestRegistryRefreshAllLoadsToday(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set(wednesdayURL, fakeResponse{body: `[{"shop_name":"A","shop_rating":4.9}]`})
	d := newTestDashboard(t, KindShopee, fetcher, &mockClock{now: wednesday})
	r := newTestRegistry(d, RefreshAlways)

	require.NoError(t, r.RefreshAll(context.Background()))

	assert.Equal(t, 1, fetcher.count(wednesdayURL))
	assert.Equal(t, "2025-03-05", d.View().SelectedDate)
}

func TestRegistryRefreshAllIgnoresSupersededRefresh(t *testing.T) {
	gate := make(chan struct{})
	fetcher := newFakeFetcher()
	fetcher.set(wednesdayURL, fakeResponse{body: `[{"shop_name":"Old"}]`, gate: gate})
	fetcher.set(mondayURL, fakeResponse{body: `[{"shop_name":"New"}]`})
	d := newTestDashboard(t, KindShopee, fetcher, &mockClock{now: wednesday})
	r := newTestRegistry(d, RefreshAlways)

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.RefreshAll(ctx)
	}()
	require.Eventually(t, func() bool { return fetcher.count(wednesdayURL) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, d.Select(context.Background(), monday()))
	close(gate)
	require.NoError(t, <-done)

	assert.NotContains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "Refresh superseded by a newer selection")
	assert.Equal(t, "New", d.View().Table.Rows[0].Shop)
}
