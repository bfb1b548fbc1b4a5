package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFetcher struct {
	body string
	url  string
}

func (f *recordingFetcher) GetJSON(ctx context.Context, url string) ([]byte, error) {
	f.url = url
	return []byte(f.body), nil
}

const pageBody = `{
	"data": [
		{"sku":"CH-01","product_variation":"Chair Black","total_sales":40,"current_stock":12,"incoming_stock":0,"reserve_stock":0,"lead":"7d","total_stock":12},
		{"sku":"CH-02","product_variation":"Chair White","total_sales":"15","current_stock":"8","incoming_stock":"5","reserve_stock":"4","lead":"7d","total_stock":"13"},
		{"sku":"TB-01","product_variation":"Table Oak","total_sales":3,"current_stock":30,"incoming_stock":10,"reserve_stock":25,"lead":"14d","total_stock":40}
	],
	"current_page": 3,
	"total_pages": 9,
	"limit": 100
}`

func TestFetchBuildsUpstreamURLAndView(t *testing.T) {
	f := &recordingFetcher{body: pageBody}
	svc := NewService("http://upstream", 0, f)

	v, err := svc.Fetch(context.Background(), Query{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, "http://upstream/stock-count/all/?limit=100&page=3", f.url)
	assert.Len(t, v.Data, 3)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, v.Window)
	assert.True(t, v.HasPrev)
	assert.True(t, v.HasNext)
	assert.Equal(t, FilterAll, v.Filter)
}

func TestFetchSearchFilterAndSort(t *testing.T) {
	svc := NewService("http://upstream/", 50, &recordingFetcher{body: pageBody})
	ctx := context.Background()

	v, err := svc.Fetch(ctx, Query{Search: "CHAIR"})
	require.NoError(t, err)
	assert.Len(t, v.Data, 2)

	v, err = svc.Fetch(ctx, Query{Filter: FilterLowStock})
	require.NoError(t, err)
	require.Len(t, v.Data, 1)
	assert.Equal(t, "CH-02", v.Data[0].SKU)

	v, err = svc.Fetch(ctx, Query{Filter: FilterOutOfStock})
	require.NoError(t, err)
	require.Len(t, v.Data, 1)
	assert.Equal(t, "CH-01", v.Data[0].SKU)

	v, err = svc.Fetch(ctx, Query{SortBy: "total_stock", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "TB-01", v.Data[0].SKU)
	assert.Equal(t, "CH-01", v.Data[2].SKU)

	_, err = svc.Fetch(ctx, Query{Filter: "overstock"})
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "text-danger", Item{ReserveStock: 0}.StatusClass())
	assert.Equal(t, "text-warning", Item{ReserveStock: 9}.StatusClass())
	assert.Equal(t, "text-success", Item{ReserveStock: 10}.StatusClass())
}

func TestWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 9, []int{1, 2, 3, 4, 5}},
		{5, 9, []int{3, 4, 5, 6, 7}},
		{9, 9, []int{5, 6, 7, 8, 9}},
		{2, 3, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Window(tt.current, tt.total), "Window(%d, %d)", tt.current, tt.total)
	}
	assert.Nil(t, Window(1, 0))
}
