package health

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportWorkbookWritesTableAndOverview(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set(mondayURL, fakeResponse{body: `[{"shop_name":"A","shop_rating":4.8,"response_rate":99}]`})
	d := newTestDashboard(t, KindShopee, fetcher, &mockClock{now: wednesday})
	require.NoError(t, d.Select(context.Background(), monday()))

	f, err := ExportWorkbook(d.View())
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(tableSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Shop Name", rows[0][0])
	assert.Equal(t, "A", rows[1][0])
	assert.Contains(t, rows[1], "99.0%")

	summary, err := book.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Platform", "Shopee MY"}, summary[0])
	assert.Equal(t, []string{"Date", "2025-03-03"}, summary[1])
}

func TestExportWorkbookPlaceholder(t *testing.T) {
	d := newTestDashboard(t, KindTikTok, newFakeFetcher(), &mockClock{now: time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC)})

	f, err := ExportWorkbook(d.View())
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue(tableSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, MessageNoData, got)
}
