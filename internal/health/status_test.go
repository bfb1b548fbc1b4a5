package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusBoardExpiresAfterTTL(t *testing.T) {
	clock := &mockClock{now: wednesday}
	b := NewStatusBoard(clock, 0)

	b.Post(StatusLoading, "Loading")
	clock.Advance(3 * time.Second)
	b.Post(StatusError, "Failed")

	assert.Len(t, b.Active(), 2)

	clock.Advance(2 * time.Second)
	active := b.Active()
	if assert.Len(t, active, 1) {
		assert.Equal(t, "Failed", active[0].Text)
		assert.Equal(t, uint64(2), active[0].ID)
	}

	clock.Advance(3 * time.Second)
	assert.Empty(t, b.Active())
}

func TestFilterByShopSentinel(t *testing.T) {
	records := []PerformanceRecord{{ShopName: "Alpha"}, {ShopName: "beta"}}
	assert.Len(t, FilterByShop(records, ""), 2)
	assert.Len(t, FilterByShop(records, AllShops), 2)
	assert.Len(t, FilterByShop(records, "BETA"), 1)
	assert.Empty(t, FilterByShop(records, "gamma"))

	assert.Equal(t, []string{AllShops, "Alpha", "beta"}, ShopOptions([]string{"Alpha", "beta", "alpha", " "}))
}
