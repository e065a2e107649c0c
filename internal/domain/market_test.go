package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostAndAffordable(t *testing.T) {
	assert.Equal(t, int64(8), Cost(4, decimal.NewFromInt(2)))
	assert.Equal(t, int64(3), Cost(2, decimal.RequireFromString("1.5")))
	assert.Equal(t, int64(2), Cost(1, decimal.RequireFromString("1.99")))
	assert.Equal(t, int64(1), Cost(1, decimal.RequireFromString("0.9")))
	assert.Equal(t, int64(5), Cost(5, decimal.RequireFromString("0.9")))
	assert.Equal(t, int64(0), Cost(0, decimal.RequireFromString("0.9")))

	assert.Equal(t, int64(5), Affordable(10, decimal.NewFromInt(2)))
	assert.Equal(t, int64(3), Affordable(10, decimal.NewFromInt(3)))
	assert.Equal(t, int64(0), Affordable(2, decimal.NewFromInt(3)))
	assert.Equal(t, int64(0), Affordable(10, decimal.Zero))
	assert.Equal(t, int64(1), Affordable(1, decimal.RequireFromString("0.9")))
	assert.Equal(t, int64(6), Affordable(10, decimal.RequireFromString("1.5")))
}

func TestAffordable_NeverExceedsBalance(t *testing.T) {
	for _, p := range []string{"0.1", "0.3", "0.9", "1.5", "1.99", "2.25", "7.77"} {
		price := decimal.RequireFromString(p)
		for coins := int64(0); coins <= 50; coins++ {
			n := Affordable(coins, price)
			assert.LessOrEqual(t, Cost(n, price), coins, "price %s coins %d", p, coins)
			assert.Greater(t, Cost(n+1, price), coins, "price %s coins %d", p, coins)
		}
	}
}

func TestListingBefore(t *testing.T) {
	now := time.Now()
	cheap := &MarketListing{PricePerItem: decimal.NewFromInt(1), Created: now.Add(time.Minute)}
	dear := &MarketListing{PricePerItem: decimal.NewFromInt(2), Created: now}
	assert.True(t, ListingBefore(cheap, dear))
	assert.False(t, ListingBefore(dear, cheap))

	older := &MarketListing{PricePerItem: decimal.NewFromInt(2), Created: now.Add(-time.Minute)}
	assert.True(t, ListingBefore(older, dear))

	first := &MarketListing{PricePerItem: decimal.NewFromInt(2), Created: now, Sequence: 1}
	second := &MarketListing{PricePerItem: decimal.NewFromInt(2), Created: now, Sequence: 2}
	assert.True(t, ListingBefore(first, second))
	assert.False(t, ListingBefore(second, first))
}

func TestTradeSettlement_JSONFieldNames(t *testing.T) {
	s := TradeSettlement{SellerID: uuid.New(), BuyerID: uuid.New(), ItemID: "iron_sword", Amount: 2, Cost: 6}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"SellerId", "BuyerId", "ItemId", "Amount", "Cost"} {
		assert.Contains(t, raw, key)
	}
}

func TestItemTypeSlot(t *testing.T) {
	assert.Equal(t, SlotMeleeWeapon, TypeTwoHandedAxe.Slot())
	assert.Equal(t, SlotRangedWeapon, TypeBow.Slot())
	assert.Equal(t, SlotMagicWeapon, TypeStaff.Slot())
	assert.Equal(t, SlotHead, TypeHelmet.Slot())
	assert.Equal(t, SlotPet, TypePet.Slot())
	assert.Equal(t, SlotNone, TypeResource.Slot())
	assert.Equal(t, SlotNone, TypeHat.Slot())
}
