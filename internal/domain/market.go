package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemTradeState is the outcome of a trade request
type ItemTradeState string

const (
	TradeSuccess           ItemTradeState = "Success"
	TradeRequestToLow      ItemTradeState = "RequestToLow"
	TradeFailed            ItemTradeState = "Failed"
	TradeDoesNotOwn        ItemTradeState = "DoesNotOwn"
	TradeInsufficientCoins ItemTradeState = "InsufficientCoins"
	TradeDoesNotExist      ItemTradeState = "DoesNotExist"
	TradeUntradable        ItemTradeState = "Untradable"
)

// MarketListing is a standing offer to sell Amount units at PricePerItem each
type MarketListing struct {
	ID                uuid.UUID       `json:"id"`
	SellerCharacterID uuid.UUID       `json:"seller_character_id"`
	ItemID            string          `json:"item_id"`
	Amount            int64           `json:"amount"`
	PricePerItem      decimal.Decimal `json:"price_per_item"`
	Created           time.Time       `json:"created"`
	// Sequence breaks ties between listings created at the same instant
	Sequence int64 `json:"sequence"`
}

// Cost returns ceil(amount * price) in whole coins, so a fractional price
// never hands out units for free
func Cost(amount int64, price decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(price).Ceil().IntPart()
}

// Affordable returns the largest n with Cost(n, price) <= coins
func Affordable(coins int64, price decimal.Decimal) int64 {
	if !price.IsPositive() || coins <= 0 {
		return 0
	}
	n := decimal.NewFromInt(coins).Div(price).Floor().IntPart()
	for n > 0 && Cost(n, price) > coins {
		n--
	}
	return n
}

// ListingBefore orders listings by ascending price, then creation order
func ListingBefore(a, b *MarketListing) bool {
	if c := a.PricePerItem.Cmp(b.PricePerItem); c != 0 {
		return c < 0
	}
	if !a.Created.Equal(b.Created) {
		return a.Created.Before(b.Created)
	}
	return a.Sequence < b.Sequence
}

// TradeSettlement records one matched listing
type TradeSettlement struct {
	SellerID uuid.UUID `json:"SellerId"`
	BuyerID  uuid.UUID `json:"BuyerId"`
	ItemID   string    `json:"ItemId"`
	Amount   int64     `json:"Amount"`
	Cost     int64     `json:"Cost"`
}

// MarketFilter narrows a market listing query
type MarketFilter struct {
	ItemID   string
	Category ItemCategory
	SellerID *uuid.UUID
}

// MarketItemCollection is one page of listings
type MarketItemCollection struct {
	Items  []MarketListing `json:"items"`
	Offset int             `json:"offset"`
	Size   int             `json:"size"`
	Total  int             `json:"total"`
}

// ItemValue is a price quote for buying a number of units
type ItemValue struct {
	ItemID       string          `json:"item_id"`
	Amount       int64           `json:"amount"`
	Available    int64           `json:"available"`
	TotalCost    int64           `json:"total_cost"`
	AveragePrice decimal.Decimal `json:"average_price"`
	ShopPrice    int64           `json:"shop_price"`
	FromShop     bool            `json:"from_shop"`
}
