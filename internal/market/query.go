package market

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// GetMarketItems pages through open listings in price priority order
func (s *service) GetMarketItems(ctx context.Context, offset, size int, filter domain.MarketFilter) (*domain.MarketItemCollection, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgGetMarketItems, "offset", offset, "size", size, "item_id", filter.ItemID, "category", filter.Category)

	if offset < 0 {
		return nil, fmt.Errorf(ErrMsgInvalidOffset, domain.ErrInvalidInput)
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	q := repository.ListingQuery{SellerID: filter.SellerID, Offset: offset, Size: size}
	empty := &domain.MarketItemCollection{Items: []domain.MarketListing{}, Offset: offset, Size: size}

	switch {
	case filter.ItemID != "":
		def, err := s.catalog.Get(filter.ItemID)
		if err != nil {
			return empty, nil
		}
		if filter.Category != "" && def.Category != filter.Category {
			return empty, nil
		}
		q.ItemIDs = []string{filter.ItemID}
	case filter.Category != "":
		if _, ok := domain.ParseItemCategory(string(filter.Category)); !ok {
			return nil, fmt.Errorf(ErrMsgUnknownCategory, domain.ErrInvalidInput, filter.Category)
		}
		for _, def := range s.catalog.All() {
			if def.Category == filter.Category {
				q.ItemIDs = append(q.ItemIDs, def.ID)
			}
		}
		if len(q.ItemIDs) == 0 {
			return empty, nil
		}
	}

	listings, total, err := s.store.ListListings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetListingsFailed, err)
	}
	if listings == nil {
		listings = []domain.MarketListing{}
	}
	return &domain.MarketItemCollection{Items: listings, Offset: offset, Size: size, Total: total}, nil
}

// GetItemValue quotes what buying amount units would cost right now by walking
// the open listings the way BuyItem does, ignoring funds. With no listings the
// catalog shop price is quoted instead.
func (s *service) GetItemValue(ctx context.Context, itemID string, amount int64) (*domain.ItemValue, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgGetItemValue, "item_id", itemID, "amount", amount)

	if amount <= 0 {
		amount = 1
	}
	def, err := s.catalog.Get(itemID)
	if err != nil {
		return nil, err
	}

	listings, err := s.store.GetListingsByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetListingsFailed, err)
	}

	value := &domain.ItemValue{ItemID: itemID, Amount: amount, ShopPrice: def.ShopPrice}
	remaining := amount
	var filled int64
	for _, l := range listings {
		value.Available += l.Amount
		if remaining == 0 {
			continue
		}
		take := min(remaining, l.Amount)
		value.TotalCost += domain.Cost(take, l.PricePerItem)
		filled += take
		remaining -= take
	}

	if filled == 0 {
		value.FromShop = true
		value.TotalCost = def.ShopPrice * amount
		value.AveragePrice = decimal.NewFromInt(def.ShopPrice)
		return value, nil
	}
	value.AveragePrice = decimal.NewFromInt(value.TotalCost).Div(decimal.NewFromInt(filled)).Round(2)
	return value, nil
}
