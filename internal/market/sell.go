package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/inventory"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// SellItem moves amount tradable units of itemID out of the character's
// inventory into one new listing at pricePerItem
func (s *service) SellItem(ctx context.Context, sess *domain.Session, characterID uuid.UUID, itemID string, amount int64, pricePerItem decimal.Decimal) (*TradeResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgSellItemCalled, "character_id", characterID, "item_id", itemID, "amount", amount, "price", pricePerItem)

	if amount <= 0 || !pricePerItem.IsPositive() {
		return result(domain.TradeRequestToLow), nil
	}

	var listing domain.MarketListing
	res, err := s.inTx(ctx, OpSell, characterID, nil, func(ctx context.Context, tx repository.Tx) (*TradeResult, *inventory.Inventory, error) {
		_, inv, err := s.load(ctx, tx, sess, characterID)
		if err != nil {
			return nil, nil, err
		}

		def, err := s.catalog.Get(itemID)
		if err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				return nil, nil, reject(domain.TradeDoesNotExist)
			}
			return nil, nil, err
		}
		if def.Soulbound {
			return nil, nil, reject(domain.TradeUntradable)
		}

		if inv.TradableUnits(itemID) < amount {
			if hasSoulboundUnits(inv, itemID) {
				return nil, nil, reject(domain.TradeUntradable)
			}
			return nil, nil, reject(domain.TradeDoesNotOwn)
		}
		if err := inv.TakeTradableUnits(itemID, amount); err != nil {
			return nil, nil, err
		}
		if err := inv.Flush(ctx, tx); err != nil {
			return nil, nil, err
		}

		listing = domain.MarketListing{
			ID:                uuid.New(),
			SellerCharacterID: characterID,
			ItemID:            itemID,
			Amount:            amount,
			PricePerItem:      pricePerItem,
			Created:           s.now().UTC(),
		}
		if err := tx.InsertListing(ctx, &listing); err != nil {
			return nil, nil, fmt.Errorf(ErrMsgInsertListing, err)
		}
		return &TradeResult{State: domain.TradeSuccess, Amount: amount, Listing: &listing}, inv, nil
	})
	if err != nil || res.State != domain.TradeSuccess {
		return res, err
	}

	s.publish(ctx, event.NewListingEvent(event.ListingCreated, listing, &sess.ID))
	log.Info(LogMsgItemListed, "character_id", characterID, "listing_id", listing.ID, "item_id", itemID, "amount", amount, "price", pricePerItem)
	return res, nil
}

func hasSoulboundUnits(inv *inventory.Inventory, itemID string) bool {
	for _, st := range inv.Stacks() {
		if st.ItemID == itemID && !st.Equipped && st.Soulbound {
			return true
		}
	}
	return false
}
