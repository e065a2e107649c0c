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

type fill struct {
	settlement    domain.TradeSettlement
	sellerSession *uuid.UUID
}

// BuyItem fills up to amount units of itemID from listings priced at most
// maxPricePerItem, cheapest and oldest first. Each fill is capped by what the
// buyer can still afford after the previous ones.
func (s *service) BuyItem(ctx context.Context, sess *domain.Session, characterID uuid.UUID, itemID string, amount int64, maxPricePerItem decimal.Decimal) (*TradeResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgBuyItemCalled, "character_id", characterID, "item_id", itemID, "amount", amount, "max_price", maxPricePerItem)

	if amount <= 0 || !maxPricePerItem.IsPositive() {
		return result(domain.TradeRequestToLow), nil
	}

	var fills []fill
	res, err := s.inTx(ctx, OpBuy, characterID, s.sellersOf(ctx, characterID, itemID, maxPricePerItem), func(ctx context.Context, tx repository.Tx) (*TradeResult, *inventory.Inventory, error) {
		fills = nil
		buyer, inv, err := s.load(ctx, tx, sess, characterID)
		if err != nil {
			return nil, nil, err
		}

		if _, err := s.catalog.Get(itemID); err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				return nil, nil, reject(domain.TradeDoesNotExist)
			}
			return nil, nil, err
		}

		listings, err := tx.GetListingsByItem(ctx, itemID)
		if err != nil {
			return nil, nil, fmt.Errorf(ErrMsgGetListingsFailed, err)
		}

		coins := buyer.Coins
		remaining := amount
		var seen, matched bool
		var bought, spent int64

		for i := range listings {
			if remaining == 0 {
				break
			}
			l := &listings[i]
			if l.SellerCharacterID == characterID {
				continue
			}
			seen = true
			if l.PricePerItem.GreaterThan(maxPricePerItem) {
				continue
			}
			matched = true

			take := min(remaining, l.Amount, domain.Affordable(coins, l.PricePerItem))
			if take <= 0 {
				continue
			}
			cost := domain.Cost(take, l.PricePerItem)

			if err := tx.UpdateListingAmount(ctx, l.ID, l.Amount-take); err != nil {
				if errors.Is(err, domain.ErrListingNotFound) {
					log.Warn(LogMsgListingVanished, "listing_id", l.ID)
					continue
				}
				return nil, nil, fmt.Errorf(ErrMsgUpdateListing, l.ID, err)
			}

			seller, err := tx.GetCharacter(ctx, l.SellerCharacterID)
			if err != nil {
				return nil, nil, fmt.Errorf(ErrMsgGetCharacterFailed, err)
			}
			if coins, err = tx.AdjustCoins(ctx, characterID, -cost); err != nil {
				return nil, nil, fmt.Errorf(ErrMsgAdjustCoins, characterID, err)
			}
			if _, err := tx.AdjustCoins(ctx, seller.ID, cost); err != nil {
				return nil, nil, fmt.Errorf(ErrMsgAdjustCoins, seller.ID, err)
			}
			if _, err := inv.AddItem(itemID, take, inventory.AddOptions{}); err != nil {
				return nil, nil, err
			}

			fills = append(fills, fill{
				settlement: domain.TradeSettlement{
					SellerID: seller.ID,
					BuyerID:  characterID,
					ItemID:   itemID,
					Amount:   take,
					Cost:     cost,
				},
				sellerSession: seller.ActiveSessionID,
			})
			remaining -= take
			bought += take
			spent += cost
		}

		switch {
		case bought > 0:
		case matched:
			return nil, nil, reject(domain.TradeInsufficientCoins)
		case seen:
			return nil, nil, reject(domain.TradeRequestToLow)
		default:
			return nil, nil, reject(domain.TradeDoesNotExist)
		}

		if err := inv.EquipBestItems(); err != nil {
			return nil, nil, err
		}
		if err := inv.Flush(ctx, tx); err != nil {
			return nil, nil, err
		}

		settlements := make([]domain.TradeSettlement, 0, len(fills))
		for _, f := range fills {
			settlements = append(settlements, f.settlement)
		}
		return &TradeResult{State: domain.TradeSuccess, Amount: bought, Cost: spent, Settlements: settlements}, inv, nil
	})
	if err != nil || res.State != domain.TradeSuccess {
		return res, err
	}

	if res.Amount < amount {
		log.Info(LogMsgPartialFill, "character_id", characterID, "item_id", itemID, "requested", amount, "bought", res.Amount)
	}

	for _, f := range fills {
		s.publish(ctx, event.NewTradeSettledEvent(f.settlement, &sess.ID, f.sellerSession))
	}
	log.Info(LogMsgItemPurchased, "character_id", characterID, "item_id", itemID, "amount", res.Amount, "cost", res.Cost, "fills", len(fills))
	return res, nil
}

// sellersOf lists the other sellers whose listings could fill the order so
// their coin credits are serialized with their own trades. The transaction
// re-reads the book, so a failed read only costs the extra locks.
func (s *service) sellersOf(ctx context.Context, buyerID uuid.UUID, itemID string, maxPricePerItem decimal.Decimal) []uuid.UUID {
	listings, err := s.store.GetListingsByItem(ctx, itemID)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgSellerLookupFailed, "item_id", itemID, "error", err)
		return nil
	}
	sellers := make([]uuid.UUID, 0, len(listings))
	for _, l := range listings {
		if l.SellerCharacterID != buyerID && !l.PricePerItem.GreaterThan(maxPricePerItem) {
			sellers = append(sellers, l.SellerCharacterID)
		}
	}
	return sellers
}
