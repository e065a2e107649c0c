package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/inventory"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// CancelListing removes a listing and returns its units to the seller
func (s *service) CancelListing(ctx context.Context, sess *domain.Session, characterID, listingID uuid.UUID) (*TradeResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCancelListingCalled, "character_id", characterID, "listing_id", listingID)

	var listing domain.MarketListing
	res, err := s.inTx(ctx, OpCancel, characterID, nil, func(ctx context.Context, tx repository.Tx) (*TradeResult, *inventory.Inventory, error) {
		_, inv, err := s.load(ctx, tx, sess, characterID)
		if err != nil {
			return nil, nil, err
		}

		found, err := tx.GetListing(ctx, listingID)
		if err != nil {
			if errors.Is(err, domain.ErrListingNotFound) {
				return nil, nil, reject(domain.TradeDoesNotExist)
			}
			return nil, nil, fmt.Errorf(ErrMsgGetListingsFailed, err)
		}
		if found.SellerCharacterID != characterID {
			return nil, nil, reject(domain.TradeFailed)
		}
		listing = *found

		if err := tx.DeleteListing(ctx, listingID); err != nil {
			return nil, nil, fmt.Errorf(ErrMsgDeleteListing, listingID, err)
		}
		if _, err := inv.AddItem(listing.ItemID, listing.Amount, inventory.AddOptions{}); err != nil {
			return nil, nil, err
		}
		if err := inv.Flush(ctx, tx); err != nil {
			return nil, nil, err
		}
		return &TradeResult{State: domain.TradeSuccess, Amount: listing.Amount, Listing: &listing}, inv, nil
	})
	if err != nil || res.State != domain.TradeSuccess {
		return res, err
	}

	s.publish(ctx, event.NewListingEvent(event.ListingCanceled, listing, &sess.ID))
	log.Info(LogMsgListingCancelled, "character_id", characterID, "listing_id", listingID, "amount", listing.Amount)
	return res, nil
}
