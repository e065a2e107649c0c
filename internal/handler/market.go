package handler

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/market"
)

// Default page for market listings
const (
	defaultMarketOffset = 0
	defaultMarketSize   = 50
)

type SellItemRequest struct {
	CharacterID  string          `json:"character_id" validate:"required,uuid"`
	ItemID       string          `json:"item_id" validate:"required,max=100"`
	Amount       int64           `json:"amount" validate:"min=1,max=1000000"`
	PricePerItem decimal.Decimal `json:"price_per_item" validate:"decimal_gt0"`
}

type BuyItemRequest struct {
	CharacterID     string          `json:"character_id" validate:"required,uuid"`
	ItemID          string          `json:"item_id" validate:"required,max=100"`
	Amount          int64           `json:"amount" validate:"min=1,max=1000000"`
	MaxPricePerItem decimal.Decimal `json:"max_price_per_item" validate:"decimal_gt0"`
}

type CancelListingRequest struct {
	CharacterID string `json:"character_id" validate:"required,uuid"`
	ListingID   string `json:"listing_id" validate:"required,uuid"`
}

// HandleSellItem lists units on the market.
// Rejected trades answer 200 with their state; only infrastructure failures are 5xx.
func HandleSellItem(svc market.Service, sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}

		var req SellItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Sell item"); err != nil {
			return
		}

		res, err := svc.SellItem(r.Context(), sess, mustParseUUID(req.CharacterID), req.ItemID, req.Amount, req.PricePerItem)
		respondTrade(w, r, "Sell item", res, err)
	}
}

// HandleBuyItem fills from the cheapest listings up to the max price
func HandleBuyItem(svc market.Service, sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}

		var req BuyItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Buy item"); err != nil {
			return
		}

		res, err := svc.BuyItem(r.Context(), sess, mustParseUUID(req.CharacterID), req.ItemID, req.Amount, req.MaxPricePerItem)
		respondTrade(w, r, "Buy item", res, err)
	}
}

// HandleCancelListing withdraws one of the caller's listings
func HandleCancelListing(svc market.Service, sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}

		var req CancelListingRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Cancel listing"); err != nil {
			return
		}

		res, err := svc.CancelListing(r.Context(), sess, mustParseUUID(req.CharacterID), mustParseUUID(req.ListingID))
		respondTrade(w, r, "Cancel listing", res, err)
	}
}

func respondTrade(w http.ResponseWriter, r *http.Request, opName string, res *market.TradeResult, err error) {
	if err != nil {
		respondServiceError(w, r, opName, err)
		return
	}
	logger.FromContext(r.Context()).Info(opName+" completed", "state", res.State, "amount", res.Amount)
	respondJSON(w, http.StatusOK, res)
}

// HandleGetMarketItems pages through open listings.
// Query: offset, size, item_id, category.
func HandleGetMarketItems(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, ok := GetIntQueryParam(r, w, "offset", defaultMarketOffset)
		if !ok {
			return
		}
		size, ok := GetIntQueryParam(r, w, "size", defaultMarketSize)
		if !ok {
			return
		}

		filter := domain.MarketFilter{ItemID: GetOptionalQueryParam(r, "item_id", "")}
		if raw := GetOptionalQueryParam(r, "category", ""); raw != "" {
			category, valid := domain.ParseItemCategory(raw)
			if !valid {
				respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, "category"))
				return
			}
			filter.Category = category
		}

		page, err := svc.GetMarketItems(r.Context(), int(offset), int(size), filter)
		if err != nil {
			respondServiceError(w, r, "Get market items", err)
			return
		}
		respondJSON(w, http.StatusOK, page)
	}
}

// HandleGetItemValue quotes the cost of buying amount units of item_id
func HandleGetItemValue(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := GetQueryParam(r, w, "item_id")
		if !ok {
			return
		}
		amount, ok := GetIntQueryParam(r, w, "amount", 1)
		if !ok {
			return
		}

		value, err := svc.GetItemValue(r.Context(), itemID, amount)
		if err != nil {
			respondServiceError(w, r, "Get item value", err)
			return
		}
		respondJSON(w, http.StatusOK, value)
	}
}
