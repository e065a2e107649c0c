package market

// Paging limits for GetMarketItems
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Operation labels
const (
	OpSell   = "sell"
	OpBuy    = "buy"
	OpCancel = "cancel"
)

// Error messages
const (
	ErrMsgLockFailed         = "failed to lock character: %w"
	ErrMsgBeginTxFailed      = "failed to begin transaction: %w"
	ErrMsgCommitTxFailed     = "failed to commit transaction: %w"
	ErrMsgGetCharacterFailed = "failed to get character: %w"
	ErrMsgGetListingsFailed  = "failed to get listings: %w"
	ErrMsgInsertListing      = "failed to insert listing: %w"
	ErrMsgUpdateListing      = "failed to update listing %s: %w"
	ErrMsgDeleteListing      = "failed to delete listing %s: %w"
	ErrMsgAdjustCoins        = "failed to adjust coins of %s: %w"
	ErrMsgInvalidOffset      = "%w: offset must not be negative"
	ErrMsgUnknownCategory    = "%w: unknown category %q"
)

// Log messages
const (
	LogMsgSellItemCalled      = "SellItem called"
	LogMsgBuyItemCalled       = "BuyItem called"
	LogMsgCancelListingCalled = "CancelListing called"
	LogMsgGetMarketItems      = "GetMarketItems called"
	LogMsgGetItemValue        = "GetItemValue called"
	LogMsgItemListed          = "Item listed"
	LogMsgItemPurchased       = "Item purchased"
	LogMsgListingCancelled    = "Listing cancelled"
	LogMsgTradeRejected       = "Trade rejected"
	LogMsgTradeFailed         = "Trade failed"
	LogMsgListingVanished     = "Listing vanished during buy, skipping"
	LogMsgTxRetry             = "Retrying trade after conflict"
	LogMsgPartialFill         = "Buy filled partially"
	LogMsgSellerLookupFailed  = "Failed to read sellers for locking"
)
