package handler

// Generic HTTP error messages for client responses.
// These never expose internal error details.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgInvalidQueryParam     = "Invalid %s query parameter"
	ErrMsgInvalidPathParam      = "Invalid %s path parameter"
	ErrMsgMissingSessionToken   = "Missing session token"
)

// User-facing messages derived from domain errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."
	ErrMsgConflictError       = "The request conflicted with another update. Please try again."

	ErrMsgSessionNotFoundError   = "Session not found or expired"
	ErrMsgNotOwnerError          = "Your session does not own that character"
	ErrMsgCharacterNotFoundError = "Character not found"

	ErrMsgItemNotFoundError       = "Item not found"
	ErrMsgStackNotFoundError      = "Stack not found"
	ErrMsgInsufficientItemsErr    = "Not enough items"
	ErrMsgAlreadyEquippedError    = "That stack is already equipped"
	ErrMsgNotEquippedError        = "That stack is not equipped"
	ErrMsgCannotEquipError        = "That item cannot be equipped"
	ErrMsgInvalidEnchantmentError = "Invalid enchantment"

	ErrMsgListingNotFoundError = "Listing not found"
	ErrMsgNotEnoughMoneyError  = "Not enough coins"
	ErrMsgSoulboundError       = "That item is soulbound"
)

// Log messages
const (
	LogMsgEncodeFailed = "Failed to encode JSON response"
	LogMsgWriteFailed  = "Failed to write response buffer"
)

// Success messages
const (
	MsgItemRemovedSuccess = "Item removed successfully"
)
