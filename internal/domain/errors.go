package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Character errors
	ErrMsgCharacterNotFound = "character not found"

	// Item errors
	ErrMsgItemNotFound = "item not found"

	// Inventory errors
	ErrMsgStackNotFound        = "stack not found"
	ErrMsgInsufficientQuantity = "insufficient quantity"
	ErrMsgAlreadyEquipped      = "stack is already equipped"
	ErrMsgNotEquipped          = "stack is not equipped"
	ErrMsgCannotEquip          = "item cannot be equipped"
	ErrMsgInvalidEnchantment   = "invalid enchantment"

	// Market errors
	ErrMsgListingNotFound   = "listing not found"
	ErrMsgInsufficientFunds = "insufficient funds"
	ErrMsgSoulbound         = "item is soulbound"

	// Session errors
	ErrMsgSessionNotFound = "session not found"
	ErrMsgNotOwner        = "character is not owned by session"

	// Database/System errors
	ErrMsgTxClosed = "tx is closed"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrCharacterNotFound = errors.New(ErrMsgCharacterNotFound)

	ErrItemNotFound = errors.New(ErrMsgItemNotFound)

	ErrStackNotFound        = errors.New(ErrMsgStackNotFound)
	ErrInsufficientQuantity = errors.New(ErrMsgInsufficientQuantity)
	ErrAlreadyEquipped      = errors.New(ErrMsgAlreadyEquipped)
	ErrNotEquipped          = errors.New(ErrMsgNotEquipped)
	ErrCannotEquip          = errors.New(ErrMsgCannotEquip)
	ErrInvalidEnchantment   = errors.New(ErrMsgInvalidEnchantment)

	ErrListingNotFound   = errors.New(ErrMsgListingNotFound)
	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrSoulbound         = errors.New(ErrMsgSoulbound)

	ErrSessionNotFound = errors.New(ErrMsgSessionNotFound)
	ErrNotOwner        = errors.New(ErrMsgNotOwner)

	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
