package inventory

// Event log types
const (
	EventTypeInventoryIssue = "inventory.issue"
)

// Operation labels for metrics and logs
const (
	OpAddItem        = "add_item"
	OpRemoveItem     = "remove_item"
	OpEquipItem      = "equip_item"
	OpUnequipItem    = "unequip_item"
	OpEquipBestItems = "equip_best_items"
)

// Log messages
const (
	LogMsgAddItemCalled        = "AddItem called"
	LogMsgRemoveItemCalled     = "RemoveItem called"
	LogMsgEquipItemCalled      = "EquipItem called"
	LogMsgUnequipItemCalled    = "UnequipItem called"
	LogMsgEquipBestItemsCalled = "EquipBestItems called"
	LogMsgInventoryUpdated     = "Inventory updated"
	LogMsgInventoryIssue       = "Inventory invariant violated"
	LogMsgStoreIssueFailed     = "Failed to store inventory issue"
	LogMsgValidateReadFailed   = "Failed to read inventory for validation"
	LogMsgTxRetry              = "Retrying inventory transaction after conflict"
)

// Error messages
const (
	ErrMsgLockFailed         = "failed to lock character: %w"
	ErrMsgBeginTxFailed      = "failed to begin transaction: %w"
	ErrMsgCommitTxFailed     = "failed to commit transaction: %w"
	ErrMsgGetCharacterFailed = "failed to get character: %w"
	ErrMsgGetStacksFailed    = "failed to get stacks: %w"
)
