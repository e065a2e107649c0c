package item

// ==================== Error Messages ====================

const (
	ErrMsgReadConfigFileFailed = "failed to read items config file: %w"
	ErrMsgParseConfigFailed    = "failed to parse items config: %w"
	ErrMsgRegisterSchemaFailed = "failed to register items schema: %w"
)

// ==================== Format Strings for Error Construction ====================

const (
	ErrFmtItemEmptyID       = "%w: item at index %d has empty id"
	ErrFmtItemNegativePrice = "%w: item '%s' has negative shop_price"
)
