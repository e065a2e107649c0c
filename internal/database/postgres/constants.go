package postgres

// PostgreSQL Error Codes
const (
	PgErrorCodeUniqueViolation      = "23505"
	PgErrorCodeCheckViolation       = "23514"
	PgErrorCodeSerializationFailure = "40001"
	PgErrorCodeDeadlockDetected     = "40P01"
)

// Error Messages
const (
	ErrMsgFailedToBeginTransaction = "failed to begin transaction"
	ErrMsgFailedToCommit           = "failed to commit transaction"
	ErrMsgInvalidPrice             = "invalid stored price %q: %w"
	ErrMsgInvalidEnchantment       = "invalid stored enchantment on stack %s: %w"
	ErrMsgMarshalSkills            = "failed to marshal skills: %w"
)

const (
	characterColumns = `id, user_id, name, coins, skills, owner_session_user_id, active_session_id, created_at`
	stackColumns     = `id, character_id, item_id, amount, equipped, tag, enchantment, transmogrification_id, soulbound, flags, name_override, updated_at`
	listingColumns   = `id, seller_character_id, item_id, amount, price_per_item::text, created, sequence`
	listingOrder     = `ORDER BY price_per_item ASC, created ASC, sequence ASC`
)
