package gameevent

const (
	// DefaultPageSize bounds EventsAbove when the caller passes no limit
	DefaultPageSize = 100
	MaxPageSize     = 500
)

const (
	LogMsgSinkSubscribed = "Game event sink subscribed to bus"
	LogMsgEventAppended  = "Game event appended"
	LogMsgNoSession      = "Event has no session to notify, skipping"
	LogMsgDecodeFailed   = "Failed to decode event payload"
)

const (
	ErrMsgMarshalPayload = "failed to marshal game event payload: %w"
	ErrMsgAppendFailed   = "failed to append game event: %w"
	ErrMsgReadFailed     = "failed to read game events: %w"
)
