package sse

import "time"

// Buffer sizes
const (
	// BroadcastBufferSize is the buffer size for the broadcast channel
	BroadcastBufferSize = 256

	// ClientEventBuffer is the buffer size for each client's event channel
	ClientEventBuffer = 64

	// ClientChannelBuffer is the buffer size for register/unregister channels
	ClientChannelBuffer = 16

	// ReplayLimit caps how many stored events are replayed on reconnect
	ReplayLimit = 500
)

// SSE connection settings
const (
	KeepaliveInterval = 30 * time.Second
)

// Event types for SSE frames that are not game events
const (
	EventTypeConnected = "connected"
	EventTypeKeepalive = "keepalive"
)

// Headers
const (
	HeaderSessionToken = "X-Session-Token"
	HeaderLastEventID  = "Last-Event-ID"
)

// Log messages
const (
	LogMsgClientConnected    = "SSE client connected"
	LogMsgClientDisconnected = "SSE client disconnected"
	LogMsgEventDropped       = "SSE client buffer full, dropping event"
	LogMsgBroadcastFull      = "SSE broadcast buffer full, dropping event"
	LogMsgWriteError         = "Failed to write SSE event"
	LogMsgReplayFailed       = "Failed to replay stored events"
)

const (
	ErrMsgStreamingUnsupported = "streaming unsupported"
	ErrMsgMissingSession       = "missing or unknown session token"
)
