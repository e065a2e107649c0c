package session

import "time"

const (
	DefaultCacheSize = 10000
	DefaultTTL       = 12 * time.Hour
	TokenBytes       = 32

	// StartingCoins is the balance of a newly created character
	StartingCoins int64 = 100
)

const (
	LogMsgSessionCreated   = "Session created"
	LogMsgCharacterCreated = "Character created"
	LogMsgPlayStarted      = "Session took ownership of character"
	LogMsgOwnershipDenied  = "Ownership check failed"
)
