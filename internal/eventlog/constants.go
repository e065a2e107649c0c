package eventlog

// Metadata keys attached to audited events
const (
	MetaKeySchemaVersion = "schema_version"
	MetaKeyCounterpart   = "counterpart_id"
	MetaKeyRole          = "role"
)

// Roles recorded for the two sides of a trade
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// Log messages - service events
const (
	LogMsgPayloadDecodeFailed = "Event payload could not be decoded, skipping log"
	LogMsgFailedToLogEvent    = "Failed to log event"
	LogMsgEventLogged         = "Event logged"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobStarting  = "Starting event log cleanup job"
	LogMsgCleanupJobFailed    = "Event log cleanup failed"
	LogMsgCleanupJobCompleted = "Event log cleanup completed"
)

// Log field keys
const (
	LogFieldType          = "type"
	LogFieldCharacterID   = "character_id"
	LogFieldError         = "error"
	LogFieldRetentionDays = "retentionDays"
	LogFieldDuration      = "duration"
	LogFieldDeletedCount  = "deletedCount"
)
