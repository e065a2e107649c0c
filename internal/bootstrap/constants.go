package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files
	LogFilePermission = 0644
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	LogFileNamePattern = "session_%s.log"
	LogFileExtension   = ".log"

	// LogFileRetentionCount is how many older log files survive startup cleanup
	LogFileRetentionCount = 9
)

const (
	LogMsgLoggingInitialized   = "Logging initialized"
	LogMsgStartingStreamRealm  = "Starting StreamRealm"
	LogMsgConfigurationLoaded  = "Configuration loaded"
	LogMsgConfigurationWarning = "Configuration warning"
	ErrMsgFailedCreateLogsDir  = "failed to create logs directory"
	ErrMsgFailedOpenLogFile    = "failed to open log file"
	LogMsgFailedDeleteOldLog   = "Failed to delete old log file"
)

// =============================================================================
// Storage
// =============================================================================

const (
	LogMsgStorageInitialized = "Storage initialized"
	ErrMsgFailedConnectDB    = "failed to connect to database"
	ErrMsgFailedMigrate      = "failed to apply migrations"
	ErrMsgUnknownStorage     = "unknown storage backend %q"
)

// =============================================================================
// Item Catalog
// =============================================================================

const (
	LogMsgCatalogLoaded        = "Item catalog loaded"
	LogMsgCatalogSchemaMissing = "Item schema file not found, using embedded schema"
	ErrMsgFailedReadSchema     = "failed to read item schema"
	ErrMsgFailedCreateLoader   = "failed to create item loader"
	ErrMsgFailedLoadItems      = "failed to load items config"
)

// =============================================================================
// Event System Configuration
// =============================================================================

const (
	EventDefaultMaxRetries     = 5
	EventDefaultRetryDelay     = 2 * time.Second
	EventDefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)

const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	ErrMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	ErrMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
)

// =============================================================================
// Event Handler Configuration
// =============================================================================

const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgEventLoggerInitialized     = "Event logger initialized"
	LogMsgGameEventSinkInitialized   = "Game event sink initialized"
)

// =============================================================================
// Background Jobs
// =============================================================================

const JobNameEventCleanup = "eventlog_cleanup"

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownWorkers        = "Stopping background jobs..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
)
