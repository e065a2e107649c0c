package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Market metric names
const (
	MetricNameTradeRequests       = "market_trade_requests_total"
	MetricNameTradeDuration       = "market_trade_duration_seconds"
	MetricNameUnitsTraded         = "market_units_traded_total"
	MetricNameCoinsTraded         = "market_coins_traded_total"
	MetricNameListingsCreated     = "market_listings_created_total"
	MetricNameTxConflictRetries   = "tx_conflict_retries_total"
	MetricNameOwnershipDenials    = "ownership_denials_total"
	MetricNameInventoryIssues     = "inventory_issues_total"
	MetricNameSSEClientsConnected = "sse_clients_connected"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Market metric help text
const (
	HelpTextTradeRequests       = "Total number of trade requests by operation and outcome"
	HelpTextTradeDuration       = "Trade operation latency in seconds"
	HelpTextUnitsTraded         = "Total number of item units that changed hands"
	HelpTextCoinsTraded         = "Total coins paid between characters"
	HelpTextListingsCreated     = "Total number of market listings created"
	HelpTextTxConflictRetries   = "Total number of transactions rerun after a conflict"
	HelpTextOwnershipDenials    = "Total number of requests rejected by the ownership guard"
	HelpTextInventoryIssues     = "Total number of inventory invariant violations detected"
	HelpTextSSEClientsConnected = "Current number of connected event stream clients"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelItem      = "item"
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelKind      = "kind"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

const (
	LogMsgUnexpectedPayload = "Event payload has unexpected type"
	LogMsgMetricsRecorded   = "Metrics recorded for event"
)
