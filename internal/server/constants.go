package server

import "time"

// APIPrefix is where the versioned routes are mounted
const APIPrefix = "/api/v1"

const (
	ReadHeaderTimeout   = 5 * time.Second
	MaxRequestBodyBytes = 1 << 20
)

// Rate and auth alert thresholds
const (
	FailedAuthAlertThreshold = 5
	RequestRateLimit         = 1000
	RequestRateLogEvery      = 100
	DetectorWindow           = 5 * time.Minute
	DetectorMaxTrackedIPs    = 10000
)

// HTTP error messages for middleware responses
const (
	ErrMsgUnauthorized    = "Unauthorized"
	ErrMsgTooManyRequests = "Too Many Requests"
)

// Security alert message templates
const (
	SecurityAlertFailedAuth = "SECURITY ALERT: Multiple failed authentication attempts"
	SecurityAlertHighRate   = "SECURITY ALERT: Blocking high request rate"
)

// Log messages for server lifecycle and request handling
const (
	LogMsgServerStarting   = "Server starting"
	LogMsgRequestStarted   = "Request started"
	LogMsgRequestCompleted = "Request completed"
	LogMsgRequestHeaders   = "Request headers"
	LogMsgAuthFailed       = "Authentication failed"
)

// HTTP header names
const (
	HeaderAPIKey         = "X-API-Key"
	HeaderAuthorization  = "Authorization"
	HeaderSessionToken   = "X-Session-Token"
	HeaderForwardedFor   = "X-Forwarded-For"
	HeaderContentType    = "X-Content-Type-Options"
	HeaderFrameOptions   = "X-Frame-Options"
	HeaderXSSProtection  = "X-XSS-Protection"
	HeaderReferrerPolicy = "Referrer-Policy"
	HeaderCacheControl   = "Cache-Control"
)

// Security header values
const (
	HeaderValueNoSniff              = "nosniff"
	HeaderValueSameOrigin           = "SAMEORIGIN"
	HeaderValueXSSBlock             = "1; mode=block"
	HeaderValueReferrerStrictOrigin = "strict-origin-when-cross-origin"
	HeaderValueNoStore              = "no-store"
)

// PublicPaths bypass API key authentication
var PublicPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
	"/version",
}

// QuietPaths are not request-logged
var QuietPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
}

// RedactedHeaders never appear in logs
var RedactedHeaders = []string{
	HeaderAPIKey,
	HeaderAuthorization,
	HeaderSessionToken,
}

const RedactedValue = "[REDACTED]"
