package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Market Metrics
var (
	TradeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTradeRequests,
			Help: HelpTextTradeRequests,
		},
		[]string{LabelOperation, LabelOutcome},
	)

	TradeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameTradeDuration,
			Help:    HelpTextTradeDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelOperation},
	)

	UnitsTraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameUnitsTraded,
			Help: HelpTextUnitsTraded,
		},
		[]string{LabelItem},
	)

	CoinsTraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCoinsTraded,
			Help: HelpTextCoinsTraded,
		},
	)

	ListingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameListingsCreated,
			Help: HelpTextListingsCreated,
		},
		[]string{LabelItem},
	)
)

// Consistency Metrics
var (
	TxConflictRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTxConflictRetries,
			Help: HelpTextTxConflictRetries,
		},
		[]string{LabelOperation},
	)

	OwnershipDenialsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameOwnershipDenials,
			Help: HelpTextOwnershipDenials,
		},
	)

	InventoryIssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameInventoryIssues,
			Help: HelpTextInventoryIssues,
		},
		[]string{LabelKind},
	)

	SSEClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameSSEClientsConnected,
			Help: HelpTextSSEClientsConnected,
		},
	)
)
