package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/StreamRealm_Go/internal/database"
	"github.com/osse101/StreamRealm_Go/internal/eventlog"
	"github.com/osse101/StreamRealm_Go/internal/gameevent"
	"github.com/osse101/StreamRealm_Go/internal/handler"
	"github.com/osse101/StreamRealm_Go/internal/inventory"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/market"
	"github.com/osse101/StreamRealm_Go/internal/metrics"
	"github.com/osse101/StreamRealm_Go/internal/session"
	"github.com/osse101/StreamRealm_Go/internal/sse"
)

// Services are the collaborators the HTTP surface routes to.
// DBPool may be nil when running on the in-memory store.
type Services struct {
	DBPool    database.Pool
	Sessions  *session.Registry
	Inventory inventory.Service
	Market    market.Service
	Events    *gameevent.Sink
	Hub       *sse.Hub
	Audit     eventlog.Service
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, svcs Services) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewRouter(apiKey, trustedProxies, svcs),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter builds the middleware stack and routes
func NewRouter(apiKey string, trustedProxies []string, svcs Services) chi.Router {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(svcs.DBPool))
	r.Get("/version", handler.HandleVersion())
	r.Handle("/metrics", promhttp.Handler())

	r.Route(APIPrefix, func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", handler.HandleCreateSession(svcs.Sessions))
			r.Post("/play", handler.HandleBeginPlay(svcs.Sessions))
			r.Get("/events", handler.HandleGetEvents(svcs.Sessions, svcs.Events))
			r.Get("/events/stream", sse.Handler(svcs.Hub, svcs.Sessions, svcs.Events))
		})

		r.Route("/characters", func(r chi.Router) {
			r.Post("/", handler.HandleCreateCharacter(svcs.Sessions))
			r.Route("/{id}/inventory", func(r chi.Router) {
				r.Get("/", handler.HandleGetInventory(svcs.Inventory))
				r.Post("/add", handler.HandleAddItem(svcs.Inventory, svcs.Sessions))
				r.Post("/remove", handler.HandleRemoveItem(svcs.Inventory, svcs.Sessions))
				r.Post("/equip", handler.HandleEquipItem(svcs.Inventory, svcs.Sessions))
				r.Post("/unequip", handler.HandleUnequipItem(svcs.Inventory, svcs.Sessions))
				r.Post("/equip-best", handler.HandleEquipBestItems(svcs.Inventory, svcs.Sessions))
			})
		})

		r.Route("/market", func(r chi.Router) {
			r.Post("/sell", handler.HandleSellItem(svcs.Market, svcs.Sessions))
			r.Post("/buy", handler.HandleBuyItem(svcs.Market, svcs.Sessions))
			r.Post("/cancel", handler.HandleCancelListing(svcs.Market, svcs.Sessions))
			r.Get("/items", handler.HandleGetMarketItems(svcs.Market))
			r.Get("/value", handler.HandleGetItemValue(svcs.Market))
		})

		r.Get("/audit", handler.HandleGetAuditLog(svcs.Audit))
	})

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush lets the event stream push frames through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func isSensitiveHeader(name string) bool {
	for _, h := range RedactedHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		for _, p := range QuietPaths {
			if strings.HasPrefix(r.URL.Path, p) {
				next.ServeHTTP(w, r)
				return
			}
		}

		ctx := logger.WithRequestID(r.Context(), logger.GenerateRequestID())
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if isSensitiveHeader(k) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	logger.Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
