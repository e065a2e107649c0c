package sse

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/session"
)

// Replayer reads stored events so a reconnecting client misses nothing
type Replayer interface {
	EventsAbove(ctx context.Context, sessionID uuid.UUID, revision int64, limit int) ([]domain.GameEvent, error)
}

// Handler streams the calling session's game events.
// The session comes from the X-Session-Token header or the token query param,
// since EventSource cannot set headers.
func Handler(hub *Hub, sessions session.Resolver, replay Replayer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromContext(ctx)

		token := r.Header.Get(HeaderSessionToken)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		sess, err := sessions.ResolveSession(ctx, token)
		if err != nil {
			http.Error(w, ErrMsgMissingSession, http.StatusUnauthorized)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, ErrMsgStreamingUnsupported, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		var eventTypes []string
		if filter := r.URL.Query().Get("types"); filter != "" {
			eventTypes = strings.Split(filter, ",")
		}

		// register before replay so nothing committed in between is lost
		client := hub.Register(sess.ID, eventTypes)
		log.Info(LogMsgClientConnected, "client_id", client.ID, "session_id", sess.ID, "filters", eventTypes)
		defer func() {
			hub.Unregister(client.ID)
			log.Info(LogMsgClientDisconnected, "client_id", client.ID, "session_id", sess.ID)
		}()

		write := func(msg []byte) bool {
			if _, err := w.Write(msg); err != nil {
				log.Warn(LogMsgWriteError, "client_id", client.ID, "error", err)
				return false
			}
			flusher.Flush()
			return true
		}

		hello, _ := FormatSSEMessage("", EventTypeConnected, map[string]interface{}{
			"client_id":  client.ID,
			"session_id": sess.ID,
			"filters":    eventTypes,
		})
		if !write(hello) {
			return
		}

		var last int64
		if raw := r.Header.Get(HeaderLastEventID); raw != "" {
			last, _ = strconv.ParseInt(raw, 10, 64)
		} else if raw := r.URL.Query().Get("revision"); raw != "" {
			last, _ = strconv.ParseInt(raw, 10, 64)
		}
		if last > 0 && replay != nil {
			events, err := replay.EventsAbove(ctx, sess.ID, last, ReplayLimit)
			if err != nil {
				log.Error(LogMsgReplayFailed, "session_id", sess.ID, "error", err)
			}
			for _, ev := range events {
				if client.EventFilter != nil && !client.EventFilter[ev.Type] {
					continue
				}
				msg, err := FormatGameEvent(ev)
				if err != nil {
					continue
				}
				if !write(msg) {
					return
				}
				last = ev.Revision
			}
		}

		ticker := time.NewTicker(KeepaliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-client.Events:
				if !ok {
					return
				}
				if ev.Revision <= last {
					continue
				}
				msg, err := FormatGameEvent(ev)
				if err != nil {
					log.Error(LogMsgWriteError, "error", err)
					continue
				}
				if !write(msg) {
					return
				}
				last = ev.Revision

			case <-ticker.C:
				msg, _ := FormatSSEMessage("", EventTypeKeepalive, nil)
				if !write(msg) {
					return
				}
			}
		}
	}
}
