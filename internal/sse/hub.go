// Package sse streams game events to the session they belong to.
package sse

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/metrics"
)

// Client is one open stream. It only receives events of its own session.
type Client struct {
	ID        string
	SessionID uuid.UUID
	Events    chan domain.GameEvent
	// EventFilter is nil for all types, otherwise only the listed ones
	EventFilter map[domain.GameEventType]bool
}

// Hub fans stored game events out to connected clients
type Hub struct {
	clients    map[string]*Client
	broadcast  chan domain.GameEvent
	register   chan *Client
	unregister chan string
	mu         sync.RWMutex
	shutdown   chan struct{}
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// NewHub creates a new SSE Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan domain.GameEvent, BroadcastBufferSize),
		register:   make(chan *Client, ClientChannelBuffer),
		unregister: make(chan string, ClientChannelBuffer),
		shutdown:   make(chan struct{}),
	}
}

// Start starts the hub's broadcast loop
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.run()
}

// Stop shuts the loop down and closes every client channel
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.shutdown)
		h.wg.Wait()

		h.mu.Lock()
		for _, client := range h.clients {
			close(client.Events)
		}
		h.clients = make(map[string]*Client)
		metrics.SSEClientsConnected.Set(0)
		h.mu.Unlock()
	})
}

func (h *Hub) run() {
	defer h.wg.Done()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			metrics.SSEClientsConnected.Set(float64(len(h.clients)))
			h.mu.Unlock()

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[clientID]; ok {
				close(client.Events)
				delete(h.clients, clientID)
			}
			metrics.SSEClientsConnected.Set(float64(len(h.clients)))
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.deliver(ev)

		case <-h.shutdown:
			return
		}
	}
}

func (h *Hub) deliver(ev domain.GameEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.SessionID != ev.SessionID {
			continue
		}
		if client.EventFilter != nil && !client.EventFilter[ev.Type] {
			continue
		}
		select {
		case client.Events <- ev:
		default:
			// the client can recover the gap through Last-Event-ID
			logger.Warn(LogMsgEventDropped, "client_id", client.ID, "revision", ev.Revision)
		}
	}
}

// Register adds a client for sessionID. An empty eventTypes subscribes to everything.
func (h *Hub) Register(sessionID uuid.UUID, eventTypes []string) *Client {
	client := &Client{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Events:    make(chan domain.GameEvent, ClientEventBuffer),
	}
	if len(eventTypes) > 0 {
		client.EventFilter = make(map[domain.GameEventType]bool, len(eventTypes))
		for _, t := range eventTypes {
			client.EventFilter[domain.GameEventType(t)] = true
		}
	}

	select {
	case h.register <- client:
	case <-h.shutdown:
		close(client.Events)
	}
	return client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.shutdown:
	}
}

// Notify queues a stored event for delivery. It never blocks.
func (h *Hub) Notify(ev domain.GameEvent) {
	select {
	case h.broadcast <- ev:
	default:
		logger.Warn(LogMsgBroadcastFull, "session_id", ev.SessionID, "revision", ev.Revision)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FormatSSEMessage renders one frame. The id is the event revision so a
// reconnecting browser sends it back as Last-Event-ID.
func FormatSSEMessage(id, eventType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg := ""
	if id != "" {
		msg += "id: " + id + "\n"
	}
	msg += "event: " + eventType + "\n"
	msg += "data: " + string(data) + "\n\n"
	return []byte(msg), nil
}

// FormatGameEvent renders a stored game event
func FormatGameEvent(ev domain.GameEvent) ([]byte, error) {
	return FormatSSEMessage(strconv.FormatInt(ev.Revision, 10), string(ev.Type), ev)
}
