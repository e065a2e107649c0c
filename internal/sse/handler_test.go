package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/StreamRealm_Go/internal/database/memory"
	"github.com/osse101/StreamRealm_Go/internal/domain"
)

type fakeResolver struct {
	sessions map[string]*domain.Session
}

func (f fakeResolver) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, domain.ErrSessionNotFound
}

// readFrames reads until n event lines have been seen. Ids are returned as "#<id>".
func readFrames(t *testing.T, r *bufio.Reader, n int) []string {
	t.Helper()
	var frames []string
	for seen := 0; seen < n; {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "id: "):
			frames = append(frames, "#"+strings.TrimSpace(strings.TrimPrefix(line, "id: ")))
		case strings.HasPrefix(line, "event: "):
			frames = append(frames, strings.TrimSpace(strings.TrimPrefix(line, "event: ")))
			seen++
		}
	}
	return frames
}

func newStreamServer(t *testing.T) (*Hub, *memory.GameEvents, *domain.Session, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	hub.Start()
	t.Cleanup(hub.Stop)

	store := memory.NewGameEvents()
	sess := &domain.Session{ID: uuid.New(), UserID: "viewer", Token: "tok"}
	srv := httptest.NewServer(Handler(hub, fakeResolver{sessions: map[string]*domain.Session{"tok": sess}}, store))
	t.Cleanup(srv.Close)
	return hub, store, sess, srv
}

func TestHandler_RejectsUnknownSession(t *testing.T) {
	_, _, _, srv := newStreamServer(t)

	resp, err := http.Get(srv.URL + "?token=bogus")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_StreamsLiveEvents(t *testing.T) {
	hub, _, sess, srv := newStreamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(HeaderSessionToken, "tok")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, []string{EventTypeConnected}, readFrames(t, r, 1))

	waitForClients(t, hub, 1)
	hub.Notify(domain.GameEvent{SessionID: uuid.New(), Revision: 1, Type: domain.GameEventTradeSettled})
	hub.Notify(domain.GameEvent{SessionID: sess.ID, Revision: 1, Type: domain.GameEventListingCreated})

	assert.Equal(t, []string{"#1", string(domain.GameEventListingCreated)}, readFrames(t, r, 1))
}

func TestHandler_ReplaysAfterLastEventID(t *testing.T) {
	_, store, sess, srv := newStreamServer(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, sess.ID, domain.GameEventTradeSettled, []byte(`{}`))
		require.NoError(t, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+"?token=tok", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderLastEventID, "1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	frames := readFrames(t, r, 3)
	assert.Equal(t, []string{EventTypeConnected, "#2", "trade.settled", "#3", "trade.settled"}, frames)
}
