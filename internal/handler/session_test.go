package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/StreamRealm_Go/internal/domain"
)

type mockEventReader struct {
	mock.Mock
}

func (m *mockEventReader) EventsAbove(ctx context.Context, sessionID uuid.UUID, revision int64, limit int) ([]domain.GameEvent, error) {
	args := m.Called(ctx, sessionID, revision, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GameEvent), args.Error(1)
}

func TestHandleCreateSession(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"Success", map[string]string{"user_id": "alice"}, http.StatusCreated},
		{"Missing user", map[string]string{}, http.StatusBadRequest},
		{"Unknown field", map[string]string{"user_id": "alice", "admin": "yes"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/sessions", "", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	t.Run("Token resolves", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/sessions", "", map[string]string{"user_id": "bob"})
		resp := decode[CreateSessionResponse](t, w)
		sess, err := api.sessions.ResolveSession(context.Background(), resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.SessionID, sess.ID)
		assert.Equal(t, "bob", sess.UserID)
	})
}

func TestHandleBeginPlay(t *testing.T) {
	api := newTestAPI(t)
	token, characterID := api.player(t, "alice")

	t.Run("Missing token", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/sessions/play", "", BeginPlayRequest{CharacterID: characterID})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgMissingSessionToken)
	})

	t.Run("Unknown token", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/sessions/play", "bogus", BeginPlayRequest{CharacterID: characterID})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgSessionNotFoundError)
	})

	t.Run("New session of the same user takes over", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/sessions", "", map[string]string{"user_id": "alice"})
		second := decode[CreateSessionResponse](t, w)

		w = api.do(t, http.MethodPost, "/sessions/play", second.Token, BeginPlayRequest{CharacterID: characterID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		c := decode[domain.Character](t, w)
		require.NotNil(t, c.ActiveSessionID)
		assert.Equal(t, second.SessionID, *c.ActiveSessionID)
	})

	t.Run("Other user is forbidden", func(t *testing.T) {
		otherToken, _ := api.player(t, "mallory")
		w := api.do(t, http.MethodPost, "/sessions/play", otherToken, BeginPlayRequest{CharacterID: characterID})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Unknown character", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/sessions/play", token, BeginPlayRequest{CharacterID: uuid.NewString()})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Invalid id", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/sessions/play", token, BeginPlayRequest{CharacterID: "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "character_id")
	})
}

func TestHandleGetEvents(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodPost, "/sessions", "", map[string]string{"user_id": "alice"})
	sess := decode[CreateSessionResponse](t, w)

	events := []domain.GameEvent{
		{SessionID: sess.SessionID, Revision: 3, Type: domain.GameEventTradeSettled, Payload: json.RawMessage(`{}`)},
		{SessionID: sess.SessionID, Revision: 4, Type: domain.GameEventListingCreated, Payload: json.RawMessage(`{}`)},
	}

	t.Run("Returns events above revision", func(t *testing.T) {
		reader := new(mockEventReader)
		reader.On("EventsAbove", mock.Anything, sess.SessionID, int64(2), 0).Return(events, nil)

		req := httptest.NewRequest(http.MethodGet, "/events?revision=2", nil)
		req.Header.Set(HeaderSessionToken, sess.Token)
		rec := httptest.NewRecorder()
		HandleGetEvents(api.sessions, reader).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[EventsResponse](t, rec)
		assert.Len(t, resp.Events, 2)
		assert.Equal(t, int64(4), resp.Revision)
		reader.AssertExpectations(t)
	})

	t.Run("No events keeps the revision", func(t *testing.T) {
		reader := new(mockEventReader)
		reader.On("EventsAbove", mock.Anything, sess.SessionID, int64(9), 0).Return([]domain.GameEvent{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/events?revision=9", nil)
		req.Header.Set(HeaderSessionToken, sess.Token)
		rec := httptest.NewRecorder()
		HandleGetEvents(api.sessions, reader).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(9), decode[EventsResponse](t, rec).Revision)
	})

	t.Run("Bad revision", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events?revision=abc", nil)
		req.Header.Set(HeaderSessionToken, sess.Token)
		rec := httptest.NewRecorder()
		HandleGetEvents(api.sessions, new(mockEventReader)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Reader failure", func(t *testing.T) {
		reader := new(mockEventReader)
		reader.On("EventsAbove", mock.Anything, sess.SessionID, int64(0), 0).Return(nil, assert.AnError)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set(HeaderSessionToken, sess.Token)
		rec := httptest.NewRecorder()
		HandleGetEvents(api.sessions, reader).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), ErrMsgGenericServerError)
	})
}
