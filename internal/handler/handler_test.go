package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/osse101/StreamRealm_Go/internal/concurrency"
	"github.com/osse101/StreamRealm_Go/internal/database/memory"
	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/inventory"
	"github.com/osse101/StreamRealm_Go/internal/market"
	"github.com/osse101/StreamRealm_Go/internal/repository"
	"github.com/osse101/StreamRealm_Go/internal/session"
	"github.com/osse101/StreamRealm_Go/internal/testing/fixtures"
)

type nopPublisher struct{}

func (nopPublisher) PublishWithRetry(context.Context, event.Event) {}

// testAPI wires real services over the memory store behind a chi router
type testAPI struct {
	router   chi.Router
	store    *memory.Store
	sessions *session.Registry
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	InitValidator()

	store := memory.NewStore()
	catalog := fixtures.Catalog(t)
	guard := session.NewGuard()
	locks := concurrency.NewLockManager()
	validator := inventory.NewValidator(store, catalog, inventory.NewReporter(nil))
	retry := repository.RetryPolicy{MaxAttempts: 10, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	sessions := session.NewRegistry(store, 100, time.Hour)
	invSvc := inventory.NewService(store, catalog, guard, locks, validator, retry)
	marketSvc := market.NewService(store, catalog, guard, locks, validator, nopPublisher{}, retry)

	r := chi.NewRouter()
	r.Post("/sessions", HandleCreateSession(sessions))
	r.Post("/sessions/play", HandleBeginPlay(sessions))
	r.Post("/characters", HandleCreateCharacter(sessions))
	r.Route("/characters/{id}/inventory", func(r chi.Router) {
		r.Get("/", HandleGetInventory(invSvc))
		r.Post("/add", HandleAddItem(invSvc, sessions))
		r.Post("/remove", HandleRemoveItem(invSvc, sessions))
		r.Post("/equip", HandleEquipItem(invSvc, sessions))
		r.Post("/unequip", HandleUnequipItem(invSvc, sessions))
		r.Post("/equip-best", HandleEquipBestItems(invSvc, sessions))
	})
	r.Route("/market", func(r chi.Router) {
		r.Post("/sell", HandleSellItem(marketSvc, sessions))
		r.Post("/buy", HandleBuyItem(marketSvc, sessions))
		r.Post("/cancel", HandleCancelListing(marketSvc, sessions))
		r.Get("/items", HandleGetMarketItems(marketSvc))
		r.Get("/value", HandleGetItemValue(marketSvc))
	})

	return &testAPI{router: r, store: store, sessions: sessions}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(HeaderSessionToken, token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// player opens a session and creates a character through the API
func (a *testAPI) player(t *testing.T, userID string) (token, characterID string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/sessions", "", map[string]string{"user_id": userID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token = decode[CreateSessionResponse](t, w).Token

	w = a.do(t, http.MethodPost, "/characters", token, map[string]string{"name": userID + "-hero"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	return token, c.ID
}
