package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
)

// SessionService is the session registry surface the handlers need
type SessionService interface {
	CreateSession(ctx context.Context, userID string) (*domain.Session, error)
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
	CreateCharacter(ctx context.Context, sess *domain.Session, name string) (*domain.Character, error)
	BeginPlay(ctx context.Context, sess *domain.Session, characterID uuid.UUID) (*domain.Character, error)
}

// EventReader reads a session's game events
type EventReader interface {
	EventsAbove(ctx context.Context, sessionID uuid.UUID, revision int64, limit int) ([]domain.GameEvent, error)
}

type CreateSessionRequest struct {
	UserID string `json:"user_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
}

type CreateSessionResponse struct {
	Token     string    `json:"token"`
	SessionID uuid.UUID `json:"session_id"`
	UserID    string    `json:"user_id"`
}

type CreateCharacterRequest struct {
	Name string `json:"name" validate:"required,max=64,excludesall=\x00\n\r\t"`
}

type BeginPlayRequest struct {
	CharacterID string `json:"character_id" validate:"required,uuid"`
}

type EventsResponse struct {
	Events   []domain.GameEvent `json:"events"`
	Revision int64              `json:"revision"`
}

// HandleCreateSession opens a session for a user
func HandleCreateSession(sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Create session"); err != nil {
			return
		}

		sess, err := sessions.CreateSession(r.Context(), req.UserID)
		if err != nil {
			respondServiceError(w, r, "Create session", err)
			return
		}

		respondJSON(w, http.StatusCreated, CreateSessionResponse{
			Token:     sess.Token,
			SessionID: sess.ID,
			UserID:    sess.UserID,
		})
	}
}

// HandleCreateCharacter creates a character owned by the calling session
func HandleCreateCharacter(sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}

		var req CreateCharacterRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Create character"); err != nil {
			return
		}

		character, err := sessions.CreateCharacter(r.Context(), sess, req.Name)
		if err != nil {
			respondServiceError(w, r, "Create character", err)
			return
		}
		respondJSON(w, http.StatusCreated, character)
	}
}

// HandleBeginPlay binds the calling session to a character
func HandleBeginPlay(sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}

		var req BeginPlayRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Begin play"); err != nil {
			return
		}

		character, err := sessions.BeginPlay(r.Context(), sess, mustParseUUID(req.CharacterID))
		if err != nil {
			respondServiceError(w, r, "Begin play", err)
			return
		}
		respondJSON(w, http.StatusOK, character)
	}
}

// HandleGetEvents returns the session's game events above ?revision
func HandleGetEvents(sessions SessionService, events EventReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}
		revision, ok := GetIntQueryParam(r, w, "revision", 0)
		if !ok {
			return
		}
		limit, ok := GetIntQueryParam(r, w, "limit", 0)
		if !ok {
			return
		}

		evs, err := events.EventsAbove(r.Context(), sess.ID, revision, int(limit))
		if err != nil {
			respondServiceError(w, r, "Get events", err)
			return
		}

		latest := revision
		if n := len(evs); n > 0 {
			latest = evs[n-1].Revision
		}
		logger.FromContext(r.Context()).Debug("Events polled", "session_id", sess.ID, "above", revision, "count", len(evs))
		respondJSON(w, http.StatusOK, EventsResponse{Events: evs, Revision: latest})
	}
}
