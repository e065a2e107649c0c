package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/session"
)

// HeaderSessionToken carries the caller's session token
const HeaderSessionToken = "X-Session-Token"

// maxRequestBody bounds decoded JSON bodies
const maxRequestBody = 1 << 16

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// DecodeAndValidateRequest decodes a JSON request body and validates it.
// If it returns an error the response has already been written.
//
//	var req SellRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Sell item"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		log.Warn(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}

	log.Debug(fmt.Sprintf("%s request decoded", actionName))

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}

	return nil
}

// GetQueryParam retrieves a required query parameter.
// If ok is false the response has already been written.
func GetQueryParam(r *http.Request, w http.ResponseWriter, paramName string) (string, bool) {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		logger.FromContext(r.Context()).Warn(fmt.Sprintf("Missing %s query parameter", paramName))
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, paramName))
		return "", false
	}
	return value, true
}

// GetOptionalQueryParam returns the query parameter or defaultValue when absent
func GetOptionalQueryParam(r *http.Request, paramName string, defaultValue string) string {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetIntQueryParam parses an optional integer query parameter
func GetIntQueryParam(r *http.Request, w http.ResponseWriter, paramName string, defaultValue int64) (int64, bool) {
	raw := r.URL.Query().Get(paramName)
	if raw == "" {
		return defaultValue, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, paramName))
		return 0, false
	}
	return v, true
}

// GetUUIDPathParam parses a chi URL parameter as a UUID
func GetUUIDPathParam(r *http.Request, w http.ResponseWriter, paramName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidPathParam, paramName))
		return uuid.Nil, false
	}
	return id, true
}

// requireSession resolves the X-Session-Token header.
// If ok is false the response has already been written.
func requireSession(w http.ResponseWriter, r *http.Request, sessions session.Resolver) (*domain.Session, bool) {
	token := r.Header.Get(HeaderSessionToken)
	if token == "" {
		respondError(w, http.StatusUnauthorized, ErrMsgMissingSessionToken)
		return nil, false
	}
	sess, err := sessions.ResolveSession(r.Context(), token)
	if err != nil {
		respondServiceError(w, r, "Resolve session", err)
		return nil, false
	}
	return sess, true
}

// mustParseUUID parses an id that already passed the uuid validator tag
func mustParseUUID(raw string) uuid.UUID {
	id, _ := uuid.Parse(raw)
	return id
}
