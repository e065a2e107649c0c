package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	// Headers are already sent, so encoding failures can only be logged
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		logger.Error(LogMsgEncodeFailed, "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		logger.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and writes the mapped status
func respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", "error", err)
	} else {
		log.Warn(op+" rejected", "error", err, "status", status)
	}
	respondError(w, status, msg)
}

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and
// messages a client can act on. Unknown errors never leak their text.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, ErrMsgSessionNotFoundError
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden, ErrMsgNotOwnerError
	case errors.Is(err, domain.ErrCharacterNotFound):
		return http.StatusNotFound, ErrMsgCharacterNotFoundError
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, ErrMsgItemNotFoundError
	case errors.Is(err, domain.ErrStackNotFound):
		return http.StatusNotFound, ErrMsgStackNotFoundError
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound, ErrMsgListingNotFoundError
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return http.StatusBadRequest, ErrMsgInsufficientItemsErr
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, ErrMsgNotEnoughMoneyError
	case errors.Is(err, domain.ErrAlreadyEquipped):
		return http.StatusConflict, ErrMsgAlreadyEquippedError
	case errors.Is(err, domain.ErrNotEquipped):
		return http.StatusConflict, ErrMsgNotEquippedError
	case errors.Is(err, domain.ErrCannotEquip):
		return http.StatusBadRequest, ErrMsgCannotEquipError
	case errors.Is(err, domain.ErrSoulbound):
		return http.StatusBadRequest, ErrMsgSoulboundError
	case errors.Is(err, domain.ErrInvalidEnchantment):
		return http.StatusBadRequest, ErrMsgInvalidEnchantmentError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestError
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, ErrMsgConflictError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
