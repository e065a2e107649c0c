package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/osse101/StreamRealm_Go/internal/eventlog"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// HandleGetAuditLog lists audited market events, newest first.
// Query: character_id, event_type, since (RFC 3339), limit.
func HandleGetAuditLog(svc eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := GetIntQueryParam(r, w, "limit", defaultAuditLimit)
		if !ok {
			return
		}
		filter := repository.EventLogFilter{Limit: int(min(max(limit, 1), maxAuditLimit))}

		if v := GetOptionalQueryParam(r, "character_id", ""); v != "" {
			filter.CharacterID = &v
		}
		if v := GetOptionalQueryParam(r, "event_type", ""); v != "" {
			filter.EventType = &v
		}
		if v := GetOptionalQueryParam(r, "since", ""); v != "" {
			since, err := time.Parse(time.RFC3339, v)
			if err != nil {
				respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, "since"))
				return
			}
			filter.Since = &since
		}

		entries, err := svc.History(r.Context(), filter)
		if err != nil {
			respondServiceError(w, r, "Get audit log", err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: entries})
	}
}
