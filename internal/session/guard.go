package session

import (
	"context"
	"fmt"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/metrics"
)

// Guard decides whether a session may mutate a character
type Guard interface {
	Authorize(ctx context.Context, sess *domain.Session, character *domain.Character) error
}

// OwnershipGuard allows a session only when its user currently owns the character
type OwnershipGuard struct{}

// NewGuard creates the ownership guard
func NewGuard() *OwnershipGuard {
	return &OwnershipGuard{}
}

// Authorize returns domain.ErrNotOwner when the session does not own the character
func (OwnershipGuard) Authorize(ctx context.Context, sess *domain.Session, character *domain.Character) error {
	if sess == nil {
		metrics.OwnershipDenialsTotal.Inc()
		return domain.ErrSessionNotFound
	}
	if !character.IsOwnedBy(sess.UserID) {
		metrics.OwnershipDenialsTotal.Inc()
		logger.FromContext(ctx).Warn(LogMsgOwnershipDenied,
			"character_id", character.ID,
			"session_user_id", sess.UserID)
		return fmt.Errorf("%w: character %s, user %s", domain.ErrNotOwner, character.ID, sess.UserID)
	}
	return nil
}
