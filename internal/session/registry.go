package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// Resolver maps session tokens to sessions
type Resolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
}

// Registry issues sessions and binds them to characters.
// Sessions live in an expiring LRU keyed by token.
type Registry struct {
	store  repository.Store
	tokens *expirable.LRU[string, *domain.Session]
	ttl    time.Duration
}

// NewRegistry creates a session registry holding at most size sessions for ttl each
func NewRegistry(store repository.Store, size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		store:  store,
		tokens: expirable.NewLRU[string, *domain.Session](size, nil, ttl),
		ttl:    ttl,
	}
}

// CreateSession opens a new session for userID
func (r *Registry) CreateSession(ctx context.Context, userID string) (*domain.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	sess := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
	r.tokens.Add(token, sess)
	logger.FromContext(ctx).Info(LogMsgSessionCreated, "session_id", sess.ID, "user_id", userID)
	return sess, nil
}

// ResolveSession returns the live session for token
func (r *Registry) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	sess, ok := r.tokens.Get(token)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// EndSession forgets a session
func (r *Registry) EndSession(ctx context.Context, token string) {
	r.tokens.Remove(token)
}

// CreateCharacter creates a character for the session's user, owned by that session
func (r *Registry) CreateCharacter(ctx context.Context, sess *domain.Session, name string) (*domain.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: character name is required", domain.ErrInvalidInput)
	}
	owner := sess.UserID
	sessionID := sess.ID
	character := &domain.Character{
		UserID:             sess.UserID,
		Name:               name,
		Coins:              StartingCoins,
		Skills:             domain.Skills{Attack: 1, Defense: 1, Ranged: 1, Magic: 1, Healing: 1, Slayer: 1},
		OwnerSessionUserID: &owner,
		ActiveSessionID:    &sessionID,
		CreatedAt:          time.Now().UTC(),
	}
	if err := r.store.CreateCharacter(ctx, character); err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	logger.FromContext(ctx).Info(LogMsgCharacterCreated, "character_id", character.ID, "session_id", sess.ID)
	return character, nil
}

// BeginPlay makes sess the owner and active session of a character.
// A different user's ownership is taken over only when the character has no owner.
func (r *Registry) BeginPlay(ctx context.Context, sess *domain.Session, characterID uuid.UUID) (*domain.Character, error) {
	log := logger.FromContext(ctx)

	tx, err := r.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	character, err := tx.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if character.UserID != sess.UserID {
		return nil, fmt.Errorf("%w: character %s belongs to another user", domain.ErrNotOwner, characterID)
	}
	if character.OwnerSessionUserID != nil && *character.OwnerSessionUserID != sess.UserID {
		return nil, fmt.Errorf("%w: character %s is owned by another session", domain.ErrNotOwner, characterID)
	}

	owner := sess.UserID
	sessionID := sess.ID
	if err := tx.SetCharacterOwner(ctx, characterID, &owner, &sessionID); err != nil {
		return nil, fmt.Errorf("failed to set owner: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	character.OwnerSessionUserID = &owner
	character.ActiveSessionID = &sessionID
	log.Info(LogMsgPlayStarted, "character_id", characterID, "session_id", sess.ID)
	return character, nil
}

func newToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
