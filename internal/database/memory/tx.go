package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

var errTxClosed = errors.New(domain.ErrMsgTxClosed)

type tx struct {
	store  *Store
	closed bool

	versions map[scopeKey]uint64
	dirty    map[scopeKey]bool

	characters map[uuid.UUID]*domain.Character
	stacks     map[uuid.UUID][]domain.InventoryStack
	listings   map[string][]domain.MarketListing
}

func (t *tx) check() error {
	if t.closed {
		return errTxClosed
	}
	return nil
}

func (t *tx) character(id uuid.UUID) (*domain.Character, error) {
	if c, ok := t.characters[id]; ok {
		return c, nil
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	c, ok := t.store.characters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, id)
	}
	cp := *c
	t.characters[id] = &cp
	t.versions[characterScope(id)] = t.store.versions[characterScope(id)]
	return &cp, nil
}

func (t *tx) inventory(characterID uuid.UUID) []domain.InventoryStack {
	if st, ok := t.stacks[characterID]; ok {
		return st
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	st := cloneStacks(t.store.stacks[characterID])
	t.stacks[characterID] = st
	t.versions[inventoryScope(characterID)] = t.store.versions[inventoryScope(characterID)]
	return st
}

func (t *tx) market(itemID string) []domain.MarketListing {
	if ls, ok := t.listings[itemID]; ok {
		return ls
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	ls := append([]domain.MarketListing(nil), t.store.listings[itemID]...)
	t.listings[itemID] = ls
	t.versions[marketScope(itemID)] = t.store.versions[marketScope(itemID)]
	return ls
}

func (t *tx) listingItem(listingID uuid.UUID) (string, bool) {
	for itemID, ls := range t.listings {
		for i := range ls {
			if ls[i].ID == listingID {
				return itemID, true
			}
		}
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	itemID, ok := t.store.listingIdx[listingID]
	return itemID, ok
}

func (t *tx) GetCharacter(ctx context.Context, characterID uuid.UUID) (*domain.Character, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	c, err := t.character(characterID)
	if err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (t *tx) SetCharacterOwner(ctx context.Context, characterID uuid.UUID, ownerUserID *string, sessionID *uuid.UUID) error {
	if err := t.check(); err != nil {
		return err
	}
	c, err := t.character(characterID)
	if err != nil {
		return err
	}
	c.OwnerSessionUserID = ownerUserID
	c.ActiveSessionID = sessionID
	t.dirty[characterScope(characterID)] = true
	return nil
}

func (t *tx) AdjustCoins(ctx context.Context, characterID uuid.UUID, delta int64) (int64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	c, err := t.character(characterID)
	if err != nil {
		return 0, err
	}
	if c.Coins+delta < 0 {
		return c.Coins, fmt.Errorf("%w: balance %d, delta %d", domain.ErrInsufficientFunds, c.Coins, delta)
	}
	c.Coins += delta
	t.dirty[characterScope(characterID)] = true
	return c.Coins, nil
}

func (t *tx) GetStacks(ctx context.Context, characterID uuid.UUID) ([]domain.InventoryStack, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return cloneStacks(t.inventory(characterID)), nil
}

func (t *tx) UpsertStack(ctx context.Context, stack *domain.InventoryStack) error {
	if err := t.check(); err != nil {
		return err
	}
	if stack.Amount <= 0 {
		return fmt.Errorf("%w: stack %s amount %d", domain.ErrInvalidInput, stack.ID, stack.Amount)
	}
	st := t.inventory(stack.CharacterID)
	cp := *stack.Clone()
	cp.UpdatedAt = time.Now()
	replaced := false
	for i := range st {
		if st[i].ID == stack.ID {
			st[i] = cp
			replaced = true
			break
		}
	}
	if !replaced {
		st = append(st, cp)
	}
	t.stacks[stack.CharacterID] = st
	t.dirty[inventoryScope(stack.CharacterID)] = true
	return nil
}

func (t *tx) DeleteStack(ctx context.Context, characterID, stackID uuid.UUID) error {
	if err := t.check(); err != nil {
		return err
	}
	st := t.inventory(characterID)
	for i := range st {
		if st[i].ID == stackID {
			t.stacks[characterID] = append(st[:i:i], st[i+1:]...)
			t.dirty[inventoryScope(characterID)] = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrStackNotFound, stackID)
}

func (t *tx) GetListingsByItem(ctx context.Context, itemID string) ([]domain.MarketListing, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	out := append([]domain.MarketListing(nil), t.market(itemID)...)
	sortListings(out)
	return out, nil
}

func (t *tx) GetListing(ctx context.Context, listingID uuid.UUID) (*domain.MarketListing, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	itemID, ok := t.listingItem(listingID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
	}
	for _, l := range t.market(itemID) {
		if l.ID == listingID {
			cp := l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
}

func (t *tx) InsertListing(ctx context.Context, listing *domain.MarketListing) error {
	if err := t.check(); err != nil {
		return err
	}
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	if listing.Created.IsZero() {
		listing.Created = time.Now()
	}
	if listing.Sequence == 0 {
		listing.Sequence = t.store.nextSequence()
	}
	t.listings[listing.ItemID] = append(t.market(listing.ItemID), *listing)
	t.dirty[marketScope(listing.ItemID)] = true
	return nil
}

func (t *tx) UpdateListingAmount(ctx context.Context, listingID uuid.UUID, amount int64) error {
	if err := t.check(); err != nil {
		return err
	}
	if amount <= 0 {
		return t.DeleteListing(ctx, listingID)
	}
	itemID, ok := t.listingItem(listingID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
	}
	ls := t.market(itemID)
	for i := range ls {
		if ls[i].ID == listingID {
			ls[i].Amount = amount
			t.dirty[marketScope(itemID)] = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
}

func (t *tx) DeleteListing(ctx context.Context, listingID uuid.UUID) error {
	if err := t.check(); err != nil {
		return err
	}
	itemID, ok := t.listingItem(listingID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
	}
	ls := t.market(itemID)
	for i := range ls {
		if ls[i].ID == listingID {
			t.listings[itemID] = append(ls[:i:i], ls[i+1:]...)
			t.dirty[marketScope(itemID)] = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
}

// Commit validates every snapshot version and publishes dirty scopes atomically
func (t *tx) Commit(ctx context.Context) error {
	if err := t.check(); err != nil {
		return err
	}
	t.closed = true

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, seen := range t.versions {
		if s.versions[key] != seen {
			return fmt.Errorf("%w: scope %v changed", repository.ErrConflict, key)
		}
	}

	for key := range t.dirty {
		switch key.kind {
		case scopeCharacter:
			id := uuid.MustParse(key.id)
			c := *t.characters[id]
			s.characters[id] = &c
		case scopeInventory:
			id := uuid.MustParse(key.id)
			s.stacks[id] = cloneStacks(t.stacks[id])
		case scopeMarket:
			for _, old := range s.listings[key.id] {
				delete(s.listingIdx, old.ID)
			}
			ls := append([]domain.MarketListing(nil), t.listings[key.id]...)
			s.listings[key.id] = ls
			for _, l := range ls {
				s.listingIdx[l.ID] = key.id
			}
		}
		s.versions[key]++
	}
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true
	return nil
}
