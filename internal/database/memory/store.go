// Package memory provides in-process implementations of the repository
// interfaces. Transactions are optimistic: every scope a transaction touches
// is snapshotted with its version and the commit fails with
// repository.ErrConflict if any of those versions moved in the meantime.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

type scopeKind int

const (
	scopeCharacter scopeKind = iota
	scopeInventory
	scopeMarket
)

type scopeKey struct {
	kind scopeKind
	id   string
}

func characterScope(id uuid.UUID) scopeKey { return scopeKey{kind: scopeCharacter, id: id.String()} }
func inventoryScope(id uuid.UUID) scopeKey { return scopeKey{kind: scopeInventory, id: id.String()} }
func marketScope(itemID string) scopeKey   { return scopeKey{kind: scopeMarket, id: itemID} }

// Store is an in-memory repository.Store
type Store struct {
	mu         sync.RWMutex
	characters map[uuid.UUID]*domain.Character
	stacks     map[uuid.UUID][]domain.InventoryStack
	listings   map[string][]domain.MarketListing
	listingIdx map[uuid.UUID]string
	versions   map[scopeKey]uint64

	sequence atomic.Int64
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		characters: make(map[uuid.UUID]*domain.Character),
		stacks:     make(map[uuid.UUID][]domain.InventoryStack),
		listings:   make(map[string][]domain.MarketListing),
		listingIdx: make(map[uuid.UUID]string),
		versions:   make(map[scopeKey]uint64),
	}
}

var _ repository.Store = (*Store)(nil)

// CreateCharacter inserts a character, assigning an id when empty
func (s *Store) CreateCharacter(ctx context.Context, character *domain.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if character.ID == uuid.Nil {
		character.ID = uuid.New()
	}
	if _, exists := s.characters[character.ID]; exists {
		return fmt.Errorf("%w: character %s already exists", domain.ErrInvalidInput, character.ID)
	}
	c := *character
	s.characters[c.ID] = &c
	s.versions[characterScope(c.ID)]++
	return nil
}

func (s *Store) GetCharacter(ctx context.Context, characterID uuid.UUID) (*domain.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[characterID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, characterID)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) GetStacks(ctx context.Context, characterID uuid.UUID) ([]domain.InventoryStack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneStacks(s.stacks[characterID]), nil
}

func (s *Store) GetListingsByItem(ctx context.Context, itemID string) ([]domain.MarketListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]domain.MarketListing(nil), s.listings[itemID]...)
	sortListings(out)
	return out, nil
}

func (s *Store) ListListings(ctx context.Context, q repository.ListingQuery) ([]domain.MarketListing, int, error) {
	s.mu.RLock()
	var all []domain.MarketListing
	if len(q.ItemIDs) > 0 {
		for _, id := range q.ItemIDs {
			all = append(all, s.listings[id]...)
		}
	} else {
		for _, ls := range s.listings {
			all = append(all, ls...)
		}
	}
	s.mu.RUnlock()

	matched := all[:0]
	for _, l := range all {
		if q.SellerID != nil && l.SellerCharacterID != *q.SellerID {
			continue
		}
		matched = append(matched, l)
	}
	sortListings(matched)

	total := len(matched)
	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Size > 0 && start+q.Size < total {
		end = start + q.Size
	}
	return append([]domain.MarketListing(nil), matched[start:end]...), total, nil
}

// BeginTx starts an optimistic transaction
func (s *Store) BeginTx(ctx context.Context) (repository.Tx, error) {
	return &tx{
		store:      s,
		versions:   make(map[scopeKey]uint64),
		dirty:      make(map[scopeKey]bool),
		characters: make(map[uuid.UUID]*domain.Character),
		stacks:     make(map[uuid.UUID][]domain.InventoryStack),
		listings:   make(map[string][]domain.MarketListing),
	}, nil
}

func (s *Store) nextSequence() int64 {
	return s.sequence.Add(1)
}

func sortListings(ls []domain.MarketListing) {
	sort.SliceStable(ls, func(i, j int) bool { return domain.ListingBefore(&ls[i], &ls[j]) })
}

func cloneStacks(in []domain.InventoryStack) []domain.InventoryStack {
	out := make([]domain.InventoryStack, 0, len(in))
	for i := range in {
		out = append(out, *in[i].Clone())
	}
	return out
}
