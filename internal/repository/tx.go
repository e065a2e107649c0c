package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
)

// ErrConflict means the transaction lost a race and may be retried from a fresh read
var ErrConflict = errors.New("transaction conflict")

// Tx defines the interface for transactional operations.
// Reads inside a Tx lock or version the rows they return; writes are only visible after Commit.
type Tx interface {
	GetCharacter(ctx context.Context, characterID uuid.UUID) (*domain.Character, error)
	SetCharacterOwner(ctx context.Context, characterID uuid.UUID, ownerUserID *string, sessionID *uuid.UUID) error
	// AdjustCoins adds delta to the balance and returns the new balance.
	// It fails with domain.ErrInsufficientFunds if the balance would go negative.
	AdjustCoins(ctx context.Context, characterID uuid.UUID, delta int64) (int64, error)

	GetStacks(ctx context.Context, characterID uuid.UUID) ([]domain.InventoryStack, error)
	UpsertStack(ctx context.Context, stack *domain.InventoryStack) error
	DeleteStack(ctx context.Context, characterID, stackID uuid.UUID) error

	// GetListingsByItem returns every listing for the item ordered by price, then creation
	GetListingsByItem(ctx context.Context, itemID string) ([]domain.MarketListing, error)
	GetListing(ctx context.Context, listingID uuid.UUID) (*domain.MarketListing, error)
	InsertListing(ctx context.Context, listing *domain.MarketListing) error
	UpdateListingAmount(ctx context.Context, listingID uuid.UUID, amount int64) error
	DeleteListing(ctx context.Context, listingID uuid.UUID) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is the transactional character, inventory and market repository
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)

	CreateCharacter(ctx context.Context, character *domain.Character) error
	GetCharacter(ctx context.Context, characterID uuid.UUID) (*domain.Character, error)
	GetStacks(ctx context.Context, characterID uuid.UUID) ([]domain.InventoryStack, error)
	GetListingsByItem(ctx context.Context, itemID string) ([]domain.MarketListing, error)
	// ListListings returns one page of listings matching filter and the total match count
	ListListings(ctx context.Context, filter ListingQuery) ([]domain.MarketListing, int, error)
}

// ListingQuery pages through listings. ItemIDs restricts to a set of item ids when non-empty.
type ListingQuery struct {
	ItemIDs  []string
	SellerID *uuid.UUID
	Offset   int
	Size     int
}
