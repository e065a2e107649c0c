// Package postgres implements the repositories on PostgreSQL through pgx.
// Trades run at SERIALIZABLE isolation and lock the rows they read, so a
// concurrent buyer either waits or fails with repository.ErrConflict.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// querier is the part of pgxpool.Pool and pgx.Tx the reads need
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the pgx implementation of repository.Store
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a store on pool
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

var _ repository.Store = (*Store)(nil)

// BeginTx starts a SERIALIZABLE transaction
func (s *Store) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &pgTx{tx: tx}, nil
}

func (s *Store) CreateCharacter(ctx context.Context, c *domain.Character) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	skills, err := json.Marshal(c.Skills)
	if err != nil {
		return fmt.Errorf(ErrMsgMarshalSkills, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO characters (`+characterColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.UserID, c.Name, c.Coins, skills, c.OwnerSessionUserID, c.ActiveSessionID, c.CreatedAt)
	if isCode(err, PgErrorCodeUniqueViolation) {
		return fmt.Errorf("%w: character %s already exists", domain.ErrInvalidInput, c.ID)
	}
	return err
}

func (s *Store) GetCharacter(ctx context.Context, characterID uuid.UUID) (*domain.Character, error) {
	return getCharacter(ctx, s.db, characterID, false)
}

func (s *Store) GetStacks(ctx context.Context, characterID uuid.UUID) ([]domain.InventoryStack, error) {
	return getStacks(ctx, s.db, characterID, false)
}

func (s *Store) GetListingsByItem(ctx context.Context, itemID string) ([]domain.MarketListing, error) {
	return getListingsByItem(ctx, s.db, itemID, false)
}

// ListListings pages through listings in buy priority order
func (s *Store) ListListings(ctx context.Context, q repository.ListingQuery) ([]domain.MarketListing, int, error) {
	where := `WHERE ($1::text[] IS NULL OR item_id = ANY($1)) AND ($2::uuid IS NULL OR seller_character_id = $2)`
	var itemIDs []string
	if len(q.ItemIDs) > 0 {
		itemIDs = q.ItemIDs
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM market_listings `+where, itemIDs, q.SellerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+listingColumns+` FROM market_listings `+where+` `+listingOrder+`
		OFFSET $3 LIMIT $4`, itemIDs, q.SellerID, q.Offset, q.Size)
	if err != nil {
		return nil, 0, err
	}
	listings, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func lockClause(forUpdate bool) string {
	if forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

func getCharacter(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*domain.Character, error) {
	row := q.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1`+lockClause(forUpdate), id)
	c, err := scanCharacter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, id)
	}
	return c, mapErr(err)
}

func getStacks(ctx context.Context, q querier, characterID uuid.UUID, forUpdate bool) ([]domain.InventoryStack, error) {
	rows, err := q.Query(ctx, `
		SELECT `+stackColumns+` FROM inventory_stacks
		WHERE character_id = $1 ORDER BY insert_seq`+lockClause(forUpdate), characterID)
	if err != nil {
		return nil, mapErr(err)
	}
	stacks, err := scanStacks(rows)
	return stacks, mapErr(err)
}

func getListingsByItem(ctx context.Context, q querier, itemID string, forUpdate bool) ([]domain.MarketListing, error) {
	rows, err := q.Query(ctx, `
		SELECT `+listingColumns+` FROM market_listings
		WHERE item_id = $1 `+listingOrder+lockClause(forUpdate), itemID)
	if err != nil {
		return nil, mapErr(err)
	}
	listings, err := scanListings(rows)
	return listings, mapErr(err)
}
