package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

type pgTx struct {
	tx pgx.Tx
}

var _ repository.Tx = (*pgTx)(nil)

func (t *pgTx) GetCharacter(ctx context.Context, characterID uuid.UUID) (*domain.Character, error) {
	return getCharacter(ctx, t.tx, characterID, true)
}

func (t *pgTx) SetCharacterOwner(ctx context.Context, characterID uuid.UUID, ownerUserID *string, sessionID *uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE characters SET owner_session_user_id = $2, active_session_id = $3 WHERE id = $1`,
		characterID, ownerUserID, sessionID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, characterID)
	}
	return nil
}

// AdjustCoins applies delta only when the balance stays non-negative
func (t *pgTx) AdjustCoins(ctx context.Context, characterID uuid.UUID, delta int64) (int64, error) {
	var balance int64
	err := t.tx.QueryRow(ctx, `
		UPDATE characters SET coins = coins + $2
		WHERE id = $1 AND coins + $2 >= 0
		RETURNING coins`, characterID, delta).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapErr(err)
	}

	c, err := getCharacter(ctx, t.tx, characterID, false)
	if err != nil {
		return 0, err
	}
	return c.Coins, fmt.Errorf("%w: balance %d, delta %d", domain.ErrInsufficientFunds, c.Coins, delta)
}

func (t *pgTx) GetStacks(ctx context.Context, characterID uuid.UUID) ([]domain.InventoryStack, error) {
	return getStacks(ctx, t.tx, characterID, true)
}

func (t *pgTx) UpsertStack(ctx context.Context, s *domain.InventoryStack) error {
	if s.Amount <= 0 {
		return fmt.Errorf("%w: stack %s amount %d", domain.ErrInvalidInput, s.ID, s.Amount)
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO inventory_stacks (`+stackColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			equipped = EXCLUDED.equipped,
			tag = EXCLUDED.tag,
			enchantment = EXCLUDED.enchantment,
			transmogrification_id = EXCLUDED.transmogrification_id,
			soulbound = EXCLUDED.soulbound,
			flags = EXCLUDED.flags,
			name_override = EXCLUDED.name_override,
			updated_at = NOW()
		WHERE inventory_stacks.character_id = EXCLUDED.character_id`,
		s.ID, s.CharacterID, s.ItemID, s.Amount, s.Equipped, s.Tag, s.Enchantment.String(),
		s.TransmogrificationID, s.Soulbound, s.Flags, s.NameOverride)
	return mapErr(err)
}

func (t *pgTx) DeleteStack(ctx context.Context, characterID, stackID uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM inventory_stacks WHERE id = $1 AND character_id = $2`, stackID, characterID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrStackNotFound, stackID)
	}
	return nil
}

func (t *pgTx) GetListingsByItem(ctx context.Context, itemID string) ([]domain.MarketListing, error) {
	return getListingsByItem(ctx, t.tx, itemID, true)
}

func (t *pgTx) GetListing(ctx context.Context, listingID uuid.UUID) (*domain.MarketListing, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+listingColumns+` FROM market_listings WHERE id = $1 FOR UPDATE`, listingID)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
	}
	return l, mapErr(err)
}

func (t *pgTx) InsertListing(ctx context.Context, l *domain.MarketListing) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO market_listings (id, seller_character_id, item_id, amount, price_per_item, created)
		VALUES ($1, $2, $3, $4, $5::numeric, COALESCE($6, NOW()))
		RETURNING created, sequence`,
		l.ID, l.SellerCharacterID, l.ItemID, l.Amount, l.PricePerItem.String(), nullTime(l.Created)).
		Scan(&l.Created, &l.Sequence)
	if isCode(err, PgErrorCodeCheckViolation) {
		return fmt.Errorf("%w: listing amount and price must be positive", domain.ErrInvalidInput)
	}
	return mapErr(err)
}

// UpdateListingAmount deletes the listing when amount drops to zero
func (t *pgTx) UpdateListingAmount(ctx context.Context, listingID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return t.DeleteListing(ctx, listingID)
	}
	tag, err := t.tx.Exec(ctx, `UPDATE market_listings SET amount = $2 WHERE id = $1`, listingID, amount)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
	}
	return nil
}

func (t *pgTx) DeleteListing(ctx context.Context, listingID uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM market_listings WHERE id = $1`, listingID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommit, mapErr(err))
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
