package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/osse101/StreamRealm_Go/internal/domain"
)

func scanCharacter(row pgx.Row) (*domain.Character, error) {
	var c domain.Character
	var skills []byte
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Coins, &skills, &c.OwnerSessionUserID, &c.ActiveSessionID, &c.CreatedAt); err != nil {
		return nil, err
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &c.Skills); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func scanStacks(rows pgx.Rows) ([]domain.InventoryStack, error) {
	defer rows.Close()
	var out []domain.InventoryStack
	for rows.Next() {
		var s domain.InventoryStack
		var ench string
		if err := rows.Scan(&s.ID, &s.CharacterID, &s.ItemID, &s.Amount, &s.Equipped, &s.Tag, &ench,
			&s.TransmogrificationID, &s.Soulbound, &s.Flags, &s.NameOverride, &s.UpdatedAt); err != nil {
			return nil, err
		}
		parsed, err := domain.ParseEnchantment(ench)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgInvalidEnchantment, s.ID, err)
		}
		s.Enchantment = parsed
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanListing(row pgx.Row) (*domain.MarketListing, error) {
	var l domain.MarketListing
	var price string
	if err := row.Scan(&l.ID, &l.SellerCharacterID, &l.ItemID, &l.Amount, &price, &l.Created, &l.Sequence); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgInvalidPrice, price, err)
	}
	l.PricePerItem = p
	return &l, nil
}

func scanListings(rows pgx.Rows) ([]domain.MarketListing, error) {
	defer rows.Close()
	var out []domain.MarketListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
