// Package fixtures provides a small item catalog and seeded characters for tests.
package fixtures

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/item"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// Item ids in the test catalog
const (
	BronzeSword     = "bronze_sword"
	IronSword       = "iron_sword"
	SteelGreataxe   = "steel_greataxe"
	OakShortbow     = "oak_shortbow"
	ApprenticeStaff = "apprentice_staff"
	LeatherCap      = "leather_cap"
	IronHelmet      = "iron_helmet"
	RatPet          = "rat_pet"
	KittenPet       = "kitten_pet"
	PartyHat        = "party_hat"
	FounderCape     = "founder_cape"
	Ore             = "ore"
	Logs            = "logs"
	AncientKey      = "ancient_key"
)

// Items is the test catalog content
var Items = []domain.Item{
	{ID: BronzeSword, Name: "Bronze Sword", Category: domain.CategoryWeapon, Type: domain.TypeOneHandedSword, ShopPrice: 20, WeaponAim: 2, WeaponPower: 3},
	{ID: IronSword, Name: "Iron Sword", Category: domain.CategoryWeapon, Type: domain.TypeOneHandedSword, ShopPrice: 60, WeaponAim: 4, WeaponPower: 6},
	{ID: SteelGreataxe, Name: "Steel Greataxe", Category: domain.CategoryWeapon, Type: domain.TypeTwoHandedAxe, ShopPrice: 200, RequiredAttackLevel: 10, WeaponPower: 20},
	{ID: OakShortbow, Name: "Oak Shortbow", Category: domain.CategoryWeapon, Type: domain.TypeBow, ShopPrice: 40, RangedAim: 3, RangedPower: 3},
	{ID: ApprenticeStaff, Name: "Apprentice Staff", Category: domain.CategoryWeapon, Type: domain.TypeStaff, ShopPrice: 50, RequiredMagicLevel: 5, MagicPower: 4},
	{ID: LeatherCap, Name: "Leather Cap", Category: domain.CategoryArmor, Type: domain.TypeHelmet, ShopPrice: 10, ArmorPower: 2},
	{ID: IronHelmet, Name: "Iron Helmet", Category: domain.CategoryArmor, Type: domain.TypeHelmet, ShopPrice: 45, ArmorPower: 5},
	{ID: RatPet, Name: "Rat", Category: domain.CategoryPet, Type: domain.TypePet, ShopPrice: 5, WeaponPower: 1},
	{ID: KittenPet, Name: "Kitten", Category: domain.CategoryPet, Type: domain.TypePet, ShopPrice: 30, WeaponPower: 3},
	{ID: PartyHat, Name: "Party Hat", Category: domain.CategoryCosmetic, Type: domain.TypeHat, ShopPrice: 15},
	{ID: FounderCape, Name: "Founder Cape", Category: domain.CategoryCosmetic, Type: domain.TypeCape, Soulbound: true},
	{ID: Ore, Name: "Ore", Category: domain.CategoryResource, Type: domain.TypeResource, ShopPrice: 3},
	{ID: Logs, Name: "Logs", Category: domain.CategoryResource, Type: domain.TypeResource},
	{ID: AncientKey, Name: "Ancient Key", Category: domain.CategoryQuest, Type: domain.TypeQuestItem, Soulbound: true},
}

// Catalog returns a registry holding Items
func Catalog(t testing.TB) *item.Registry {
	t.Helper()
	reg, err := item.NewRegistry(Items)
	require.NoError(t, err)
	return reg
}

// Player seeds a character owned by a fresh session and returns both
func Player(t testing.TB, store repository.Store, coins int64, skills domain.Skills) (*domain.Character, *domain.Session) {
	t.Helper()
	userID := "user-" + uuid.NewString()[:8]
	sess := &domain.Session{ID: uuid.New(), UserID: userID}
	c := &domain.Character{
		UserID:             userID,
		Name:               userID,
		Coins:              coins,
		Skills:             skills,
		OwnerSessionUserID: &userID,
		ActiveSessionID:    &sess.ID,
	}
	require.NoError(t, store.CreateCharacter(context.Background(), c))
	return c, sess
}

// Give commits amount plain units of itemID straight into the character's inventory
func Give(t testing.TB, store repository.Store, characterID uuid.UUID, itemID string, amount int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)

	stack := &domain.InventoryStack{ID: uuid.New(), CharacterID: characterID, ItemID: itemID, Amount: amount}
	require.NoError(t, tx.UpsertStack(ctx, stack))
	require.NoError(t, tx.Commit(ctx))
	return stack.ID
}
