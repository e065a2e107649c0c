package market

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/StreamRealm_Go/internal/concurrency"
	"github.com/osse101/StreamRealm_Go/internal/database/memory"
	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/inventory"
	"github.com/osse101/StreamRealm_Go/internal/repository"
	"github.com/osse101/StreamRealm_Go/internal/session"
	"github.com/osse101/StreamRealm_Go/internal/testing/fixtures"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishWithRetry(ctx context.Context, evt event.Event) {
	m.Called(ctx, evt)
}

type harness struct {
	svc   Service
	store *memory.Store
	pub   *mockPublisher
	locks *concurrency.LockManager
}

var testRetry = repository.RetryPolicy{MaxAttempts: 50, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func newHarness(t *testing.T) *harness {
	return newHarnessWith(t, nil)
}

// newHarnessWith lets wrap replace the store the service and validator see.
// h.store stays the raw memory store so assertions bypass the wrapper.
func newHarnessWith(t *testing.T, wrap func(repository.Store, *concurrency.LockManager) repository.Store) *harness {
	t.Helper()
	store := memory.NewStore()
	locks := concurrency.NewLockManager()
	var backing repository.Store = store
	if wrap != nil {
		backing = wrap(store, locks)
	}
	catalog := fixtures.Catalog(t)
	pub := new(mockPublisher)
	pub.On("PublishWithRetry", mock.Anything, mock.Anything).Return().Maybe()
	svc := NewService(backing, catalog, session.NewGuard(), locks,
		inventory.NewValidator(backing, catalog, inventory.NewReporter(nil)), pub, testRetry)
	return &harness{svc: svc, store: store, pub: pub, locks: locks}
}

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (h *harness) coins(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	c, err := h.store.GetCharacter(context.Background(), id)
	require.NoError(t, err)
	return c.Coins
}

func (h *harness) count(t *testing.T, id uuid.UUID, itemID string) int64 {
	t.Helper()
	stacks, err := h.store.GetStacks(context.Background(), id)
	require.NoError(t, err)
	var total int64
	for _, s := range stacks {
		if s.ItemID == itemID {
			total += s.Amount
		}
	}
	return total
}

func (h *harness) listings(t *testing.T, itemID string) []domain.MarketListing {
	t.Helper()
	ls, err := h.store.GetListingsByItem(context.Background(), itemID)
	require.NoError(t, err)
	return ls
}

func TestSellThenBuy_WorkedScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a, aSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	b, bSess := fixtures.Player(t, h.store, 10, domain.Skills{})
	stackID := fixtures.Give(t, h.store, a.ID, fixtures.Ore, 10)

	res, err := h.svc.SellItem(ctx, aSess, a.ID, fixtures.Ore, 4, price(2))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSuccess, res.State)
	require.NotNil(t, res.Listing)

	stacks, err := h.store.GetStacks(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, stacks, 1)
	assert.Equal(t, stackID, stacks[0].ID)
	assert.Equal(t, int64(6), stacks[0].Amount)

	ls := h.listings(t, fixtures.Ore)
	require.Len(t, ls, 1)
	assert.Equal(t, int64(4), ls[0].Amount)
	assert.True(t, ls[0].PricePerItem.Equal(price(2)))

	res, err = h.svc.BuyItem(ctx, bSess, b.ID, fixtures.Ore, 4, price(2))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSuccess, res.State)
	assert.Equal(t, int64(4), res.Amount)
	assert.Equal(t, int64(8), res.Cost)
	require.Len(t, res.Settlements, 1)
	assert.Equal(t, domain.TradeSettlement{SellerID: a.ID, BuyerID: b.ID, ItemID: fixtures.Ore, Amount: 4, Cost: 8}, res.Settlements[0])

	assert.Empty(t, h.listings(t, fixtures.Ore))
	assert.Equal(t, int64(4), h.count(t, b.ID, fixtures.Ore))
	assert.Equal(t, int64(2), h.coins(t, b.ID))
	assert.Equal(t, int64(8), h.coins(t, a.ID))
}

func TestBuy_PricePriorityAcrossListings(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s1, s1Sess := fixtures.Player(t, h.store, 0, domain.Skills{})
	s2, s2Sess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 100, domain.Skills{})
	fixtures.Give(t, h.store, s1.ID, fixtures.Logs, 2)
	fixtures.Give(t, h.store, s2.ID, fixtures.Logs, 5)

	// list the expensive one first so ordering comes from price, not creation
	_, err := h.svc.SellItem(ctx, s2Sess, s2.ID, fixtures.Logs, 5, price(5))
	require.NoError(t, err)
	_, err = h.svc.SellItem(ctx, s1Sess, s1.ID, fixtures.Logs, 2, price(3))
	require.NoError(t, err)

	res, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Logs, 4, price(5))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSuccess, res.State)
	assert.Equal(t, int64(16), res.Cost)
	require.Len(t, res.Settlements, 2)
	assert.Equal(t, int64(6), res.Settlements[0].Cost)
	assert.Equal(t, int64(10), res.Settlements[1].Cost)

	ls := h.listings(t, fixtures.Logs)
	require.Len(t, ls, 1, "L1 deleted")
	assert.Equal(t, s2.ID, ls[0].SellerCharacterID)
	assert.Equal(t, int64(3), ls[0].Amount)

	assert.Equal(t, int64(84), h.coins(t, buyer.ID))
	assert.Equal(t, int64(6), h.coins(t, s1.ID))
	assert.Equal(t, int64(10), h.coins(t, s2.ID))
}

func TestBuy_EqualPricesFillOldestFirst(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	first, firstSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	second, secondSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 100, domain.Skills{})
	fixtures.Give(t, h.store, first.ID, fixtures.Ore, 3)
	fixtures.Give(t, h.store, second.ID, fixtures.Ore, 3)

	_, err := h.svc.SellItem(ctx, firstSess, first.ID, fixtures.Ore, 3, price(2))
	require.NoError(t, err)
	_, err = h.svc.SellItem(ctx, secondSess, second.ID, fixtures.Ore, 3, price(2))
	require.NoError(t, err)

	res, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Ore, 4, price(2))
	require.NoError(t, err)
	require.Len(t, res.Settlements, 2)
	assert.Equal(t, first.ID, res.Settlements[0].SellerID)
	assert.Equal(t, int64(3), res.Settlements[0].Amount)
	assert.Equal(t, second.ID, res.Settlements[1].SellerID)
	assert.Equal(t, int64(1), res.Settlements[1].Amount)
}

func TestBuy_AffordabilityFloorsPerListing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 7, domain.Skills{})
	fixtures.Give(t, h.store, seller.ID, fixtures.Ore, 5)
	_, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 5, price(3))
	require.NoError(t, err)

	res, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Ore, 5, price(3))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSuccess, res.State, "a partial fill is still a success")
	assert.Equal(t, int64(2), res.Amount)
	assert.Equal(t, int64(6), res.Cost)
	assert.Equal(t, int64(1), h.coins(t, buyer.ID))
	assert.Equal(t, int64(3), h.listings(t, fixtures.Ore)[0].Amount)
}

func TestBuy_FractionalPricesRoundCostUp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 10, domain.Skills{})
	fixtures.Give(t, h.store, seller.ID, fixtures.Ore, 3)
	_, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 3, decimal.RequireFromString("1.5"))
	require.NoError(t, err)

	res, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Ore, 3, price(2))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSuccess, res.State)
	assert.Equal(t, int64(5), res.Cost, "ceil(3 * 1.5)")
	assert.Equal(t, int64(5), h.coins(t, buyer.ID))
	assert.Equal(t, int64(5), h.coins(t, seller.ID))
}

func TestBuy_SubCoinPriceIsNeverFree(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 1, domain.Skills{})
	fixtures.Give(t, h.store, seller.ID, fixtures.Ore, 5)
	cheap := decimal.RequireFromString("0.9")
	_, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 5, cheap)
	require.NoError(t, err)

	var states []domain.ItemTradeState
	for range 5 {
		res, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Ore, 1, cheap)
		require.NoError(t, err)
		states = append(states, res.State)
	}

	assert.Equal(t, []domain.ItemTradeState{
		domain.TradeSuccess,
		domain.TradeInsufficientCoins,
		domain.TradeInsufficientCoins,
		domain.TradeInsufficientCoins,
		domain.TradeInsufficientCoins,
	}, states)
	assert.Equal(t, int64(1), h.count(t, buyer.ID, fixtures.Ore))
	assert.Zero(t, h.coins(t, buyer.ID))
	assert.Equal(t, int64(1), h.coins(t, seller.ID))
	assert.Equal(t, int64(4), h.listings(t, fixtures.Ore)[0].Amount)
}

func TestBuy_AffordabilityWithFractionalPrice(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 10, domain.Skills{})
	fixtures.Give(t, h.store, seller.ID, fixtures.Ore, 10)
	_, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 10, decimal.RequireFromString("1.5"))
	require.NoError(t, err)

	res, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Ore, 10, price(2))
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.Amount, "ceil(7 * 1.5) would be 11")
	assert.Equal(t, int64(9), res.Cost)
	assert.Equal(t, int64(1), h.coins(t, buyer.ID))
	assert.Equal(t, int64(10), h.coins(t, seller.ID)+h.coins(t, buyer.ID))
}

func TestBuy_Statuses(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	broke, brokeSess := fixtures.Player(t, h.store, 1, domain.Skills{})
	rich, richSess := fixtures.Player(t, h.store, 100, domain.Skills{})
	fixtures.Give(t, h.store, seller.ID, fixtures.Ore, 3)
	_, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 3, price(4))
	require.NoError(t, err)

	tests := []struct {
		name   string
		sess   *domain.Session
		id     uuid.UUID
		itemID string
		amount int64
		max    decimal.Decimal
		want   domain.ItemTradeState
	}{
		{"zero amount", richSess, rich.ID, fixtures.Ore, 0, price(4), domain.TradeRequestToLow},
		{"zero max price", richSess, rich.ID, fixtures.Ore, 1, decimal.Zero, domain.TradeRequestToLow},
		{"negative max price", richSess, rich.ID, fixtures.Ore, 1, price(-1), domain.TradeRequestToLow},
		{"no listings", richSess, rich.ID, fixtures.Logs, 1, price(4), domain.TradeDoesNotExist},
		{"unknown item", richSess, rich.ID, "nope", 1, price(4), domain.TradeDoesNotExist},
		{"only above max", richSess, rich.ID, fixtures.Ore, 1, price(3), domain.TradeRequestToLow},
		{"cannot afford", brokeSess, broke.ID, fixtures.Ore, 1, price(4), domain.TradeInsufficientCoins},
		{"wrong session", brokeSess, rich.ID, fixtures.Ore, 1, price(4), domain.TradeFailed},
		{"no session", nil, rich.ID, fixtures.Ore, 1, price(4), domain.TradeFailed},
		{"unknown character", richSess, uuid.New(), fixtures.Ore, 1, price(4), domain.TradeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.svc.BuyItem(ctx, tt.sess, tt.id, tt.itemID, tt.amount, tt.max)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.State)
		})
	}

	assert.Equal(t, int64(100), h.coins(t, rich.ID))
	assert.Equal(t, int64(1), h.coins(t, broke.ID))
	assert.Equal(t, int64(3), h.listings(t, fixtures.Ore)[0].Amount)
	assert.Zero(t, h.count(t, rich.ID, fixtures.Ore))
}

func TestBuy_SkipsOwnListings(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c, sess := fixtures.Player(t, h.store, 50, domain.Skills{})
	fixtures.Give(t, h.store, c.ID, fixtures.Ore, 2)
	_, err := h.svc.SellItem(ctx, sess, c.ID, fixtures.Ore, 2, price(1))
	require.NoError(t, err)

	res, err := h.svc.BuyItem(ctx, sess, c.ID, fixtures.Ore, 2, price(1))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeDoesNotExist, res.State)
	assert.Equal(t, int64(50), h.coins(t, c.ID))
}

func TestBuy_EquipsUpgrade(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 100, domain.Skills{})
	fixtures.Give(t, h.store, seller.ID, fixtures.IronSword, 1)

	_, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.IronSword, 1, price(30))
	require.NoError(t, err)
	res, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.IronSword, 1, price(30))
	require.NoError(t, err)
	require.Equal(t, domain.TradeSuccess, res.State)

	stacks, err := h.store.GetStacks(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, stacks, 1)
	assert.True(t, stacks[0].Equipped)
}

func TestBuy_PublishesOneSettlementPerListing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	catalog := fixtures.Catalog(t)
	pub := new(mockPublisher)
	svc := NewService(store, catalog, session.NewGuard(), concurrency.NewLockManager(), nil, pub, repository.RetryPolicy{})

	s1, s1Sess := fixtures.Player(t, store, 0, domain.Skills{})
	s2, s2Sess := fixtures.Player(t, store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, store, 100, domain.Skills{})
	fixtures.Give(t, store, s1.ID, fixtures.Ore, 1)
	fixtures.Give(t, store, s2.ID, fixtures.Ore, 1)

	pub.On("PublishWithRetry", mock.Anything, mock.MatchedBy(func(e event.Event) bool { return e.Type == event.ListingCreated })).Return().Twice()
	_, err := svc.SellItem(ctx, s1Sess, s1.ID, fixtures.Ore, 1, price(1))
	require.NoError(t, err)
	_, err = svc.SellItem(ctx, s2Sess, s2.ID, fixtures.Ore, 1, price(1))
	require.NoError(t, err)

	for _, seller := range []*domain.Character{s1, s2} {
		sellerID := seller.ID
		sellerSession := *seller.ActiveSessionID
		pub.On("PublishWithRetry", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
			p, ok := e.Payload.(event.TradeSettledPayloadV1)
			return ok && e.Type == event.TradeSettled &&
				p.Settlement.SellerID == sellerID &&
				p.SellerSessionID != nil && *p.SellerSessionID == sellerSession &&
				p.BuyerSessionID != nil && *p.BuyerSessionID == bSess.ID
		})).Return().Once()
	}

	res, err := svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Ore, 2, price(1))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSuccess, res.State)
	pub.AssertExpectations(t)
}

func TestSell_Statuses(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c, sess := fixtures.Player(t, h.store, 0, domain.Skills{})
	_, other := fixtures.Player(t, h.store, 0, domain.Skills{})
	fixtures.Give(t, h.store, c.ID, fixtures.Ore, 3)
	fixtures.Give(t, h.store, c.ID, fixtures.AncientKey, 1)
	giveSoulbound(t, h.store, c.ID, fixtures.BronzeSword, 2)

	tests := []struct {
		name   string
		sess   *domain.Session
		itemID string
		amount int64
		price  decimal.Decimal
		want   domain.ItemTradeState
	}{
		{"zero amount", sess, fixtures.Ore, 0, price(1), domain.TradeRequestToLow},
		{"zero price", sess, fixtures.Ore, 1, decimal.Zero, domain.TradeRequestToLow},
		{"oversell", sess, fixtures.Ore, 4, price(1), domain.TradeDoesNotOwn},
		{"not held", sess, fixtures.Logs, 1, price(1), domain.TradeDoesNotOwn},
		{"unknown item", sess, "nope", 1, price(1), domain.TradeDoesNotExist},
		{"soulbound item", sess, fixtures.AncientKey, 1, price(1), domain.TradeUntradable},
		{"soulbound stack", sess, fixtures.BronzeSword, 1, price(1), domain.TradeUntradable},
		{"not owner", other, fixtures.Ore, 1, price(1), domain.TradeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.svc.SellItem(ctx, tt.sess, c.ID, tt.itemID, tt.amount, tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.State)
		})
	}

	assert.Equal(t, int64(3), h.count(t, c.ID, fixtures.Ore), "rejected sells leave the inventory alone")
	assert.Empty(t, h.listings(t, fixtures.Ore))
}

func TestSell_SkipsEquippedUnits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	inv := inventory.NewService(h.store, fixtures.Catalog(t), session.NewGuard(), concurrency.NewLockManager(), nil, repository.RetryPolicy{})
	c, sess := fixtures.Player(t, h.store, 0, domain.Skills{})
	_, err := inv.AddItem(ctx, sess, c.ID, fixtures.BronzeSword, 2, inventory.AddOptions{Equipped: true})
	require.NoError(t, err)

	res, err := h.svc.SellItem(ctx, sess, c.ID, fixtures.BronzeSword, 2, price(1))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeDoesNotOwn, res.State)

	res, err = h.svc.SellItem(ctx, sess, c.ID, fixtures.BronzeSword, 1, price(1))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSuccess, res.State)
}

func TestSellBuy_ConservesUnits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 1000, domain.Skills{})
	fixtures.Give(t, h.store, seller.ID, fixtures.Logs, 9)

	for _, n := range []int64{2, 3, 4} {
		_, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Logs, n, price(n))
		require.NoError(t, err)
	}
	_, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Logs, 6, price(10))
	require.NoError(t, err)

	var listed int64
	for _, l := range h.listings(t, fixtures.Logs) {
		listed += l.Amount
	}
	assert.Equal(t, int64(9), h.count(t, seller.ID, fixtures.Logs)+h.count(t, buyer.ID, fixtures.Logs)+listed)
	assert.Equal(t, int64(1000), h.coins(t, seller.ID)+h.coins(t, buyer.ID))
}

func TestCancelListing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c, sess := fixtures.Player(t, h.store, 0, domain.Skills{})
	other, otherSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	fixtures.Give(t, h.store, c.ID, fixtures.Ore, 5)

	sold, err := h.svc.SellItem(ctx, sess, c.ID, fixtures.Ore, 3, price(2))
	require.NoError(t, err)
	listingID := sold.Listing.ID

	res, err := h.svc.CancelListing(ctx, otherSess, other.ID, listingID)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeFailed, res.State, "only the seller may cancel")

	res, err = h.svc.CancelListing(ctx, sess, c.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.TradeDoesNotExist, res.State)

	res, err = h.svc.CancelListing(ctx, sess, c.ID, listingID)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSuccess, res.State)
	assert.Equal(t, int64(3), res.Amount)

	assert.Empty(t, h.listings(t, fixtures.Ore))
	stacks, err := h.store.GetStacks(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, stacks, 1, "returned units merge back")
	assert.Equal(t, int64(5), stacks[0].Amount)
}

func TestGetMarketItems(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c, sess := fixtures.Player(t, h.store, 0, domain.Skills{})
	fixtures.Give(t, h.store, c.ID, fixtures.Ore, 10)
	fixtures.Give(t, h.store, c.ID, fixtures.IronSword, 1)

	for i := int64(1); i <= 4; i++ {
		_, err := h.svc.SellItem(ctx, sess, c.ID, fixtures.Ore, 1, price(5-i))
		require.NoError(t, err)
	}
	_, err := h.svc.SellItem(ctx, sess, c.ID, fixtures.IronSword, 1, price(50))
	require.NoError(t, err)

	page, err := h.svc.GetMarketItems(ctx, 0, 2, domain.MarketFilter{ItemID: fixtures.Ore})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].PricePerItem.Equal(price(1)))
	assert.True(t, page.Items[1].PricePerItem.Equal(price(2)))

	page, err = h.svc.GetMarketItems(ctx, 3, 2, domain.MarketFilter{ItemID: fixtures.Ore})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = h.svc.GetMarketItems(ctx, 0, 0, domain.MarketFilter{Category: domain.CategoryWeapon})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, page.Size)
	require.Len(t, page.Items, 1)
	assert.Equal(t, fixtures.IronSword, page.Items[0].ItemID)

	page, err = h.svc.GetMarketItems(ctx, 0, 10, domain.MarketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)

	page, err = h.svc.GetMarketItems(ctx, 0, 10, domain.MarketFilter{ItemID: fixtures.Ore, Category: domain.CategoryWeapon})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = h.svc.GetMarketItems(ctx, -1, 10, domain.MarketFilter{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.svc.GetMarketItems(ctx, 0, 10, domain.MarketFilter{Category: "SPACESHIP"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetItemValue(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c, sess := fixtures.Player(t, h.store, 0, domain.Skills{})
	fixtures.Give(t, h.store, c.ID, fixtures.Ore, 7)
	_, err := h.svc.SellItem(ctx, sess, c.ID, fixtures.Ore, 2, price(3))
	require.NoError(t, err)
	_, err = h.svc.SellItem(ctx, sess, c.ID, fixtures.Ore, 5, price(5))
	require.NoError(t, err)

	v, err := h.svc.GetItemValue(ctx, fixtures.Ore, 4)
	require.NoError(t, err)
	assert.False(t, v.FromShop)
	assert.Equal(t, int64(16), v.TotalCost)
	assert.Equal(t, int64(7), v.Available)
	assert.True(t, v.AveragePrice.Equal(price(4)))

	v, err = h.svc.GetItemValue(ctx, fixtures.IronSword, 0)
	require.NoError(t, err)
	assert.True(t, v.FromShop)
	assert.Equal(t, int64(1), v.Amount)
	assert.Equal(t, int64(60), v.TotalCost)

	_, err = h.svc.GetItemValue(ctx, "nope", 1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func giveSoulbound(t *testing.T, store repository.Store, characterID uuid.UUID, itemID string, amount int64) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)
	require.NoError(t, tx.UpsertStack(ctx, &domain.InventoryStack{ID: uuid.New(), CharacterID: characterID, ItemID: itemID, Amount: amount, Soulbound: true}))
	require.NoError(t, tx.Commit(ctx))
}

// failingCommitStore hands out transactions whose Commit fails with err once armed
type failingCommitStore struct {
	repository.Store
	err     error
	armed   atomic.Bool
	commits atomic.Int32
}

func (s *failingCommitStore) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &failingCommitTx{Tx: tx, store: s}, nil
}

type failingCommitTx struct {
	repository.Tx
	store *failingCommitStore
}

func (tx *failingCommitTx) Commit(ctx context.Context) error {
	if !tx.store.armed.Load() {
		return tx.Tx.Commit(ctx)
	}
	tx.store.commits.Add(1)
	return tx.store.err
}

type marketState struct {
	coins    map[uuid.UUID]int64
	stacks   map[uuid.UUID][]domain.InventoryStack
	listings []domain.MarketListing
}

func (h *harness) state(t *testing.T, itemID string, ids ...uuid.UUID) marketState {
	t.Helper()
	st := marketState{
		coins:    make(map[uuid.UUID]int64, len(ids)),
		stacks:   make(map[uuid.UUID][]domain.InventoryStack, len(ids)),
		listings: h.listings(t, itemID),
	}
	for _, id := range ids {
		st.coins[id] = h.coins(t, id)
		stacks, err := h.store.GetStacks(context.Background(), id)
		require.NoError(t, err)
		st.stacks[id] = stacks
	}
	return st
}

func TestTrade_CommitFailureLeavesNoPartialState(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		commits int32
	}{
		{"non-conflict error", errors.New("connection reset"), 1},
		{"conflict retries exhausted", repository.ErrConflict, int32(testRetry.MaxAttempts)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			failing := &failingCommitStore{err: tt.err}
			h := newHarnessWith(t, func(s repository.Store, _ *concurrency.LockManager) repository.Store {
				failing.Store = s
				return failing
			})
			seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
			buyer, bSess := fixtures.Player(t, h.store, 50, domain.Skills{})
			fixtures.Give(t, h.store, seller.ID, fixtures.Ore, 10)
			listed, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 4, price(2))
			require.NoError(t, err)
			require.Equal(t, domain.TradeSuccess, listed.State)

			before := h.state(t, fixtures.Ore, seller.ID, buyer.ID)
			published := len(h.pub.Calls)
			failing.armed.Store(true)

			trades := map[string]func() (*TradeResult, error){
				"sell": func() (*TradeResult, error) {
					return h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 3, price(2))
				},
				"buy": func() (*TradeResult, error) {
					return h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Ore, 4, price(2))
				},
				"cancel": func() (*TradeResult, error) {
					return h.svc.CancelListing(ctx, sSess, seller.ID, listed.Listing.ID)
				},
			}
			for op, trade := range trades {
				failing.commits.Store(0)
				res, err := trade()
				require.Error(t, err, op)
				assert.ErrorIs(t, err, tt.err, op)
				require.NotNil(t, res, op)
				assert.Equal(t, domain.TradeFailed, res.State, op)
				assert.Equal(t, tt.commits, failing.commits.Load(), op)
				assert.Equal(t, before, h.state(t, fixtures.Ore, seller.ID, buyer.ID), op)
			}
			assert.Len(t, h.pub.Calls, published, "failed trades publish nothing")
		})
	}
}

// lockCheckStore records whether the character lock is held when the
// validator reads stacks after a trade
type lockCheckStore struct {
	repository.Store
	locks *concurrency.LockManager

	mu   sync.Mutex
	held []bool
}

func (s *lockCheckStore) GetStacks(ctx context.Context, characterID uuid.UUID) ([]domain.InventoryStack, error) {
	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	unlock, err := s.locks.Lock(tctx, characterID)
	if err == nil {
		unlock()
	}
	s.mu.Lock()
	s.held = append(s.held, err != nil)
	s.mu.Unlock()
	return s.Store.GetStacks(ctx, characterID)
}

func TestTrade_ValidatesBeforeUnlocking(t *testing.T) {
	ctx := context.Background()
	var checked *lockCheckStore
	h := newHarnessWith(t, func(s repository.Store, locks *concurrency.LockManager) repository.Store {
		checked = &lockCheckStore{Store: s, locks: locks}
		return checked
	})
	seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 20, domain.Skills{})
	fixtures.Give(t, h.store, seller.ID, fixtures.Ore, 6)

	sold, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 3, price(2))
	require.NoError(t, err)
	_, err = h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 3, price(3))
	require.NoError(t, err)
	res, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Ore, 3, price(2))
	require.NoError(t, err)
	require.Equal(t, domain.TradeSuccess, res.State)
	res, err = h.svc.CancelListing(ctx, sSess, seller.ID, sold.Listing.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeDoesNotExist, res.State, "bought out listings are gone")

	checked.mu.Lock()
	defer checked.mu.Unlock()
	assert.Equal(t, []bool{true, true, true}, checked.held, "two sells and a buy each validate under the lock")
	assert.Zero(t, h.locks.Len())
}

func TestBuy_LocksCreditedSellers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seller, sSess := fixtures.Player(t, h.store, 0, domain.Skills{})
	buyer, bSess := fixtures.Player(t, h.store, 10, domain.Skills{})
	fixtures.Give(t, h.store, seller.ID, fixtures.Ore, 2)
	_, err := h.svc.SellItem(ctx, sSess, seller.ID, fixtures.Ore, 2, price(2))
	require.NoError(t, err)

	unlock, err := h.locks.Lock(ctx, seller.ID)
	require.NoError(t, err)

	done := make(chan *TradeResult, 1)
	go func() {
		res, err := h.svc.BuyItem(ctx, bSess, buyer.ID, fixtures.Ore, 2, price(2))
		assert.NoError(t, err)
		done <- res
	}()

	select {
	case <-done:
		t.Fatal("buy settled while the seller was locked")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()

	select {
	case res := <-done:
		assert.Equal(t, domain.TradeSuccess, res.State)
		assert.Equal(t, int64(4), h.coins(t, seller.ID))
	case <-time.After(2 * time.Second):
		t.Fatal("buy never finished")
	}
	assert.Zero(t, h.locks.Len())
}
