// Package market is the trading engine: sell orders become listings, buy orders
// walk the listings for an item cheapest first and settle each fill.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/osse101/StreamRealm_Go/internal/concurrency"
	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/event"
	"github.com/osse101/StreamRealm_Go/internal/inventory"
	"github.com/osse101/StreamRealm_Go/internal/item"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/metrics"
	"github.com/osse101/StreamRealm_Go/internal/repository"
	"github.com/osse101/StreamRealm_Go/internal/session"
)

// TradeResult is the outcome of one trade call
type TradeResult struct {
	State       domain.ItemTradeState    `json:"state"`
	Amount      int64                    `json:"amount"`
	Cost        int64                    `json:"cost,omitempty"`
	Listing     *domain.MarketListing    `json:"listing,omitempty"`
	Settlements []domain.TradeSettlement `json:"settlements,omitempty"`
}

func result(state domain.ItemTradeState) *TradeResult {
	return &TradeResult{State: state}
}

// Service defines the marketplace operations
type Service interface {
	SellItem(ctx context.Context, sess *domain.Session, characterID uuid.UUID, itemID string, amount int64, pricePerItem decimal.Decimal) (*TradeResult, error)
	BuyItem(ctx context.Context, sess *domain.Session, characterID uuid.UUID, itemID string, amount int64, maxPricePerItem decimal.Decimal) (*TradeResult, error)
	CancelListing(ctx context.Context, sess *domain.Session, characterID, listingID uuid.UUID) (*TradeResult, error)
	GetMarketItems(ctx context.Context, offset, size int, filter domain.MarketFilter) (*domain.MarketItemCollection, error)
	GetItemValue(ctx context.Context, itemID string, amount int64) (*domain.ItemValue, error)
}

type service struct {
	store     repository.Store
	catalog   item.Catalog
	guard     session.Guard
	locks     *concurrency.LockManager
	validator *inventory.Validator
	publisher event.Publisher
	retry     repository.RetryPolicy
	now       func() time.Time
}

// NewService creates the trading engine. publisher and validator may be nil.
func NewService(store repository.Store, catalog item.Catalog, guard session.Guard, locks *concurrency.LockManager,
	validator *inventory.Validator, publisher event.Publisher, retry repository.RetryPolicy) Service {
	return &service{
		store:     store,
		catalog:   catalog,
		guard:     guard,
		locks:     locks,
		validator: validator,
		publisher: publisher,
		retry:     retry,
		now:       time.Now,
	}
}

// errRejected carries a non-success trade state out of a transaction body so
// the deferred rollback discards everything staged so far
type errRejected struct {
	state domain.ItemTradeState
}

func (e *errRejected) Error() string { return "trade rejected: " + string(e.state) }

func reject(state domain.ItemTradeState) error { return &errRejected{state: state} }

// txBody stages one trade attempt. It returns the acting character's
// inventory so validation runs before the locks are released.
type txBody func(ctx context.Context, tx repository.Tx) (*TradeResult, *inventory.Inventory, error)

// inTx runs fn in a retried transaction holding the locks of characterID and
// every counterparty. Rejections become a TradeResult with a nil error; any
// other failure becomes Failed plus the error.
func (s *service) inTx(ctx context.Context, op string, characterID uuid.UUID, counterparties []uuid.UUID, fn txBody) (*TradeResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	defer func() {
		metrics.TradeDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	unlock, err := s.locks.LockMany(ctx, append([]uuid.UUID{characterID}, counterparties...)...)
	if err != nil {
		metrics.TradeRequestsTotal.WithLabelValues(op, string(domain.TradeFailed)).Inc()
		return result(domain.TradeFailed), fmt.Errorf(ErrMsgLockFailed, err)
	}
	defer unlock()

	var res *TradeResult
	var inv *inventory.Inventory
	err = repository.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		tx, err := s.store.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf(ErrMsgBeginTxFailed, err)
		}
		defer repository.SafeRollback(ctx, tx)

		res, inv, err = fn(ctx, tx)
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf(ErrMsgCommitTxFailed, err)
		}
		return nil
	}, func(attempt int, err error) {
		metrics.TxConflictRetries.WithLabelValues(op).Inc()
		log.Warn(LogMsgTxRetry, "operation", op, "character_id", characterID, "attempt", attempt, "error", err)
	})

	var rejected *errRejected
	switch {
	case errors.As(err, &rejected):
		log.Info(LogMsgTradeRejected, "operation", op, "character_id", characterID, "state", rejected.state)
		res, err = result(rejected.state), nil
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrSessionNotFound):
		log.Info(LogMsgTradeRejected, "operation", op, "character_id", characterID, "state", domain.TradeFailed, "error", err)
		res, err = result(domain.TradeFailed), nil
	case err != nil:
		log.Error(LogMsgTradeFailed, "operation", op, "character_id", characterID, "error", err)
		res = result(domain.TradeFailed)
	}

	if err == nil && res.State == domain.TradeSuccess {
		s.validate(ctx, inv)
	}
	metrics.TradeRequestsTotal.WithLabelValues(op, string(res.State)).Inc()
	return res, err
}

// load reads and authorizes the acting character and its inventory inside tx
func (s *service) load(ctx context.Context, tx repository.Tx, sess *domain.Session, characterID uuid.UUID) (*domain.Character, *inventory.Inventory, error) {
	character, err := tx.GetCharacter(ctx, characterID)
	if err != nil {
		if errors.Is(err, domain.ErrCharacterNotFound) {
			return nil, nil, reject(domain.TradeFailed)
		}
		return nil, nil, fmt.Errorf(ErrMsgGetCharacterFailed, err)
	}
	if err := s.guard.Authorize(ctx, sess, character); err != nil {
		return nil, nil, err
	}
	inv, err := inventory.Load(ctx, tx, s.catalog, character)
	if err != nil {
		return nil, nil, err
	}
	return character, inv, nil
}

func (s *service) validate(ctx context.Context, inv *inventory.Inventory) {
	if s.validator != nil && inv != nil {
		s.validator.ValidateInventory(ctx, inv.CharacterID(), inv.Stacks())
	}
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, evt)
	}
}
