package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/concurrency"
	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/item"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/metrics"
	"github.com/osse101/StreamRealm_Go/internal/repository"
	"github.com/osse101/StreamRealm_Go/internal/session"
)

// Service defines the session-guarded inventory operations
type Service interface {
	GetInventory(ctx context.Context, characterID uuid.UUID) ([]domain.InventoryStack, error)
	AddItem(ctx context.Context, sess *domain.Session, characterID uuid.UUID, itemID string, amount int64, opts AddOptions) (*domain.InventoryStack, error)
	RemoveItem(ctx context.Context, sess *domain.Session, characterID, stackID uuid.UUID, amount int64) (int64, error)
	EquipItem(ctx context.Context, sess *domain.Session, characterID, stackID uuid.UUID) (*domain.InventoryStack, error)
	UnequipItem(ctx context.Context, sess *domain.Session, characterID, stackID uuid.UUID) (*domain.InventoryStack, error)
	EquipBestItems(ctx context.Context, sess *domain.Session, characterID uuid.UUID) ([]domain.InventoryStack, error)
}

type service struct {
	store     repository.Store
	catalog   item.Catalog
	guard     session.Guard
	locks     *concurrency.LockManager
	validator *Validator
	retry     repository.RetryPolicy
}

// NewService creates the inventory service. locks must be shared with every
// other service that mutates characters.
func NewService(store repository.Store, catalog item.Catalog, guard session.Guard, locks *concurrency.LockManager, validator *Validator, retry repository.RetryPolicy) Service {
	return &service{
		store:     store,
		catalog:   catalog,
		guard:     guard,
		locks:     locks,
		validator: validator,
		retry:     retry,
	}
}

// Load builds the Inventory of character from the stacks visible in tx
func Load(ctx context.Context, tx repository.Tx, catalog item.Catalog, character *domain.Character) (*Inventory, error) {
	stacks, err := tx.GetStacks(ctx, character.ID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetStacksFailed, err)
	}
	return New(character, catalog, stacks), nil
}

func (s *service) GetInventory(ctx context.Context, characterID uuid.UUID) ([]domain.InventoryStack, error) {
	if _, err := s.store.GetCharacter(ctx, characterID); err != nil {
		return nil, fmt.Errorf(ErrMsgGetCharacterFailed, err)
	}
	stacks, err := s.store.GetStacks(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetStacksFailed, err)
	}
	return stacks, nil
}

func (s *service) AddItem(ctx context.Context, sess *domain.Session, characterID uuid.UUID, itemID string, amount int64, opts AddOptions) (*domain.InventoryStack, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgAddItemCalled, "character_id", characterID, "item_id", itemID, "amount", amount, "equipped", opts.Equipped)

	var added *domain.InventoryStack
	_, err := s.mutate(ctx, OpAddItem, sess, characterID, func(inv *Inventory) error {
		var err error
		added, err = inv.AddItem(itemID, amount, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *service) RemoveItem(ctx context.Context, sess *domain.Session, characterID, stackID uuid.UUID, amount int64) (int64, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgRemoveItemCalled, "character_id", characterID, "stack_id", stackID, "amount", amount)

	var remaining int64
	_, err := s.mutate(ctx, OpRemoveItem, sess, characterID, func(inv *Inventory) error {
		var err error
		remaining, err = inv.RemoveItem(stackID, amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (s *service) EquipItem(ctx context.Context, sess *domain.Session, characterID, stackID uuid.UUID) (*domain.InventoryStack, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgEquipItemCalled, "character_id", characterID, "stack_id", stackID)

	var equipped *domain.InventoryStack
	_, err := s.mutate(ctx, OpEquipItem, sess, characterID, func(inv *Inventory) error {
		var err error
		equipped, err = inv.EquipItem(stackID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return equipped, nil
}

func (s *service) UnequipItem(ctx context.Context, sess *domain.Session, characterID, stackID uuid.UUID) (*domain.InventoryStack, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgUnequipItemCalled, "character_id", characterID, "stack_id", stackID)

	var stack *domain.InventoryStack
	_, err := s.mutate(ctx, OpUnequipItem, sess, characterID, func(inv *Inventory) error {
		var err error
		stack, err = inv.UnequipItem(stackID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stack, nil
}

func (s *service) EquipBestItems(ctx context.Context, sess *domain.Session, characterID uuid.UUID) ([]domain.InventoryStack, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgEquipBestItemsCalled, "character_id", characterID)

	inv, err := s.mutate(ctx, OpEquipBestItems, sess, characterID, func(inv *Inventory) error {
		return inv.EquipBestItems()
	})
	if err != nil {
		return nil, err
	}
	return inv.Stacks(), nil
}

// mutate runs fn against a freshly loaded inventory inside one transaction,
// holding the character lock for the whole call. Conflicts rerun everything
// from the read.
func (s *service) mutate(ctx context.Context, op string, sess *domain.Session, characterID uuid.UUID, fn func(inv *Inventory) error) (*Inventory, error) {
	log := logger.FromContext(ctx)

	unlock, err := s.locks.Lock(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgLockFailed, err)
	}
	defer unlock()

	var inv *Inventory
	err = repository.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		tx, err := s.store.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf(ErrMsgBeginTxFailed, err)
		}
		defer repository.SafeRollback(ctx, tx)

		character, err := tx.GetCharacter(ctx, characterID)
		if err != nil {
			return fmt.Errorf(ErrMsgGetCharacterFailed, err)
		}
		if err := s.guard.Authorize(ctx, sess, character); err != nil {
			return err
		}

		inv, err = Load(ctx, tx, s.catalog, character)
		if err != nil {
			return err
		}
		if err := fn(inv); err != nil {
			return err
		}
		if !inv.HasChanges() {
			return nil
		}
		if err := inv.Flush(ctx, tx); err != nil {
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
	if err != nil {
		return nil, err
	}

	if s.validator != nil {
		s.validator.ValidateInventory(ctx, characterID, inv.Stacks())
	}
	log.Info(LogMsgInventoryUpdated, "operation", op, "character_id", characterID)
	return inv, nil
}

// Validator cross-checks committed inventories against the store
type Validator struct {
	store    repository.Store
	catalog  item.Catalog
	reporter Reporter
}

// NewValidator creates a Validator reporting through reporter
func NewValidator(store repository.Store, catalog item.Catalog, reporter Reporter) *Validator {
	return &Validator{store: store, catalog: catalog, reporter: reporter}
}

// ValidateInventory detects and reports differences between expected and the
// persisted stacks of characterID. It never fails the caller.
func (v *Validator) ValidateInventory(ctx context.Context, characterID uuid.UUID, expected []domain.InventoryStack) []Issue {
	persisted, err := v.store.GetStacks(ctx, characterID)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgValidateReadFailed, "character_id", characterID, "error", err)
		return nil
	}
	issues := Check(v.catalog, expected, persisted)
	if len(issues) > 0 && v.reporter != nil {
		v.reporter.Report(ctx, characterID, issues)
	}
	return issues
}
