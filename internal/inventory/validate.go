package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/item"
	"github.com/osse101/StreamRealm_Go/internal/logger"
	"github.com/osse101/StreamRealm_Go/internal/metrics"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// IssueKind names a class of inventory inconsistency
type IssueKind string

const (
	IssueMissingStack    IssueKind = "missing_stack"
	IssueUnexpectedStack IssueKind = "unexpected_stack"
	IssueAmountMismatch  IssueKind = "amount_mismatch"
	IssueNonPositive     IssueKind = "non_positive_amount"
	IssueDuplicateStack  IssueKind = "duplicate_stackable"
	IssueSlotConflict    IssueKind = "slot_conflict"
	IssueStateMismatch   IssueKind = "state_mismatch"
	IssueUnknownItem     IssueKind = "unknown_item"
)

// Issue is one detected inconsistency
type Issue struct {
	Kind     IssueKind `json:"kind"`
	StackID  uuid.UUID `json:"stack_id"`
	ItemID   string    `json:"item_id"`
	Expected int64     `json:"expected"`
	Actual   int64     `json:"actual"`
	Detail   string    `json:"detail,omitempty"`
}

// Check compares the expected in-memory stacks with what the store holds
// and checks the persisted stacks against the stack invariants
func Check(catalog item.Catalog, expected, persisted []domain.InventoryStack) []Issue {
	var issues []Issue

	stored := make(map[uuid.UUID]domain.InventoryStack, len(persisted))
	for _, s := range persisted {
		stored[s.ID] = s
	}
	wanted := make(map[uuid.UUID]bool, len(expected))
	for _, e := range expected {
		wanted[e.ID] = true
		got, ok := stored[e.ID]
		switch {
		case !ok:
			issues = append(issues, Issue{Kind: IssueMissingStack, StackID: e.ID, ItemID: e.ItemID, Expected: e.Amount})
		case got.Amount != e.Amount:
			issues = append(issues, Issue{Kind: IssueAmountMismatch, StackID: e.ID, ItemID: e.ItemID, Expected: e.Amount, Actual: got.Amount})
		case got.Equipped != e.Equipped || got.Soulbound != e.Soulbound || got.ItemID != e.ItemID:
			issues = append(issues, Issue{Kind: IssueStateMismatch, StackID: e.ID, ItemID: e.ItemID, Detail: "equipped, soulbound or item differs"})
		}
	}

	mergeable := make(map[string]uuid.UUID)
	slots := make(map[domain.EquipmentSlot]uuid.UUID)
	for _, s := range persisted {
		if expected != nil && !wanted[s.ID] {
			issues = append(issues, Issue{Kind: IssueUnexpectedStack, StackID: s.ID, ItemID: s.ItemID, Actual: s.Amount})
		}
		if s.Amount <= 0 {
			issues = append(issues, Issue{Kind: IssueNonPositive, StackID: s.ID, ItemID: s.ItemID, Actual: s.Amount})
		}
		if !s.Equipped && s.IsStackable() {
			key := s.ItemID + "\x00"
			if s.Tag != nil {
				key += *s.Tag
			}
			if other, dup := mergeable[key]; dup {
				issues = append(issues, Issue{Kind: IssueDuplicateStack, StackID: s.ID, ItemID: s.ItemID, Detail: fmt.Sprintf("mergeable with %s", other)})
			} else {
				mergeable[key] = s.ID
			}
		}
		if s.Equipped {
			def, err := catalog.Get(s.ItemID)
			if err != nil {
				issues = append(issues, Issue{Kind: IssueUnknownItem, StackID: s.ID, ItemID: s.ItemID})
				continue
			}
			if def.IsExemptSlot() {
				continue
			}
			if other, taken := slots[def.Slot()]; taken {
				issues = append(issues, Issue{Kind: IssueSlotConflict, StackID: s.ID, ItemID: s.ItemID, Detail: fmt.Sprintf("slot %s also held by %s", def.Slot(), other)})
			} else {
				slots[def.Slot()] = s.ID
			}
		}
	}
	return issues
}

// Reporter records inventory issues to structured storage
type Reporter interface {
	Report(ctx context.Context, characterID uuid.UUID, issues []Issue)
}

type eventLogReporter struct {
	log repository.EventLog
}

// NewReporter creates a Reporter that logs, counts and stores every issue
func NewReporter(log repository.EventLog) Reporter {
	return &eventLogReporter{log: log}
}

func (r *eventLogReporter) Report(ctx context.Context, characterID uuid.UUID, issues []Issue) {
	log := logger.FromContext(ctx)
	id := characterID.String()
	for _, is := range issues {
		log.Warn(LogMsgInventoryIssue,
			"character_id", id,
			"kind", is.Kind,
			"stack_id", is.StackID,
			"item_id", is.ItemID,
			"expected", is.Expected,
			"actual", is.Actual,
			"detail", is.Detail)
		metrics.InventoryIssuesTotal.WithLabelValues(string(is.Kind)).Inc()

		if r.log == nil {
			continue
		}
		payload := map[string]interface{}{
			"kind":     string(is.Kind),
			"stack_id": is.StackID.String(),
			"item_id":  is.ItemID,
			"expected": is.Expected,
			"actual":   is.Actual,
			"detail":   is.Detail,
		}
		if err := r.log.LogEvent(ctx, EventTypeInventoryIssue, &id, payload, nil); err != nil {
			log.Error(LogMsgStoreIssueFailed, "error", err, "character_id", id)
		}
	}
}
