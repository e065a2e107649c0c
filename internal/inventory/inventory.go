// Package inventory implements the per-character stack model and the service
// that persists it. Stacks live in a flat id-keyed table with a separate
// ordering slice; every mutation is recorded so it can be flushed in one
// transaction.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/item"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// AddOptions describes the identity of units being added
type AddOptions struct {
	Equipped             bool
	Tag                  *string
	Soulbound            bool
	Enchantment          domain.Enchantment
	TransmogrificationID *string
}

// Inventory is the in-memory stack index of one character
type Inventory struct {
	characterID uuid.UUID
	skills      domain.Skills
	catalog     item.Catalog

	stacks map[uuid.UUID]*domain.InventoryStack
	order  []uuid.UUID

	persisted map[uuid.UUID]bool
	upserts   map[uuid.UUID]bool
	deletes   map[uuid.UUID]bool
}

// New builds an Inventory from persisted stacks
func New(character *domain.Character, catalog item.Catalog, stacks []domain.InventoryStack) *Inventory {
	inv := &Inventory{
		characterID: character.ID,
		skills:      character.Skills,
		catalog:     catalog,
		stacks:      make(map[uuid.UUID]*domain.InventoryStack, len(stacks)),
		order:       make([]uuid.UUID, 0, len(stacks)),
		persisted:   make(map[uuid.UUID]bool, len(stacks)),
		upserts:     make(map[uuid.UUID]bool),
		deletes:     make(map[uuid.UUID]bool),
	}
	for i := range stacks {
		s := stacks[i].Clone()
		inv.stacks[s.ID] = s
		inv.order = append(inv.order, s.ID)
		inv.persisted[s.ID] = true
	}
	return inv
}

// CharacterID returns the owner of the inventory
func (inv *Inventory) CharacterID() uuid.UUID {
	return inv.characterID
}

// Stacks returns a copy of every stack in inventory order
func (inv *Inventory) Stacks() []domain.InventoryStack {
	out := make([]domain.InventoryStack, 0, len(inv.order))
	for _, id := range inv.order {
		out = append(out, *inv.stacks[id].Clone())
	}
	return out
}

// Stack returns a copy of one stack
func (inv *Inventory) Stack(stackID uuid.UUID) (*domain.InventoryStack, bool) {
	s, ok := inv.stacks[stackID]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Count returns the units of itemID held across all stacks
func (inv *Inventory) Count(itemID string) int64 {
	var total int64
	for _, id := range inv.order {
		if s := inv.stacks[id]; s.ItemID == itemID {
			total += s.Amount
		}
	}
	return total
}

// HasChanges reports whether any mutation is pending
func (inv *Inventory) HasChanges() bool {
	return len(inv.upserts) > 0 || len(inv.deletes) > 0
}

// Flush writes pending changes through tx and clears them
func (inv *Inventory) Flush(ctx context.Context, tx repository.Tx) error {
	for id := range inv.deletes {
		if err := tx.DeleteStack(ctx, inv.characterID, id); err != nil {
			return fmt.Errorf("failed to delete stack %s: %w", id, err)
		}
	}
	for _, id := range inv.order {
		if !inv.upserts[id] {
			continue
		}
		if err := tx.UpsertStack(ctx, inv.stacks[id]); err != nil {
			return fmt.Errorf("failed to upsert stack %s: %w", id, err)
		}
	}
	for id := range inv.upserts {
		inv.persisted[id] = true
	}
	for id := range inv.deletes {
		delete(inv.persisted, id)
	}
	inv.upserts = make(map[uuid.UUID]bool)
	inv.deletes = make(map[uuid.UUID]bool)
	return nil
}

func (inv *Inventory) touch(s *domain.InventoryStack) {
	s.UpdatedAt = time.Now()
	inv.upserts[s.ID] = true
}

func (inv *Inventory) insert(s *domain.InventoryStack) {
	inv.stacks[s.ID] = s
	inv.order = append(inv.order, s.ID)
	inv.touch(s)
}

func (inv *Inventory) remove(stackID uuid.UUID) {
	delete(inv.stacks, stackID)
	delete(inv.upserts, stackID)
	for i, id := range inv.order {
		if id == stackID {
			inv.order = append(inv.order[:i:i], inv.order[i+1:]...)
			break
		}
	}
	if inv.persisted[stackID] {
		inv.deletes[stackID] = true
	}
}

func (inv *Inventory) definition(itemID string) (*domain.Item, error) {
	def, err := inv.catalog.Get(itemID)
	if err != nil {
		return nil, err
	}
	return def, nil
}

// mergeTarget finds an unequipped stack that units identical to probe may join
func (inv *Inventory) mergeTarget(probe *domain.InventoryStack, exclude uuid.UUID) *domain.InventoryStack {
	for _, id := range inv.order {
		if id == exclude {
			continue
		}
		s := inv.stacks[id]
		if s.CanMergeWith(probe) {
			return s
		}
	}
	return nil
}

// AddItem adds amount units of itemID and returns the stack that received them.
// An equipped add equips one unit, unequipping the slot occupant first, and
// stores the rest unequipped.
func (inv *Inventory) AddItem(itemID string, amount int64, opts AddOptions) (*domain.InventoryStack, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	def, err := inv.definition(itemID)
	if err != nil {
		return nil, err
	}

	probe := &domain.InventoryStack{
		CharacterID:          inv.characterID,
		ItemID:               itemID,
		Tag:                  opts.Tag,
		Enchantment:          opts.Enchantment,
		TransmogrificationID: opts.TransmogrificationID,
		Soulbound:            opts.Soulbound || def.Soulbound,
	}

	if opts.Equipped {
		if !inv.CanEquipItem(def) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCannotEquip, itemID)
		}
		if err := inv.vacateSlot(def); err != nil {
			return nil, err
		}
		equipped := probe.Clone()
		equipped.ID = uuid.New()
		equipped.Amount = 1
		equipped.Equipped = true
		inv.insert(equipped)
		if amount > 1 {
			inv.addUnequipped(probe, amount-1)
		}
		return equipped.Clone(), nil
	}

	return inv.addUnequipped(probe, amount).Clone(), nil
}

func (inv *Inventory) addUnequipped(probe *domain.InventoryStack, amount int64) *domain.InventoryStack {
	if probe.IsStackable() {
		if target := inv.mergeTarget(probe, uuid.Nil); target != nil {
			target.Amount += amount
			target.Soulbound = target.Soulbound || probe.Soulbound
			inv.touch(target)
			return target
		}
	}
	s := probe.Clone()
	s.ID = uuid.New()
	s.Amount = amount
	s.Equipped = false
	inv.insert(s)
	return s
}

// RemoveItem takes amount units from one stack and returns what is left in it.
// Asking for more than the stack holds fails without changing anything.
func (inv *Inventory) RemoveItem(stackID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	s, ok := inv.stacks[stackID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrStackNotFound, stackID)
	}
	if amount > s.Amount {
		return s.Amount, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientQuantity, s.Amount, amount)
	}
	s.Amount -= amount
	if s.Amount == 0 {
		inv.remove(stackID)
		return 0, nil
	}
	inv.touch(s)
	return s.Amount, nil
}

// TradableUnits counts units of itemID that may be sold: plain, unequipped and not soulbound
func (inv *Inventory) TradableUnits(itemID string) int64 {
	var total int64
	for _, id := range inv.order {
		s := inv.stacks[id]
		if isTradable(s, itemID) {
			total += s.Amount
		}
	}
	return total
}

func isTradable(s *domain.InventoryStack, itemID string) bool {
	return s.ItemID == itemID && !s.Equipped && !s.Soulbound && s.IsPlain()
}

// TakeTradableUnits removes amount tradable units of itemID in inventory order.
// It fails without mutation if fewer are held.
func (inv *Inventory) TakeTradableUnits(itemID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if have := inv.TradableUnits(itemID); have < amount {
		return fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientQuantity, have, amount)
	}

	remaining := amount
	for _, id := range append([]uuid.UUID(nil), inv.order...) {
		if remaining == 0 {
			break
		}
		s := inv.stacks[id]
		if !isTradable(s, itemID) {
			continue
		}
		take := min(s.Amount, remaining)
		if _, err := inv.RemoveItem(id, take); err != nil {
			return err
		}
		remaining -= take
	}
	return nil
}

// CanEquipItem reports whether the character meets every requirement of def
func (inv *Inventory) CanEquipItem(def *domain.Item) bool {
	if !def.Category.IsEquippableCategory() {
		return false
	}
	if def.Slot() == domain.SlotNone && !def.IsExemptSlot() {
		return false
	}
	sk := inv.skills
	return sk.Attack >= def.RequiredAttackLevel &&
		sk.Defense >= def.RequiredDefenseLevel &&
		sk.Ranged >= def.RequiredRangedLevel &&
		max(sk.Magic, sk.Healing) >= def.RequiredMagicLevel &&
		sk.Slayer >= def.RequiredSlayerLevel
}

// equippedIn returns the equipped stack occupying slot, if any
func (inv *Inventory) equippedIn(slot domain.EquipmentSlot) *domain.InventoryStack {
	for _, id := range inv.order {
		s := inv.stacks[id]
		if !s.Equipped {
			continue
		}
		def, err := inv.definition(s.ItemID)
		if err != nil || def.IsExemptSlot() {
			continue
		}
		if def.Slot() == slot {
			return s
		}
	}
	return nil
}

func (inv *Inventory) vacateSlot(def *domain.Item) error {
	if def.IsExemptSlot() {
		return nil
	}
	if occupant := inv.equippedIn(def.Slot()); occupant != nil {
		if _, err := inv.UnequipItem(occupant.ID); err != nil {
			return err
		}
	}
	return nil
}

// EquipItem equips one unit of a stack, splitting it when it holds more than one,
// and returns the equipped stack
func (inv *Inventory) EquipItem(stackID uuid.UUID) (*domain.InventoryStack, error) {
	s, ok := inv.stacks[stackID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStackNotFound, stackID)
	}
	if s.Equipped {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyEquipped, stackID)
	}
	def, err := inv.definition(s.ItemID)
	if err != nil {
		return nil, err
	}
	if !inv.CanEquipItem(def) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCannotEquip, s.ItemID)
	}
	if err := inv.vacateSlot(def); err != nil {
		return nil, err
	}

	// vacateSlot may have merged units into s
	s = inv.stacks[stackID]
	if s.Amount == 1 {
		s.Equipped = true
		inv.touch(s)
		return s.Clone(), nil
	}

	s.Amount--
	inv.touch(s)
	equipped := s.Clone()
	equipped.ID = uuid.New()
	equipped.Amount = 1
	equipped.Equipped = true
	inv.insert(equipped)
	return equipped.Clone(), nil
}

// UnequipItem unequips a stack and merges it into a matching unequipped stack when allowed.
// It returns the stack now holding the units.
func (inv *Inventory) UnequipItem(stackID uuid.UUID) (*domain.InventoryStack, error) {
	s, ok := inv.stacks[stackID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStackNotFound, stackID)
	}
	if !s.Equipped {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotEquipped, stackID)
	}

	s.Equipped = false
	if s.IsStackable() {
		if target := inv.mergeTarget(s, s.ID); target != nil {
			target.Amount += s.Amount
			target.Soulbound = target.Soulbound || s.Soulbound
			inv.touch(target)
			inv.remove(s.ID)
			return target.Clone(), nil
		}
	}
	inv.touch(s)
	return s.Clone(), nil
}

// Value scores a stack for EquipBestItems: the sum of its seven combat stats
// after enchantment modifiers, truncated to whole points
func (inv *Inventory) Value(s *domain.InventoryStack) int64 {
	def, err := inv.definition(s.ItemID)
	if err != nil {
		return 0
	}
	return ItemValue(def, s.Enchantment)
}

// ItemValue scores an item definition with an optional enchantment
func ItemValue(def *domain.Item, ench domain.Enchantment) int64 {
	power := ench.Apply(domain.EnchantPower, float64(def.WeaponPower)) +
		ench.Apply(domain.EnchantPower, float64(def.MagicPower)) +
		ench.Apply(domain.EnchantPower, float64(def.RangedPower))
	aim := ench.Apply(domain.EnchantAim, float64(def.WeaponAim)) +
		ench.Apply(domain.EnchantAim, float64(def.MagicAim)) +
		ench.Apply(domain.EnchantAim, float64(def.RangedAim))
	armor := ench.Apply(domain.EnchantArmor, float64(def.ArmorPower))
	return int64(power + aim + armor)
}
