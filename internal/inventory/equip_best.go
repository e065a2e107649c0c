package inventory

import (
	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
)

// bestItemSlots is the order EquipBestItems visits slots after pets.
// The three weapon slots are independent of each other.
var bestItemSlots = []domain.EquipmentSlot{
	domain.SlotMeleeWeapon,
	domain.SlotRangedWeapon,
	domain.SlotMagicWeapon,
	domain.SlotHead,
	domain.SlotChest,
	domain.SlotGloves,
	domain.SlotLeggings,
	domain.SlotBoots,
	domain.SlotShield,
	domain.SlotRing,
	domain.SlotAmulet,
}

type petIdentity struct {
	itemID string
	tag    *string
	ench   string
}

// EquipBestItems greedily equips the highest value eligible stack per slot.
// Pets are unequipped first and one pet is re-equipped, preferring the previous one.
// Other slots change only when a strictly higher value stack exists.
// The result depends only on the stacks and their order.
func (inv *Inventory) EquipBestItems() error {
	var previous *petIdentity
	for _, id := range append([]uuid.UUID(nil), inv.order...) {
		s, ok := inv.stacks[id]
		if !ok || !s.Equipped || !inv.isSlot(s, domain.SlotPet) {
			continue
		}
		if previous == nil {
			previous = &petIdentity{itemID: s.ItemID, tag: s.Tag, ench: s.Enchantment.String()}
		}
		if _, err := inv.UnequipItem(id); err != nil {
			return err
		}
	}

	if pet := inv.choosePet(previous); pet != nil {
		if _, err := inv.EquipItem(pet.ID); err != nil {
			return err
		}
	}

	for _, slot := range bestItemSlots {
		current := inv.equippedIn(slot)
		best := inv.bestCandidate(slot)
		if best == nil {
			continue
		}
		if current != nil && inv.Value(best) <= inv.Value(current) {
			continue
		}
		if _, err := inv.EquipItem(best.ID); err != nil {
			return err
		}
	}
	return nil
}

func (inv *Inventory) isSlot(s *domain.InventoryStack, slot domain.EquipmentSlot) bool {
	def, err := inv.definition(s.ItemID)
	if err != nil {
		return false
	}
	return !def.IsExemptSlot() && def.Slot() == slot
}

func (inv *Inventory) eligible(s *domain.InventoryStack, slot domain.EquipmentSlot) bool {
	if s.Equipped {
		return false
	}
	def, err := inv.definition(s.ItemID)
	if err != nil || def.IsExemptSlot() || def.Slot() != slot {
		return false
	}
	return inv.CanEquipItem(def)
}

// bestCandidate returns the highest valued unequipped stack for slot; earlier stacks win ties
func (inv *Inventory) bestCandidate(slot domain.EquipmentSlot) *domain.InventoryStack {
	var best *domain.InventoryStack
	var bestValue int64
	for _, id := range inv.order {
		s := inv.stacks[id]
		if !inv.eligible(s, slot) {
			continue
		}
		if v := inv.Value(s); best == nil || v > bestValue {
			best, bestValue = s, v
		}
	}
	return best
}

func (inv *Inventory) choosePet(previous *petIdentity) *domain.InventoryStack {
	if previous != nil {
		for _, id := range inv.order {
			s := inv.stacks[id]
			if s.ItemID == previous.itemID && domain.TagEqual(s.Tag, previous.tag) &&
				s.Enchantment.String() == previous.ench && inv.eligible(s, domain.SlotPet) {
				return s
			}
		}
	}
	return inv.bestCandidate(domain.SlotPet)
}
