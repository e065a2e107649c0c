package domain

import (
	"time"

	"github.com/google/uuid"
)

// InventoryStack is a run of identical units of one item held by a character
type InventoryStack struct {
	ID                   uuid.UUID   `json:"id"`
	CharacterID          uuid.UUID   `json:"character_id"`
	ItemID               string      `json:"item_id"`
	Amount               int64       `json:"amount"`
	Equipped             bool        `json:"equipped"`
	Tag                  *string     `json:"tag,omitempty"`
	Enchantment          Enchantment `json:"-"`
	TransmogrificationID *string     `json:"transmogrification_id,omitempty"`
	Soulbound            bool        `json:"soulbound"`
	Flags                int32       `json:"flags"`
	NameOverride         *string     `json:"name_override,omitempty"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// EnchantmentString exposes the enchantment in its wire format for JSON and storage
func (s *InventoryStack) EnchantmentString() string {
	return s.Enchantment.String()
}

// IsStackable reports whether the stack may be merged with other units
func (s *InventoryStack) IsStackable() bool {
	return s.Enchantment.IsEmpty() && s.TransmogrificationID == nil
}

// IsPlain reports whether the stack carries no enchantment, transmogrification or tag
func (s *InventoryStack) IsPlain() bool {
	return s.IsStackable() && s.Tag == nil
}

// CanMergeWith reports whether units of other can be folded into s.
// Equipped and unequipped stacks never merge.
func (s *InventoryStack) CanMergeWith(other *InventoryStack) bool {
	if s.Equipped || other.Equipped {
		return false
	}
	if !s.IsStackable() || !other.IsStackable() {
		return false
	}
	return s.ItemID == other.ItemID && TagEqual(s.Tag, other.Tag)
}

// Clone returns a deep copy of the stack
func (s *InventoryStack) Clone() *InventoryStack {
	c := *s
	if s.Tag != nil {
		t := *s.Tag
		c.Tag = &t
	}
	if s.TransmogrificationID != nil {
		t := *s.TransmogrificationID
		c.TransmogrificationID = &t
	}
	if s.NameOverride != nil {
		n := *s.NameOverride
		c.NameOverride = &n
	}
	if s.Enchantment != nil {
		c.Enchantment = append(Enchantment(nil), s.Enchantment...)
	}
	return &c
}

// TagEqual compares optional tags by value
func TagEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
