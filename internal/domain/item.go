package domain

import "strings"

// ItemCategory groups item types for filtering and equip rules
type ItemCategory string

const (
	CategoryWeapon     ItemCategory = "WEAPON"
	CategoryArmor      ItemCategory = "ARMOR"
	CategoryJewelry    ItemCategory = "JEWELRY"
	CategoryPet        ItemCategory = "PET"
	CategoryResource   ItemCategory = "RESOURCE"
	CategoryScroll     ItemCategory = "SCROLL"
	CategoryPotion     ItemCategory = "POTION"
	CategoryFood       ItemCategory = "FOOD"
	CategoryLootBox    ItemCategory = "LOOT_BOX"
	CategoryQuest      ItemCategory = "QUEST"
	CategoryCosmetic   ItemCategory = "COSMETIC"
	CategoryMiscellany ItemCategory = "MISC"
)

// ItemType is the concrete kind of an item and decides its equipment slot
type ItemType string

const (
	TypeOneHandedSword ItemType = "ONE_HANDED_SWORD"
	TypeTwoHandedSword ItemType = "TWO_HANDED_SWORD"
	TypeTwoHandedAxe   ItemType = "TWO_HANDED_AXE"
	TypeBow            ItemType = "BOW"
	TypeStaff          ItemType = "STAFF"
	TypeHelmet         ItemType = "HELMET"
	TypeChest          ItemType = "CHEST"
	TypeGloves         ItemType = "GLOVES"
	TypeLeggings       ItemType = "LEGGINGS"
	TypeBoots          ItemType = "BOOTS"
	TypeShield         ItemType = "SHIELD"
	TypeRing           ItemType = "RING"
	TypeAmulet         ItemType = "AMULET"
	TypePet            ItemType = "PET"
	TypeHat            ItemType = "HAT"
	TypeMask           ItemType = "MASK"
	TypeCape           ItemType = "CAPE"
	TypeResource       ItemType = "RESOURCE"
	TypeScroll         ItemType = "SCROLL"
	TypePotion         ItemType = "POTION"
	TypeFood           ItemType = "FOOD"
	TypeLootBox        ItemType = "LOOT_BOX"
	TypeQuestItem      ItemType = "QUEST_ITEM"
)

// EquipmentSlot is the slot an equipped item occupies
type EquipmentSlot string

const (
	SlotNone         EquipmentSlot = "NONE"
	SlotAmulet       EquipmentSlot = "AMULET"
	SlotRing         EquipmentSlot = "RING"
	SlotShield       EquipmentSlot = "SHIELD"
	SlotHead         EquipmentSlot = "HEAD"
	SlotChest        EquipmentSlot = "CHEST"
	SlotGloves       EquipmentSlot = "GLOVES"
	SlotLeggings     EquipmentSlot = "LEGGINGS"
	SlotBoots        EquipmentSlot = "BOOTS"
	SlotPet          EquipmentSlot = "PET"
	SlotMeleeWeapon  EquipmentSlot = "MELEE_WEAPON"
	SlotMagicWeapon  EquipmentSlot = "MAGIC_WEAPON"
	SlotRangedWeapon EquipmentSlot = "RANGED_WEAPON"
)

// Slot returns the equipment slot for an item type
func (t ItemType) Slot() EquipmentSlot {
	switch t {
	case TypeOneHandedSword, TypeTwoHandedSword, TypeTwoHandedAxe:
		return SlotMeleeWeapon
	case TypeBow:
		return SlotRangedWeapon
	case TypeStaff:
		return SlotMagicWeapon
	case TypeHelmet:
		return SlotHead
	case TypeChest:
		return SlotChest
	case TypeGloves:
		return SlotGloves
	case TypeLeggings:
		return SlotLeggings
	case TypeBoots:
		return SlotBoots
	case TypeShield:
		return SlotShield
	case TypeRing:
		return SlotRing
	case TypeAmulet:
		return SlotAmulet
	case TypePet:
		return SlotPet
	default:
		return SlotNone
	}
}

// Item is a static catalog definition
type Item struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    ItemCategory `json:"category"`
	Type        ItemType     `json:"type"`
	ShopPrice   int64        `json:"shop_price"`
	Soulbound   bool         `json:"soulbound,omitempty"`

	RequiredAttackLevel  int `json:"required_attack_level,omitempty"`
	RequiredDefenseLevel int `json:"required_defense_level,omitempty"`
	RequiredRangedLevel  int `json:"required_ranged_level,omitempty"`
	RequiredMagicLevel   int `json:"required_magic_level,omitempty"`
	RequiredSlayerLevel  int `json:"required_slayer_level,omitempty"`

	WeaponAim   int `json:"weapon_aim,omitempty"`
	WeaponPower int `json:"weapon_power,omitempty"`
	ArmorPower  int `json:"armor_power,omitempty"`
	MagicAim    int `json:"magic_aim,omitempty"`
	MagicPower  int `json:"magic_power,omitempty"`
	RangedAim   int `json:"ranged_aim,omitempty"`
	RangedPower int `json:"ranged_power,omitempty"`
}

// Slot returns the equipment slot of the item
func (i *Item) Slot() EquipmentSlot {
	return i.Type.Slot()
}

// IsEquippableCategory reports whether items of this category can ever be equipped
func (c ItemCategory) IsEquippableCategory() bool {
	switch c {
	case CategoryResource, CategoryScroll, CategoryPotion, CategoryFood, CategoryLootBox, CategoryQuest:
		return false
	}
	return true
}

// IsExemptSlot reports whether several cosmetic items may be equipped at once
func (i *Item) IsExemptSlot() bool {
	return i.Category == CategoryCosmetic
}

// ParseItemCategory converts a raw string into a known category
func ParseItemCategory(raw string) (ItemCategory, bool) {
	c := ItemCategory(strings.ToUpper(strings.TrimSpace(raw)))
	switch c {
	case CategoryWeapon, CategoryArmor, CategoryJewelry, CategoryPet, CategoryResource,
		CategoryScroll, CategoryPotion, CategoryFood, CategoryLootBox, CategoryQuest,
		CategoryCosmetic, CategoryMiscellany:
		return c, true
	}
	return "", false
}
