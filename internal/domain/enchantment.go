package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// EnchantmentKind classifies which base stats an enchantment modifies
type EnchantmentKind string

const (
	EnchantPower EnchantmentKind = "POWER"
	EnchantAim   EnchantmentKind = "AIM"
	EnchantArmor EnchantmentKind = "ARMOR"
	EnchantOther EnchantmentKind = "OTHER"
)

// EnchantmentModifier is a single KEY:value[%] entry
type EnchantmentModifier struct {
	Key     string
	Kind    EnchantmentKind
	Value   float64
	Percent bool
}

// Enchantment is the parsed, ordered list of modifiers on a stack.
// A nil Enchantment means the stack carries no enchantment.
type Enchantment []EnchantmentModifier

func kindForKey(key string) EnchantmentKind {
	switch {
	case strings.Contains(key, "POWER"):
		return EnchantPower
	case strings.Contains(key, "AIM"):
		return EnchantAim
	case strings.Contains(key, "ARMOR"):
		return EnchantArmor
	default:
		return EnchantOther
	}
}

// ParseEnchantment parses the `KEY:value[%];KEY:value[%]` wire format.
// An empty string yields a nil Enchantment.
func ParseEnchantment(raw string) (Enchantment, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ";")
	ench := make(Enchantment, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, ":")
		key = strings.ToUpper(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEnchantment, part)
		}

		value = strings.TrimSpace(value)
		percent := strings.HasSuffix(value, "%")
		value = strings.TrimSuffix(value, "%")
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidEnchantment, part, err)
		}

		ench = append(ench, EnchantmentModifier{
			Key:     key,
			Kind:    kindForKey(key),
			Value:   v,
			Percent: percent,
		})
	}

	if len(ench) == 0 {
		return nil, nil
	}
	return ench, nil
}

// String formats the enchantment back into its wire format
func (e Enchantment) String() string {
	if len(e) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e))
	for _, m := range e {
		v := strconv.FormatFloat(m.Value, 'f', -1, 64)
		if m.Percent {
			v += "%"
		}
		parts = append(parts, m.Key+":"+v)
	}
	return strings.Join(parts, ";")
}

// IsEmpty reports whether there are no modifiers
func (e Enchantment) IsEmpty() bool {
	return len(e) == 0
}

// Apply returns base modified by every modifier of the given kind, in order
func (e Enchantment) Apply(kind EnchantmentKind, base float64) float64 {
	out := base
	for _, m := range e {
		if m.Kind != kind {
			continue
		}
		if m.Percent {
			out *= 1 + m.Value/100
		} else {
			out += m.Value
		}
	}
	return out
}
