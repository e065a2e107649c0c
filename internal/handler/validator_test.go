package handler

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_PositiveDecimal(t *testing.T) {
	InitValidator()
	v := GetValidator()

	tests := []struct {
		name    string
		price   decimal.Decimal
		wantErr bool
	}{
		{"whole", decimal.NewFromInt(3), false},
		{"fraction", decimal.RequireFromString("0.01"), false},
		{"zero", decimal.Zero, true},
		{"negative", decimal.NewFromInt(-2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := SellItemRequest{
				CharacterID:  "6f1c3f0e-4d3a-4b7e-9a8e-0c2f5d6b7a81",
				ItemID:       "ore",
				Amount:       1,
				PricePerItem: tt.price,
			}
			err := v.ValidateStruct(req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "Must be a positive number", FormatValidationError(err)["price_per_item"])
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_AmountBoundaries(t *testing.T) {
	InitValidator()
	v := GetValidator()

	tests := []struct {
		name    string
		amount  int64
		wantErr bool
	}{
		{"one (at min)", 1, false},
		{"max allowed", 1000000, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"over max", 1000001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(RemoveItemRequest{
				StackID: "6f1c3f0e-4d3a-4b7e-9a8e-0c2f5d6b7a81",
				Amount:  tt.amount,
			})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_UserIDValidation(t *testing.T) {
	InitValidator()
	v := GetValidator()

	tests := []struct {
		name    string
		userID  string
		wantErr bool
	}{
		{"valid", "alice", false},
		{"exactly max length", strings.Repeat("a", 100), false},
		{"over max length", strings.Repeat("a", 101), true},
		{"empty", "", true},
		{"with newline", "ali\nce", true},
		{"with null byte", "ali\x00ce", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(CreateSessionRequest{UserID: tt.userID})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatValidationError_UsesJSONNames(t *testing.T) {
	InitValidator()

	err := GetValidator().ValidateStruct(CancelListingRequest{CharacterID: "not-a-uuid"})
	require.Error(t, err)

	fields := FormatValidationError(err)
	assert.Equal(t, "Must be a UUID", fields["character_id"])
	assert.Equal(t, "This field is required", fields["listing_id"])
}

func TestFormatValidationError_NonValidationError(t *testing.T) {
	assert.Nil(t, FormatValidationError(nil))
	assert.Equal(t, map[string]string{"error": "Invalid request format"}, FormatValidationError(assert.AnError))
}
