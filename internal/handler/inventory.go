package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/inventory"
)

// StackResponse is the wire form of an inventory stack
type StackResponse struct {
	domain.InventoryStack
	Enchantment string `json:"enchantment,omitempty"`
}

func toStackResponse(s domain.InventoryStack) StackResponse {
	return StackResponse{InventoryStack: s, Enchantment: s.EnchantmentString()}
}

func toStackResponses(stacks []domain.InventoryStack) []StackResponse {
	out := make([]StackResponse, 0, len(stacks))
	for _, s := range stacks {
		out = append(out, toStackResponse(s))
	}
	return out
}

type InventoryResponse struct {
	CharacterID string          `json:"character_id"`
	Stacks      []StackResponse `json:"stacks"`
}

type AddItemRequest struct {
	ItemID               string  `json:"item_id" validate:"required,max=100"`
	Amount               int64   `json:"amount" validate:"min=1,max=1000000"`
	Equipped             bool    `json:"equipped"`
	Soulbound            bool    `json:"soulbound"`
	Tag                  *string `json:"tag" validate:"omitempty,max=100"`
	Enchantment          string  `json:"enchantment" validate:"max=500"`
	TransmogrificationID *string `json:"transmogrification_id" validate:"omitempty,max=100"`
}

type RemoveItemRequest struct {
	StackID string `json:"stack_id" validate:"required,uuid"`
	Amount  int64  `json:"amount" validate:"min=1,max=1000000"`
}

type StackRequest struct {
	StackID string `json:"stack_id" validate:"required,uuid"`
}

// RemoveItemResponse reports the units left in the stack after removal
type RemoveItemResponse struct {
	Message   string `json:"message"`
	Remaining int64  `json:"remaining"`
}

// HandleGetInventory lists a character's stacks
func HandleGetInventory(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, ok := GetUUIDPathParam(r, w, "id")
		if !ok {
			return
		}

		stacks, err := svc.GetInventory(r.Context(), characterID)
		if err != nil {
			respondServiceError(w, r, "Get inventory", err)
			return
		}
		respondJSON(w, http.StatusOK, InventoryResponse{
			CharacterID: characterID.String(),
			Stacks:      toStackResponses(stacks),
		})
	}
}

// HandleAddItem grants units to a character the session owns
func HandleAddItem(svc inventory.Service, sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}
		characterID, ok := GetUUIDPathParam(r, w, "id")
		if !ok {
			return
		}

		var req AddItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Add item"); err != nil {
			return
		}

		ench, err := domain.ParseEnchantment(req.Enchantment)
		if err != nil {
			respondServiceError(w, r, "Add item", err)
			return
		}

		stack, err := svc.AddItem(r.Context(), sess, characterID, req.ItemID, req.Amount, inventory.AddOptions{
			Equipped:             req.Equipped,
			Tag:                  req.Tag,
			Soulbound:            req.Soulbound,
			Enchantment:          ench,
			TransmogrificationID: req.TransmogrificationID,
		})
		if err != nil {
			respondServiceError(w, r, "Add item", err)
			return
		}
		respondJSON(w, http.StatusOK, toStackResponse(*stack))
	}
}

// HandleRemoveItem takes units out of one stack
func HandleRemoveItem(svc inventory.Service, sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}
		characterID, ok := GetUUIDPathParam(r, w, "id")
		if !ok {
			return
		}

		var req RemoveItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Remove item"); err != nil {
			return
		}

		remaining, err := svc.RemoveItem(r.Context(), sess, characterID, mustParseUUID(req.StackID), req.Amount)
		if err != nil {
			respondServiceError(w, r, "Remove item", err)
			return
		}
		respondJSON(w, http.StatusOK, RemoveItemResponse{Message: MsgItemRemovedSuccess, Remaining: remaining})
	}
}

// HandleEquipItem equips one unit of a stack
func HandleEquipItem(svc inventory.Service, sessions SessionService) http.HandlerFunc {
	return handleStackAction(sessions, "Equip item", svc.EquipItem)
}

// HandleUnequipItem unequips a stack
func HandleUnequipItem(svc inventory.Service, sessions SessionService) http.HandlerFunc {
	return handleStackAction(sessions, "Unequip item", svc.UnequipItem)
}

// HandleEquipBestItems equips the strongest usable item per slot
func HandleEquipBestItems(svc inventory.Service, sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}
		characterID, ok := GetUUIDPathParam(r, w, "id")
		if !ok {
			return
		}

		equipped, err := svc.EquipBestItems(r.Context(), sess, characterID)
		if err != nil {
			respondServiceError(w, r, "Equip best items", err)
			return
		}
		respondJSON(w, http.StatusOK, InventoryResponse{
			CharacterID: characterID.String(),
			Stacks:      toStackResponses(equipped),
		})
	}
}

type stackAction func(ctx context.Context, sess *domain.Session, characterID, stackID uuid.UUID) (*domain.InventoryStack, error)

func handleStackAction(sessions SessionService, opName string, action stackAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, sessions)
		if !ok {
			return
		}
		characterID, ok := GetUUIDPathParam(r, w, "id")
		if !ok {
			return
		}

		var req StackRequest
		if err := DecodeAndValidateRequest(r, w, &req, opName); err != nil {
			return
		}

		stack, err := action(r.Context(), sess, characterID, mustParseUUID(req.StackID))
		if err != nil {
			respondServiceError(w, r, opName, err)
			return
		}
		respondJSON(w, http.StatusOK, toStackResponse(*stack))
	}
}
