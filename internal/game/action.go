// internal/game/action.go
package game

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/subwaydeal/server/internal/catalog"
)

// ActionType enumerates every submission the engine accepts. Effects are
// dispatched on these tags, never on card-name strings from the wire.
type ActionType string

const (
	ActionEndTurn      ActionType = "END_TURN"
	ActionPlayMoney    ActionType = "PLAY_MONEY"
	ActionPlayProperty ActionType = "PLAY_PROPERTY"
	ActionPlayRent     ActionType = "PLAY_RENT"
	ActionFlipWildcard ActionType = "FLIP_WILDCARD"

	ActionSwipeIn        ActionType = "SWIPE_IN"
	ActionPowerBroker    ActionType = "POWER_BROKER"
	ActionLineClosure    ActionType = "LINE_CLOSURE"
	ActionServiceChange  ActionType = "SERVICE_CHANGE"
	ActionMissedTrain    ActionType = "MISSED_YOUR_TRAIN"
	ActionItsMyStop      ActionType = "ITS_MY_STOP"
	ActionExpressService ActionType = "EXPRESS_SERVICE"
	ActionNewStation     ActionType = "NEW_STATION"

	// Responses to a pending action; only its current target may submit them.
	ActionAccept          ActionType = "ACCEPT"
	ActionPlayFareEvasion ActionType = "PLAY_FARE_EVASION"
)

// Action is the inbound envelope. Data is decoded into the payload struct
// matching Type; a payload that does not decode or is missing required
// fields fails with MalformedPayload.
type Action struct {
	Type ActionType      `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EndTurnPayload names the cards discarded to satisfy the hand limit.
// Empty (or absent) when the hand is already within the limit.
type EndTurnPayload struct {
	DiscardCardIDs []uuid.UUID `json:"discardCardIds,omitempty"`
}

// CardPayload names a single card in the submitter's hand.
// Used by PLAY_MONEY, SWIPE_IN and PLAY_FARE_EVASION.
type CardPayload struct {
	CardID uuid.UUID `json:"cardId"`
}

// PlayPropertyPayload places a property or wildcard. Color is required for
// wildcards and ignored for plain properties.
type PlayPropertyPayload struct {
	CardID uuid.UUID     `json:"cardId"`
	Color  catalog.Color `json:"color,omitempty"`
}

// RentPayload charges rent on Color. TargetPlayerID is required for Wild
// Rent and forbidden otherwise. RushHourCardID optionally names a Rush Hour
// card from hand to double the amount.
type RentPayload struct {
	CardID         uuid.UUID     `json:"cardId"`
	Color          catalog.Color `json:"color"`
	TargetPlayerID uuid.UUID     `json:"targetPlayerId,omitempty"`
	RushHourCardID uuid.UUID     `json:"rushHourCardId,omitempty"`
}

// StealPayload names the single property POWER_BROKER takes.
type StealPayload struct {
	CardID         uuid.UUID `json:"cardId"`
	TargetPlayerID uuid.UUID `json:"targetPlayerId"`
	TargetCardID   uuid.UUID `json:"targetCardId"`
}

// SetPayload names the complete set LINE_CLOSURE takes.
type SetPayload struct {
	CardID         uuid.UUID     `json:"cardId"`
	TargetPlayerID uuid.UUID     `json:"targetPlayerId"`
	Color          catalog.Color `json:"color"`
}

// SwapPayload names both sides of a SERVICE_CHANGE swap.
type SwapPayload struct {
	CardID         uuid.UUID `json:"cardId"`
	OwnCardID      uuid.UUID `json:"ownCardId"`
	TargetPlayerID uuid.UUID `json:"targetPlayerId"`
	TargetCardID   uuid.UUID `json:"targetCardId"`
}

// TargetPayload names a single opponent (MISSED_YOUR_TRAIN).
type TargetPayload struct {
	CardID         uuid.UUID `json:"cardId"`
	TargetPlayerID uuid.UUID `json:"targetPlayerId"`
}

// ImprovementPayload adds EXPRESS_SERVICE / NEW_STATION to one of the
// submitter's own complete sets.
type ImprovementPayload struct {
	CardID uuid.UUID     `json:"cardId"`
	Color  catalog.Color `json:"color"`
}

// FlipPayload moves a played wildcard to another of its printed colors.
type FlipPayload struct {
	CardID uuid.UUID     `json:"cardId"`
	Color  catalog.Color `json:"color"`
}

// decodePayload unmarshals raw into dst, mapping any JSON problem to a
// MalformedPayload validation error.
func decodePayload(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return validationf(CodeMalformedPayload, "missing action payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return validationf(CodeMalformedPayload, "bad action payload: %v", err)
	}
	return nil
}
