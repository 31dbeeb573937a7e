// internal/game/pending.go
package game

import (
	"github.com/google/uuid"

	"github.com/subwaydeal/server/internal/catalog"
)

// PendingKind tags what a pending action does to each target on accept.
type PendingKind string

const (
	PendingCharge    PendingKind = "charge"
	PendingStealCard PendingKind = "steal_card"
	PendingStealSet  PendingKind = "steal_set"
	PendingSwap      PendingKind = "swap"
)

// PendingAction is the single in-flight targeted action. Targets respond in
// queue order, one at a time; each outcome is independent of the others and
// of how earlier targets responded. The initiator's action budget was charged
// when the action was played and is never touched by responses.
type PendingAction struct {
	Kind     PendingKind `json:"kind"`
	CardName string      `json:"cardName"`
	SourceID uuid.UUID   `json:"sourceId"`
	Targets  []uuid.UUID `json:"targets"`

	// PendingCharge
	Amount int `json:"amount,omitempty"`

	// PendingStealCard / PendingStealSet / PendingSwap
	TargetCardID uuid.UUID     `json:"targetCardId,omitempty"`
	OwnCardID    uuid.UUID     `json:"ownCardId,omitempty"`
	Color        catalog.Color `json:"color,omitempty"`
}

// currentTarget is the one player whose response is awaited right now.
func (pa *PendingAction) currentTarget() uuid.UUID {
	return pa.Targets[0]
}

// pop drops the current target. Returns true when no targets remain.
func (pa *PendingAction) pop() bool {
	pa.Targets = pa.Targets[1:]
	return len(pa.Targets) == 0
}

// resolveAccept applies the pending outcome to the current target, then
// advances the queue. Outcomes never fail validation at this point; a broken
// reference here is an integrity fault.
func (pa *PendingAction) resolveAccept(g *GameState) error {
	source := g.playerByID(pa.SourceID)
	target := g.playerByID(pa.currentTarget())
	if source == nil || target == nil {
		return integrityf("pending %s references unknown player", pa.Kind)
	}

	switch pa.Kind {
	case PendingCharge:
		paid, _ := target.payUpTo(pa.Amount)
		for _, card := range paid {
			if card.IsProperty() {
				if err := source.place(card.Color, card); err != nil {
					return integrityf("transfer %s: %v", card.Name(), err)
				}
			} else {
				source.Bank = append(source.Bank, card)
			}
		}

	case PendingStealCard:
		card, err := target.removeProperty(pa.Color, pa.TargetCardID)
		if err != nil {
			return integrityf("steal from %s: %v", target.Name, err)
		}
		if err := source.place(card.Color, card); err != nil {
			return integrityf("steal place %s: %v", card.Name(), err)
		}

	case PendingStealSet:
		ps, ok := target.Properties[pa.Color]
		if !ok {
			return integrityf("steal set: %s has no %s set", target.Name, pa.Color)
		}
		delete(target.Properties, pa.Color)
		dst, exists := source.Properties[pa.Color]
		if !exists {
			source.Properties[pa.Color] = ps
		} else {
			dst.Cards = append(dst.Cards, ps.Cards...)
			for _, imp := range ps.Improvements {
				if !dst.hasImprovement(imp) {
					dst.Improvements = append(dst.Improvements, imp)
				}
			}
		}

	case PendingSwap:
		ownSet, own := source.findProperty(pa.OwnCardID)
		theirSet, theirs := target.findProperty(pa.TargetCardID)
		if own == nil || theirs == nil || ownSet == nil || theirSet == nil {
			return integrityf("swap references a missing property")
		}
		if _, err := source.removeProperty(ownSet.Color, own.ID); err != nil {
			return integrityf("swap remove own: %v", err)
		}
		if _, err := target.removeProperty(theirSet.Color, theirs.ID); err != nil {
			return integrityf("swap remove theirs: %v", err)
		}
		if err := target.place(own.Color, own); err != nil {
			return integrityf("swap place own: %v", err)
		}
		if err := source.place(theirs.Color, theirs); err != nil {
			return integrityf("swap place theirs: %v", err)
		}

	default:
		return integrityf("unknown pending kind %q", pa.Kind)
	}

	pa.finishTarget(g)
	return nil
}

// resolveCounter discards the target's Fare Evasion card and skips the
// outcome for that target only. Later targets in the queue are unaffected.
func (pa *PendingAction) resolveCounter(g *GameState, counter *CardInstance) {
	g.discard(counter)
	pa.finishTarget(g)
}

func (pa *PendingAction) finishTarget(g *GameState) {
	if pa.pop() {
		g.Pending = nil
		if g.Status == StatusAwaitingResponse {
			g.Status = StatusPlaying
		}
	}
}
