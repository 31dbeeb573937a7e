// internal/game/player.go
package game

import (
	"sort"

	"github.com/google/uuid"

	"github.com/subwaydeal/server/internal/catalog"
)

// Player is one participant's full holdings: private hand, face-up bank, and
// the property book (one set per color actually held).
type Player struct {
	ID         uuid.UUID                      `json:"id"`
	Name       string                         `json:"name"`
	Hand       []*CardInstance                `json:"hand"`
	Bank       []*CardInstance                `json:"bank"`
	Properties map[catalog.Color]*PropertySet `json:"properties"`
}

func NewPlayer(id uuid.UUID, name string) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		Properties: make(map[catalog.Color]*PropertySet),
	}
}

func (p *Player) findInHand(cardID uuid.UUID) *CardInstance {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}

func (p *Player) removeFromHand(cardID uuid.UUID) (*CardInstance, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return nil, false
}

// BankTotal sums the face values in the bank.
func (p *Player) BankTotal() int {
	total := 0
	for _, c := range p.Bank {
		total += c.Value()
	}
	return total
}

// CompleteSets counts colors whose set is currently complete. Always
// recomputed; win checks never trust a cached value.
func (p *Player) CompleteSets() int {
	n := 0
	for _, ps := range p.Properties {
		if ps.IsComplete() {
			n++
		}
	}
	return n
}

// HasWon reports whether the player holds three complete sets.
func (p *Player) HasWon() bool {
	return p.CompleteSets() >= 3
}

// place appends a property/wildcard instance to the color's set, creating
// the set if absent. The instance must not belong to any set already; the
// engine moves cards through remove-then-place.
func (p *Player) place(color catalog.Color, card *CardInstance) error {
	if !card.IsProperty() {
		return validationf(CodeInvalidPlacement, "%s is not a property card", card.Name())
	}
	if card.Def.Type == catalog.TypeWildcard && !card.Def.HasColor(color) {
		return validationf(CodeInvalidPlacement, "%s cannot be used as %s", card.Name(), color)
	}
	if card.Def.Type == catalog.TypeProperty && card.Def.Colors[0] != color {
		return validationf(CodeInvalidPlacement, "%s is a %s property", card.Name(), card.Def.Colors[0])
	}
	ps, ok := p.Properties[color]
	if !ok {
		ps = newPropertySet(color)
		p.Properties[color] = ps
	}
	card.Color = color
	ps.Cards = append(ps.Cards, card)
	return nil
}

// removeProperty detaches a card from the named set. An emptied set is
// deleted, its improvements discarded with it.
func (p *Player) removeProperty(color catalog.Color, cardID uuid.UUID) (*CardInstance, error) {
	ps, ok := p.Properties[color]
	if !ok {
		return nil, validationf(CodeNotFound, "no %s set", color)
	}
	card, ok := ps.removeCard(cardID)
	if !ok {
		return nil, validationf(CodeNotFound, "card not in %s set", color)
	}
	if len(ps.Cards) == 0 {
		delete(p.Properties, color)
	}
	return card, nil
}

// rentFor returns the current rent for the player's set of the given color.
func (p *Player) rentFor(color catalog.Color) (int, error) {
	ps, ok := p.Properties[color]
	if !ok || len(ps.Cards) == 0 {
		return 0, validationf(CodeNoSuchSet, "no %s properties", color)
	}
	return ps.Rent(), nil
}

// addImprovement attaches express/station to a complete set of the color.
func (p *Player) addImprovement(color catalog.Color, kind string) error {
	ps, ok := p.Properties[color]
	if !ok {
		return validationf(CodeNoSuchSet, "no %s properties", color)
	}
	if !ps.canAddImprovement(kind) {
		return validationf(CodeNotEligible, "cannot add %s to %s set", kind, color)
	}
	ps.Improvements = append(ps.Improvements, kind)
	return nil
}

// findProperty locates a card instance anywhere in the property book.
func (p *Player) findProperty(cardID uuid.UUID) (*PropertySet, *CardInstance) {
	for _, ps := range p.Properties {
		if c := ps.findCard(cardID); c != nil {
			return ps, c
		}
	}
	return nil, nil
}

// payUpTo collects cards worth up to amount: bank cards first, then property
// cards, each highest value first, stopping as soon as the amount is
// covered. No change is given. Property forfeits go through removeProperty
// so emptied sets (and their improvements) are dropped.
func (p *Player) payUpTo(amount int) ([]*CardInstance, int) {
	if amount <= 0 {
		return nil, 0
	}
	var paid []*CardInstance
	total := 0

	bank := make([]*CardInstance, len(p.Bank))
	copy(bank, p.Bank)
	sort.SliceStable(bank, func(i, j int) bool {
		return bank[i].Value() > bank[j].Value()
	})
	for _, card := range bank {
		if total >= amount {
			break
		}
		for i, bc := range p.Bank {
			if bc.ID == card.ID {
				p.Bank = append(p.Bank[:i], p.Bank[i+1:]...)
				break
			}
		}
		paid = append(paid, card)
		total += card.Value()
	}
	if total >= amount {
		return paid, total
	}

	var props []*CardInstance
	for _, color := range catalog.AllColors {
		if ps, ok := p.Properties[color]; ok {
			props = append(props, ps.Cards...)
		}
	}
	sort.SliceStable(props, func(i, j int) bool {
		return props[i].Value() > props[j].Value()
	})
	for _, card := range props {
		if total >= amount {
			break
		}
		if c, err := p.removeProperty(card.Color, card.ID); err == nil {
			paid = append(paid, c)
			total += c.Value()
		}
	}
	return paid, total
}
