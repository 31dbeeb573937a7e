// internal/game/property_set.go
package game

import (
	"github.com/google/uuid"

	"github.com/subwaydeal/server/internal/catalog"
)

// Improvement kinds, in the only order they can be added.
const (
	ImprovementExpress = "express"
	ImprovementStation = "station"
)

// PropertySet holds one player's cards of a single color. Completeness and
// rent are always derived from the current card count, never stored.
type PropertySet struct {
	Color        catalog.Color   `json:"color"`
	Cards        []*CardInstance `json:"cards"`
	Improvements []string        `json:"improvements"`
}

func newPropertySet(color catalog.Color) *PropertySet {
	return &PropertySet{Color: color}
}

// IsComplete reports whether the set has reached its color's size.
func (ps *PropertySet) IsComplete() bool {
	return len(ps.Cards) >= catalog.SetSize(ps.Color)
}

// Rent returns the schedule value for the current card count plus flat
// improvement bonuses.
func (ps *PropertySet) Rent() int {
	rent := catalog.RentAt(ps.Color, len(ps.Cards))
	if ps.hasImprovement(ImprovementExpress) {
		rent += catalog.ExpressBonus
	}
	if ps.hasImprovement(ImprovementStation) {
		rent += catalog.StationBonus
	}
	return rent
}

func (ps *PropertySet) hasImprovement(kind string) bool {
	for _, imp := range ps.Improvements {
		if imp == kind {
			return true
		}
	}
	return false
}

// canAddImprovement checks the eligibility rules: the set must be complete,
// the color improvable, express before station, no duplicates.
func (ps *PropertySet) canAddImprovement(kind string) bool {
	if !ps.IsComplete() || !catalog.Improvable(ps.Color) {
		return false
	}
	switch kind {
	case ImprovementExpress:
		return !ps.hasImprovement(ImprovementExpress)
	case ImprovementStation:
		return ps.hasImprovement(ImprovementExpress) && !ps.hasImprovement(ImprovementStation)
	}
	return false
}

func (ps *PropertySet) findCard(cardID uuid.UUID) *CardInstance {
	for _, c := range ps.Cards {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}

// removeCard detaches a card instance from the set. The caller owns deleting
// the set entry if it becomes empty.
func (ps *PropertySet) removeCard(cardID uuid.UUID) (*CardInstance, bool) {
	for i, c := range ps.Cards {
		if c.ID == cardID {
			ps.Cards = append(ps.Cards[:i], ps.Cards[i+1:]...)
			return c, true
		}
	}
	return nil, false
}
