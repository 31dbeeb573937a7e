// internal/catalog/catalog.go
package catalog

import "fmt"

// CardType classifies a catalog entry.
type CardType string

const (
	TypeProperty CardType = "property"
	TypeWildcard CardType = "wildcard"
	TypeRent     CardType = "rent"
	TypeMoney    CardType = "money"
	TypeAction   CardType = "action"
)

// Card is an immutable catalog entry. Quantity is the number of copies the
// deck builder produces; it has no meaning once a match is running.
//
// Colors semantics by type:
//   - property: exactly one color
//   - wildcard: the colors the card may be assigned to (all ten for the
//     universal wildcards)
//   - rent: the colors the card may charge on; empty means any (Wild Rent)
//   - money, action: empty
type Card struct {
	ID       string   `json:"id"`
	Type     CardType `json:"type"`
	Name     string   `json:"name"`
	Value    int      `json:"value"`
	Colors   []Color  `json:"colors,omitempty"`
	Effect   string   `json:"effect,omitempty"`
	Quantity int      `json:"quantity"`
}

// HasColor reports whether c may be used as the given color.
func (c *Card) HasColor(col Color) bool {
	for _, cc := range c.Colors {
		if cc == col {
			return true
		}
	}
	return false
}

// IsWildRent reports whether c is a rent card chargeable on any color.
func (c *Card) IsWildRent() bool {
	return c.Type == TypeRent && len(c.Colors) == 0
}

// Names of action cards the rules engine dispatches on.
const (
	NameSwipeIn        = "Swipe In"
	NameFareEvasion    = "Fare Evasion"
	NamePowerBroker    = "Power Broker"
	NameServiceChange  = "Service Change"
	NameLineClosure    = "Line Closure"
	NameMissedTrain    = "Missed Your Train"
	NameItsMyStop      = "It's My Stop!"
	NameRushHour       = "Rush Hour"
	NameExpressService = "Express Service"
	NameNewStation     = "New Station"
)

// Catalog is a read-only card lookup.
type Catalog struct {
	byID  map[string]*Card
	cards []*Card
}

// New builds the standard Subway Deal catalog.
func New() *Catalog {
	cards := allCards()
	byID := make(map[string]*Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	return &Catalog{byID: byID, cards: cards}
}

// Lookup returns the card definition for id. An unknown id is a deck
// integrity problem, never a player mistake.
func (cat *Catalog) Lookup(id string) (*Card, error) {
	c, ok := cat.byID[id]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown card id %q", id)
	}
	return c, nil
}

// Cards returns every catalog entry in deck order.
func (cat *Catalog) Cards() []*Card {
	return cat.cards
}

// DeckSize returns the total number of card copies the catalog produces.
func (cat *Catalog) DeckSize() int {
	n := 0
	for _, c := range cat.cards {
		n += c.Quantity
	}
	return n
}
