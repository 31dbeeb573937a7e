// internal/game/card.go
package game

import (
	"github.com/google/uuid"

	"github.com/subwaydeal/server/internal/catalog"
)

// CardInstance is one physical copy of a catalog card inside a match. Every
// copy gets its own uuid at deck build so steals, swaps and payments can name
// an exact card. Color is the color the instance currently counts as: fixed
// for properties, chosen at play time for wildcards, empty otherwise.
type CardInstance struct {
	ID    uuid.UUID     `json:"id"`
	Def   *catalog.Card `json:"-"`
	Color catalog.Color `json:"color,omitempty"`
}

func (c *CardInstance) Type() catalog.CardType { return c.Def.Type }
func (c *CardInstance) Name() string           { return c.Def.Name }
func (c *CardInstance) Value() int             { return c.Def.Value }

// IsProperty reports whether the instance can sit in a property set.
func (c *CardInstance) IsProperty() bool {
	return c.Def.Type == catalog.TypeProperty || c.Def.Type == catalog.TypeWildcard
}
