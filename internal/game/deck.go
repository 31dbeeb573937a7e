// internal/game/deck.go
package game

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/subwaydeal/server/internal/catalog"
)

// buildDeck materializes one CardInstance per catalog copy. Properties carry
// their printed color from the start; wildcards and everything else get a
// color only when played.
func buildDeck(cat *catalog.Catalog) []*CardInstance {
	var deck []*CardInstance
	for _, def := range cat.Cards() {
		for i := 0; i < def.Quantity; i++ {
			inst := &CardInstance{ID: uuid.New(), Def: def}
			if def.Type == catalog.TypeProperty {
				inst.Color = def.Colors[0]
			}
			deck = append(deck, inst)
		}
	}
	return deck
}

func shuffleDeck(rng *rand.Rand, deck []*CardInstance) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}
