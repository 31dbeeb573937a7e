// internal/game/player_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwaydeal/server/internal/catalog"
)

func TestPayUpToBankHighestFirst(t *testing.T) {
	e, players := newTestEngine(1)
	p := players[0]
	giveBank(t, e, p, "money_1")
	five := giveBank(t, e, p, "money_5")
	giveBank(t, e, p, "money_2")

	paid, total := p.payUpTo(4)
	require.Len(t, paid, 1)
	assert.Equal(t, five.ID, paid[0].ID)
	assert.Equal(t, 5, total) // no change given
	assert.Equal(t, 3, p.BankTotal())
}

func TestPayUpToFallsBackToProperties(t *testing.T) {
	e, players := newTestEngine(1)
	p := players[0]
	giveBank(t, e, p, "money_2")
	giveProp(t, e, p, "prop_j", catalog.Brown)

	paid, total := p.payUpTo(3)
	assert.Equal(t, 3, total)
	require.Len(t, paid, 2)
	assert.Equal(t, "money_2", paid[0].Def.ID)
	assert.Equal(t, "prop_j", paid[1].Def.ID)
	assert.Empty(t, p.Bank)
	assert.Empty(t, p.Properties)
}

func TestPayUpToShortPaysEverything(t *testing.T) {
	e, players := newTestEngine(1)
	p := players[0]
	giveBank(t, e, p, "money_1")
	giveProp(t, e, p, "prop_a", catalog.Blue)

	_, total := p.payUpTo(10)
	assert.Equal(t, 2, total)
	assert.Empty(t, p.Bank)
	assert.Empty(t, p.Properties)
}

func TestForfeitingLastCardDropsImprovements(t *testing.T) {
	e, players := newTestEngine(1)
	p := players[0]
	giveProp(t, e, p, "prop_j", catalog.Brown)
	giveProp(t, e, p, "prop_z", catalog.Brown)
	p.Properties[catalog.Brown].Improvements = []string{ImprovementExpress}

	paid, _ := p.payUpTo(10)
	assert.Len(t, paid, 2)
	assert.NotContains(t, p.Properties, catalog.Brown)
}

func TestPlaceRejectsWrongWildcardColor(t *testing.T) {
	e, players := newTestEngine(1)
	p := players[0]
	wild := mint(t, e, "wild_broadway") // blue or brown

	err := p.place(catalog.Red, wild)
	requireCode(t, err, CodeInvalidPlacement)

	require.NoError(t, p.place(catalog.Brown, wild))
	assert.Equal(t, catalog.Brown, wild.Color)
}

func TestCompleteSetsDerived(t *testing.T) {
	e, players := newTestEngine(1)
	p := players[0]
	giveProp(t, e, p, "prop_j", catalog.Brown)
	assert.Equal(t, 0, p.CompleteSets())

	giveProp(t, e, p, "prop_z", catalog.Brown)
	assert.Equal(t, 1, p.CompleteSets())

	// Removing a card immediately de-completes the set.
	_, err := p.removeProperty(catalog.Brown, p.Properties[catalog.Brown].Cards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CompleteSets())
}
