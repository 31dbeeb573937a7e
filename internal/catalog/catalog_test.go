// internal/catalog/catalog_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckComposition(t *testing.T) {
	cat := New()
	assert.Equal(t, 106, cat.DeckSize(), "standard deck has 106 copies")

	counts := map[CardType]int{}
	for _, c := range cat.Cards() {
		counts[c.Type] += c.Quantity
	}
	assert.Equal(t, 28, counts[TypeProperty])
	assert.Equal(t, 11, counts[TypeWildcard])
	assert.Equal(t, 34, counts[TypeAction])
	assert.Equal(t, 13, counts[TypeRent])
	assert.Equal(t, 20, counts[TypeMoney])
}

func TestLookup(t *testing.T) {
	cat := New()

	c, err := cat.Lookup("prop_penn")
	require.NoError(t, err)
	assert.Equal(t, "Penn Station", c.Name)
	assert.Equal(t, TypeProperty, c.Type)
	require.Len(t, c.Colors, 1)
	assert.Equal(t, Green, c.Colors[0])

	_, err = cat.Lookup("prop_second_avenue")
	assert.Error(t, err, "unknown ids are integrity errors")
}

func TestPropertyCardsHaveExactlyOneColor(t *testing.T) {
	cat := New()
	for _, c := range cat.Cards() {
		if c.Type == TypeProperty {
			assert.Len(t, c.Colors, 1, "property %s", c.ID)
		}
	}
}

func TestWildRent(t *testing.T) {
	cat := New()
	wr, err := cat.Lookup("rent_wild")
	require.NoError(t, err)
	assert.True(t, wr.IsWildRent())

	dual, err := cat.Lookup("rent_blue_brown")
	require.NoError(t, err)
	assert.False(t, dual.IsWildRent())
	assert.True(t, dual.HasColor(Blue))
	assert.True(t, dual.HasColor(Brown))
	assert.False(t, dual.HasColor(Red))
}

func TestRentSchedulesNonDecreasing(t *testing.T) {
	for _, color := range AllColors {
		size := SetSize(color)
		require.Positive(t, size, "color %s", color)
		prev := 0
		for n := 1; n <= size; n++ {
			r := RentAt(color, n)
			assert.GreaterOrEqual(t, r, prev, "rent for %s at %d cards", color, n)
			prev = r
		}
		// Overfull sets clamp to the top of the schedule.
		assert.Equal(t, RentAt(color, size), RentAt(color, size+2))
	}
	assert.Zero(t, RentAt(Blue, 0))
	assert.Zero(t, RentAt(Color("lightgreen"), 2))
}

func TestImprovable(t *testing.T) {
	assert.True(t, Improvable(Green))
	assert.False(t, Improvable(Railroad))
	assert.False(t, Improvable(Utility))
	assert.False(t, Improvable(Color("mauve")))
}
