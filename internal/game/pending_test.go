// internal/game/pending_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwaydeal/server/internal/catalog"
)

func TestRentRoundTrip(t *testing.T) {
	e, players := newTestEngine(3)
	a, b, c := players[0], players[1], players[2]
	giveProp(t, e, a, "prop_a", catalog.Blue)
	giveProp(t, e, a, "prop_c", catalog.Blue)
	rent := giveHand(t, e, a, "rent_blue_brown")
	giveBank(t, e, b, "money_2")
	giveBank(t, e, c, "money_3")

	_, err := submit(t, e, a, ActionPlayRent, RentPayload{CardID: rent.ID, Color: catalog.Blue})
	require.NoError(t, err)

	pa := e.state.Pending
	require.NotNil(t, pa)
	assert.Equal(t, PendingCharge, pa.Kind)
	assert.Equal(t, 2, pa.Amount) // blue schedule at 2 cards
	require.Len(t, pa.Targets, 2)
	assert.Equal(t, b.ID, pa.currentTarget())
	assert.Equal(t, StatusAwaitingResponse, e.state.Status)
	assert.Equal(t, 1, e.state.ActionsUsed)

	// Out-of-queue responders and new actions are both rejected.
	_, err = submit(t, e, c, ActionAccept, nil)
	requireCode(t, err, CodeNotYourResponse)
	_, err = submit(t, e, a, ActionPlayMoney, CardPayload{CardID: rent.ID})
	requireCode(t, err, CodeAlreadyPending)

	_, err = submit(t, e, b, ActionAccept, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, b.BankTotal())
	assert.Equal(t, 2, a.BankTotal())
	assert.Equal(t, c.ID, e.state.Pending.currentTarget())

	_, err = submit(t, e, c, ActionAccept, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.BankTotal())
	assert.Equal(t, 5, a.BankTotal())

	// Queue drained: back to the source player's turn, budget untouched by
	// the responses.
	assert.Nil(t, e.state.Pending)
	assert.Equal(t, StatusPlaying, e.state.Status)
	assert.Equal(t, a.ID, e.state.currentPlayer().ID)
	assert.Equal(t, 1, e.state.ActionsUsed)
}

func TestRentRequiresOwnedColor(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	rent := giveHand(t, e, a, "rent_blue_brown")

	_, err := submit(t, e, a, ActionPlayRent, RentPayload{CardID: rent.ID, Color: catalog.Blue})
	requireCode(t, err, CodeNoSuchSet)

	// The card's printed colors bound what it can charge.
	giveProp(t, e, a, "prop_1", catalog.Red)
	_, err = submit(t, e, a, ActionPlayRent, RentPayload{CardID: rent.ID, Color: catalog.Red})
	requireCode(t, err, CodeNotEligible)
}

func TestWildRentSingleTarget(t *testing.T) {
	e, players := newTestEngine(3)
	a, c := players[0], players[2]
	giveProp(t, e, a, "prop_citi_field", catalog.DarkBlue)
	giveProp(t, e, a, "prop_yankee_stadium", catalog.DarkBlue)
	rent := giveHand(t, e, a, "rent_wild")

	// Wild rent must name exactly one opponent.
	_, err := submit(t, e, a, ActionPlayRent, RentPayload{CardID: rent.ID, Color: catalog.DarkBlue})
	requireCode(t, err, CodeMalformedPayload)

	_, err = submit(t, e, a, ActionPlayRent, RentPayload{
		CardID: rent.ID, Color: catalog.DarkBlue, TargetPlayerID: c.ID,
	})
	require.NoError(t, err)
	pa := e.state.Pending
	require.NotNil(t, pa)
	assert.Equal(t, PendingCharge, pa.Kind)
	assert.Equal(t, 8, pa.Amount) // darkblue schedule at 2 cards
	assert.Len(t, pa.Targets, 1)
	assert.Equal(t, c.ID, pa.currentTarget())
}

func TestRushHourDoublesRent(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	giveProp(t, e, a, "prop_j", catalog.Brown)
	giveProp(t, e, a, "prop_z", catalog.Brown)
	rent := giveHand(t, e, a, "rent_blue_brown")
	rush := giveHand(t, e, a, "action_rush_hour")

	_, err := submit(t, e, a, ActionPlayRent, RentPayload{
		CardID: rent.ID, Color: catalog.Brown, RushHourCardID: rush.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, e.state.Pending)
	assert.Equal(t, 4, e.state.Pending.Amount) // brown 2-card rent 2, doubled
	assert.Empty(t, a.Hand)
	// Rush hour rides along on the rent; one action consumed in total.
	assert.Equal(t, 1, e.state.ActionsUsed)
}

func TestPaymentBankFirstThenProperties(t *testing.T) {
	e, players := newTestEngine(2)
	a, b := players[0], players[1]
	card := giveHand(t, e, a, "action_missed_train")
	giveBank(t, e, b, "money_2")
	prop := giveProp(t, e, b, "prop_j", catalog.Brown)
	giveProp(t, e, b, "prop_a", catalog.Blue)

	_, err := submit(t, e, a, ActionMissedTrain, TargetPayload{CardID: card.ID, TargetPlayerID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, 5, e.state.Pending.Amount)

	_, err = submit(t, e, b, ActionAccept, nil)
	require.NoError(t, err)

	// $2 bank, then properties highest first ($1 brown and $1 blue) for a
	// total of 4; short payments hand over everything.
	assert.Equal(t, 0, b.BankTotal())
	assert.Empty(t, b.Properties)
	assert.Equal(t, 2, a.BankTotal())
	require.Contains(t, a.Properties, catalog.Brown)
	assert.Equal(t, prop.ID, a.Properties[catalog.Brown].Cards[0].ID)
	require.Contains(t, a.Properties, catalog.Blue)
}

func TestFareEvasionCancelsOnlyOneTarget(t *testing.T) {
	e, players := newTestEngine(3)
	a, b, c := players[0], players[1], players[2]
	card := giveHand(t, e, a, "action_its_my_stop")
	fare := giveHand(t, e, b, "action_fare_evasion")
	giveBank(t, e, b, "money_2")
	giveBank(t, e, c, "money_2")

	_, err := submit(t, e, a, ActionItsMyStop, CardPayload{CardID: card.ID})
	require.NoError(t, err)
	require.Len(t, e.state.Pending.Targets, 2)

	_, err = submit(t, e, b, ActionPlayFareEvasion, CardPayload{CardID: fare.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, b.BankTotal(), "countered target pays nothing")
	assert.Empty(t, b.Hand)

	_, err = submit(t, e, c, ActionAccept, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.BankTotal())
	assert.Equal(t, 2, a.BankTotal())
	assert.Nil(t, e.state.Pending)
}

func TestFareEvasionNeedsTheCard(t *testing.T) {
	e, players := newTestEngine(2)
	a, b := players[0], players[1]
	card := giveHand(t, e, a, "action_missed_train")
	notFare := giveHand(t, e, b, "money_1")

	_, err := submit(t, e, a, ActionMissedTrain, TargetPayload{CardID: card.ID, TargetPlayerID: b.ID})
	require.NoError(t, err)

	_, err = submit(t, e, b, ActionPlayFareEvasion, CardPayload{CardID: notFare.ID})
	requireCode(t, err, CodeNoCounterAvailable)

	// The failed counter changed nothing; accept still works.
	_, err = submit(t, e, b, ActionAccept, nil)
	require.NoError(t, err)
}

func TestPowerBrokerStealsFromIncompleteSetOnly(t *testing.T) {
	e, players := newTestEngine(2)
	a, b := players[0], players[1]
	giveProp(t, e, b, "prop_j", catalog.Brown)
	brownZ := giveProp(t, e, b, "prop_z", catalog.Brown)
	blueA := giveProp(t, e, b, "prop_a", catalog.Blue)
	card := giveHand(t, e, a, "action_power_broker")

	_, err := submit(t, e, a, ActionPowerBroker, StealPayload{
		CardID: card.ID, TargetPlayerID: b.ID, TargetCardID: brownZ.ID,
	})
	requireCode(t, err, CodeNotEligible)

	_, err = submit(t, e, a, ActionPowerBroker, StealPayload{
		CardID: card.ID, TargetPlayerID: b.ID, TargetCardID: blueA.ID,
	})
	require.NoError(t, err)
	_, err = submit(t, e, b, ActionAccept, nil)
	require.NoError(t, err)

	assert.NotContains(t, b.Properties, catalog.Blue)
	require.Contains(t, a.Properties, catalog.Blue)
	assert.Equal(t, blueA.ID, a.Properties[catalog.Blue].Cards[0].ID)
}

func TestLineClosureTakesCompleteSetWithImprovements(t *testing.T) {
	e, players := newTestEngine(2)
	a, b := players[0], players[1]
	giveProp(t, e, b, "prop_j", catalog.Brown)
	giveProp(t, e, b, "prop_z", catalog.Brown)
	b.Properties[catalog.Brown].Improvements = []string{ImprovementExpress}
	giveProp(t, e, b, "prop_a", catalog.Blue)
	card := giveHand(t, e, a, "action_line_closure")

	// Incomplete sets cannot be taken.
	_, err := submit(t, e, a, ActionLineClosure, SetPayload{
		CardID: card.ID, TargetPlayerID: b.ID, Color: catalog.Blue,
	})
	requireCode(t, err, CodeNotEligible)

	_, err = submit(t, e, a, ActionLineClosure, SetPayload{
		CardID: card.ID, TargetPlayerID: b.ID, Color: catalog.Brown,
	})
	require.NoError(t, err)
	_, err = submit(t, e, b, ActionAccept, nil)
	require.NoError(t, err)

	assert.NotContains(t, b.Properties, catalog.Brown)
	require.Contains(t, a.Properties, catalog.Brown)
	assert.Len(t, a.Properties[catalog.Brown].Cards, 2)
	assert.Equal(t, []string{ImprovementExpress}, a.Properties[catalog.Brown].Improvements)
}

func TestLineClosureWinIsImmediate(t *testing.T) {
	e, players := newTestEngine(3)
	a, b := players[0], players[1]
	giveProp(t, e, a, "prop_citi_field", catalog.DarkBlue)
	giveProp(t, e, a, "prop_yankee_stadium", catalog.DarkBlue)
	giveProp(t, e, a, "prop_g", catalog.Utility)
	giveProp(t, e, a, "prop_l", catalog.Utility)
	giveProp(t, e, b, "prop_j", catalog.Brown)
	giveProp(t, e, b, "prop_z", catalog.Brown)
	card := giveHand(t, e, a, "action_line_closure")

	_, err := submit(t, e, a, ActionLineClosure, SetPayload{
		CardID: card.ID, TargetPlayerID: b.ID, Color: catalog.Brown,
	})
	require.NoError(t, err)

	res, err := submit(t, e, b, ActionAccept, nil)
	require.NoError(t, err)
	assert.True(t, res.GameOver)
	assert.Equal(t, a.ID, res.WinnerID)
	assert.Equal(t, StatusGameOver, e.state.Status)
	assert.Nil(t, e.state.Pending)
}

func TestServiceChangeSwapsIncompleteSetCards(t *testing.T) {
	e, players := newTestEngine(2)
	a, b := players[0], players[1]
	ownCard := giveProp(t, e, a, "prop_a", catalog.Blue)
	theirCard := giveProp(t, e, b, "prop_1", catalog.Red)
	giveProp(t, e, b, "prop_j", catalog.Brown)
	giveProp(t, e, b, "prop_z", catalog.Brown)
	card := giveHand(t, e, a, "action_service_change")

	brownJ := b.Properties[catalog.Brown].Cards[0]
	_, err := submit(t, e, a, ActionServiceChange, SwapPayload{
		CardID: card.ID, OwnCardID: ownCard.ID,
		TargetPlayerID: b.ID, TargetCardID: brownJ.ID,
	})
	requireCode(t, err, CodeNotEligible)

	_, err = submit(t, e, a, ActionServiceChange, SwapPayload{
		CardID: card.ID, OwnCardID: ownCard.ID,
		TargetPlayerID: b.ID, TargetCardID: theirCard.ID,
	})
	require.NoError(t, err)
	_, err = submit(t, e, b, ActionAccept, nil)
	require.NoError(t, err)

	require.Contains(t, a.Properties, catalog.Red)
	assert.Equal(t, theirCard.ID, a.Properties[catalog.Red].Cards[0].ID)
	require.Contains(t, b.Properties, catalog.Blue)
	assert.Equal(t, ownCard.ID, b.Properties[catalog.Blue].Cards[0].ID)
	assert.NotContains(t, a.Properties, catalog.Blue)
}
