// internal/game/engine_test.go
package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwaydeal/server/internal/catalog"
)

// newTestEngine builds an engine with empty hands and an empty deck so tests
// control every card explicitly.
func newTestEngine(numPlayers int) (*Engine, []*Player) {
	players := make([]*Player, numPlayers)
	for i := range players {
		players[i] = NewPlayer(uuid.New(), fmt.Sprintf("p%d", i+1))
	}
	e := &Engine{
		state: &GameState{
			Players: players,
			Status:  StatusPlaying,
			rng:     rand.New(rand.NewSource(1)),
		},
		cat: catalog.New(),
	}
	return e, players
}

// mint creates a fresh instance of the catalog card defID.
func mint(t *testing.T, e *Engine, defID string) *CardInstance {
	t.Helper()
	def, err := e.cat.Lookup(defID)
	require.NoError(t, err)
	inst := &CardInstance{ID: uuid.New(), Def: def}
	if def.Type == catalog.TypeProperty {
		inst.Color = def.Colors[0]
	}
	return inst
}

func giveHand(t *testing.T, e *Engine, p *Player, defID string) *CardInstance {
	t.Helper()
	c := mint(t, e, defID)
	p.Hand = append(p.Hand, c)
	return c
}

func giveBank(t *testing.T, e *Engine, p *Player, defID string) *CardInstance {
	t.Helper()
	c := mint(t, e, defID)
	p.Bank = append(p.Bank, c)
	return c
}

func giveProp(t *testing.T, e *Engine, p *Player, defID string, color catalog.Color) *CardInstance {
	t.Helper()
	c := mint(t, e, defID)
	require.NoError(t, p.place(color, c))
	return c
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func submit(t *testing.T, e *Engine, p *Player, at ActionType, pl interface{}) (*Result, error) {
	t.Helper()
	act := Action{Type: at}
	if pl != nil {
		act.Data = payload(t, pl)
	}
	return e.Submit(p.ID, act)
}

func requireCode(t *testing.T, err error, code ReasonCode) {
	t.Helper()
	require.Error(t, err)
	ve, ok := AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, code, ve.Code)
}

func TestSubmitRejectsOutOfTurn(t *testing.T) {
	e, players := newTestEngine(2)
	card := giveHand(t, e, players[1], "money_1")

	_, err := submit(t, e, players[1], ActionPlayMoney, CardPayload{CardID: card.ID})
	requireCode(t, err, CodeNotYourTurn)
	assert.Len(t, players[1].Hand, 1)
}

func TestActionBudgetEnforced(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	for i := 0; i < 4; i++ {
		giveHand(t, e, a, "money_1")
	}

	for i := 0; i < MaxActionsPerTurn; i++ {
		_, err := submit(t, e, a, ActionPlayMoney, CardPayload{CardID: a.Hand[0].ID})
		require.NoError(t, err)
	}
	assert.Equal(t, MaxActionsPerTurn, e.state.ActionsUsed)

	_, err := submit(t, e, a, ActionPlayMoney, CardPayload{CardID: a.Hand[0].ID})
	requireCode(t, err, CodeActionBudgetExhausted)

	// Ending the turn is always allowed, budget spent or not.
	_, err = submit(t, e, a, ActionEndTurn, nil)
	require.NoError(t, err)
	assert.Equal(t, players[1].ID, e.state.currentPlayer().ID)
	assert.Equal(t, 0, e.state.ActionsUsed)
}

func TestPlayMoneyAndActionBanking(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	money := giveHand(t, e, a, "money_5")
	actionCard := giveHand(t, e, a, "action_power_broker")
	prop := giveHand(t, e, a, "prop_j")

	_, err := submit(t, e, a, ActionPlayMoney, CardPayload{CardID: money.ID})
	require.NoError(t, err)

	// Action cards can be banked at face value.
	_, err = submit(t, e, a, ActionPlayMoney, CardPayload{CardID: actionCard.ID})
	require.NoError(t, err)
	assert.Equal(t, 8, a.BankTotal())

	// Properties can never be banked.
	_, err = submit(t, e, a, ActionPlayMoney, CardPayload{CardID: prop.ID})
	requireCode(t, err, CodeInvalidPlacement)
}

func TestPlayPropertyAndWildcard(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	prop := giveHand(t, e, a, "prop_j")
	wild := giveHand(t, e, a, "wild_times_square") // red or yellow

	_, err := submit(t, e, a, ActionPlayProperty, PlayPropertyPayload{CardID: prop.ID})
	require.NoError(t, err)
	require.Contains(t, a.Properties, catalog.Brown)

	// A wildcard needs an explicit color within its printed colors.
	_, err = submit(t, e, a, ActionPlayProperty, PlayPropertyPayload{CardID: wild.ID, Color: catalog.Blue})
	requireCode(t, err, CodeInvalidPlacement)

	_, err = submit(t, e, a, ActionPlayProperty, PlayPropertyPayload{CardID: wild.ID, Color: catalog.Red})
	require.NoError(t, err)
	assert.Equal(t, catalog.Red, wild.Color)
	assert.Len(t, a.Properties[catalog.Red].Cards, 1)
}

func TestFlipWildcardIsFree(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	wild := giveProp(t, e, a, "wild_times_square", catalog.Red)
	e.state.ActionsUsed = MaxActionsPerTurn

	_, err := submit(t, e, a, ActionFlipWildcard, FlipPayload{CardID: wild.ID, Color: catalog.Yellow})
	require.NoError(t, err)
	assert.NotContains(t, a.Properties, catalog.Red)
	assert.Len(t, a.Properties[catalog.Yellow].Cards, 1)
	assert.Equal(t, MaxActionsPerTurn, e.state.ActionsUsed)

	// Only printed colors are legal flip destinations.
	_, err = submit(t, e, a, ActionFlipWildcard, FlipPayload{CardID: wild.ID, Color: catalog.Green})
	requireCode(t, err, CodeInvalidPlacement)
}

func TestFlipWildcardLockedInCompleteSet(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	giveProp(t, e, a, "prop_1", catalog.Red)
	giveProp(t, e, a, "prop_2", catalog.Red)
	wild := giveProp(t, e, a, "wild_times_square", catalog.Red)
	require.True(t, a.Properties[catalog.Red].IsComplete())

	_, err := submit(t, e, a, ActionFlipWildcard, FlipPayload{CardID: wild.ID, Color: catalog.Yellow})
	requireCode(t, err, CodeNotEligible)
	assert.Len(t, a.Properties[catalog.Red].Cards, 3)
}

func TestEndTurnHandLimit(t *testing.T) {
	e, players := newTestEngine(2)
	a, b := players[0], players[1]
	for i := 0; i < 9; i++ {
		giveHand(t, e, a, "money_1")
	}
	giveHand(t, e, b, "money_1")
	for i := 0; i < 4; i++ {
		e.state.Deck = append(e.state.Deck, mint(t, e, "money_2"))
	}

	_, err := submit(t, e, a, ActionEndTurn, nil)
	requireCode(t, err, CodeNotEligible)

	discards := []uuid.UUID{a.Hand[0].ID, a.Hand[1].ID}
	_, err = submit(t, e, a, ActionEndTurn, EndTurnPayload{DiscardCardIDs: discards})
	require.NoError(t, err)
	assert.Len(t, a.Hand, 7)
	assert.Len(t, e.state.Discard, 2)

	// The incoming player draws two on turn start.
	assert.Equal(t, b.ID, e.state.currentPlayer().ID)
	assert.Len(t, b.Hand, 3)
}

func TestEmptyHandDrawsFive(t *testing.T) {
	e, players := newTestEngine(2)
	b := players[1]
	for i := 0; i < 6; i++ {
		e.state.Deck = append(e.state.Deck, mint(t, e, "money_1"))
	}

	_, err := submit(t, e, players[0], ActionEndTurn, nil)
	require.NoError(t, err)
	assert.Len(t, b.Hand, 5)
	assert.Len(t, e.state.Deck, 1)
}

func TestSwipeInDrawsTwo(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	card := giveHand(t, e, a, "action_swipe_in")
	e.state.Deck = append(e.state.Deck, mint(t, e, "money_1"), mint(t, e, "money_2"))

	_, err := submit(t, e, a, ActionSwipeIn, CardPayload{CardID: card.ID})
	require.NoError(t, err)
	assert.Len(t, a.Hand, 2)
	assert.Empty(t, e.state.Deck)
	assert.Equal(t, 1, e.state.ActionsUsed)
	assert.Nil(t, e.state.Pending)
}

func TestDeckReshufflesDiscard(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	card := giveHand(t, e, a, "action_swipe_in")
	e.state.Discard = append(e.state.Discard, mint(t, e, "money_1"), mint(t, e, "money_2"))

	_, err := submit(t, e, a, ActionSwipeIn, CardPayload{CardID: card.ID})
	require.NoError(t, err)
	// The swipe in card itself was discarded, then the pile reshuffled.
	assert.Len(t, a.Hand, 2)
}

func TestImprovementsRequireCompleteSet(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	giveProp(t, e, a, "prop_j", catalog.Brown)
	express := giveHand(t, e, a, "action_express_service")

	_, err := submit(t, e, a, ActionExpressService, ImprovementPayload{CardID: express.ID, Color: catalog.Brown})
	requireCode(t, err, CodeNotEligible)

	giveProp(t, e, a, "prop_z", catalog.Brown)

	// Station before express is rejected.
	station := giveHand(t, e, a, "action_new_station")
	_, err = submit(t, e, a, ActionNewStation, ImprovementPayload{CardID: station.ID, Color: catalog.Brown})
	requireCode(t, err, CodeNotEligible)

	_, err = submit(t, e, a, ActionExpressService, ImprovementPayload{CardID: express.ID, Color: catalog.Brown})
	require.NoError(t, err)
	_, err = submit(t, e, a, ActionNewStation, ImprovementPayload{CardID: station.ID, Color: catalog.Brown})
	require.NoError(t, err)

	// Base rent 2 for a full brown set, +3 express, +4 station.
	assert.Equal(t, 9, a.Properties[catalog.Brown].Rent())
}

func TestWinOnThirdCompleteSet(t *testing.T) {
	e, players := newTestEngine(2)
	a := players[0]
	giveProp(t, e, a, "prop_j", catalog.Brown)
	giveProp(t, e, a, "prop_z", catalog.Brown)
	giveProp(t, e, a, "prop_citi_field", catalog.DarkBlue)
	giveProp(t, e, a, "prop_yankee_stadium", catalog.DarkBlue)
	giveProp(t, e, a, "prop_g", catalog.Utility)
	last := giveHand(t, e, a, "prop_l")

	res, err := submit(t, e, a, ActionPlayProperty, PlayPropertyPayload{CardID: last.ID})
	require.NoError(t, err)
	assert.True(t, res.GameOver)
	assert.Equal(t, a.ID, res.WinnerID)
	assert.Equal(t, StatusGameOver, e.state.Status)

	_, err = submit(t, e, a, ActionEndTurn, nil)
	requireCode(t, err, CodeGameAlreadyOver)
}

func TestFullDealSetup(t *testing.T) {
	players := []*Player{
		NewPlayer(uuid.New(), "p1"),
		NewPlayer(uuid.New(), "p2"),
		NewPlayer(uuid.New(), "p3"),
	}
	e := NewEngine(catalog.New(), players, 42)

	g := e.State()
	assert.Len(t, players[0].Hand, StartingHandSize+TurnDraw)
	assert.Len(t, players[1].Hand, StartingHandSize)
	assert.Len(t, players[2].Hand, StartingHandSize)
	assert.Len(t, g.Deck, 106-3*StartingHandSize-TurnDraw)
	assert.Equal(t, StatusPlaying, g.Status)
}

func TestSnapshotHidesOpponentHands(t *testing.T) {
	e, players := newTestEngine(2)
	a, b := players[0], players[1]
	giveHand(t, e, a, "money_1")
	giveHand(t, e, b, "money_5")
	giveBank(t, e, b, "money_2")

	snap := e.Snapshot(a.ID)
	require.Len(t, snap.Players, 2)
	assert.Len(t, snap.Players[0].Hand, 1)
	assert.Empty(t, snap.Players[1].Hand)
	assert.Equal(t, 1, snap.Players[1].HandCount)
	assert.Equal(t, 2, snap.Players[1].BankTotal)
}
