// internal/game/engine.go
package game

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/subwaydeal/server/internal/catalog"
)

// Engine is the rules authority for one match. Every inbound submission goes
// through Submit, which validates fully before mutating anything; a rejected
// action leaves the state exactly as it was.
type Engine struct {
	state *GameState
	cat   *catalog.Catalog
}

// Result describes what an accepted submission did, for broadcasting and the
// action feed. The full post-action state is read through Snapshot.
type Result struct {
	Type     ActionType `json:"type"`
	PlayerID uuid.UUID  `json:"playerId"`
	GameOver bool       `json:"gameOver"`
	WinnerID uuid.UUID  `json:"winnerId,omitempty"`
}

// NewEngine shuffles a fresh deck, deals the opening hands, and draws the
// first player's turn cards. Seat order is the order of players given.
func NewEngine(cat *catalog.Catalog, players []*Player, seed int64) *Engine {
	rng := rand.New(rand.NewSource(seed))
	deck := buildDeck(cat)
	shuffleDeck(rng, deck)

	state := &GameState{
		Players: players,
		Deck:    deck,
		Status:  StatusPlaying,
		rng:     rng,
	}
	for _, p := range players {
		state.drawCards(p, StartingHandSize)
	}
	state.drawCards(state.currentPlayer(), TurnDraw)
	return &Engine{state: state, cat: cat}
}

// State exposes the authoritative state for snapshots and tests. Callers
// must hold the match lock.
func (e *Engine) State() *GameState { return e.state }

// Submit is the single entry point for player input. It returns a
// ValidationError for any rejected submission and an IntegrityError when the
// state itself is broken; in both cases nothing has changed.
func (e *Engine) Submit(playerID uuid.UUID, act Action) (*Result, error) {
	g := e.state
	if g.Status == StatusGameOver {
		return nil, validationf(CodeGameAlreadyOver, "the game is over")
	}
	player := g.playerByID(playerID)
	if player == nil {
		return nil, validationf(CodeNotFound, "unknown player")
	}

	if g.Pending != nil {
		return e.submitResponse(player, act)
	}

	if act.Type == ActionAccept || act.Type == ActionPlayFareEvasion {
		return nil, validationf(CodeNotYourResponse, "nothing to respond to")
	}
	if player.ID != g.currentPlayer().ID {
		return nil, validationf(CodeNotYourTurn, "it is not your turn")
	}

	switch act.Type {
	case ActionEndTurn:
		return e.finish(player, act.Type, e.endTurn(player, act))
	case ActionFlipWildcard:
		// Flipping a played wildcard is free; no budget charge.
		return e.finish(player, act.Type, e.flipWildcard(player, act))
	}

	if g.ActionsUsed >= MaxActionsPerTurn {
		return nil, validationf(CodeActionBudgetExhausted, "no actions left this turn")
	}

	var err error
	switch act.Type {
	case ActionPlayMoney:
		err = e.playMoney(player, act)
	case ActionPlayProperty:
		err = e.playProperty(player, act)
	case ActionPlayRent:
		err = e.playRent(player, act)
	case ActionSwipeIn:
		err = e.swipeIn(player, act)
	case ActionPowerBroker:
		err = e.powerBroker(player, act)
	case ActionLineClosure:
		err = e.lineClosure(player, act)
	case ActionServiceChange:
		err = e.serviceChange(player, act)
	case ActionMissedTrain:
		err = e.missedTrain(player, act)
	case ActionItsMyStop:
		err = e.itsMyStop(player, act)
	case ActionExpressService:
		err = e.improvement(player, act, catalog.NameExpressService, ImprovementExpress)
	case ActionNewStation:
		err = e.improvement(player, act, catalog.NameNewStation, ImprovementStation)
	default:
		err = validationf(CodeMalformedPayload, "unknown action type %q", act.Type)
	}
	if err != nil {
		return nil, err
	}
	g.ActionsUsed++
	return e.finish(player, act.Type, nil)
}

// finish runs the win check and builds the result. err passes through so
// executors that fail before mutation report cleanly.
func (e *Engine) finish(player *Player, at ActionType, err error) (*Result, error) {
	if err != nil {
		return nil, err
	}
	g := e.state
	if g.Status != StatusGameOver {
		for i := 0; i < len(g.Players); i++ {
			p := g.Players[(g.TurnIndex+i)%len(g.Players)]
			if g.checkWin(p) {
				break
			}
		}
	}
	res := &Result{Type: at, PlayerID: player.ID}
	if g.Status == StatusGameOver {
		res.GameOver = true
		res.WinnerID = g.WinnerID
	}
	return res, nil
}

// submitResponse handles input while a pending action awaits answers. Only
// the current target may act, and only to accept or counter.
func (e *Engine) submitResponse(player *Player, act Action) (*Result, error) {
	g := e.state
	pa := g.Pending

	if act.Type != ActionAccept && act.Type != ActionPlayFareEvasion {
		return nil, validationf(CodeAlreadyPending, "%s is awaiting responses", pa.CardName)
	}
	if player.ID != pa.currentTarget() {
		return nil, validationf(CodeNotYourResponse, "it is not your response")
	}

	switch act.Type {
	case ActionAccept:
		if err := pa.resolveAccept(g); err != nil {
			return nil, err
		}
	case ActionPlayFareEvasion:
		var pl CardPayload
		if err := decodePayload(act.Data, &pl); err != nil {
			return nil, err
		}
		card := player.findInHand(pl.CardID)
		if card == nil {
			return nil, validationf(CodeNotFound, "card not in hand")
		}
		if card.Name() != catalog.NameFareEvasion {
			return nil, validationf(CodeNoCounterAvailable, "%s cannot counter", card.Name())
		}
		player.removeFromHand(card.ID)
		pa.resolveCounter(g, card)
	}
	return e.finish(player, act.Type, nil)
}

func (e *Engine) endTurn(player *Player, act Action) error {
	g := e.state
	var pl EndTurnPayload
	if len(act.Data) > 0 {
		if err := decodePayload(act.Data, &pl); err != nil {
			return err
		}
	}
	if len(player.Hand)-len(pl.DiscardCardIDs) > MaxHandAtTurnEnd {
		return validationf(CodeNotEligible, "hand limit is %d cards; discard %d more",
			MaxHandAtTurnEnd, len(player.Hand)-len(pl.DiscardCardIDs)-MaxHandAtTurnEnd)
	}
	for _, id := range pl.DiscardCardIDs {
		if player.findInHand(id) == nil {
			return validationf(CodeNotFound, "discard card not in hand")
		}
	}
	for _, id := range pl.DiscardCardIDs {
		card, _ := player.removeFromHand(id)
		g.discard(card)
	}
	g.advanceTurn()
	return nil
}

func (e *Engine) playMoney(player *Player, act Action) error {
	var pl CardPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return err
	}
	card := player.findInHand(pl.CardID)
	if card == nil {
		return validationf(CodeNotFound, "card not in hand")
	}
	if card.IsProperty() {
		return validationf(CodeInvalidPlacement, "properties cannot be banked")
	}
	if card.Value() <= 0 {
		return validationf(CodeNotEligible, "%s has no bank value", card.Name())
	}
	player.removeFromHand(card.ID)
	player.Bank = append(player.Bank, card)
	return nil
}

func (e *Engine) playProperty(player *Player, act Action) error {
	var pl PlayPropertyPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return err
	}
	card := player.findInHand(pl.CardID)
	if card == nil {
		return validationf(CodeNotFound, "card not in hand")
	}
	if !card.IsProperty() {
		return validationf(CodeInvalidPlacement, "%s is not a property card", card.Name())
	}
	color := pl.Color
	if card.Def.Type == catalog.TypeProperty {
		color = card.Def.Colors[0]
	} else {
		if !catalog.ValidColor(color) {
			return validationf(CodeMalformedPayload, "wildcard needs a color")
		}
		if !card.Def.HasColor(color) {
			return validationf(CodeInvalidPlacement, "%s cannot be played as %s", card.Name(), color)
		}
	}
	player.removeFromHand(card.ID)
	if err := player.place(color, card); err != nil {
		player.Hand = append(player.Hand, card)
		return err
	}
	return nil
}

func (e *Engine) flipWildcard(player *Player, act Action) error {
	var pl FlipPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return err
	}
	ps, card := player.findProperty(pl.CardID)
	if card == nil {
		return validationf(CodeNotFound, "wildcard not in your properties")
	}
	if card.Def.Type != catalog.TypeWildcard {
		return validationf(CodeNotEligible, "%s cannot be flipped", card.Name())
	}
	if !catalog.ValidColor(pl.Color) || !card.Def.HasColor(pl.Color) {
		return validationf(CodeInvalidPlacement, "%s cannot be flipped to %s", card.Name(), pl.Color)
	}
	if pl.Color == ps.Color {
		return validationf(CodeNotEligible, "wildcard is already %s", pl.Color)
	}
	if ps.IsComplete() {
		return validationf(CodeNotEligible, "cannot flip a wildcard out of a complete set")
	}
	if _, err := player.removeProperty(ps.Color, card.ID); err != nil {
		return err
	}
	return player.place(pl.Color, card)
}

func (e *Engine) playRent(player *Player, act Action) error {
	g := e.state
	var pl RentPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return err
	}
	card := player.findInHand(pl.CardID)
	if card == nil {
		return validationf(CodeNotFound, "card not in hand")
	}
	if card.Def.Type != catalog.TypeRent {
		return validationf(CodeNotEligible, "%s is not a rent card", card.Name())
	}
	if !catalog.ValidColor(pl.Color) {
		return validationf(CodeMalformedPayload, "unknown color %q", pl.Color)
	}

	var targets []uuid.UUID
	if card.Def.IsWildRent() {
		target := g.playerByID(pl.TargetPlayerID)
		if target == nil || target.ID == player.ID {
			return validationf(CodeMalformedPayload, "wild rent needs one opponent target")
		}
		targets = []uuid.UUID{target.ID}
	} else {
		if !card.Def.HasColor(pl.Color) {
			return validationf(CodeNotEligible, "%s cannot charge %s rent", card.Name(), pl.Color)
		}
		for _, opp := range g.opponentsInOrder() {
			targets = append(targets, opp.ID)
		}
	}

	amount, err := player.rentFor(pl.Color)
	if err != nil {
		return err
	}

	var rush *CardInstance
	if pl.RushHourCardID != uuid.Nil {
		rush = player.findInHand(pl.RushHourCardID)
		if rush == nil {
			return validationf(CodeNotFound, "rush hour card not in hand")
		}
		if rush.Name() != catalog.NameRushHour {
			return validationf(CodeNotEligible, "%s does not double rent", rush.Name())
		}
		amount *= 2
	}

	player.removeFromHand(card.ID)
	g.discard(card)
	if rush != nil {
		player.removeFromHand(rush.ID)
		g.discard(rush)
	}
	g.Pending = &PendingAction{
		Kind:     PendingCharge,
		CardName: card.Name(),
		SourceID: player.ID,
		Targets:  targets,
		Amount:   amount,
	}
	g.Status = StatusAwaitingResponse
	return nil
}

// swipeIn draws two extra cards. No consent needed, resolves immediately.
func (e *Engine) swipeIn(player *Player, act Action) error {
	g := e.state
	card, err := e.takeActionCard(player, act, catalog.NameSwipeIn)
	if err != nil {
		return err
	}
	g.discard(card)
	g.drawCards(player, 2)
	return nil
}

func (e *Engine) powerBroker(player *Player, act Action) error {
	g := e.state
	var pl StealPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return err
	}
	card, err := e.validateActionCard(player, pl.CardID, catalog.NamePowerBroker)
	if err != nil {
		return err
	}
	target := g.playerByID(pl.TargetPlayerID)
	if target == nil || target.ID == player.ID {
		return validationf(CodeMalformedPayload, "invalid target player")
	}
	ps, stolen := target.findProperty(pl.TargetCardID)
	if stolen == nil {
		return validationf(CodeNotFound, "target card not in target's properties")
	}
	if ps.IsComplete() {
		return validationf(CodeNotEligible, "cannot take from a complete set")
	}
	player.removeFromHand(card.ID)
	g.discard(card)
	g.Pending = &PendingAction{
		Kind:         PendingStealCard,
		CardName:     card.Name(),
		SourceID:     player.ID,
		Targets:      []uuid.UUID{target.ID},
		TargetCardID: stolen.ID,
		Color:        ps.Color,
	}
	g.Status = StatusAwaitingResponse
	return nil
}

func (e *Engine) lineClosure(player *Player, act Action) error {
	g := e.state
	var pl SetPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return err
	}
	card, err := e.validateActionCard(player, pl.CardID, catalog.NameLineClosure)
	if err != nil {
		return err
	}
	target := g.playerByID(pl.TargetPlayerID)
	if target == nil || target.ID == player.ID {
		return validationf(CodeMalformedPayload, "invalid target player")
	}
	ps, ok := target.Properties[pl.Color]
	if !ok {
		return validationf(CodeNoSuchSet, "target has no %s set", pl.Color)
	}
	if !ps.IsComplete() {
		return validationf(CodeNotEligible, "only complete sets can be taken")
	}
	player.removeFromHand(card.ID)
	g.discard(card)
	g.Pending = &PendingAction{
		Kind:     PendingStealSet,
		CardName: card.Name(),
		SourceID: player.ID,
		Targets:  []uuid.UUID{target.ID},
		Color:    pl.Color,
	}
	g.Status = StatusAwaitingResponse
	return nil
}

func (e *Engine) serviceChange(player *Player, act Action) error {
	g := e.state
	var pl SwapPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return err
	}
	card, err := e.validateActionCard(player, pl.CardID, catalog.NameServiceChange)
	if err != nil {
		return err
	}
	target := g.playerByID(pl.TargetPlayerID)
	if target == nil || target.ID == player.ID {
		return validationf(CodeMalformedPayload, "invalid target player")
	}
	ownSet, own := player.findProperty(pl.OwnCardID)
	if own == nil {
		return validationf(CodeNotFound, "own card not in your properties")
	}
	theirSet, theirs := target.findProperty(pl.TargetCardID)
	if theirs == nil {
		return validationf(CodeNotFound, "target card not in target's properties")
	}
	if ownSet.IsComplete() || theirSet.IsComplete() {
		return validationf(CodeNotEligible, "cannot swap out of a complete set")
	}
	player.removeFromHand(card.ID)
	g.discard(card)
	g.Pending = &PendingAction{
		Kind:         PendingSwap,
		CardName:     card.Name(),
		SourceID:     player.ID,
		Targets:      []uuid.UUID{target.ID},
		OwnCardID:    own.ID,
		TargetCardID: theirs.ID,
	}
	g.Status = StatusAwaitingResponse
	return nil
}

func (e *Engine) missedTrain(player *Player, act Action) error {
	g := e.state
	var pl TargetPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return err
	}
	card, err := e.validateActionCard(player, pl.CardID, catalog.NameMissedTrain)
	if err != nil {
		return err
	}
	target := g.playerByID(pl.TargetPlayerID)
	if target == nil || target.ID == player.ID {
		return validationf(CodeMalformedPayload, "invalid target player")
	}
	player.removeFromHand(card.ID)
	g.discard(card)
	g.Pending = &PendingAction{
		Kind:     PendingCharge,
		CardName: card.Name(),
		SourceID: player.ID,
		Targets:  []uuid.UUID{target.ID},
		Amount:   5,
	}
	g.Status = StatusAwaitingResponse
	return nil
}

// itsMyStop charges every opponent $2, each owing a response in turn order.
func (e *Engine) itsMyStop(player *Player, act Action) error {
	g := e.state
	card, err := e.takeActionCard(player, act, catalog.NameItsMyStop)
	if err != nil {
		return err
	}
	var targets []uuid.UUID
	for _, opp := range g.opponentsInOrder() {
		targets = append(targets, opp.ID)
	}
	g.discard(card)
	g.Pending = &PendingAction{
		Kind:     PendingCharge,
		CardName: card.Name(),
		SourceID: player.ID,
		Targets:  targets,
		Amount:   2,
	}
	g.Status = StatusAwaitingResponse
	return nil
}

func (e *Engine) improvement(player *Player, act Action, cardName, kind string) error {
	g := e.state
	var pl ImprovementPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return err
	}
	card, err := e.validateActionCard(player, pl.CardID, cardName)
	if err != nil {
		return err
	}
	if err := player.addImprovement(pl.Color, kind); err != nil {
		return err
	}
	player.removeFromHand(card.ID)
	g.discard(card)
	return nil
}

// validateActionCard checks that cardID is in hand and is the named action
// card, without removing it.
func (e *Engine) validateActionCard(player *Player, cardID uuid.UUID, name string) (*CardInstance, error) {
	card := player.findInHand(cardID)
	if card == nil {
		return nil, validationf(CodeNotFound, "card not in hand")
	}
	if card.Def.Type != catalog.TypeAction || card.Name() != name {
		return nil, validationf(CodeNotEligible, "%s is not %s", card.Name(), name)
	}
	return card, nil
}

// takeActionCard decodes a bare card payload, validates, and removes the
// card from hand.
func (e *Engine) takeActionCard(player *Player, act Action, name string) (*CardInstance, error) {
	var pl CardPayload
	if err := decodePayload(act.Data, &pl); err != nil {
		return nil, err
	}
	card, err := e.validateActionCard(player, pl.CardID, name)
	if err != nil {
		return nil, err
	}
	player.removeFromHand(card.ID)
	return card, nil
}
