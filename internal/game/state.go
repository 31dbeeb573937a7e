// internal/game/state.go
package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Status is the match lifecycle phase.
type Status string

const (
	StatusPlaying          Status = "playing"
	StatusAwaitingResponse Status = "awaiting_response"
	StatusGameOver         Status = "game_over"
)

// Turn ledger constants.
const (
	MaxActionsPerTurn = 3
	MaxHandAtTurnEnd  = 7
	StartingHandSize  = 5
	TurnDraw          = 2
	EmptyHandDraw     = 5
	SetsToWin         = 3
)

// GameState is the complete authoritative state of one match. It is never
// mutated except through Engine.Submit, which serializes behind the match
// lock and applies validate-then-apply transactions.
type GameState struct {
	Players     []*Player       `json:"players"`
	TurnIndex   int             `json:"turnIndex"`
	ActionsUsed int             `json:"actionsUsed"`
	Deck        []*CardInstance `json:"-"`
	Discard     []*CardInstance `json:"-"`
	Pending     *PendingAction  `json:"pending,omitempty"`
	Status      Status          `json:"status"`
	WinnerID    uuid.UUID       `json:"winnerId,omitempty"`

	rng *rand.Rand
}

func (g *GameState) currentPlayer() *Player {
	return g.Players[g.TurnIndex]
}

func (g *GameState) playerByID(id uuid.UUID) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// opponentsInOrder lists every other player starting from the seat after the
// current one, wrapping around. This is the response order for multi-target
// actions.
func (g *GameState) opponentsInOrder() []*Player {
	var out []*Player
	n := len(g.Players)
	for i := 1; i < n; i++ {
		out = append(out, g.Players[(g.TurnIndex+i)%n])
	}
	return out
}

// drawCards moves up to n cards from the deck into p's hand. When the deck
// runs dry the discard pile is shuffled back in; when both are empty the draw
// simply stops short.
func (g *GameState) drawCards(p *Player, n int) int {
	drawn := 0
	for drawn < n {
		if len(g.Deck) == 0 {
			if len(g.Discard) == 0 {
				break
			}
			g.Deck = g.Discard
			g.Discard = nil
			g.rng.Shuffle(len(g.Deck), func(i, j int) {
				g.Deck[i], g.Deck[j] = g.Deck[j], g.Deck[i]
			})
		}
		card := g.Deck[len(g.Deck)-1]
		g.Deck = g.Deck[:len(g.Deck)-1]
		p.Hand = append(p.Hand, card)
		drawn++
	}
	return drawn
}

func (g *GameState) discard(cards ...*CardInstance) {
	g.Discard = append(g.Discard, cards...)
}

// advanceTurn rotates to the next seat, resets the action budget, and runs
// the start-of-turn draw: two cards, or five when the incoming hand is empty.
func (g *GameState) advanceTurn() {
	g.TurnIndex = (g.TurnIndex + 1) % len(g.Players)
	g.ActionsUsed = 0
	next := g.currentPlayer()
	if len(next.Hand) == 0 {
		g.drawCards(next, EmptyHandDraw)
	} else {
		g.drawCards(next, TurnDraw)
	}
}

// checkWin ends the game immediately if p holds enough complete sets. Any
// queued responses are dropped; the win is final the moment it exists.
func (g *GameState) checkWin(p *Player) bool {
	if p.CompleteSets() < SetsToWin {
		return false
	}
	g.Status = StatusGameOver
	g.WinnerID = p.ID
	g.Pending = nil
	return true
}
