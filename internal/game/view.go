// internal/game/view.go
package game

import (
	"github.com/google/uuid"

	"github.com/subwaydeal/server/internal/catalog"
)

// CardView is the wire shape of one card instance.
type CardView struct {
	ID    uuid.UUID        `json:"id"`
	DefID string           `json:"defId"`
	Type  catalog.CardType `json:"type"`
	Name  string           `json:"name"`
	Value int              `json:"value"`
	Color catalog.Color    `json:"color,omitempty"`
}

// SetView is a public property set: cards, improvements, derived numbers.
type SetView struct {
	Color        catalog.Color `json:"color"`
	Cards        []CardView    `json:"cards"`
	Improvements []string      `json:"improvements,omitempty"`
	Complete     bool          `json:"complete"`
	Rent         int           `json:"rent"`
}

// PlayerView is one seat as visible to the snapshot's viewer. Hand is only
// populated for the viewer's own seat; everyone gets HandCount.
type PlayerView struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	HandCount    int        `json:"handCount"`
	Hand         []CardView `json:"hand,omitempty"`
	Bank         []CardView `json:"bank"`
	BankTotal    int        `json:"bankTotal"`
	Sets         []SetView  `json:"sets"`
	CompleteSets int        `json:"completeSets"`
}

// PendingView summarizes the in-flight action for clients.
type PendingView struct {
	Kind          PendingKind `json:"kind"`
	CardName      string      `json:"cardName"`
	SourceID      uuid.UUID   `json:"sourceId"`
	CurrentTarget uuid.UUID   `json:"currentTarget"`
	TargetsLeft   int         `json:"targetsLeft"`
	Amount        int         `json:"amount,omitempty"`
}

// Snapshot is everything one player is allowed to see.
type Snapshot struct {
	Status         Status       `json:"status"`
	TurnPlayerID   uuid.UUID    `json:"turnPlayerId"`
	ActionsUsed    int          `json:"actionsUsed"`
	ActionsPerTurn int          `json:"actionsPerTurn"`
	DeckCount      int          `json:"deckCount"`
	DiscardTop     *CardView    `json:"discardTop,omitempty"`
	Players        []PlayerView `json:"players"`
	Pending        *PendingView `json:"pending,omitempty"`
	WinnerID       uuid.UUID    `json:"winnerId,omitempty"`
}

func cardView(c *CardInstance) CardView {
	return CardView{
		ID:    c.ID,
		DefID: c.Def.ID,
		Type:  c.Def.Type,
		Name:  c.Name(),
		Value: c.Value(),
		Color: c.Color,
	}
}

func cardViews(cards []*CardInstance) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView(c))
	}
	return out
}

// Snapshot builds viewerID's view of the match. Opponents' hands are
// reduced to counts; banks, property books and the discard top are public.
func (e *Engine) Snapshot(viewerID uuid.UUID) Snapshot {
	g := e.state
	snap := Snapshot{
		Status:         g.Status,
		TurnPlayerID:   g.currentPlayer().ID,
		ActionsUsed:    g.ActionsUsed,
		ActionsPerTurn: MaxActionsPerTurn,
		DeckCount:      len(g.Deck),
		WinnerID:       g.WinnerID,
	}
	if len(g.Discard) > 0 {
		top := cardView(g.Discard[len(g.Discard)-1])
		snap.DiscardTop = &top
	}
	if g.Pending != nil {
		snap.Pending = &PendingView{
			Kind:          g.Pending.Kind,
			CardName:      g.Pending.CardName,
			SourceID:      g.Pending.SourceID,
			CurrentTarget: g.Pending.currentTarget(),
			TargetsLeft:   len(g.Pending.Targets),
			Amount:        g.Pending.Amount,
		}
	}
	for _, p := range g.Players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			HandCount:    len(p.Hand),
			Bank:         cardViews(p.Bank),
			BankTotal:    p.BankTotal(),
			CompleteSets: p.CompleteSets(),
		}
		if p.ID == viewerID {
			pv.Hand = cardViews(p.Hand)
		}
		for _, color := range catalog.AllColors {
			ps, ok := p.Properties[color]
			if !ok {
				continue
			}
			pv.Sets = append(pv.Sets, SetView{
				Color:        ps.Color,
				Cards:        cardViews(ps.Cards),
				Improvements: ps.Improvements,
				Complete:     ps.IsComplete(),
				Rent:         ps.Rent(),
			})
		}
		snap.Players = append(snap.Players, pv)
	}
	return snap
}
