// internal/game/match.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/subwaydeal/server/internal/cache"
	"github.com/subwaydeal/server/internal/catalog"
)

// OnMatchEndFunc handles a finished match: lobby notification, persistence.
type OnMatchEndFunc func(lobbyID uuid.UUID, winnerID uuid.UUID)

// MatchEventType tags outbound websocket events.
type MatchEventType string

const (
	EventActionApplied MatchEventType = "action_applied"
	EventSyncState     MatchEventType = "sync_state"
	EventMatchEnd      MatchEventType = "match_end"
)

// MatchEvent is the outbound envelope for match broadcasts. State is only
// set on per-player sends; it is the viewer's own snapshot.
type MatchEvent struct {
	Type   MatchEventType `json:"type"`
	Result *Result        `json:"result,omitempty"`
	State  *Snapshot      `json:"state,omitempty"`
}

// Match wraps one Engine with everything the service layer needs: the lock
// that serializes submissions, broadcast hooks, and the action feed.
type Match struct {
	ID        uuid.UUID
	LobbyID   uuid.UUID
	CreatedAt time.Time

	Mu     sync.Mutex
	Engine *Engine

	// BroadcastFn is used to send events to all players. If nil, no broadcast is done.
	BroadcastFn func(ev MatchEvent)

	// BroadcastToPlayerFn sends an event to a single specific player.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev MatchEvent)

	// OnMatchEnd is invoked once when the match ends.
	OnMatchEnd OnMatchEndFunc

	actionIndex int
	ended       bool
}

// NewMatch builds a match for the given seats, in seat order, with a
// time-seeded shuffle.
func NewMatch(lobbyID uuid.UUID, players []*Player) *Match {
	return &Match{
		ID:        uuid.New(),
		LobbyID:   lobbyID,
		CreatedAt: time.Now(),
		Engine:    NewEngine(catalog.New(), players, time.Now().UnixNano()),
	}
}

// Submit validates and applies one player action under the match lock, logs
// it to the action feed, and broadcasts the new state. A returned error means
// nothing changed; the caller sends it to the submitter only.
func (m *Match) Submit(ctx context.Context, playerID uuid.UUID, act Action) (*Result, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	res, err := m.Engine.Submit(playerID, act)
	if err != nil {
		return nil, err
	}

	m.actionIndex++
	m.publishAction(ctx, playerID, act)

	m.fireEvent(MatchEvent{Type: EventActionApplied, Result: res})
	m.broadcastSyncState()

	if res.GameOver && !m.ended {
		m.ended = true
		m.fireEvent(MatchEvent{Type: EventMatchEnd, Result: res})
		if m.OnMatchEnd != nil {
			m.OnMatchEnd(m.LobbyID, res.WinnerID)
		}
	}
	return res, nil
}

// SendSyncState sends the player their current snapshot, used on connect and
// reconnect.
func (m *Match) SendSyncState(playerID uuid.UUID) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.firePlayerState(playerID)
}

// Players returns the seats in order. Safe to call concurrently; the slice
// is fixed at match start.
func (m *Match) Players() []*Player {
	return m.Engine.State().Players
}

func (m *Match) publishAction(ctx context.Context, playerID uuid.UUID, act Action) {
	if cache.Rdb == nil {
		return
	}
	record := cache.MatchActionRecord{
		MatchID:     m.ID,
		ActionIndex: m.actionIndex,
		ActorID:     playerID,
		ActionType:  string(act.Type),
		Payload:     act.Data,
		Timestamp:   time.Now().UnixMilli(),
	}
	if err := cache.PublishMatchAction(ctx, record); err != nil {
		logrus.WithError(err).WithField("match_id", m.ID).Warn("failed to publish match action")
	}
}

func (m *Match) fireEvent(ev MatchEvent) {
	if m.BroadcastFn != nil {
		m.BroadcastFn(ev)
	}
}

func (m *Match) broadcastSyncState() {
	for _, p := range m.Engine.State().Players {
		m.firePlayerState(p.ID)
	}
}

func (m *Match) firePlayerState(playerID uuid.UUID) {
	if m.BroadcastToPlayerFn == nil {
		logrus.WithField("match_id", m.ID).Warn("BroadcastToPlayerFn is nil, cannot send sync state")
		return
	}
	snap := m.Engine.Snapshot(playerID)
	m.BroadcastToPlayerFn(playerID, MatchEvent{Type: EventSyncState, State: &snap})
}
