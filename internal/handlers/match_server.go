// internal/handlers/match_server.go
package handlers

import (
	"context"
	"log"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/subwaydeal/server/internal/database"
	"github.com/subwaydeal/server/internal/game"
	"github.com/subwaydeal/server/internal/lobby"
	"github.com/subwaydeal/server/internal/models"
)

// MatchServer owns the MatchStore and the per-match connection registry. It
// creates matches from lobbies and wires their broadcast hooks.
type MatchServer struct {
	MatchStore *game.MatchStore
	LobbyStore *lobby.LobbyStore
	Logf       func(f string, v ...interface{})

	mu    sync.Mutex
	conns map[uuid.UUID]map[uuid.UUID]*models.Player // matchID -> playerID -> session
}

func NewMatchServer() *MatchServer {
	return &MatchServer{
		MatchStore: game.NewMatchStore(),
		LobbyStore: lobby.NewLobbyStore(),
		Logf:       log.Printf,
		conns:      make(map[uuid.UUID]map[uuid.UUID]*models.Player),
	}
}

// CreateMatchInstance builds a match from the lobby's live connections, in
// join order, and wires its broadcast and persistence hooks.
func (ms *MatchServer) CreateMatchInstance(ctx context.Context, lobbyID uuid.UUID, conns []*lobby.LobbyConnection) *game.Match {
	if len(conns) < 2 {
		logrus.WithField("lobby_id", lobbyID).Warn("not enough players to start a match")
		return nil
	}

	seats := make([]*game.Player, 0, len(conns))
	sessions := make(map[uuid.UUID]*models.Player, len(conns))
	for _, c := range conns {
		seats = append(seats, game.NewPlayer(c.UserID, c.Username))
		sessions[c.UserID] = &models.Player{ID: c.UserID, Name: c.Username}
	}
	m := game.NewMatch(lobbyID, seats)

	ms.mu.Lock()
	ms.conns[m.ID] = sessions
	ms.mu.Unlock()

	m.BroadcastFn = ms.makeBroadcastFn(m.ID)
	m.BroadcastToPlayerFn = ms.makeBroadcastToPlayerFn(m.ID)
	m.OnMatchEnd = ms.makeOnMatchEnd(m)

	if database.DB != nil {
		seatOrder := make([]uuid.UUID, len(seats))
		for i, s := range seats {
			seatOrder[i] = s.ID
		}
		database.InsertMatchStart(ctx, m.ID, lobbyID, map[string]interface{}{
			"seat_order": seatOrder,
		})
	}

	ms.MatchStore.AddMatch(m)
	return m
}

// makeOnMatchEnd persists the final outcome. Called under the match lock, so
// state reads are safe; the DB write is handed off.
func (ms *MatchServer) makeOnMatchEnd(m *game.Match) game.OnMatchEndFunc {
	return func(lobbyID uuid.UUID, winnerID uuid.UUID) {
		completeSets := make(map[uuid.UUID]int)
		for _, p := range m.Players() {
			completeSets[p.ID] = p.CompleteSets()
		}
		finalState := m.Engine.Snapshot(uuid.Nil)
		go func() {
			if database.DB == nil {
				return
			}
			ctx := context.Background()
			if err := database.RecordMatchResult(ctx, m.ID, winnerID, completeSets); err != nil {
				logrus.WithError(err).WithField("match_id", m.ID).Error("failed to record match result")
			}
			if err := database.StoreFinalMatchState(ctx, m.ID, finalState); err != nil {
				logrus.WithError(err).WithField("match_id", m.ID).Error("failed to store final match state")
			}
		}()
	}
}

// registerConn attaches a live websocket to the player's seat session.
// Returns false if the player has no seat in the match.
func (ms *MatchServer) registerConn(matchID, playerID uuid.UUID, conn *websocket.Conn) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	sessions, ok := ms.conns[matchID]
	if !ok {
		return false
	}
	p, ok := sessions[playerID]
	if !ok {
		return false
	}
	p.Conn = conn
	p.Connected = true
	return true
}

func (ms *MatchServer) dropConn(matchID, playerID uuid.UUID) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if sessions, ok := ms.conns[matchID]; ok {
		if p, ok := sessions[playerID]; ok {
			p.Conn = nil
			p.Connected = false
		}
	}
}

// connectedSessions snapshots the live connections for a match.
func (ms *MatchServer) connectedSessions(matchID uuid.UUID) []*models.Player {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var out []*models.Player
	for _, p := range ms.conns[matchID] {
		if p.Connected && p.Conn != nil {
			out = append(out, p)
		}
	}
	return out
}

func (ms *MatchServer) sessionConn(matchID, playerID uuid.UUID) *websocket.Conn {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if p, ok := ms.conns[matchID][playerID]; ok && p.Connected {
		return p.Conn
	}
	return nil
}
