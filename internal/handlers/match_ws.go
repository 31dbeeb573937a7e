// internal/handlers/match_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/subwaydeal/server/internal/game"
	"github.com/subwaydeal/server/internal/middleware"
	"github.com/subwaydeal/server/internal/models"
)

// wsError is the private rejection envelope sent back to a submitter whose
// action failed validation.
type wsError struct {
	Type   string `json:"type"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}

// MatchWSHandler upgrades the HTTP connection to WebSocket for a specific
// match. It authenticates the user, verifies they hold a seat, registers the
// connection, sends the initial state snapshot, and then reads actions until
// the connection drops.
func MatchWSHandler(logger *logrus.Logger, ms *MatchServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Extract match ID from URL path: /match/ws/{match_id}
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/match/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "Missing match_id in path (/match/ws/{match_id})", http.StatusBadRequest)
			return
		}
		matchID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "Invalid match_id format", http.StatusBadRequest)
			return
		}

		m, ok := ms.MatchStore.GetMatch(matchID)
		if !ok {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for match %s: %v", matchID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			logger.Warnf("Client for match %s connected with invalid subprotocol: %s", matchID, c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'game' subprotocol.")
			return
		}

		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			logger.Warnf("User authentication failed for match %s: %v", matchID, err)
			c.Close(websocket.StatusPolicyViolation, "Authentication failed.")
			return
		}

		if !ms.registerConn(matchID, userID, c) {
			logger.Warnf("User %s has no seat in match %s. Closing connection.", userID, matchID)
			c.Close(websocket.StatusPolicyViolation, "You are not a player in this match.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		logger.Infof("Player %s connected to match %s", userID, matchID)

		// Send the connecting player their current view straight away, so
		// reconnects resume cleanly mid-game.
		m.SendSyncState(userID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readMatchMessages(ctx, c, m, userID, logger)

		ms.dropConn(matchID, userID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// makeBroadcastFn sends an event to every connected player in the match.
// Called while the match lock is held, so the websocket writes happen on a
// separate goroutine against a connection snapshot.
func (ms *MatchServer) makeBroadcastFn(matchID uuid.UUID) func(ev game.MatchEvent) {
	return func(ev game.MatchEvent) {
		players := ms.connectedSessions(matchID)
		msgBytes, err := json.Marshal(ev)
		if err != nil {
			logrus.Errorf("Failed to marshal broadcast event (%s) for match %s: %v", ev.Type, matchID, err)
			return
		}
		go func(players []*models.Player, data []byte) {
			for _, pl := range players {
				if pl.Conn == nil {
					continue
				}
				writeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				err := pl.Conn.Write(writeCtx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logrus.Warnf("Failed to write broadcast message to player %s in match %s: %v", pl.ID, matchID, err)
				}
			}
		}(players, msgBytes)
	}
}

// makeBroadcastToPlayerFn sends a private event (state snapshots) to one
// player. Same lock discipline as makeBroadcastFn.
func (ms *MatchServer) makeBroadcastToPlayerFn(matchID uuid.UUID) func(playerID uuid.UUID, ev game.MatchEvent) {
	return func(playerID uuid.UUID, ev game.MatchEvent) {
		conn := ms.sessionConn(matchID, playerID)
		if conn == nil {
			return
		}
		msgBytes, err := json.Marshal(ev)
		if err != nil {
			logrus.Errorf("Failed to marshal private event (%s) for player %s in match %s: %v", ev.Type, playerID, matchID, err)
			return
		}
		go func(conn *websocket.Conn, data []byte) {
			writeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logrus.Warnf("Failed to write private message to player %s in match %s: %v", playerID, matchID, err)
			}
		}(conn, msgBytes)
	}
}

// readMatchMessages reads action envelopes from the client and submits them
// to the match. A rejected action is reported privately; the loop exits on
// connection error or context cancellation.
func readMatchMessages(ctx context.Context, c *websocket.Conn, m *game.Match, userID uuid.UUID, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for user %s in match %s.", userID, m.ID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for user %s in match %s.", userID, m.ID)
			} else {
				logger.Warnf("Error reading from WebSocket for user %s in match %s: %v (Status: %d)", userID, m.ID, err, status)
			}
			return
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from user %s in match %s. Ignoring.", msgType, userID, m.ID)
			continue
		}

		var act game.Action
		if err := json.Unmarshal(data, &act); err != nil {
			logger.Warnf("Invalid JSON received from user %s in match %s: %v", userID, m.ID, err)
			sendWsError(ctx, c, "", "Invalid JSON format.")
			continue
		}

		if act.Type == "PING" {
			sendWsMessage(ctx, c, map[string]string{"type": "PONG"})
			continue
		}

		logger.Debugf("Received action '%s' from user %s in match %s.", act.Type, userID, m.ID)

		if _, err := m.Submit(ctx, userID, act); err != nil {
			if ve, ok := game.AsValidation(err); ok {
				sendWsError(ctx, c, string(ve.Code), ve.Reason)
				continue
			}
			// Integrity failures are logged server-side; the client only
			// learns the submission did not apply.
			logger.WithError(err).Errorf("Integrity failure in match %s on action '%s' from %s", m.ID, act.Type, userID)
			sendWsError(ctx, c, "InternalError", "The action could not be applied.")
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// sendWsMessage marshals a message and sends it to the WebSocket client.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	if c == nil {
		log.Println("Error: Attempted to send WebSocket message on nil connection.")
		return
	}
	msgBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Write(writeCtx, websocket.MessageText, msgBytes); err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			log.Printf("Error writing WebSocket message: %v (Status: %d)", err, status)
		}
	}
}

// sendWsError sends a structured rejection to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, code, reason string) {
	sendWsMessage(ctx, c, wsError{Type: "error", Code: code, Reason: reason})
}
