// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/subwaydeal/server/internal/lobby"
)

var MatchServerForLobbyWS *MatchServer

// LobbyWSHandler sets up the ephemeral in-memory lobby WS flow.
func LobbyWSHandler(logger *logrus.Logger, ms *MatchServer) http.HandlerFunc {
	MatchServerForLobbyWS = ms
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/lobby/ws/"), "/")
		if len(pathParts) < 1 {
			http.Error(w, "missing lobby_id", http.StatusBadRequest)
			return
		}
		lobbyUUID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "invalid lobby_id", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"lobby"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "lobby" {
			c.Close(BadSubprotocolError, "client must speak the lobby subprotocol")
			return
		}

		userUUID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			logger.Warnf("User authentication failed for lobby %s: %v", lobbyUUID, err)
			c.Close(websocket.StatusPolicyViolation, "Authentication failed.")
			return
		}

		lob, exists := ms.LobbyStore.GetLobby(lobbyUUID)
		if !exists {
			c.Close(InvalidLobbyIDError, "lobby does not exist")
			return
		}

		lob.Mu.Lock()
		_, isInvitedOrPresent := lob.Users[userUUID]
		lobbyType := lob.Type
		lob.Mu.Unlock()

		if lobbyType == "private" && !isInvitedOrPresent {
			c.Close(websocket.StatusPolicyViolation, "user not invited to private lobby")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		conn := &lobby.LobbyConnection{
			UserID:  userUUID,
			Cancel:  cancel,
			OutChan: make(chan map[string]interface{}, 10),
			IsHost:  lob.HostUserID == userUUID,
		}

		if err := lob.AddConnection(userUUID, conn); err != nil {
			logger.Warnf("failed AddConnection: %v", err)
			c.Close(websocket.StatusPolicyViolation, fmt.Sprintf("AddConnection error: %v", err))
			cancel()
			return
		}

		logger.Infof("User %v (%s) connected to lobby %v", userUUID, remoteAddr, lobbyUUID)

		go writePump(ctx, c, conn, logger)
		readPump(ctx, c, lob, conn, logger, lobbyUUID)

		logger.Infof("User %v readPump exited for lobby %v. Initiating cleanup.", userUUID, lobbyUUID)
		lob.RemoveUser(userUUID)
	}
}

// readPump handles incoming messages from the lobby websocket.
func readPump(ctx context.Context, c *websocket.Conn, lob *lobby.Lobby, conn *lobby.LobbyConnection, logger *logrus.Logger, lobbyID uuid.UUID) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("Lobby %s: WebSocket closed normally for user %v.", lobbyID, conn.UserID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("Lobby %s: Read error for user %v: %v (CloseStatus: %d)", lobbyID, conn.UserID, err, closeStatus)
			}
			return
		}

		if typ != websocket.MessageText {
			continue
		}

		var packet map[string]interface{}
		if err := json.Unmarshal(msg, &packet); err != nil {
			logger.Warnf("Lobby %s: Invalid json from user %v: %v", lobbyID, conn.UserID, err)
			conn.WriteError("Invalid JSON format")
			continue
		}

		shouldStartCountdown := false

		lob.Mu.Lock()
		currentConn, stillConnected := lob.Connections[conn.UserID]
		if !stillConnected || currentConn != conn {
			lob.Mu.Unlock()
			continue
		}
		leaving := handleLobbyMessage(packet, lob, conn, logger, &shouldStartCountdown)
		lob.Mu.Unlock()

		if leaving {
			lob.RemoveUser(conn.UserID)
			continue
		}

		if shouldStartCountdown {
			lob.StartCountdown(10, func(l *lobby.Lobby) {
				logger.Infof("Lobby %s: Auto-start countdown finished.", l.ID)
				startMatchFromLobby(l, logger)
			})
		}
	}
}

// handleLobbyMessage interprets the "type" field for ephemeral lobby logic.
// Assumes the lobby lock is HELD by the caller. Returns true if the sender is
// leaving the lobby (the caller removes them after releasing the lock).
func handleLobbyMessage(packet map[string]interface{}, lob *lobby.Lobby, senderConn *lobby.LobbyConnection, logger *logrus.Logger, shouldStartCountdown *bool) bool {
	action, _ := packet["type"].(string)

	switch action {
	case "ready":
		if lob.MarkUserReadyUnsafe(senderConn.UserID) {
			*shouldStartCountdown = true
		}
	case "unready":
		lob.MarkUserUnreadyUnsafe(senderConn.UserID)
	case "invite":
		userIDStr, _ := packet["userID"].(string)
		userToAdd, err := uuid.Parse(userIDStr)
		if err != nil {
			logger.Warnf("Lobby %s: Invalid user ID to invite: %v", lob.ID, packet["userID"])
			senderConn.WriteError("Invalid userID format for invite")
			return false
		}
		lob.InviteUser(userToAdd)
	case "leave_lobby":
		return true
	case "chat":
		msg, _ := packet["msg"].(string)
		if msg != "" {
			lob.BroadcastChatUnsafe(senderConn, msg)
		}
	case "start_game":
		if !senderConn.IsHost {
			senderConn.WriteError("Only the host can force start")
			return false
		}
		if lob.InGame {
			senderConn.WriteError("Match already in progress")
			return false
		}
		if !lob.AreAllReadyUnsafe() {
			senderConn.WriteError("Not all users are ready")
			return false
		}
		lob.CancelCountdownUnsafe()
		// startMatchFromLobby takes the lobby lock itself, so it runs off
		// this goroutine once the message handler releases it.
		go startMatchFromLobby(lob, logger)
	default:
		logger.Warnf("Lobby %s: Unknown action '%s' from user %v", lob.ID, action, senderConn.UserID)
		senderConn.WriteError(fmt.Sprintf("Unknown action type: %s", action))
	}
	return false
}

// startMatchFromLobby creates the match instance for the lobby and
// broadcasts the match id so clients can open their match sockets.
func startMatchFromLobby(lob *lobby.Lobby, logger *logrus.Logger) {
	if MatchServerForLobbyWS == nil {
		logger.Errorf("Lobby %s: MatchServerForLobbyWS is nil, cannot start match.", lob.ID)
		return
	}

	lob.Mu.Lock()
	if lob.InGame {
		lob.Mu.Unlock()
		return
	}
	conns := lob.GetConnectionsUnsafe()
	lob.Mu.Unlock()

	m := MatchServerForLobbyWS.CreateMatchInstance(context.Background(), lob.ID, conns)
	if m == nil {
		logger.Errorf("Lobby %s: Failed to create match instance.", lob.ID)
		return
	}
	logger.Infof("Lobby %s: Match instance %s created.", lob.ID, m.ID)

	lob.Mu.Lock()
	if lob.InGame {
		// Lost the race to another start; drop the duplicate.
		MatchServerForLobbyWS.MatchStore.DeleteMatch(m.ID)
		lob.Mu.Unlock()
		return
	}
	lob.InGame = true
	lob.MatchID = m.ID
	lob.BroadcastAllUnsafe(map[string]interface{}{
		"type":     "match_start",
		"match_id": m.ID.String(),
	})
	lob.Mu.Unlock()
}

// writePump drains the connection's outbound channel and keeps the socket
// alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *lobby.LobbyConnection, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer func() {
		_ = c.Close(websocket.StatusGoingAway, "Write pump stopping")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("Lobby: Failed to marshal outgoing msg for user %v: %v", conn.UserID, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Lobby: Failed to write to websocket for user %v: %v", conn.UserID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Lobby: Failed to send ping to user %v: %v. Assuming disconnect.", conn.UserID, err)
				return
			}
		}
	}
}
