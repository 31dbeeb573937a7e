// internal/lobby/lobby.go
package lobby

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/subwaydeal/server/internal/database"
)

// Lobby is an ephemeral grouping of users with chat, ready states, and an
// auto-start countdown. When the match starts, the seats are handed to the
// match server in join order.
type Lobby struct {
	ID         uuid.UUID `json:"id"`
	HostUserID uuid.UUID `json:"hostUserID"`
	Type       string    `json:"type"`

	// Users maps userID -> whether they've joined (true) or only invited (false).
	Users map[uuid.UUID]bool `json:"-"`

	// Connections holds the live WebSocket connections for joined users.
	Connections map[uuid.UUID]*LobbyConnection `json:"-"`
	// ReadyStates holds userID -> bool for "is ready".
	ReadyStates map[uuid.UUID]bool `json:"-"`

	MatchID uuid.UUID `json:"matchId,omitempty"`
	InGame  bool      `json:"inGame"`

	CountdownTimer *time.Timer `json:"-"`

	Settings LobbySettings `json:"settings"`

	// OnEmpty is called when the last user leaves, typically wired to the
	// store's DeleteLobby.
	OnEmpty func(lobbyID uuid.UUID) `json:"-"`

	Mu sync.Mutex `json:"-"`
}

// LobbyConnection is a single user's presence in the lobby.
type LobbyConnection struct {
	UserID   uuid.UUID
	Username string
	Cancel   func()
	OutChan  chan map[string]interface{}
	IsHost   bool
}

// Write pushes a message onto the user's OutChan non-blockingly.
func (conn *LobbyConnection) Write(msg map[string]interface{}) {
	select {
	case conn.OutChan <- msg:
	default:
		msgType, _ := msg["type"].(string)
		log.Printf("LobbyConnection Write WARNING: OutChan for user %s closed or full. Dropped message type '%s'.", conn.UserID, msgType)
	}
}

// WriteError is a convenience to send an error object.
func (conn *LobbyConnection) WriteError(msg string) {
	conn.Write(map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}

// LobbySettings holds settings specific to the lobby behavior.
type LobbySettings struct {
	AutoStart  bool `json:"autoStart"`
	MaxPlayers int  `json:"maxPlayers"`
}

// NewLobbyWithDefaults creates an ephemeral private lobby.
func NewLobbyWithDefaults(hostID uuid.UUID) *Lobby {
	lobbyID, _ := uuid.NewRandom()
	return &Lobby{
		ID:          lobbyID,
		HostUserID:  hostID,
		Type:        "private",
		Users:       make(map[uuid.UUID]bool),
		Connections: make(map[uuid.UUID]*LobbyConnection),
		ReadyStates: make(map[uuid.UUID]bool),
		Settings: LobbySettings{
			AutoStart:  true,
			MaxPlayers: 5,
		},
	}
}

// InviteUser marks userID as invited to a private lobby. Assumes lock is held.
func (lobby *Lobby) InviteUser(userID uuid.UUID) {
	if _, exists := lobby.Users[userID]; !exists {
		lobby.Users[userID] = false
		lobby.BroadcastAllUnsafe(map[string]interface{}{
			"type":      "lobby_invite",
			"invitedID": userID.String(),
		})
	}
}

// AddConnection registers the user as connected and unready. Acquires lock.
func (lobby *Lobby) AddConnection(userID uuid.UUID, conn *LobbyConnection) error {
	lobby.Mu.Lock()

	joined, exists := lobby.Users[userID]
	if !exists {
		if lobby.Type != "private" {
			lobby.Users[userID] = true
		} else {
			lobby.Mu.Unlock()
			return fmt.Errorf("user %s not invited to the private lobby %s", userID, lobby.ID)
		}
	} else if joined {
		// Rejoin replaces the old connection.
		if oldConn, ok := lobby.Connections[userID]; ok && oldConn != conn {
			close(oldConn.OutChan)
			if oldConn.Cancel != nil {
				oldConn.Cancel()
			}
		}
	}

	if lobby.Settings.MaxPlayers > 0 && len(lobby.Connections) >= lobby.Settings.MaxPlayers {
		if _, rejoining := lobby.Connections[userID]; !rejoining {
			lobby.Mu.Unlock()
			return fmt.Errorf("lobby %s is full", lobby.ID)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	user, err := database.GetUserByID(ctx, userID)
	cancel()
	if err != nil {
		log.Printf("Lobby %s: Error fetching user %s details: %v. Using default username.", lobby.ID, userID, err)
		conn.Username = fmt.Sprintf("User_%s", userID.String()[:4])
	} else {
		conn.Username = user.Username
	}

	lobby.Connections[userID] = conn
	lobby.ReadyStates[userID] = false
	lobby.Users[userID] = true

	log.Printf("Lobby %s: User %s (%s) connected.", lobby.ID, userID, conn.Username)

	statePayload := lobby.getLobbyStatePayloadUnsafe(userID)
	joinPayload := lobby.getLobbyJoinPayloadUnsafe(userID)

	lobby.Mu.Unlock()

	go func() {
		conn.Write(statePayload)
		lobby.BroadcastAll(joinPayload)
	}()

	return nil
}

// RemoveUser removes the user entirely. If the lobby empties, OnEmpty fires.
// Acquires lock.
func (lobby *Lobby) RemoveUser(userID uuid.UUID) {
	lobby.Mu.Lock()

	conn, connExists := lobby.Connections[userID]
	if !connExists {
		delete(lobby.Users, userID)
		lobby.Mu.Unlock()
		return
	}

	go func(ch chan map[string]interface{}, cancelFunc func()) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Lobby %s: Recovered from panic closing OutChan for user %s: %v", lobby.ID, userID, r)
			}
		}()
		close(ch)
		if cancelFunc != nil {
			cancelFunc()
		}
	}(conn.OutChan, conn.Cancel)

	delete(lobby.Users, userID)
	delete(lobby.Connections, userID)
	delete(lobby.ReadyStates, userID)

	leavePayload := lobby.getLobbyLeavePayloadUnsafe(userID)
	isEmpty := len(lobby.Connections) == 0
	onEmptyCallback := lobby.OnEmpty
	if lobby.CountdownTimer != nil {
		lobby.CancelCountdownUnsafe()
	}

	lobby.Mu.Unlock()

	lobby.BroadcastAll(leavePayload)

	if isEmpty && onEmptyCallback != nil {
		log.Printf("Lobby %s is now empty. Triggering OnEmpty callback.", lobby.ID)
		onEmptyCallback(lobby.ID)
	}
}

// StartCountdownUnsafe begins an auto-start countdown. Assumes lock is held.
func (lobby *Lobby) StartCountdownUnsafe(seconds int, callback func(*Lobby)) bool {
	if lobby.InGame || lobby.CountdownTimer != nil {
		return false
	}
	if len(lobby.Connections) < 2 {
		return false
	}

	log.Printf("Lobby %s: Starting %d second countdown.", lobby.ID, seconds)
	lobby.BroadcastAllUnsafe(map[string]interface{}{
		"type":    "lobby_countdown_start",
		"seconds": seconds,
	})

	var timer *time.Timer
	timer = time.AfterFunc(time.Duration(seconds)*time.Second, func() {
		lobby.Mu.Lock()
		if lobby.CountdownTimer == timer {
			lobby.CountdownTimer = nil
			lobby.Mu.Unlock()
			callback(lobby)
		} else {
			lobby.Mu.Unlock()
		}
	})
	lobby.CountdownTimer = timer
	return true
}

// StartCountdown acquires the lock and starts the countdown.
func (lobby *Lobby) StartCountdown(seconds int, callback func(*Lobby)) bool {
	lobby.Mu.Lock()
	defer lobby.Mu.Unlock()
	return lobby.StartCountdownUnsafe(seconds, callback)
}

// CancelCountdownUnsafe stops any existing countdown. Assumes lock is held.
func (lobby *Lobby) CancelCountdownUnsafe() {
	if lobby.CountdownTimer == nil {
		return
	}
	if lobby.CountdownTimer.Stop() {
		lobby.BroadcastAllUnsafe(map[string]interface{}{
			"type": "lobby_countdown_cancel",
		})
	}
	lobby.CountdownTimer = nil
}

// MarkUserReadyUnsafe sets a user's ready state. Assumes lock is held.
// Returns true if an auto-start countdown should begin.
func (lobby *Lobby) MarkUserReadyUnsafe(userID uuid.UUID) bool {
	conn, ok := lobby.Connections[userID]
	if !ok || lobby.ReadyStates[userID] {
		return false
	}

	lobby.ReadyStates[userID] = true
	lobby.BroadcastAllUnsafe(map[string]interface{}{
		"type":     "ready_update",
		"user_id":  userID.String(),
		"username": conn.Username,
		"is_ready": true,
	})

	return lobby.AreAllReadyUnsafe() && lobby.Settings.AutoStart && !lobby.InGame
}

// MarkUserUnreadyUnsafe clears the ready state and cancels any countdown.
// Assumes lock is held.
func (lobby *Lobby) MarkUserUnreadyUnsafe(userID uuid.UUID) {
	conn, ok := lobby.Connections[userID]
	if !ok || !lobby.ReadyStates[userID] {
		return
	}

	lobby.ReadyStates[userID] = false
	lobby.BroadcastAllUnsafe(map[string]interface{}{
		"type":     "ready_update",
		"user_id":  userID.String(),
		"username": conn.Username,
		"is_ready": false,
	})

	lobby.CancelCountdownUnsafe()
}

// AreAllReadyUnsafe reports whether every connected user is ready (and there
// are at least two). Assumes lock is held.
func (lobby *Lobby) AreAllReadyUnsafe() bool {
	if len(lobby.Connections) < 2 {
		return false
	}
	for userID := range lobby.Connections {
		if !lobby.ReadyStates[userID] {
			return false
		}
	}
	return true
}

// BroadcastAllUnsafe sends msg to every connection. Assumes lock is held;
// conn.Write never blocks.
func (lobby *Lobby) BroadcastAllUnsafe(msg map[string]interface{}) {
	for _, conn := range lobby.Connections {
		conn.Write(msg)
	}
}

// BroadcastAll sends msg to every connected user. Acquires lock.
func (lobby *Lobby) BroadcastAll(msg map[string]interface{}) {
	lobby.Mu.Lock()
	defer lobby.Mu.Unlock()
	lobby.BroadcastAllUnsafe(msg)
}

// BroadcastChatUnsafe broadcasts a chat message. Assumes lock is held.
func (lobby *Lobby) BroadcastChatUnsafe(senderConn *LobbyConnection, msg string) {
	username := senderConn.Username
	if username == "" {
		username = "Unknown"
	}
	lobby.BroadcastAllUnsafe(map[string]interface{}{
		"type":     "chat",
		"user_id":  senderConn.UserID.String(),
		"username": username,
		"msg":      msg,
		"ts":       time.Now().Unix(),
	})
}

// GetLobbyStatusPayloadUnsafe gathers current user status. Assumes lock is held.
func (lobby *Lobby) GetLobbyStatusPayloadUnsafe() map[string]interface{} {
	users := []map[string]interface{}{}
	for userID, conn := range lobby.Connections {
		users = append(users, map[string]interface{}{
			"id":       userID.String(),
			"username": conn.Username,
			"is_host":  conn.IsHost,
			"is_ready": lobby.ReadyStates[userID],
		})
	}
	return map[string]interface{}{
		"users": users,
	}
}

func (lobby *Lobby) getLobbyJoinPayloadUnsafe(userID uuid.UUID) map[string]interface{} {
	isHost := false
	username := "Unknown"
	if conn, ok := lobby.Connections[userID]; ok {
		isHost = conn.IsHost
		username = conn.Username
	}
	return map[string]interface{}{
		"type":         "lobby_update",
		"user_join":    userID.String(),
		"username":     username,
		"is_host":      isHost,
		"lobby_status": lobby.GetLobbyStatusPayloadUnsafe(),
	}
}

func (lobby *Lobby) getLobbyLeavePayloadUnsafe(userID uuid.UUID) map[string]interface{} {
	username := "Unknown"
	if conn, ok := lobby.Connections[userID]; ok {
		username = conn.Username
	}
	return map[string]interface{}{
		"type":         "lobby_update",
		"user_left":    userID.String(),
		"username":     username,
		"lobby_status": lobby.GetLobbyStatusPayloadUnsafe(),
	}
}

func (lobby *Lobby) getLobbyStatePayloadUnsafe(userID uuid.UUID) map[string]interface{} {
	isHost := false
	if conn, ok := lobby.Connections[userID]; ok {
		isHost = conn.IsHost
	}

	matchIDStr := ""
	if lobby.MatchID != uuid.Nil {
		matchIDStr = lobby.MatchID.String()
	}

	return map[string]interface{}{
		"type":         "lobby_state",
		"lobby_id":     lobby.ID.String(),
		"host_id":      lobby.HostUserID.String(),
		"your_id":      userID.String(),
		"your_is_host": isHost,
		"lobby_type":   lobby.Type,
		"in_game":      lobby.InGame,
		"match_id":     matchIDStr,
		"settings":     lobby.Settings,
		"lobby_status": lobby.GetLobbyStatusPayloadUnsafe(),
	}
}

// GetConnectionsUnsafe snapshots the current connections. Assumes lock is held.
func (lobby *Lobby) GetConnectionsUnsafe() []*LobbyConnection {
	conns := make([]*LobbyConnection, 0, len(lobby.Connections))
	for _, conn := range lobby.Connections {
		conns = append(conns, conn)
	}
	return conns
}
