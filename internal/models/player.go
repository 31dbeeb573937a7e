package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is a connected session participant. Game holdings live in the rules
// engine; this type only tracks identity and the live connection.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`
}
