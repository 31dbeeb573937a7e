// internal/lobby/lobby_store.go
package lobby

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// LobbyStore holds the active ephemeral lobbies in memory.
type LobbyStore struct {
	mu      sync.Mutex
	lobbies map[uuid.UUID]*Lobby
}

// NewLobbyStore returns an empty LobbyStore.
func NewLobbyStore() *LobbyStore {
	return &LobbyStore{
		lobbies: make(map[uuid.UUID]*Lobby),
	}
}

// AddLobby registers a lobby. Set the lobby's OnEmpty callback before adding
// so the store cleans up when the last user leaves.
func (s *LobbyStore) AddLobby(lobby *Lobby) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lobbies[lobby.ID]; exists {
		log.Printf("LobbyStore WARNING: Attempted to add lobby %s which already exists.", lobby.ID)
		return
	}
	s.lobbies[lobby.ID] = lobby
	log.Printf("LobbyStore: Added lobby %s.", lobby.ID)
}

// DeleteLobby removes a lobby by ID, typically via the OnEmpty callback.
func (s *LobbyStore) DeleteLobby(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lobbies[id]; exists {
		delete(s.lobbies, id)
		log.Printf("LobbyStore: Deleted lobby %s.", id)
	} else {
		log.Printf("LobbyStore WARNING: Attempted to delete non-existent lobby %s.", id)
	}
}

// GetLobby looks up a lobby by ID.
func (s *LobbyStore) GetLobby(id uuid.UUID) (*Lobby, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[id]
	return l, ok
}

// GetLobbies returns a copy of the active lobby map, so callers can iterate
// without racing concurrent store mutations.
func (s *LobbyStore) GetLobbies() map[uuid.UUID]*Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobbiesCopy := make(map[uuid.UUID]*Lobby, len(s.lobbies))
	for k, v := range s.lobbies {
		lobbiesCopy[k] = v
	}
	return lobbiesCopy
}
