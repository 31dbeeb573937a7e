package lobby

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLobby(t *testing.T, numUsers int) (*Lobby, []uuid.UUID) {
	t.Helper()
	host := uuid.New()
	lob := NewLobbyWithDefaults(host)

	ids := make([]uuid.UUID, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		id := uuid.New()
		if i == 0 {
			id = host
		}
		conn := &LobbyConnection{
			UserID:  id,
			OutChan: make(chan map[string]interface{}, 16),
			IsHost:  id == host,
		}
		lob.Users[id] = true
		lob.Connections[id] = conn
		lob.ReadyStates[id] = false
		ids = append(ids, id)
	}
	return lob, ids
}

func TestMarkUserReadySignalsAutoStart(t *testing.T) {
	lob, ids := newTestLobby(t, 2)
	lob.Mu.Lock()
	defer lob.Mu.Unlock()

	assert.False(t, lob.MarkUserReadyUnsafe(ids[0]))
	assert.True(t, lob.MarkUserReadyUnsafe(ids[1]))

	// Repeat ready is a no-op.
	assert.False(t, lob.MarkUserReadyUnsafe(ids[1]))

	lob.MarkUserUnreadyUnsafe(ids[0])
	assert.False(t, lob.AreAllReadyUnsafe())
}

func TestAreAllReadyNeedsTwoPlayers(t *testing.T) {
	lob, ids := newTestLobby(t, 1)
	lob.Mu.Lock()
	defer lob.Mu.Unlock()

	lob.ReadyStates[ids[0]] = true
	assert.False(t, lob.AreAllReadyUnsafe())
}

func TestPrivateLobbyRejectsUninvited(t *testing.T) {
	lob, _ := newTestLobby(t, 1)
	stranger := &LobbyConnection{
		UserID:  uuid.New(),
		OutChan: make(chan map[string]interface{}, 1),
	}

	err := lob.AddConnection(stranger.UserID, stranger)
	require.Error(t, err)
	assert.NotContains(t, lob.Connections, stranger.UserID)
}

func TestRemoveLastUserFiresOnEmpty(t *testing.T) {
	lob, ids := newTestLobby(t, 2)
	var emptied []uuid.UUID
	lob.OnEmpty = func(id uuid.UUID) {
		emptied = append(emptied, id)
	}

	lob.RemoveUser(ids[0])
	assert.Empty(t, emptied)

	lob.RemoveUser(ids[1])
	require.Len(t, emptied, 1)
	assert.Equal(t, lob.ID, emptied[0])
}

func TestInviteMarksUserPending(t *testing.T) {
	lob, _ := newTestLobby(t, 1)
	invited := uuid.New()

	lob.Mu.Lock()
	lob.InviteUser(invited)
	joined, exists := lob.Users[invited]
	lob.Mu.Unlock()

	require.True(t, exists)
	assert.False(t, joined)
}
