package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connectn-backend/internal/entity"
)

func newRegistry() *RoomRegistry {
	return NewRoomRegistry(entity.Classic, func() bool { return true })
}

func TestRoomRegistry_GetOrCreate(t *testing.T) {
	t.Run("Creates a room on first use", func(t *testing.T) {
		// Given: an empty registry
		registry := newRegistry()

		// When: a room is requested
		room := registry.GetOrCreate("R1")

		// Then: a fresh room sized by the configured rules is stored
		require.NotNil(t, room)
		assert.Equal(t, "R1", room.ID)
		assert.Len(t, room.Board, 9)
		assert.Empty(t, room.Players)
		assert.Empty(t, room.CurrentPlayer)
		assert.Empty(t, room.Points)

		stored, ok := registry.Get("R1")
		require.True(t, ok)
		assert.Same(t, room, stored)
	})

	t.Run("Returns the existing room", func(t *testing.T) {
		registry := newRegistry()

		first := registry.GetOrCreate("R1")
		second := registry.GetOrCreate("R1")

		assert.Same(t, first, second)
		assert.Equal(t, 1, registry.Stats().Rooms)
	})

	t.Run("Concurrent callers share one room", func(t *testing.T) {
		registry := newRegistry()

		var wg sync.WaitGroup
		rooms := make([]*entity.Room, 16)
		for i := range rooms {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rooms[i] = registry.GetOrCreate("R1")
			}(i)
		}
		wg.Wait()

		for _, room := range rooms {
			assert.Same(t, rooms[0], room)
		}
	})

	t.Run("Get misses unknown rooms", func(t *testing.T) {
		_, ok := newRegistry().Get("nope")

		assert.False(t, ok)
	})
}

func TestRoomRegistry_Seats(t *testing.T) {
	// Given: a connection bound to a room
	registry := newRegistry()
	room := registry.GetOrCreate("R1")
	registry.Bind("conn-1", "R1")

	// When: the connection is looked up
	found, ok := registry.FindByConnection("conn-1")

	// Then: its room is returned
	require.True(t, ok)
	assert.Same(t, room, found)

	roomID, ok := registry.SeatOf("conn-1")
	require.True(t, ok)
	assert.Equal(t, "R1", roomID)
	assert.Equal(t, Stats{Rooms: 1, Players: 1}, registry.Stats())

	// And: after unbinding it is gone
	registry.Unbind("conn-1")
	_, ok = registry.FindByConnection("conn-1")
	assert.False(t, ok)
}

func TestRoomRegistry_EvictIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Evicts empty rooms idle past the ttl", func(t *testing.T) {
		// Given: an empty room last touched an hour ago
		registry := newRegistry()
		room := registry.GetOrCreate("R1")
		room.Touch(now.Add(-time.Hour))

		// When: eviction runs with a ten minute ttl
		evicted := registry.EvictIdle(now, 10*time.Minute)

		// Then: the room is dropped and marked evicted
		assert.Equal(t, []string{"R1"}, evicted)
		assert.True(t, room.IsEvicted())
		_, ok := registry.Get("R1")
		assert.False(t, ok)
	})

	t.Run("Keeps occupied rooms", func(t *testing.T) {
		registry := newRegistry()
		room := registry.GetOrCreate("R1")
		_, err := room.Join("a", "Alice", "ext-a")
		require.NoError(t, err)
		room.Touch(now.Add(-time.Hour))

		assert.Empty(t, registry.EvictIdle(now, 10*time.Minute))
		assert.False(t, room.IsEvicted())
	})

	t.Run("Keeps recently used rooms", func(t *testing.T) {
		registry := newRegistry()
		registry.GetOrCreate("R1").Touch(now.Add(-time.Minute))

		assert.Empty(t, registry.EvictIdle(now, 10*time.Minute))
	})

	t.Run("Skips rooms that are locked", func(t *testing.T) {
		registry := newRegistry()
		room := registry.GetOrCreate("R1")
		room.Touch(now.Add(-time.Hour))

		room.Lock()
		evicted := registry.EvictIdle(now, 10*time.Minute)
		room.Unlock()

		assert.Empty(t, evicted)
		_, ok := registry.Get("R1")
		assert.True(t, ok)
	})
}
