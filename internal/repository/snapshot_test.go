package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connectn-backend/internal/entity"
	"github.com/rocketscienceinc/connectn-backend/testing/suite"
)

func newSnapshot() *entity.RoomSnapshot {
	room := entity.NewRoom("R1", entity.Classic, func() bool { return true })
	room.Touch(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	_, _ = room.Join("a", "Alice", "ext-a")
	_, _ = room.Join("b", "Bob", "ext-b")
	_, _ = room.Move("a", 4)

	snapshot := room.Snapshot()

	return &snapshot
}

func TestSnapshotRepository_Room(t *testing.T) {
	t.Run("SaveRoom_GetRoom", func(t *testing.T) {
		ctx, st := suite.New(t)

		repo := NewSnapshotRepository(st.Storage, time.Minute)

		// Given: a snapshot of a room mid-game
		snapshot := newSnapshot()

		// When: it is saved and read back
		require.NoError(t, repo.SaveRoom(ctx, snapshot))
		stored, err := repo.GetRoom(ctx, snapshot.ID)

		// Then: the stored copy matches
		require.NoError(t, err)
		assert.Equal(t, snapshot.Board, stored.Board)
		assert.Equal(t, snapshot.Points, stored.Points)
		assert.Equal(t, snapshot.CurrentPlayer, stored.CurrentPlayer)
		assert.Equal(t, snapshot.Players, stored.Players)
		assert.True(t, snapshot.UpdatedAt.Equal(stored.UpdatedAt))

		ttl, err := st.Storage.TTL(ctx, "room:R1").Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})

	t.Run("GetRoom_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		repo := NewSnapshotRepository(st.Storage, time.Minute)

		_, err := repo.GetRoom(ctx, "missing")

		require.ErrorIs(t, err, ErrRoomSnapshotNotFound)
	})

	t.Run("DeleteRoom", func(t *testing.T) {
		ctx, st := suite.New(t)

		repo := NewSnapshotRepository(st.Storage, time.Minute)
		snapshot := newSnapshot()
		require.NoError(t, repo.SaveRoom(ctx, snapshot))

		require.NoError(t, repo.DeleteRoom(ctx, snapshot.ID))

		_, err := repo.GetRoom(ctx, snapshot.ID)
		require.ErrorIs(t, err, ErrRoomSnapshotNotFound)
	})
}

func TestSnapshotRepository_Presence(t *testing.T) {
	t.Run("Empty list when nothing was saved", func(t *testing.T) {
		ctx, st := suite.New(t)

		entries, err := NewSnapshotRepository(st.Storage, time.Minute).ListPresence(ctx)

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("SavePresence_ListPresence", func(t *testing.T) {
		ctx, st := suite.New(t)

		repo := NewSnapshotRepository(st.Storage, time.Minute)

		// Given: two announced users, one gone offline
		entries := []entity.PresenceEntry{
			{UserID: "u1", Online: true},
			{UserID: "u2", Online: false},
		}

		// When: the list is saved
		require.NoError(t, repo.SavePresence(ctx, entries))

		// Then: it is read back in order
		stored, err := repo.ListPresence(ctx)
		require.NoError(t, err)
		assert.Equal(t, entries, stored)
	})
}
