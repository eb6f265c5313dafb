package repository

import (
	"sync"
	"time"

	"github.com/rocketscienceinc/connectn-backend/internal/entity"
)

// RoomRegistry - in-process table of rooms plus a connection -> room index.
// Lock order is room -> registry: callers may Bind/Unbind while holding a room lock,
// the registry itself only ever TryLocks rooms.
type RoomRegistry struct {
	mu sync.RWMutex

	rules entity.Rules
	coin  func() bool

	rooms map[string]*entity.Room
	seats map[string]string
}

func NewRoomRegistry(rules entity.Rules, coin func() bool) *RoomRegistry {
	return &RoomRegistry{
		rules: rules,
		coin:  coin,
		rooms: make(map[string]*entity.Room),
		seats: make(map[string]string),
	}
}

func (that *RoomRegistry) GetOrCreate(roomID string) *entity.Room {
	that.mu.RLock()
	room, ok := that.rooms[roomID]
	that.mu.RUnlock()

	if ok {
		return room
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if room, ok = that.rooms[roomID]; ok {
		return room
	}

	room = entity.NewRoom(roomID, that.rules, that.coin)
	that.rooms[roomID] = room

	return room
}

func (that *RoomRegistry) Get(roomID string) (*entity.Room, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[roomID]

	return room, ok
}

// Bind - records that connID holds a seat in roomID.
func (that *RoomRegistry) Bind(connID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.seats[connID] = roomID
}

func (that *RoomRegistry) Unbind(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.seats, connID)
}

// SeatOf - returns the room id the connection is seated in.
func (that *RoomRegistry) SeatOf(connID string) (string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	roomID, ok := that.seats[connID]

	return roomID, ok
}

func (that *RoomRegistry) FindByConnection(connID string) (*entity.Room, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	roomID, ok := that.seats[connID]
	if !ok {
		return nil, false
	}

	room, ok := that.rooms[roomID]

	return room, ok
}

type Stats struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
}

func (that *RoomRegistry) Stats() Stats {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return Stats{Rooms: len(that.rooms), Players: len(that.seats)}
}

// EvictIdle - drops rooms that have had no players for longer than ttl and returns their ids.
// Busy rooms are skipped rather than waited on.
func (that *RoomRegistry) EvictIdle(now time.Time, ttl time.Duration) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	var evicted []string
	for id, room := range that.rooms {
		if !room.TryLock() {
			continue
		}

		if room.IsEmpty() && now.Sub(room.UpdatedAt) > ttl {
			room.MarkEvicted()
			delete(that.rooms, id)
			evicted = append(evicted, id)
		}

		room.Unlock()
	}

	return evicted
}
