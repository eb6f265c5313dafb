package service

import (
	"sync"

	"github.com/rocketscienceinc/connectn-backend/internal/entity"
)

// PresenceService - global connection -> user online table, independent of rooms.
type PresenceService interface {
	Announce(connID, userID string) []entity.Event
	MarkOffline(connID string) []entity.Event
	List() []entity.PresenceEntry
}

type presenceService struct {
	mu sync.Mutex

	order   []string
	entries map[string]*entity.PresenceEntry
}

func NewPresenceService() PresenceService {
	return &presenceService{
		entries: make(map[string]*entity.PresenceEntry),
	}
}

// Announce - upserts the entry as online and returns the full list for every connection.
func (that *presenceService) Announce(connID, userID string) []entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.entries[connID]
	if !ok {
		entry = &entity.PresenceEntry{ConnectionID: connID}
		that.entries[connID] = entry
		that.order = append(that.order, connID)
	}

	entry.UserID = userID
	entry.Online = true

	return []entity.Event{entity.ConnectedUsers(that.list())}
}

// MarkOffline - keeps the entry but flips it offline. Unknown connections emit nothing.
func (that *presenceService) MarkOffline(connID string) []entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.entries[connID]
	if !ok {
		return nil
	}

	entry.Online = false

	return []entity.Event{entity.ConnectedUsers(that.list())}
}

func (that *presenceService) List() []entity.PresenceEntry {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.list()
}

func (that *presenceService) list() []entity.PresenceEntry {
	entries := make([]entity.PresenceEntry, 0, len(that.order))
	for _, connID := range that.order {
		entries = append(entries, *that.entries[connID])
	}

	return entries
}
