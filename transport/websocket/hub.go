package websocket

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/connectn-backend/internal/metrics"
)

type connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// Hub - connection and room membership tables. Sends never block: a connection whose
// buffer is full gets closed and its read loop runs the disconnect.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	conns  map[string]connection
	rooms  map[string]map[string]struct{}
	roomOf map[string]string
}

func NewHub(logger *slog.Logger, hubMetrics *metrics.Metrics) *Hub {
	return &Hub{
		logger:  logger.With("component", "hub"),
		metrics: hubMetrics,
		conns:   make(map[string]connection),
		rooms:   make(map[string]map[string]struct{}),
		roomOf:  make(map[string]string),
	}
}

func (that *Hub) Register(conn connection) {
	that.mu.Lock()
	that.conns[conn.ID()] = conn
	count := len(that.conns)
	that.mu.Unlock()

	that.metrics.IncConnections()
	that.logger.Debug("connection registered", "connection", conn.ID(), "connections", count)
}

// Unregister - forgets the connection and its room subscription.
func (that *Hub) Unregister(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.conns[connID]; !ok {
		return
	}

	delete(that.conns, connID)
	that.leaveRoom(connID)
	that.metrics.DecConnections()

	that.logger.Debug("connection unregistered", "connection", connID, "connections", len(that.conns))
}

// Subscribe - a connection listens to at most one room.
func (that *Hub) Subscribe(connID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.conns[connID]; !ok {
		return
	}

	that.leaveRoom(connID)

	members, ok := that.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		that.rooms[roomID] = members
	}

	members[connID] = struct{}{}
	that.roomOf[connID] = roomID
}

func (that *Hub) leaveRoom(connID string) {
	roomID, ok := that.roomOf[connID]
	if !ok {
		return
	}

	delete(that.roomOf, connID)
	delete(that.rooms[roomID], connID)

	if len(that.rooms[roomID]) == 0 {
		delete(that.rooms, roomID)
	}
}

func (that *Hub) SendTo(connID, action string, payload any) {
	data, ok := that.encode(action, payload)
	if !ok {
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	if conn, ok := that.conns[connID]; ok {
		that.deliver(conn, data)
	}
}

func (that *Hub) BroadcastRoom(roomID, action string, payload any) {
	that.BroadcastRoomExcept(roomID, "", action, payload)
}

func (that *Hub) BroadcastRoomExcept(roomID, exceptConnID, action string, payload any) {
	data, ok := that.encode(action, payload)
	if !ok {
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for connID := range that.rooms[roomID] {
		if connID == exceptConnID {
			continue
		}

		that.deliver(that.conns[connID], data)
	}
}

func (that *Hub) BroadcastAll(action string, payload any) {
	data, ok := that.encode(action, payload)
	if !ok {
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, conn := range that.conns {
		that.deliver(conn, data)
	}
}

type HubStats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

func (that *Hub) Stats() HubStats {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return HubStats{Connections: len(that.conns), Rooms: len(that.rooms)}
}

func (that *Hub) deliver(conn connection, data []byte) {
	if err := conn.Send(data); err != nil {
		that.logger.Warn("dropping slow connection", "connection", conn.ID(), "error", err)

		if err = conn.Close(); err != nil {
			that.logger.Debug("failed to close connection", "connection", conn.ID(), "error", err)
		}
	}
}

func (that *Hub) encode(action string, payload any) ([]byte, bool) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return nil, false
	}

	return data, true
}

func (that *Hub) ConnectionCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.conns)
}
