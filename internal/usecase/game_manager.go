package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/connectn-backend/internal/apperror"
	"github.com/rocketscienceinc/connectn-backend/internal/entity"
	"github.com/rocketscienceinc/connectn-backend/internal/metrics"
	"github.com/rocketscienceinc/connectn-backend/internal/repository"
)

type roomRegistry interface {
	GetOrCreate(roomID string) *entity.Room
	Get(roomID string) (*entity.Room, bool)
	FindByConnection(connID string) (*entity.Room, bool)
	SeatOf(connID string) (string, bool)
	Bind(connID, roomID string)
	Unbind(connID string)
	Stats() repository.Stats
	EvictIdle(now time.Time, ttl time.Duration) []string
}

type presenceTracker interface {
	Announce(connID, userID string) []entity.Event
	MarkOffline(connID string) []entity.Event
	List() []entity.PresenceEntry
}

// publisher - delivers outbound messages to connections.
type publisher interface {
	SendTo(connID, action string, payload any)
	BroadcastRoom(roomID, action string, payload any)
	BroadcastRoomExcept(roomID, exceptConnID, action string, payload any)
	BroadcastAll(action string, payload any)
	Subscribe(connID, roomID string)
}

type snapshotStore interface {
	SaveRoom(ctx context.Context, room *entity.RoomSnapshot) error
	DeleteRoom(ctx context.Context, id string) error
	SavePresence(ctx context.Context, entries []entity.PresenceEntry) error
}

// GameManager - runs room transitions under the room lock and publishes their events in order.
// Rule violations publish nothing; the returned error only explains why.
type GameManager struct {
	logger *slog.Logger

	registry  roomRegistry
	presence  presenceTracker
	publisher publisher
	store     snapshotStore
	metrics   *metrics.Metrics

	presenceMu sync.Mutex
}

// NewGameManager - store and metrics may be nil.
func NewGameManager(
	logger *slog.Logger,
	registry roomRegistry,
	presence presenceTracker,
	publisher publisher,
	store snapshotStore,
	gameMetrics *metrics.Metrics,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game-manager"),

		registry:  registry,
		presence:  presence,
		publisher: publisher,
		store:     store,
		metrics:   gameMetrics,
	}
}

func (that *GameManager) SetUserID(ctx context.Context, connID, userID string) {
	that.presenceMu.Lock()
	defer that.presenceMu.Unlock()

	that.publish(that.presence.Announce(connID, userID))
	that.mirrorPresence(ctx)
}

func (that *GameManager) JoinRoom(ctx context.Context, connID, roomID, name, externalID string) error {
	log := that.logger.With("method", "JoinRoom", "room", roomID, "connection", connID)

	if seated, ok := that.registry.SeatOf(connID); ok {
		log.Debug("join rejected", "seatedIn", seated)
		return fmt.Errorf("%w: room %s", apperror.ErrAlreadySeated, seated)
	}

	room := that.lockRoom(roomID)
	defer room.Unlock()

	events, err := room.Join(connID, name, externalID)
	if err != nil {
		log.Debug("join rejected", "error", err)
		return fmt.Errorf("failed to join room: %w", err)
	}

	room.Touch(time.Now())
	that.registry.Bind(connID, roomID)
	that.publisher.Subscribe(connID, roomID)
	that.metrics.SetActiveRooms(that.registry.Stats().Rooms)

	that.publish(events)
	that.mirrorRoom(ctx, room)

	log.Info("player joined", "name", name, "players", len(room.Players))

	return nil
}

func (that *GameManager) Typing(ctx context.Context, connID, roomID string, typing bool, name string) error {
	room, err := that.lockExisting(roomID)
	if err != nil {
		return err
	}
	defer room.Unlock()

	events, err := room.SetTyping(connID, typing, name)
	if err != nil {
		that.logger.Debug("typing ignored", "room", roomID, "connection", connID, "error", err)
		return fmt.Errorf("failed to set typing: %w", err)
	}

	that.publish(events)

	return nil
}

func (that *GameManager) MakeMove(ctx context.Context, connID, roomID string, index int) error {
	log := that.logger.With("method", "MakeMove", "room", roomID, "connection", connID)

	room, err := that.lockExisting(roomID)
	if err != nil {
		that.metrics.ObserveMove("rejected")
		return err
	}
	defer room.Unlock()

	events, err := room.Move(connID, index)
	if err != nil {
		that.metrics.ObserveMove("rejected")
		log.Debug("move ignored", "index", index, "error", err)
		return fmt.Errorf("failed to make move: %w", err)
	}

	that.metrics.ObserveMove("accepted")
	room.Touch(time.Now())

	that.publish(events)
	that.mirrorRoom(ctx, room)

	return nil
}

// ResetBoard - handles both newGame and resetBoard requests.
func (that *GameManager) ResetBoard(ctx context.Context, connID, roomID string) error {
	room, err := that.lockExisting(roomID)
	if err != nil {
		return err
	}
	defer room.Unlock()

	if _, ok := room.Seat(connID); !ok {
		that.logger.Debug("reset ignored", "room", roomID, "connection", connID)
		return apperror.ErrPlayerNotSeated
	}

	room.Touch(time.Now())

	that.publish(room.Reset())
	that.mirrorRoom(ctx, room)

	return nil
}

// Disconnect - frees the seat of the connection, if any, and marks it offline.
func (that *GameManager) Disconnect(ctx context.Context, connID string) {
	log := that.logger.With("method", "Disconnect", "connection", connID)

	if room, ok := that.registry.FindByConnection(connID); ok {
		that.leave(ctx, log, room, connID)
	}

	that.presenceMu.Lock()
	defer that.presenceMu.Unlock()

	if events := that.presence.MarkOffline(connID); len(events) > 0 {
		that.publish(events)
		that.mirrorPresence(ctx)
	}
}

func (that *GameManager) leave(ctx context.Context, log *slog.Logger, room *entity.Room, connID string) {
	room.Lock()
	defer room.Unlock()

	player, events, err := room.Leave(connID)
	that.registry.Unbind(connID)
	if err != nil {
		log.Debug("no seat to free", "room", room.ID, "error", err)
		return
	}

	room.Touch(time.Now())

	that.publish(events)
	that.mirrorRoom(ctx, room)

	log.Info("player left", "room", room.ID, "name", player.Name, "players", len(room.Players))
}

func (that *GameManager) RoomSnapshot(roomID string) (*entity.RoomSnapshot, error) {
	room, err := that.lockExisting(roomID)
	if err != nil {
		return nil, err
	}
	defer room.Unlock()

	snapshot := room.Snapshot()

	return &snapshot, nil
}

func (that *GameManager) Stats() repository.Stats {
	return that.registry.Stats()
}

func (that *GameManager) Presence() []entity.PresenceEntry {
	return that.presence.List()
}

// EvictIdle - drops empty rooms idle for longer than ttl along with their snapshots.
func (that *GameManager) EvictIdle(ctx context.Context, now time.Time, ttl time.Duration) []string {
	log := that.logger.With("method", "EvictIdle")

	evicted := that.registry.EvictIdle(now, ttl)
	for _, id := range evicted {
		if that.store == nil {
			continue
		}

		if err := that.store.DeleteRoom(ctx, id); err != nil {
			log.Error("failed to delete room snapshot", "room", id, "error", err)
		}
	}

	if len(evicted) > 0 {
		that.metrics.SetActiveRooms(that.registry.Stats().Rooms)
		log.Info("evicted idle rooms", "count", len(evicted))
	}

	return evicted
}

// lockRoom - returns the live room locked, re-resolving it when eviction won the race.
func (that *GameManager) lockRoom(roomID string) *entity.Room {
	for {
		room := that.registry.GetOrCreate(roomID)
		room.Lock()

		if !room.IsEvicted() {
			return room
		}

		room.Unlock()
	}
}

func (that *GameManager) lockExisting(roomID string) (*entity.Room, error) {
	room, ok := that.registry.Get(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	room.Lock()
	if room.IsEvicted() {
		room.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return room, nil
}

func (that *GameManager) publish(events []entity.Event) {
	for _, event := range events {
		switch event.Target {
		case entity.TargetConnection:
			that.publisher.SendTo(event.ConnectionID, event.Action, event.Payload)
		case entity.TargetRoom:
			that.publisher.BroadcastRoom(event.RoomID, event.Action, event.Payload)
		case entity.TargetRoomExcept:
			that.publisher.BroadcastRoomExcept(event.RoomID, event.ConnectionID, event.Action, event.Payload)
		case entity.TargetAll:
			that.publisher.BroadcastAll(event.Action, event.Payload)
		}

		that.metrics.ObserveEvent(event.Action)

		if gameOver, ok := event.Payload.(entity.GameOverPayload); ok {
			if gameOver.Draw {
				that.metrics.ObserveRound("draw")
			} else {
				that.metrics.ObserveRound("win")
			}
		}
	}
}

func (that *GameManager) mirrorRoom(ctx context.Context, room *entity.Room) {
	if that.store == nil {
		return
	}

	snapshot := room.Snapshot()
	if err := that.store.SaveRoom(ctx, &snapshot); err != nil {
		that.logger.Error("failed to save room snapshot", "room", room.ID, "error", err)
	}
}

func (that *GameManager) mirrorPresence(ctx context.Context) {
	if that.store == nil {
		return
	}

	if err := that.store.SavePresence(ctx, that.presence.List()); err != nil {
		that.logger.Error("failed to save presence", "error", err)
	}
}
