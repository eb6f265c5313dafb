package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/connectn-backend/internal/entity"
)

var ErrRoomSnapshotNotFound = errors.New("room snapshot not found")

const presenceKey = "presence"

// SnapshotRepository - write-through mirror of live rooms and presence for external readers.
// Nothing is loaded back from it on start.
type SnapshotRepository interface {
	SaveRoom(ctx context.Context, room *entity.RoomSnapshot) error
	GetRoom(ctx context.Context, id string) (*entity.RoomSnapshot, error)
	DeleteRoom(ctx context.Context, id string) error

	SavePresence(ctx context.Context, entries []entity.PresenceEntry) error
	ListPresence(ctx context.Context) ([]entity.PresenceEntry, error)
}

type dbSnapshot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotRepository(client *redis.Client, ttl time.Duration) SnapshotRepository {
	return &dbSnapshot{
		client: client,
		ttl:    ttl,
	}
}

func roomKey(id string) string {
	return "room:" + id
}

func (that *dbSnapshot) SaveRoom(ctx context.Context, room *entity.RoomSnapshot) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKey(room.ID), roomJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbSnapshot) GetRoom(ctx context.Context, id string) (*entity.RoomSnapshot, error) {
	response, err := that.client.Get(ctx, roomKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomSnapshotNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var room entity.RoomSnapshot
	if err = json.Unmarshal([]byte(response), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

func (that *dbSnapshot) DeleteRoom(ctx context.Context, id string) error {
	if err := that.client.Del(ctx, roomKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete room by id: %w", err)
	}

	return nil
}

func (that *dbSnapshot) SavePresence(ctx context.Context, entries []entity.PresenceEntry) error {
	presenceJSON, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal presence: %w", err)
	}

	if err = that.client.Set(ctx, presenceKey, presenceJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set presence: %w", err)
	}

	return nil
}

func (that *dbSnapshot) ListPresence(ctx context.Context) ([]entity.PresenceEntry, error) {
	response, err := that.client.Get(ctx, presenceKey).Result()
	if errors.Is(err, redis.Nil) {
		return []entity.PresenceEntry{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	var entries []entity.PresenceEntry
	if err = json.Unmarshal([]byte(response), &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence: %w", err)
	}

	return entries, nil
}
