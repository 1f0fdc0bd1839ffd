package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xoarena/backend/internal/apperror"
	"github.com/xoarena/backend/internal/entity"
)

const (
	roomKeyPrefix   = "room:"
	playerKeyPrefix = "roomByPlayer:"
)

// RoomRepository owns all active rooms. The player index makes the
// room-by-player lookup a single key read instead of a scan over rooms.
type RoomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	GetByPlayerID(ctx context.Context, playerID string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbRoom struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomRepository - rooms live in redis under room:<id> with a
// playerID -> roomID reverse index. The TTL is refreshed on every write,
// so abandoned rooms expire instead of accumulating forever.
func NewRoomRepository(client *redis.Client, ttl time.Duration) RoomRepository {
	return &dbRoom{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbRoom) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKeyPrefix+room.ID, roomJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	for _, playerID := range room.Players {
		if err = that.client.Set(ctx, playerKeyPrefix+playerID, room.ID, that.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set player index: %w", err)
		}
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+id).Result()

	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: id %s", apperror.ErrRoomNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var room entity.Room
	if err = json.Unmarshal([]byte(response), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

func (that *dbRoom) GetByPlayerID(ctx context.Context, playerID string) (*entity.Room, error) {
	roomID, err := that.client.Get(ctx, playerKeyPrefix+playerID).Result()

	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrNoActiveRoom, playerID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by player id: %w", err)
	}

	return that.GetByID(ctx, roomID)
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	room, err := that.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, playerID := range room.Players {
		if err = that.client.Del(ctx, playerKeyPrefix+playerID).Err(); err != nil {
			return fmt.Errorf("failed to delete player index: %w", err)
		}
	}

	if err = that.client.Del(ctx, roomKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete room by id: %w", err)
	}

	return nil
}
