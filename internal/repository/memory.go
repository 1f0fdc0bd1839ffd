package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/xoarena/backend/internal/apperror"
	"github.com/xoarena/backend/internal/entity"
)

type memoryRoom struct {
	mu       sync.RWMutex
	rooms    map[string]*entity.Room
	byPlayer map[string]string
}

// NewMemoryRoomRepository - a process-local room store with the same
// contract as the redis one. Rooms are stored and returned by value so
// callers only observe state that went through CreateOrUpdate, exactly
// as with the serialized redis representation.
func NewMemoryRoomRepository() RoomRepository {
	return &memoryRoom{
		rooms:    make(map[string]*entity.Room),
		byPlayer: make(map[string]string),
	}
}

func (that *memoryRoom) CreateOrUpdate(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = copyRoom(room)
	for _, playerID := range room.Players {
		that.byPlayer[playerID] = room.ID
	}

	return nil
}

func (that *memoryRoom) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", apperror.ErrRoomNotFound, id)
	}

	return copyRoom(room), nil
}

func (that *memoryRoom) GetByPlayerID(ctx context.Context, playerID string) (*entity.Room, error) {
	that.mu.RLock()
	roomID, ok := that.byPlayer[playerID]
	that.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrNoActiveRoom, playerID)
	}

	return that.GetByID(ctx, roomID)
}

func (that *memoryRoom) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[id]
	if !ok {
		return fmt.Errorf("%w: id %s", apperror.ErrRoomNotFound, id)
	}

	for _, playerID := range room.Players {
		delete(that.byPlayer, playerID)
	}
	delete(that.rooms, id)

	return nil
}

func copyRoom(room *entity.Room) *entity.Room {
	clone := *room
	clone.Players = append([]string(nil), room.Players...)

	return &clone
}
