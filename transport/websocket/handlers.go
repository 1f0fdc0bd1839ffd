package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xoarena/backend/internal/apperror"
)

func (that *Server) handleCreateRoom(ctx context.Context, playerID string, _ json.RawMessage) error {
	room, err := that.coordinator.CreateRoom(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.hub.SendTo(playerID, ActionRoomCreated, RoomCreatedPayload{RoomID: room.ID})

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, playerID string, payload json.RawMessage) error {
	var req JoinRoomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if req.RoomID == "" {
		return errors.New("roomId is required")
	}

	err := that.coordinator.JoinRoom(ctx, req.RoomID, playerID)

	// A missing room and a full room are not distinguished externally.
	if errors.Is(err, apperror.ErrRoomNotFound) || errors.Is(err, apperror.ErrRoomFull) {
		that.hub.SendTo(playerID, ActionRoomNotAvailable, nil)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return nil
}

func (that *Server) handlePlayerMoved(ctx context.Context, playerID string, payload json.RawMessage) error {
	log := that.logger.With("method", "handlePlayerMoved", "playerID", playerID)

	var req MovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if req.SqIdx == nil {
		return errors.New("sqIdx is required")
	}

	// Clients name the mover themselves; a missing moverId falls back to
	// the connection's own identity.
	moverID := req.MoverID
	if moverID == "" {
		moverID = playerID
	}

	err := that.coordinator.ApplyMove(ctx, moverID, *req.SqIdx)

	// Rejected moves are dropped without a client-visible error: the
	// board and turn are untouched and nothing is broadcast.
	switch {
	case errors.Is(err, apperror.ErrNoActiveRoom),
		errors.Is(err, apperror.ErrRoomNotReady),
		errors.Is(err, apperror.ErrRoundOver),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrInvalidCell):
		log.Info("move rejected", "error", err)
		return nil
	case err != nil:
		return fmt.Errorf("failed to apply move: %w", err)
	}

	return nil
}
