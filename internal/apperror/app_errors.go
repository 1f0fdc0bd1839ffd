package apperror

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrRoomNotReady = errors.New("room is waiting for a second player")
	ErrNoActiveRoom = errors.New("player is not in an active room")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrRoundOver    = errors.New("round is already over")
)
