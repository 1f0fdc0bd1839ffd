package entity

import (
	"fmt"

	"github.com/xoarena/backend/internal/apperror"
	"github.com/xoarena/backend/internal/tictactoe"
)

const maxPlayers = 2

// Room is a single match session: up to two players, one board and the
// running win counters for the room's lifetime.
type Room struct {
	ID      string    `json:"id"`
	Players []string  `json:"players"`
	Board   [9]string `json:"board"`
	TurnIsX bool      `json:"turn_is_x"`
	XWins   int       `json:"x_wins"`
	OWins   int       `json:"o_wins"`
}

// NewRoom creates a room with the creator seated as the first player.
// The first entrant plays X, the second O.
func NewRoom(id, creatorID string) *Room {
	return &Room{
		ID:      id,
		Players: []string{creatorID},
		TurnIsX: true,
	}
}

// AddPlayer seats a player. A third join is rejected without touching
// the room.
func (that *Room) AddPlayer(playerID string) error {
	if len(that.Players) >= maxPlayers {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.ID)
	}

	that.Players = append(that.Players, playerID)

	return nil
}

func (that *Room) IsFull() bool {
	return len(that.Players) == maxPlayers
}

func (that *Room) HasPlayer(playerID string) bool {
	for _, id := range that.Players {
		if id == playerID {
			return true
		}
	}

	return false
}

// CurrentMark is the mark that plays next.
func (that *Room) CurrentMark() string {
	if that.TurnIsX {
		return tictactoe.MarkX
	}

	return tictactoe.MarkO
}

// ApplyMove writes the current turn's mark into the cell and flips the
// turn. The mark played is always derived from TurnIsX, never from the
// caller. Returns the mark that was placed.
func (that *Room) ApplyMove(cell int) (string, error) {
	if cell < 0 || cell >= len(that.Board) {
		return "", fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Board[cell] != tictactoe.EmptyCell {
		return "", fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	mark := that.CurrentMark()
	that.Board[cell] = mark
	that.TurnIsX = !that.TurnIsX

	return mark, nil
}

// Reset zeroes the board and gives the turn back to X. A non-empty
// winner mark bumps that player's counter; a draw bumps neither.
func (that *Room) Reset(winner string) {
	that.Board = [9]string{}
	that.TurnIsX = true

	switch winner {
	case tictactoe.MarkX:
		that.XWins++
	case tictactoe.MarkO:
		that.OWins++
	}
}
