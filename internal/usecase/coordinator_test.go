package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xoarena/backend/internal/apperror"
	"github.com/xoarena/backend/internal/entity"
	"github.com/xoarena/backend/internal/repository"
	"github.com/xoarena/backend/internal/tictactoe"
)

type event struct {
	action  string
	cell    int
	mark    string
	moverID string
	winner  string
	xWins   int
	oWins   int
}

// recordingNotifier captures coordinator events in emission order.
type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (that *recordingNotifier) record(e event) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.events = append(that.events, e)
}

func (that *recordingNotifier) PlayerJoined(_ *entity.Room, playerID string) {
	that.record(event{action: "playerJoined", moverID: playerID})
}

func (that *recordingNotifier) GameStarted(_ *entity.Room) {
	that.record(event{action: "gameStarted"})
}

func (that *recordingNotifier) MoveAccepted(_ *entity.Room, cell int, mark, moverID string) {
	that.record(event{action: "serverRecdMove", cell: cell, mark: mark, moverID: moverID})
}

func (that *recordingNotifier) GameOver(_ *entity.Room, winner string) {
	that.record(event{action: "gameOver", winner: winner})
}

func (that *recordingNotifier) LeaderboardUpdated(room *entity.Room) {
	that.record(event{action: "updateLeaderboard", xWins: room.XWins, oWins: room.OWins})
}

func (that *recordingNotifier) all() []event {
	that.mu.Lock()
	defer that.mu.Unlock()
	return append([]event(nil), that.events...)
}

// newTestCoordinator runs with zero delays so deferred announcements
// fire inline and event order is deterministic.
func newTestCoordinator(startDelay, evaluateDelay time.Duration) (*Coordinator, repository.RoomRepository, *recordingNotifier) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.NewMemoryRoomRepository()
	notifier := &recordingNotifier{}

	return NewCoordinator(logger, repo, notifier, startDelay, evaluateDelay), repo, notifier
}

// startedRoom creates a room with both players seated.
func startedRoom(t *testing.T, coordinator *Coordinator) *entity.Room {
	t.Helper()
	ctx := context.Background()

	room, err := coordinator.CreateRoom(ctx, "creator")
	require.NoError(t, err)
	require.NoError(t, coordinator.JoinRoom(ctx, room.ID, "guest"))

	return room
}

func TestCoordinator_CreateRoom(t *testing.T) {
	ctx := context.Background()
	coordinator, repo, _ := newTestCoordinator(0, 0)

	// When: a player creates a room
	room, err := coordinator.CreateRoom(ctx, "creator")

	// Then: the creator is seated as the only player and the room is stored
	require.NoError(t, err)
	assert.Len(t, room.ID, 8)
	assert.Equal(t, []string{"creator"}, room.Players)
	assert.True(t, room.TurnIsX)

	stored, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room, stored)
}

func TestCoordinator_JoinRoom(t *testing.T) {
	t.Run("Second join announces the player and starts the game", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, notifier := newTestCoordinator(0, 0)

		room, err := coordinator.CreateRoom(ctx, "creator")
		require.NoError(t, err)

		// When: the second player joins
		err = coordinator.JoinRoom(ctx, room.ID, "guest")

		// Then: the join and the start are announced in order
		require.NoError(t, err)
		require.Equal(t, []event{
			{action: "playerJoined", moverID: "guest"},
			{action: "gameStarted"},
		}, notifier.all())
	})

	t.Run("Join on a missing room yields ErrRoomNotFound", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, _ := newTestCoordinator(0, 0)

		err := coordinator.JoinRoom(ctx, "missing1", "guest")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Third join is rejected and the room is untouched", func(t *testing.T) {
		ctx := context.Background()
		coordinator, repo, _ := newTestCoordinator(0, 0)
		room := startedRoom(t, coordinator)

		// When: a third player tries to join
		err := coordinator.JoinRoom(ctx, room.ID, "intruder")

		// Then: the join fails and the player list is unchanged
		require.ErrorIs(t, err, apperror.ErrRoomFull)

		stored, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"creator", "guest"}, stored.Players)
	})

	t.Run("Repeated join by a member does not wipe an active board", func(t *testing.T) {
		ctx := context.Background()
		coordinator, repo, _ := newTestCoordinator(0, 0)
		room := startedRoom(t, coordinator)

		require.NoError(t, coordinator.ApplyMove(ctx, "creator", 0))

		// When: a member re-sends the join
		err := coordinator.JoinRoom(ctx, room.ID, "guest")

		// Then: the join is acknowledged and mid-game state survives
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"creator", "guest"}, stored.Players)
		assert.Equal(t, tictactoe.MarkX, stored.Board[0])
	})
}

func TestCoordinator_ApplyMove(t *testing.T) {
	t.Run("Moves echo X then O in order", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, notifier := newTestCoordinator(0, 0)
		startedRoom(t, coordinator)

		// When: both players move once
		require.NoError(t, coordinator.ApplyMove(ctx, "creator", 0))
		require.NoError(t, coordinator.ApplyMove(ctx, "guest", 1))

		// Then: the echoes carry X then O
		events := notifier.all()[2:] // skip join + start
		require.Equal(t, []event{
			{action: "serverRecdMove", cell: 0, mark: tictactoe.MarkX, moverID: "creator"},
			{action: "serverRecdMove", cell: 1, mark: tictactoe.MarkO, moverID: "guest"},
		}, events)
	})

	t.Run("Mover without a room is a silent no-op", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, notifier := newTestCoordinator(0, 0)

		err := coordinator.ApplyMove(ctx, "stranger", 0)

		require.ErrorIs(t, err, apperror.ErrNoActiveRoom)
		assert.Empty(t, notifier.all())
	})

	t.Run("Move before the second player joins is rejected", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, _ := newTestCoordinator(0, 0)

		_, err := coordinator.CreateRoom(ctx, "creator")
		require.NoError(t, err)

		err = coordinator.ApplyMove(ctx, "creator", 0)

		require.ErrorIs(t, err, apperror.ErrRoomNotReady)
	})

	t.Run("Occupied cell is rejected without mutation or broadcast", func(t *testing.T) {
		ctx := context.Background()
		coordinator, repo, notifier := newTestCoordinator(0, 0)
		room := startedRoom(t, coordinator)

		require.NoError(t, coordinator.ApplyMove(ctx, "creator", 0))
		eventsBefore := len(notifier.all())

		// When: the occupied cell is played again
		err := coordinator.ApplyMove(ctx, "guest", 0)

		// Then: the move fails, nothing is broadcast and the turn holds
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Len(t, notifier.all(), eventsBefore)

		stored, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, tictactoe.MarkX, stored.Board[0])
		assert.False(t, stored.TurnIsX)
	})

	t.Run("Any room member may submit the current turn", func(t *testing.T) {
		// The mover's identity is not matched against the turn; the mark
		// placed is always the one the server thinks is up.
		ctx := context.Background()
		coordinator, _, notifier := newTestCoordinator(0, 0)
		startedRoom(t, coordinator)

		require.NoError(t, coordinator.ApplyMove(ctx, "guest", 0))

		events := notifier.all()
		last := events[len(events)-1]
		assert.Equal(t, tictactoe.MarkX, last.mark)
		assert.Equal(t, "guest", last.moverID)
	})

	t.Run("Moves are dropped between a finishing move and its evaluation", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, _ := newTestCoordinator(0, time.Hour)
		startedRoom(t, coordinator)

		// Given: X completes the top row while evaluation is still pending
		for _, move := range []struct {
			mover string
			cell  int
		}{
			{"creator", 0}, {"guest", 3}, {"creator", 1}, {"guest", 4}, {"creator", 2},
		} {
			require.NoError(t, coordinator.ApplyMove(ctx, move.mover, move.cell))
		}

		// When: another move arrives in the window
		err := coordinator.ApplyMove(ctx, "guest", 5)

		// Then: the move is dropped
		require.ErrorIs(t, err, apperror.ErrRoundOver)
	})
}

func TestCoordinator_RoundOutcomes(t *testing.T) {
	t.Run("Row win announces the winner and scores X", func(t *testing.T) {
		ctx := context.Background()
		coordinator, repo, notifier := newTestCoordinator(0, 0)
		room := startedRoom(t, coordinator)

		// When: X fills the top row with O interleaved elsewhere
		for _, move := range []struct {
			mover string
			cell  int
		}{
			{"creator", 0}, {"guest", 3}, {"creator", 1}, {"guest", 4}, {"creator", 2},
		} {
			require.NoError(t, coordinator.ApplyMove(ctx, move.mover, move.cell))
		}

		// Then: the round ends with winner X and the leaderboard reads 1/0
		events := notifier.all()
		require.Equal(t, []event{
			{action: "gameOver", winner: tictactoe.MarkX},
			{action: "updateLeaderboard", xWins: 1, oWins: 0},
		}, events[len(events)-2:])

		// Then: the room is reset for the next round, scores kept
		stored, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, [9]string{}, stored.Board)
		assert.True(t, stored.TurnIsX)
		assert.Equal(t, 1, stored.XWins)
		assert.Equal(t, 0, stored.OWins)
	})

	t.Run("Full board without a line is a draw and scores nobody", func(t *testing.T) {
		ctx := context.Background()
		coordinator, repo, notifier := newTestCoordinator(0, 0)
		room := startedRoom(t, coordinator)

		// When: all 9 cells fill with no completed line
		for _, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
			require.NoError(t, coordinator.ApplyMove(ctx, "creator", cell))
		}

		// Then: game over carries no winner and the counters are unchanged
		events := notifier.all()
		require.Equal(t, []event{
			{action: "gameOver", winner: tictactoe.EmptyCell},
			{action: "updateLeaderboard", xWins: 0, oWins: 0},
		}, events[len(events)-2:])

		stored, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, [9]string{}, stored.Board)
		assert.True(t, stored.TurnIsX)
	})

	t.Run("Counters accumulate across rounds in the same room", func(t *testing.T) {
		ctx := context.Background()
		coordinator, repo, _ := newTestCoordinator(0, 0)
		room := startedRoom(t, coordinator)

		winRow := []struct {
			mover string
			cell  int
		}{
			{"creator", 0}, {"guest", 3}, {"creator", 1}, {"guest", 4}, {"creator", 2},
		}

		// When: X wins two rounds back to back
		for i := 0; i < 2; i++ {
			for _, move := range winRow {
				require.NoError(t, coordinator.ApplyMove(ctx, move.mover, move.cell))
			}
		}

		stored, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.XWins)
		assert.Equal(t, 0, stored.OWins)
	})
}
