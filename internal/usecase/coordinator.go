package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xoarena/backend/internal/apperror"
	"github.com/xoarena/backend/internal/entity"
	"github.com/xoarena/backend/internal/pkg"
	"github.com/xoarena/backend/internal/tictactoe"
)

type roomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	GetByPlayerID(ctx context.Context, playerID string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
}

// Notifier delivers room events to connected clients. Delivery to an
// absent player is a no-op; the coordinator never learns about it.
type Notifier interface {
	PlayerJoined(room *entity.Room, playerID string)
	GameStarted(room *entity.Room)
	MoveAccepted(room *entity.Room, cell int, mark, moverID string)
	GameOver(room *entity.Room, winner string)
	LeaderboardUpdated(room *entity.Room)
}

// Coordinator owns the per-message protocol: room creation and joining,
// turn arbitration and game-over detection. All outcome decisions are
// made here, never on the client.
type Coordinator struct {
	logger   *slog.Logger
	rooms    roomRepository
	notifier Notifier

	// startDelay paces the "game started" announcement after the second
	// join; evaluateDelay paces outcome evaluation after a move. Both
	// are cosmetic. A zero delay runs the callback inline.
	startDelay    time.Duration
	evaluateDelay time.Duration

	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

func NewCoordinator(logger *slog.Logger, rooms roomRepository, notifier Notifier, startDelay, evaluateDelay time.Duration) *Coordinator {
	return &Coordinator{
		logger:   logger,
		rooms:    rooms,
		notifier: notifier,

		startDelay:    startDelay,
		evaluateDelay: evaluateDelay,

		roomLocks: make(map[string]*sync.Mutex),
	}
}

// CreateRoom allocates a fresh room with the creator seated as X and
// returns it so the transport can reply with the identifier.
func (that *Coordinator) CreateRoom(ctx context.Context, creatorID string) (*entity.Room, error) {
	room := entity.NewRoom(pkg.NewRoomID(), creatorID)

	if err := that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	that.logger.Info("room created", "roomID", room.ID, "playerID", creatorID)

	return room, nil
}

// JoinRoom seats a player in an existing room. ErrRoomNotFound and
// ErrRoomFull both surface to the requester as a single "not available"
// signal; neither mutates the room. When the second player arrives, the
// start announcement is scheduled after the start delay.
func (that *Coordinator) JoinRoom(ctx context.Context, roomID, playerID string) error {
	unlock := that.lockRoom(roomID)

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		unlock()
		return err
	}

	// A member re-sending the join is acknowledged without reseating;
	// the board is never reinitialized on a repeated join.
	if !room.HasPlayer(playerID) {
		if err = room.AddPlayer(playerID); err != nil {
			unlock()
			return err
		}

		if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
			unlock()
			return fmt.Errorf("failed to update room: %w", err)
		}
	}

	that.notifier.PlayerJoined(room, playerID)

	full := room.IsFull()
	unlock()

	if full {
		that.schedule(that.startDelay, func() {
			that.notifier.GameStarted(room)
		})
	}

	that.logger.Info("player joined room", "roomID", roomID, "playerID", playerID)

	return nil
}

// ApplyMove plays the current turn's mark into a cell on behalf of the
// mover's room. The mover is only required to be a member of a room;
// the mark placed is always the one whose turn it is. A move against a
// missing room, an occupied cell, an unfilled room or a finished round
// is rejected without mutation and without a broadcast.
func (that *Coordinator) ApplyMove(ctx context.Context, moverID string, cell int) error {
	located, err := that.rooms.GetByPlayerID(ctx, moverID)
	if err != nil {
		return err
	}

	unlock := that.lockRoom(located.ID)

	room, err := that.rooms.GetByID(ctx, located.ID)
	if err != nil {
		unlock()
		return err
	}

	if !room.IsFull() {
		unlock()
		return fmt.Errorf("%w: room %s", apperror.ErrRoomNotReady, room.ID)
	}

	// Between a finishing move and its deferred evaluation the board is
	// terminal but not yet reset; moves in that window are dropped.
	if tictactoe.IsTerminal(room.Board) {
		unlock()
		return fmt.Errorf("%w: room %s", apperror.ErrRoundOver, room.ID)
	}

	mark, err := room.ApplyMove(cell)
	if err != nil {
		unlock()
		return err
	}

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		unlock()
		return fmt.Errorf("failed to update room: %w", err)
	}

	that.notifier.MoveAccepted(room, cell, mark, moverID)
	unlock()

	that.schedule(that.evaluateDelay, func() {
		that.evaluateOutcome(room.ID)
	})

	that.logger.Info("move accepted", "roomID", room.ID, "cell", cell, "mark", mark)

	return nil
}

// Disconnect is deliberately inert at the game level: the room keeps the
// absent player and its board, mirroring the reference behavior. The
// transport drops the connection, so later broadcasts to the player are
// no-ops.
func (that *Coordinator) Disconnect(_ context.Context, playerID string) {
	that.logger.Info("player disconnected", "playerID", playerID)
}

// evaluateOutcome runs after the evaluation delay of every accepted
// move. On a terminal board it announces the outcome, resets the room
// (scoring the winner, if any) and publishes the updated counters.
func (that *Coordinator) evaluateOutcome(roomID string) {
	ctx := context.Background()
	log := that.logger.With("method", "evaluateOutcome", "roomID", roomID)

	unlock := that.lockRoom(roomID)
	defer unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		log.Error("room vanished before evaluation", "error", err)
		return
	}

	winner := tictactoe.Winner(room.Board)
	if winner == tictactoe.EmptyCell && !tictactoe.IsTerminal(room.Board) {
		return
	}

	that.notifier.GameOver(room, winner)

	room.Reset(winner)
	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		log.Error("failed to reset room", "error", err)
		return
	}

	that.notifier.LeaderboardUpdated(room)

	log.Info("round finished", "winner", winner, "xWins", room.XWins, "oWins", room.OWins)
}

// schedule defers fn without blocking the caller. A non-positive delay
// runs fn inline, which keeps tests deterministic.
func (that *Coordinator) schedule(delay time.Duration, fn func()) {
	if delay <= 0 {
		fn()
		return
	}

	time.AfterFunc(delay, fn)
}

// lockRoom serializes mutations of a single room. Connections are
// handled on independent goroutines, so two simultaneous moves into the
// same room must not interleave.
func (that *Coordinator) lockRoom(roomID string) func() {
	that.mu.Lock()
	lock, ok := that.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		that.roomLocks[roomID] = lock
	}
	that.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}
