package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/xoarena/backend/internal/entity"
	"github.com/xoarena/backend/internal/tictactoe"
)

// connection wraps a websocket with a write lock; gorilla connections
// allow only one concurrent writer.
type connection struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (that *connection) send(msg *Message) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Hub is the connection registry: playerID -> connection. It is the
// coordinator's Notifier; sending to an unknown player is a no-op, so
// rooms with an absent member stay harmless.
type Hub struct {
	logger *slog.Logger

	mu          sync.RWMutex
	connections map[string]*connection
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		connections: make(map[string]*connection),
	}
}

func (that *Hub) register(playerID string, ws *websocket.Conn) *connection {
	conn := &connection{ws: ws}

	that.mu.Lock()
	that.connections[playerID] = conn
	that.mu.Unlock()

	return conn
}

func (that *Hub) unregister(playerID string) {
	that.mu.Lock()
	delete(that.connections, playerID)
	that.mu.Unlock()
}

// SendTo delivers a message to a single player, if still connected.
func (that *Hub) SendTo(playerID, action string, payload any) {
	that.mu.RLock()
	conn, ok := that.connections[playerID]
	that.mu.RUnlock()

	if !ok {
		return
	}

	msg, err := newMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to build message", "action", action, "error", err)
		return
	}

	if err = conn.send(msg); err != nil {
		that.logger.Error("failed to send message", "action", action, "playerID", playerID, "error", err)
	}
}

func (that *Hub) broadcast(room *entity.Room, action string, payload any) {
	for _, playerID := range room.Players {
		that.SendTo(playerID, action, payload)
	}
}

func (that *Hub) PlayerJoined(room *entity.Room, playerID string) {
	that.broadcast(room, ActionPlayerJoined, PlayerJoinedPayload{PlayerID: playerID})
}

func (that *Hub) GameStarted(room *entity.Room) {
	that.broadcast(room, ActionGameStarted, nil)
}

func (that *Hub) MoveAccepted(room *entity.Room, cell int, mark, moverID string) {
	that.broadcast(room, ActionServerRecdMove, ServerRecdMovePayload{
		SqIdx:   cell,
		Move:    mark,
		MoverID: moverID,
	})
}

func (that *Hub) GameOver(room *entity.Room, winner string) {
	payload := GameOverPayload{Message: "It's a draw!"}
	if winner != tictactoe.EmptyCell {
		payload = GameOverPayload{
			Winner:  winner,
			Message: fmt.Sprintf("Player %s has won!", winner),
		}
	}

	that.broadcast(room, ActionGameOver, payload)
}

func (that *Hub) LeaderboardUpdated(room *entity.Room) {
	that.broadcast(room, ActionUpdateLeaderboard, LeaderboardPayload{
		XWins: room.XWins,
		OWins: room.OWins,
	})
}

func newMessage(action string, payload any) (*Message, error) {
	msg := &Message{Action: action}

	if payload == nil {
		return msg, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg.Payload = raw

	return msg, nil
}
