package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xoarena/backend/internal/entity"
	"github.com/xoarena/backend/internal/pkg"
)

type coordinator interface {
	CreateRoom(ctx context.Context, creatorID string) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, playerID string) error
	ApplyMove(ctx context.Context, moverID string, cell int) error
	Disconnect(ctx context.Context, playerID string)
}

type Server struct {
	logger      *slog.Logger
	coordinator coordinator
	hub         *Hub
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, playerID string, payload json.RawMessage) error
}

func New(logger *slog.Logger, coordinator coordinator, hub *Hub) *Server {
	server := &Server{
		logger:      logger,
		coordinator: coordinator,
		hub:         hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, string, json.RawMessage) error),
	}

	server.handlers[ActionCreateRoom] = server.handleCreateRoom
	server.handlers[ActionJoinRoom] = server.handleJoinRoom
	server.handlers[ActionPlayerMoved] = server.handlePlayerMoved

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection upgrades the request, assigns the connection its
// player identity and pumps messages until the client goes away.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer ws.Close()

	playerID := pkg.NewPlayerID()
	that.hub.register(playerID, ws)
	defer func() {
		that.hub.unregister(playerID)
		that.coordinator.Disconnect(ctx, playerID)
	}()

	log = log.With("playerID", playerID)
	log.Info("connection established")

	that.hub.SendTo(playerID, ActionConnected, ConnectedPayload{PlayerID: playerID})

	that.handleMessages(ctx, playerID, ws)
}

// handleMessages - processes messages from the client. Malformed input
// is dropped without closing the connection.
func (that *Server) handleMessages(ctx context.Context, playerID string, ws *websocket.Conn) {
	log := that.logger.With("method", "handleMessages", "playerID", playerID)

	for {
		var message Message
		if err := ws.ReadJSON(&message); err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err := handler(ctx, playerID, message.Payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
