package websocket

import "encoding/json"

// Client-originated actions.
const (
	ActionCreateRoom  = "createRoom"
	ActionJoinRoom    = "joinRoom"
	ActionPlayerMoved = "playerMoved"
)

// Server-originated actions.
const (
	ActionConnected         = "connected"
	ActionRoomCreated       = "roomCreated"
	ActionPlayerJoined      = "playerJoined"
	ActionGameStarted       = "gameStarted"
	ActionRoomNotAvailable  = "roomNotAvailable"
	ActionServerRecdMove    = "serverRecdMove"
	ActionGameOver          = "gameOver"
	ActionUpdateLeaderboard = "updateLeaderboard"
)

// Message is the wire envelope: an action name plus an action-specific
// payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"playerId"`
}

type MovePayload struct {
	SqIdx   *int   `json:"sqIdx"`
	MoverID string `json:"moverId"`
}

type ServerRecdMovePayload struct {
	SqIdx   int    `json:"sqIdx"`
	Move    string `json:"move"`
	MoverID string `json:"moverId"`
}

type GameOverPayload struct {
	Winner  string `json:"winner,omitempty"`
	Message string `json:"message"`
}

type LeaderboardPayload struct {
	XWins int `json:"XWins"`
	OWins int `json:"OWins"`
}
