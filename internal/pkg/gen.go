package pkg

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const (
	roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	roomIDLength   = 8
)

// NewRoomID - generates a short shareable room identifier: 8 characters
// from a 36-symbol alphabet, enough to avoid collisions across
// concurrently active rooms.
func NewRoomID() string {
	b := make([]byte, roomIDLength)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-room-id"
	}

	for i := range b {
		b[i] = roomIDAlphabet[int(b[i])%len(roomIDAlphabet)]
	}

	return string(b)
}

// NewPlayerID - generates a unique identifier for a connection.
func NewPlayerID() string {
	return uuid.NewString()
}
