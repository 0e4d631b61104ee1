package ws

import (
	"encoding/json"

	"github.com/benbeisheim/cheesychess-backend/internal/model"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeSelect  MessageType = "select"
	MessageTypeMove    MessageType = "move"
	MessageTypePromote MessageType = "promote"
	MessageTypeAbandon MessageType = "abandon"

	// server -> client
	MessageTypeGameState   MessageType = "gameState"
	MessageTypeMoveRecord  MessageType = "moveRecord"
	MessageTypeMoveResult  MessageType = "moveResult"
	MessageTypeAchievement MessageType = "achievement"
	MessageTypeError       MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type SelectPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type MovePayload struct {
	PieceID model.PieceID  `json:"pieceId"`
	To      model.Position `json:"to"`
}

type PromotePayload struct {
	PieceID model.PieceID   `json:"pieceId"`
	Piece   model.PieceType `json:"piece"`
}

type MoveResultPayload struct {
	Outcome model.MoveOutcome  `json:"outcome"`
	Reason  model.RejectReason `json:"reason,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of type t.
func NewMessage(t MessageType, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}

// ErrorMessage builds an error message. It cannot fail.
func ErrorMessage(text string) Message {
	msg, _ := NewMessage(MessageTypeError, ErrorPayload{Error: text})
	return msg
}
