package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedMessage = errors.New("malformed message")

// Message - the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outbound struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

func encode(action string, payload any) ([]byte, error) {
	data, err := json.Marshal(outbound{Action: action, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", action, err)
	}

	return data, nil
}

func decode(data []byte) (*Message, error) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	if message.Action == "" {
		return nil, fmt.Errorf("%w: action is missing", ErrMalformedMessage)
	}

	return &message, nil
}

func decodePayload(message *Message, payload interface{ validate() error }) error {
	if len(message.Payload) == 0 {
		return fmt.Errorf("%w: %s payload is missing", ErrMalformedMessage, message.Action)
	}

	if err := json.Unmarshal(message.Payload, payload); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedMessage, message.Action, err)
	}

	if err := payload.validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedMessage, message.Action, err)
	}

	return nil
}

type setUserIDPayload struct {
	UserID string `json:"userId"`
}

func (that *setUserIDPayload) validate() error {
	if that.UserID == "" {
		return errors.New("userId is required")
	}

	return nil
}

type joinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId"`
}

func (that *joinRoomPayload) validate() error {
	if that.RoomID == "" {
		return errors.New("roomId is required")
	}

	if that.PlayerName == "" {
		return errors.New("playerName is required")
	}

	return nil
}

type typingPayload struct {
	RoomID     string `json:"roomId"`
	IsTyping   bool   `json:"isTyping"`
	PlayerName string `json:"playerName"`
}

func (that *typingPayload) validate() error {
	if that.RoomID == "" {
		return errors.New("roomId is required")
	}

	return nil
}

type makeMovePayload struct {
	RoomID string `json:"roomId"`
	Index  *int   `json:"index"`
}

func (that *makeMovePayload) validate() error {
	if that.RoomID == "" {
		return errors.New("roomId is required")
	}

	if that.Index == nil {
		return errors.New("index is required")
	}

	return nil
}

// roomPayload - newGame and resetBoard.
type roomPayload struct {
	RoomID string `json:"roomId"`
}

func (that *roomPayload) validate() error {
	if that.RoomID == "" {
		return errors.New("roomId is required")
	}

	return nil
}
