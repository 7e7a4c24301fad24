// Package server defines the websocket frame format and small helpers shared
// by client and hub logic.
package server

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Event names carried in Frame.Event.
const (
	EventJoin    = "join"
	EventChat    = "chat"
	EventAck     = "ack"
	EventMessage = chat.EventMessage
)

// Ack statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Frame is the envelope of every websocket text message in both directions.
type Frame struct {
	Event     string          `json:"event"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// JoinAck answers a join frame.
type JoinAck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ChatPayload is the data of a chat frame.
type ChatPayload struct {
	Text  string          `json:"text"`
	Image json.RawMessage `json:"image"`
}

// inboundEvent is a decoded frame on its way from a read pump to the hub.
type inboundEvent struct {
	client *Client
	frame  Frame
}

// ackFor maps the outcome of a join to the acknowledgment sent to the client.
func ackFor(err error) JoinAck {
	switch {
	case err == nil:
		return JoinAck{Status: StatusOK}
	case errors.Is(err, chat.ErrNameTaken):
		return JoinAck{Status: StatusError, Message: "That nickname is already used in this room."}
	case errors.Is(err, chat.ErrAlreadyJoined):
		return JoinAck{Status: StatusError, Message: "You already joined a room."}
	case errors.Is(err, chat.ErrValidation):
		return JoinAck{Status: StatusError, Message: "A nickname and a room name are required."}
	default:
		return JoinAck{Status: StatusError, Message: err.Error()}
	}
}

// encodeFrame marshals payload into a frame ready to be written.
func encodeFrame(event, requestID string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, RequestID: requestID, Data: data})
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
