package chat

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SystemUser is the sender tag of join, leave and welcome notices.
const SystemUser = "system"

// EventMessage is the transport event name carrying a Message.
const EventMessage = "message"

// ConnID identifies a connection. The transport assigns it.
type ConnID string

// Message is a chat line as delivered to room members. Image is an opaque
// JSON value relayed untouched unless it is falsy; a nil Image encodes as null.
type Message struct {
	User  string          `json:"user"`
	Text  string          `json:"text"`
	Image json.RawMessage `json:"image"`
}

// systemNotice builds a notice from the system sender.
func systemNotice(text string) Message {
	return Message{User: SystemUser, Text: text}
}

// normalizeImage maps an absent image and the JSON values null, false, "" and
// numeric zero to nil. Anything else is kept as sent.
func normalizeImage(image json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(image)
	switch string(trimmed) {
	case "", "null", "false", `""`:
		return nil
	}
	if f, err := strconv.ParseFloat(string(trimmed), 64); err == nil && f == 0 {
		return nil
	}
	return image
}
