package chat

import "errors"

var (
	// ErrValidation is returned when a join request lacks a username or a room.
	ErrValidation = errors.New("invalid join request")
	// ErrNameTaken is returned when the display name is already used in the room.
	ErrNameTaken = errors.New("name already taken in room")
	// ErrAlreadyJoined is returned when a connection that is already in a room
	// asks to join again.
	ErrAlreadyJoined = errors.New("connection already joined a room")
	// ErrNotConnected is returned for events from unknown or closed connections.
	ErrNotConnected = errors.New("connection is not open")
)
