package chat

import (
	"encoding/json"
	"log/slog"
)

// Router relays chat messages from joined connections to their room.
type Router struct {
	store     *RoomStore
	transport Transport
	log       *slog.Logger
}

// NewRouter creates a Router reading membership from store.
func NewRouter(store *RoomStore, transport Transport, log *slog.Logger) *Router {
	return &Router{store: store, transport: transport, log: log}
}

// HandleChatMessage broadcasts text and image from the connection to every
// member of its room, the sender included. Messages from connections that are
// not in a room are dropped without notice.
func (r *Router) HandleChatMessage(id ConnID, text string, image json.RawMessage) {
	room, ok := r.store.FindRoomOf(id)
	if !ok {
		r.log.Debug("Dropping chat message from connection outside any room", "conn", id)
		return
	}
	name, ok := r.store.MemberName(room, id)
	if !ok {
		r.log.Debug("Dropping chat message from unknown member", "conn", id, "room", room.Name)
		return
	}

	r.transport.BroadcastToGroup(room.Name, EventMessage, Message{
		User:  name,
		Text:  text,
		Image: normalizeImage(image),
	}, NoConn)
}
