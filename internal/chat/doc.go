// Package chat implements the room membership state machine and the message
// fan-out protocol of the room relay.
//
// A single RoomStore holds every room and the current room of each joined
// connection. Lifecycle drives the connect, join and disconnect transitions,
// Router relays chat messages, and both reach connections only through the
// Transport capability. None of the types in this package are safe for
// concurrent use: the transport adapter delivers one event at a time and each
// handler runs to completion before the next one starts.
package chat
