// Package server implements the websocket transport of the room relay.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, routing, and HTTP handlers. The Hub serializes
// every connection event through a single goroutine and implements
// chat.Transport so the room logic never touches a socket directly.
package server
