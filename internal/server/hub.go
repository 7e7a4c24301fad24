// Package server coordinates client registration, event dispatch and room
// fan-out for the websocket transport via the Hub type.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/gorilla/websocket"
)

// EventHandler receives connection events from the hub, one at a time.
// chat.Relay implements it.
type EventHandler interface {
	HandleConnect(id chat.ConnID)
	HandleJoin(id chat.ConnID, username, room string) error
	HandleChatMessage(id chat.ConnID, text string, image json.RawMessage)
	HandleDisconnect(id chat.ConnID)
}

// Hub manages all WebSocket client connections. Its Run loop is the only
// goroutine that calls the EventHandler, so room state needs no locking.
// Hub also implements chat.Transport; those methods must only be called from
// inside the handler while Run is dispatching.
type Hub struct {
	clients    map[chat.ConnID]*Client
	groups     map[string]map[chat.ConnID]*Client
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent
	evicted    []*Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	config     Config
	upgrader   websocket.Upgrader
	log        *slog.Logger
}

var _ chat.Transport = (*Hub)(nil)

// NewHub creates and initializes a new Hub instance with all necessary
// channels. The returned Hub is ready to be started with Run.
func NewHub(cfg Config, log *slog.Logger) *Hub {
	cfg = sanitizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	origins := newOriginPolicy(cfg.AllowedOrigins, log)

	return &Hub{
		clients:    make(map[chat.ConnID]*Client),
		groups:     make(map[string]map[chat.ConnID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		config:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
		log: log,
	}
}

// GetRegisterChan returns the channel used for registering new clients to the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering clients from the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// Register hands the client to the hub. It returns false once the hub is
// shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Dispatch queues a frame received from client. It returns false once the
// hub is shutting down.
func (h *Hub) Dispatch(client *Client, frame Frame) bool {
	select {
	case h.inbound <- inboundEvent{client: client, frame: frame}:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Run starts the hub's main event loop, handling client registration,
// unregistration and inbound frames, each one to completion before the next.
// It should be called in a separate goroutine and returns after Shutdown.
func (h *Hub) Run(handler EventHandler) {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("Received nil client registration; skipping")
				continue
			}
			h.handleRegister(handler, client)

		case client := <-h.unregister:
			h.disconnect(handler, client)

		case evt := <-h.inbound:
			h.handleInbound(handler, evt)
		}

		h.processEvictions(handler)
	}
}

func (h *Hub) handleRegister(handler EventHandler, client *Client) {
	h.mutex.Lock()
	client.closed = false
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()
	h.log.Info("Client registered", "conn", client.id, "addr", client.addr, "clients", clientCount)

	handler.HandleConnect(client.id)

	if client.conn == nil {
		return
	}
	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// disconnect drops the client and lets the handler clean its membership up.
func (h *Hub) disconnect(handler EventHandler, client *Client) {
	if client == nil || !h.removeClient(client) {
		return
	}
	handler.HandleDisconnect(client.id)
	h.leaveAllGroups(client.id)
}

// removeClient unregisters the client and closes its send channel. It
// returns false if the client was not registered.
func (h *Hub) removeClient(client *Client) bool {
	h.mutex.Lock()
	current, ok := h.clients[client.id]
	if !ok || current != client {
		h.mutex.Unlock()
		return false
	}
	delete(h.clients, client.id)
	client.closed = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	// Close the channel after releasing the lock
	close(client.send)
	h.log.Info("Client unregistered", "conn", client.id, "addr", client.addr, "clients", clientCount)
	return true
}

func (h *Hub) handleInbound(handler EventHandler, evt inboundEvent) {
	client := evt.client
	if client == nil || client.closed || h.clients[client.id] != client {
		return
	}

	switch evt.frame.Event {
	case EventJoin:
		var req chat.JoinRequest
		err := json.Unmarshal(evt.frame.Data, &req)
		if err != nil {
			err = fmt.Errorf("%w: malformed join payload: %v", chat.ErrValidation, err)
		} else {
			err = handler.HandleJoin(client.id, req.Username, req.Room)
		}
		h.sendFrame(client, EventAck, evt.frame.RequestID, ackFor(err))

	case EventChat:
		var payload ChatPayload
		if err := json.Unmarshal(evt.frame.Data, &payload); err != nil {
			h.log.Debug("Dropping malformed chat frame", "conn", client.id, "error", err)
			return
		}
		handler.HandleChatMessage(client.id, payload.Text, payload.Image)

	default:
		h.log.Debug("Dropping frame with unknown event", "conn", client.id, "event", evt.frame.Event)
	}
}

// JoinGroup implements chat.Transport.
func (h *Hub) JoinGroup(id chat.ConnID, group string) {
	client, ok := h.clients[id]
	if !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[chat.ConnID]*Client)
		h.groups[group] = members
	}
	members[id] = client
}

// LeaveGroup implements chat.Transport.
func (h *Hub) LeaveGroup(id chat.ConnID, group string) {
	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// BroadcastToGroup implements chat.Transport.
func (h *Hub) BroadcastToGroup(group, event string, payload any, except chat.ConnID) {
	members := h.groups[group]
	if len(members) == 0 {
		return
	}

	data, err := encodeFrame(event, "", payload)
	if err != nil {
		h.log.Error("Failed to encode broadcast", "group", group, "event", event, "error", err)
		return
	}

	h.log.Debug("Broadcasting to group", "group", group, "event", event, "members", len(members))
	for id, client := range members {
		if id == except {
			continue
		}
		h.deliver(client, data)
	}
}

// SendTo implements chat.Transport.
func (h *Hub) SendTo(id chat.ConnID, event string, payload any) {
	client, ok := h.clients[id]
	if !ok {
		return
	}
	h.sendFrame(client, event, "", payload)
}

func (h *Hub) sendFrame(client *Client, event, requestID string, payload any) {
	data, err := encodeFrame(event, requestID, payload)
	if err != nil {
		h.log.Error("Failed to encode frame", "conn", client.id, "event", event, "error", err)
		return
	}
	h.deliver(client, data)
}

// deliver queues data on the client without blocking. A client whose buffer
// is full is evicted once the current event is done.
func (h *Hub) deliver(client *Client, data []byte) {
	if client.closed {
		return
	}
	select {
	case client.send <- data:
	default:
		h.log.Warn("Evicting client with full send buffer", "conn", client.id, "addr", client.addr)
		h.evicted = append(h.evicted, client)
		h.removeClient(client)
	}
}

// processEvictions runs the disconnect of every evicted client. Disconnect
// notices may evict more clients, so it loops until the queue is empty.
func (h *Hub) processEvictions(handler EventHandler) {
	for len(h.evicted) > 0 {
		client := h.evicted[0]
		h.evicted = h.evicted[1:]
		handler.HandleDisconnect(client.id)
		h.leaveAllGroups(client.id)
	}
}

func (h *Hub) leaveAllGroups(id chat.ConnID) {
	for group := range h.groups {
		h.LeaveGroup(id, group)
	}
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		h.removeClient(client)
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					h.log.Warn("Error closing client connection", "addr", client.addr, "error", err)
				}
			}
		}
	}

	h.log.Info("Closed client connections", "count", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	h.cancel()

	// Wait for Run() to complete
	select {
	case <-h.done:
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
