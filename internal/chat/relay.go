package chat

import "log/slog"

// Relay is the event handler a transport adapter drives: connect, join and
// disconnect go to the Lifecycle, chat messages to the Router.
type Relay struct {
	*Lifecycle
	*Router

	store *RoomStore
}

// NewRelay wires a Lifecycle and a Router around the same store.
func NewRelay(store *RoomStore, transport Transport, log *slog.Logger) *Relay {
	return &Relay{
		Lifecycle: NewLifecycle(store, transport, log),
		Router:    NewRouter(store, transport, log),
		store:     store,
	}
}

// Store returns the shared room store.
func (r *Relay) Store() *RoomStore {
	return r.store
}
