package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// State is the lifecycle state of a connection.
type State int

const (
	Unjoined State = iota
	Joined
	Closed
)

func (s State) String() string {
	switch s {
	case Unjoined:
		return "unjoined"
	case Joined:
		return "joined"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the lifecycle record of an open connection.
type Session struct {
	ID    ConnID
	State State
	Name  string
}

// JoinRequest carries the fields of a join event.
type JoinRequest struct {
	Username string `json:"username" validate:"required"`
	Room     string `json:"room" validate:"required"`
}

// Lifecycle handles the connect, join and disconnect transitions of
// connections against a shared RoomStore.
type Lifecycle struct {
	store     *RoomStore
	transport Transport
	sessions  map[ConnID]*Session
	validate  *validator.Validate
	log       *slog.Logger
}

// NewLifecycle creates a Lifecycle operating on store and reaching
// connections through transport.
func NewLifecycle(store *RoomStore, transport Transport, log *slog.Logger) *Lifecycle {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
	return &Lifecycle{
		store:     store,
		transport: transport,
		sessions:  make(map[ConnID]*Session),
		validate:  validate,
		log:       log,
	}
}

// HandleConnect records a newly opened connection as Unjoined. Connecting an
// id twice keeps the existing session.
func (l *Lifecycle) HandleConnect(id ConnID) {
	if _, ok := l.sessions[id]; ok {
		return
	}
	l.sessions[id] = &Session{ID: id, State: Unjoined}
	l.log.Debug("Connection opened", "conn", id)
}

// Session returns a copy of the lifecycle record of an open connection.
// Unknown connections are reported as Closed.
func (l *Lifecycle) Session(id ConnID) (Session, bool) {
	session, ok := l.sessions[id]
	if !ok {
		return Session{ID: id, State: Closed}, false
	}
	return *session, true
}

// HandleJoin moves an Unjoined connection into room under username.
//
// Nothing is mutated when it fails: the returned error wraps ErrValidation
// for a missing username or room, ErrNotConnected for an unknown connection,
// ErrAlreadyJoined when the connection already sits in a room and
// ErrNameTaken when username is in use in room. On success the other members
// receive a joined notice and the joiner alone receives a welcome notice,
// in that order, before HandleJoin returns.
func (l *Lifecycle) HandleJoin(id ConnID, username, room string) error {
	if err := l.validateJoin(JoinRequest{Username: username, Room: room}); err != nil {
		return err
	}

	session, ok := l.sessions[id]
	if !ok {
		return ErrNotConnected
	}
	if session.State != Unjoined {
		return ErrAlreadyJoined
	}

	target := l.store.EnsureRoom(room)
	if err := l.store.AddMember(target, id, username); err != nil {
		l.log.Debug("Join rejected", "conn", id, "room", room, "username", username, "error", err)
		return err
	}
	session.State = Joined
	session.Name = username

	l.transport.JoinGroup(id, room)
	l.transport.BroadcastToGroup(room, EventMessage,
		systemNotice(fmt.Sprintf("%s joined the room", username)), id)
	l.transport.SendTo(id, EventMessage,
		systemNotice(fmt.Sprintf("Welcome, %s! You joined room %q.", username, room)))

	l.log.Info("Member joined", "conn", id, "room", room, "username", username, "members", target.Len())
	return nil
}

// HandleDisconnect closes the connection and removes it from its room, if
// any, telling the remaining members it left. Calling it again for the same
// connection does nothing.
func (l *Lifecycle) HandleDisconnect(id ConnID) {
	delete(l.sessions, id)

	room, ok := l.store.FindRoomOf(id)
	if !ok {
		return
	}
	roomName := room.Name
	name, removed := l.store.RemoveMember(room, id)
	l.transport.LeaveGroup(id, roomName)
	if !removed {
		return
	}

	l.transport.BroadcastToGroup(roomName, EventMessage,
		systemNotice(fmt.Sprintf("%s left the room", name)), NoConn)
	l.log.Info("Member left", "conn", id, "room", roomName, "username", name, "members", room.Len())
}

func (l *Lifecycle) validateJoin(req JoinRequest) error {
	err := l.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		return fe.Field()
	})
	return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(fields, " and "))
}
