package chat

import (
	"sort"

	"github.com/samber/lo"
)

// Room is a named group of connections, each with a display name that is
// unique within the room.
type Room struct {
	Name    string
	members map[ConnID]string
}

// Len returns the number of members.
func (r *Room) Len() int {
	return len(r.members)
}

// Names returns the display names of the members in sorted order.
func (r *Room) Names() []string {
	names := lo.Values(r.members)
	sort.Strings(names)
	return names
}

func (r *Room) hasName(name string) bool {
	return lo.Contains(lo.Values(r.members), name)
}

// RoomStore owns every room and the current room of each joined connection.
// A room exists only while it has at least one member.
type RoomStore struct {
	rooms       map[string]*Room
	memberships map[ConnID]string
}

// NewRoomStore creates an empty store.
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:       make(map[string]*Room),
		memberships: make(map[ConnID]string),
	}
}

// EnsureRoom returns the room with the given name, creating an empty one if
// needed. A room created here is discarded again if AddMember rejects its
// first member.
func (s *RoomStore) EnsureRoom(name string) *Room {
	if room, ok := s.rooms[name]; ok {
		return room
	}
	room := &Room{Name: name, members: make(map[ConnID]string)}
	s.rooms[name] = room
	return room
}

// AddMember inserts the connection under the display name. It fails with
// ErrNameTaken when another member already uses the name (case-sensitive) and
// with ErrAlreadyJoined when the connection is a member of any room.
func (s *RoomStore) AddMember(room *Room, id ConnID, name string) error {
	var err error
	switch {
	case s.isMember(id):
		err = ErrAlreadyJoined
	case room.hasName(name):
		err = ErrNameTaken
	}
	if err != nil {
		s.dropIfEmpty(room)
		return err
	}

	room.members[id] = name
	s.memberships[id] = room.Name
	return nil
}

// RemoveMember removes the connection from the room and returns its display
// name. The room is deleted from the store once its last member is gone.
func (s *RoomStore) RemoveMember(room *Room, id ConnID) (string, bool) {
	name, ok := room.members[id]
	if !ok {
		return "", false
	}
	delete(room.members, id)
	if s.memberships[id] == room.Name {
		delete(s.memberships, id)
	}
	s.dropIfEmpty(room)
	return name, true
}

// FindRoomOf returns the room the connection currently belongs to.
func (s *RoomStore) FindRoomOf(id ConnID) (*Room, bool) {
	name, ok := s.memberships[id]
	if !ok {
		return nil, false
	}
	room, ok := s.rooms[name]
	return room, ok
}

// MemberName returns the display name of the connection within the room.
func (s *RoomStore) MemberName(room *Room, id ConnID) (string, bool) {
	name, ok := room.members[id]
	return name, ok
}

// Room looks a room up by name.
func (s *RoomStore) Room(name string) (*Room, bool) {
	room, ok := s.rooms[name]
	return room, ok
}

// RoomCount returns the number of live rooms.
func (s *RoomStore) RoomCount() int {
	return len(s.rooms)
}

func (s *RoomStore) isMember(id ConnID) bool {
	_, ok := s.memberships[id]
	return ok
}

func (s *RoomStore) dropIfEmpty(room *Room) {
	if room.Len() > 0 {
		return
	}
	if current, ok := s.rooms[room.Name]; ok && current == room {
		delete(s.rooms, room.Name)
	}
}
