package chat_test

import (
	"testing"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/stretchr/testify/require"
)

func TestRoomStore_EnsureRoomReturnsSameRoom(t *testing.T) {
	req := require.New(t)
	store := chat.NewRoomStore()

	first := store.EnsureRoom("lobby")
	second := store.EnsureRoom("lobby")

	req.Same(first, second)
	req.Equal("lobby", first.Name)
	req.Equal(0, first.Len())
	req.Equal(1, store.RoomCount())
}

func TestRoomStore_RoomNamesAreCaseSensitive(t *testing.T) {
	req := require.New(t)
	store := chat.NewRoomStore()

	req.NotSame(store.EnsureRoom("lobby"), store.EnsureRoom("Lobby"))
	req.Equal(2, store.RoomCount())
}

func TestRoomStore_AddMember(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *chat.RoomStore)
		room    string
		id      chat.ConnID
		display string
		wantErr error
	}{
		{
			name:    "first member of a new room",
			setup:   func(*chat.RoomStore) {},
			room:    "lobby",
			id:      "a",
			display: "alice",
		},
		{
			name: "duplicate name in the same room",
			setup: func(s *chat.RoomStore) {
				_ = s.AddMember(s.EnsureRoom("lobby"), "a", "alice")
			},
			room:    "lobby",
			id:      "b",
			display: "alice",
			wantErr: chat.ErrNameTaken,
		},
		{
			name: "names differing only in case",
			setup: func(s *chat.RoomStore) {
				_ = s.AddMember(s.EnsureRoom("lobby"), "a", "alice")
			},
			room:    "lobby",
			id:      "b",
			display: "Alice",
		},
		{
			name: "same name in another room",
			setup: func(s *chat.RoomStore) {
				_ = s.AddMember(s.EnsureRoom("lobby"), "a", "alice")
			},
			room:    "kitchen",
			id:      "b",
			display: "alice",
		},
		{
			name: "connection already in a room",
			setup: func(s *chat.RoomStore) {
				_ = s.AddMember(s.EnsureRoom("lobby"), "a", "alice")
			},
			room:    "kitchen",
			id:      "a",
			display: "alice2",
			wantErr: chat.ErrAlreadyJoined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			store := chat.NewRoomStore()
			tt.setup(store)

			room := store.EnsureRoom(tt.room)
			err := store.AddMember(room, tt.id, tt.display)

			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				return
			}
			req.NoError(err)
			name, ok := store.MemberName(room, tt.id)
			req.True(ok)
			req.Equal(tt.display, name)

			found, ok := store.FindRoomOf(tt.id)
			req.True(ok)
			req.Same(room, found)
		})
	}
}

func TestRoomStore_RejectedFirstMemberLeavesNoEmptyRoom(t *testing.T) {
	req := require.New(t)
	store := chat.NewRoomStore()
	req.NoError(store.AddMember(store.EnsureRoom("lobby"), "a", "alice"))

	err := store.AddMember(store.EnsureRoom("kitchen"), "a", "alice")

	req.ErrorIs(err, chat.ErrAlreadyJoined)
	_, exists := store.Room("kitchen")
	req.False(exists)
	req.Equal(1, store.RoomCount())
}

func TestRoomStore_RemoveMember(t *testing.T) {
	req := require.New(t)
	store := chat.NewRoomStore()
	room := store.EnsureRoom("lobby")
	req.NoError(store.AddMember(room, "a", "alice"))
	req.NoError(store.AddMember(room, "b", "bob"))

	name, ok := store.RemoveMember(room, "a")
	req.True(ok)
	req.Equal("alice", name)
	req.Equal([]string{"bob"}, room.Names())
	_, ok = store.FindRoomOf("a")
	req.False(ok)

	// Removing again is a no-op.
	_, ok = store.RemoveMember(room, "a")
	req.False(ok)

	_, exists := store.Room("lobby")
	req.True(exists)

	name, ok = store.RemoveMember(room, "b")
	req.True(ok)
	req.Equal("bob", name)

	_, exists = store.Room("lobby")
	req.False(exists, "empty room must be deleted")
	req.Equal(0, store.RoomCount())
}

func TestRoomStore_NameIsFreeAfterRemoval(t *testing.T) {
	req := require.New(t)
	store := chat.NewRoomStore()
	room := store.EnsureRoom("lobby")
	req.NoError(store.AddMember(room, "a", "alice"))
	req.NoError(store.AddMember(room, "b", "bob"))

	_, _ = store.RemoveMember(room, "a")

	req.NoError(store.AddMember(room, "c", "alice"))
	req.Equal([]string{"alice", "bob"}, room.Names())
}

func TestRoomStore_LookupsOnUnknownConnection(t *testing.T) {
	req := require.New(t)
	store := chat.NewRoomStore()
	room := store.EnsureRoom("lobby")

	_, ok := store.FindRoomOf("ghost")
	req.False(ok)
	_, ok = store.MemberName(room, "ghost")
	req.False(ok)
}
