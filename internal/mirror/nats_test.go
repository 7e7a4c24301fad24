package mirror_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/mirror"
	"github.com/Tyrowin/roomchat/internal/mocks"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{subject: subject, data: data})
	return nil
}

func TestTransport_BroadcastIsForwardedAndPublished(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	next := mocks.NewMockTransport(ctrl)
	pub := &fakePublisher{}
	tr := mirror.NewTransport(next, pub, "roomchat.", logs.GetLoggerFromLevel(slog.LevelDebug))

	msg := chat.Message{User: "alice", Text: "hi"}
	next.EXPECT().BroadcastToGroup("lobby", chat.EventMessage, msg, chat.NoConn)

	tr.BroadcastToGroup("lobby", chat.EventMessage, msg, chat.NoConn)

	req.Len(pub.sent, 1)
	req.Equal("roomchat.rooms.lobby", pub.sent[0].subject)

	var env struct {
		Room    string       `json:"room"`
		Event   string       `json:"event"`
		Payload chat.Message `json:"payload"`
	}
	req.NoError(json.Unmarshal(pub.sent[0].data, &env))
	req.Equal("lobby", env.Room)
	req.Equal(chat.EventMessage, env.Event)
	req.Equal("alice", env.Payload.User)
	req.Equal("hi", env.Payload.Text)
}

func TestTransport_DirectCallsAreNotPublished(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	next := mocks.NewMockTransport(ctrl)
	pub := &fakePublisher{}
	tr := mirror.NewTransport(next, pub, "roomchat", logs.GetLoggerFromLevel(slog.LevelDebug))

	gomock.InOrder(
		next.EXPECT().JoinGroup(chat.ConnID("a"), "lobby"),
		next.EXPECT().SendTo(chat.ConnID("a"), chat.EventMessage, gomock.Any()),
		next.EXPECT().LeaveGroup(chat.ConnID("a"), "lobby"),
	)

	tr.JoinGroup("a", "lobby")
	tr.SendTo("a", chat.EventMessage, chat.Message{User: chat.SystemUser, Text: "welcome"})
	tr.LeaveGroup("a", "lobby")

	req.Empty(pub.sent)
}

func TestTransport_PublishErrorDoesNotStopDelivery(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockTransport(ctrl)
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	tr := mirror.NewTransport(next, pub, "roomchat", logs.GetLoggerFromLevel(slog.LevelDebug))

	next.EXPECT().BroadcastToGroup("lobby", chat.EventMessage, gomock.Any(), chat.ConnID("a")).Times(1)

	tr.BroadcastToGroup("lobby", chat.EventMessage, chat.Message{User: chat.SystemUser, Text: "alice joined the room"}, "a")
}

func TestSubject_EscapesRoomToken(t *testing.T) {
	tests := []struct {
		room string
		want string
	}{
		{room: "lobby", want: "chat.rooms.lobby"},
		{room: "a.b", want: "chat.rooms.a_2eb"},
		{room: "a_b", want: "chat.rooms.a_5fb"},
		{room: "all*>", want: "chat.rooms.all_2a_3e"},
		{room: "two words", want: "chat.rooms.two_20words"},
		{room: "tab\there", want: "chat.rooms.tab_09there"},
		{room: "café", want: "chat.rooms.café"},
	}

	for _, tt := range tests {
		t.Run(tt.room, func(t *testing.T) {
			require.Equal(t, tt.want, mirror.Subject("chat", tt.room))
		})
	}
}

func TestSubject_DistinctRoomsNeverCollide(t *testing.T) {
	rooms := []string{"a.b", "a_b", "a_2eb", "a b", "a_20b", "a*b", "a>b", "ab"}
	seen := make(map[string]string, len(rooms))

	for _, room := range rooms {
		subject := mirror.Subject("chat", room)
		other, dup := seen[subject]
		require.False(t, dup, "%q and %q share subject %q", room, other, subject)
		seen[subject] = room
	}
}
