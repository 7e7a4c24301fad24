package chat_test

import (
	"fmt"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newTestRelay() (*chat.Relay, *recordingTransport) {
	transport := newRecordingTransport()
	relay := chat.NewRelay(chat.NewRoomStore(), transport, logs.GetLoggerFromLevel(slog.LevelDebug))
	return relay, transport
}

func TestRelay_JoinScenario(t *testing.T) {
	req := require.New(t)
	relay, transport := newTestRelay()
	for _, id := range []chat.ConnID{"a", "x", "b"} {
		relay.HandleConnect(id)
	}

	req.NoError(relay.HandleJoin("a", "alice", "lobby"))
	req.ErrorIs(relay.HandleJoin("x", "alice", "lobby"), chat.ErrNameTaken)

	// alice only got her welcome so far.
	req.Equal([]chat.Message{notice(`Welcome, alice! You joined room "lobby".`)}, transport.drain("a"))

	req.NoError(relay.HandleJoin("b", "bob", "lobby"))

	req.Equal([]chat.Message{notice("bob joined the room")}, transport.drain("a"))
	req.Equal([]chat.Message{notice(`Welcome, bob! You joined room "lobby".`)}, transport.drain("b"),
		"the joiner gets the welcome but not its own joined notice")
	req.Empty(transport.drain("x"))
}

func TestRelay_ChatScenario(t *testing.T) {
	req := require.New(t)
	relay, transport := newTestRelay()
	relay.HandleConnect("a")
	relay.HandleConnect("b")
	req.NoError(relay.HandleJoin("a", "alice", "lobby"))
	req.NoError(relay.HandleJoin("b", "bob", "lobby"))
	transport.drain("a")
	transport.drain("b")

	relay.HandleChatMessage("a", "hi", nil)

	want := []chat.Message{{User: "alice", Text: "hi", Image: nil}}
	req.Equal(want, transport.drain("a"), "the sender receives its own message")
	req.Equal(want, transport.drain("b"))
}

func TestRelay_DisconnectScenario(t *testing.T) {
	req := require.New(t)
	relay, transport := newTestRelay()
	relay.HandleConnect("a")
	relay.HandleConnect("b")
	req.NoError(relay.HandleJoin("a", "alice", "lobby"))
	req.NoError(relay.HandleJoin("b", "bob", "lobby"))
	transport.drain("a")
	transport.drain("b")

	relay.HandleDisconnect("a")

	req.Empty(transport.drain("a"))
	req.Equal([]chat.Message{notice("alice left the room")}, transport.drain("b"))
	room, ok := relay.Store().Room("lobby")
	req.True(ok)
	req.Equal([]string{"bob"}, room.Names())

	relay.HandleDisconnect("a")
	req.Empty(transport.drain("b"), "second disconnect has no side effect")

	relay.HandleDisconnect("b")
	_, ok = relay.Store().Room("lobby")
	req.False(ok)
	req.Equal(0, relay.Store().RoomCount())
}

func TestRelay_ChatFromUnjoinedConnection(t *testing.T) {
	req := require.New(t)
	relay, transport := newTestRelay()
	relay.HandleConnect("a")
	relay.HandleConnect("lurker")
	req.NoError(relay.HandleJoin("a", "alice", "lobby"))
	transport.drain("a")

	relay.HandleChatMessage("lurker", "anyone?", nil)
	relay.HandleChatMessage("never-connected", "anyone?", nil)

	req.Empty(transport.drain("a"))
	req.Empty(transport.drain("lurker"))
}

func TestRelay_ChatAfterDisconnectIsDropped(t *testing.T) {
	req := require.New(t)
	relay, transport := newTestRelay()
	relay.HandleConnect("a")
	relay.HandleConnect("b")
	req.NoError(relay.HandleJoin("a", "alice", "lobby"))
	req.NoError(relay.HandleJoin("b", "bob", "lobby"))
	relay.HandleDisconnect("a")
	transport.drain("b")

	relay.HandleChatMessage("a", "ghost", nil)

	req.Empty(transport.drain("b"))
}

// TestRelay_RandomEventsKeepInvariants drives random joins, chats and
// disconnects and checks name uniqueness, empty-room cleanup and
// store/transport consistency after every event.
func TestRelay_RandomEventsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	relay, transport := newTestRelay()
	store := relay.Store()

	rooms := []string{"lobby", "kitchen", "attic"}
	names := []string{"alice", "bob", "carol", "Alice"}
	open := map[chat.ConnID]bool{}
	joinedRoom := map[chat.ConnID]string{}
	next := 0

	for step := 0; step < 2000; step++ {
		switch rng.Intn(4) {
		case 0:
			id := chat.ConnID(fmt.Sprintf("c%d", next))
			next++
			relay.HandleConnect(id)
			open[id] = true
		case 1:
			if len(open) == 0 {
				continue
			}
			id := lo.Keys(open)[rng.Intn(len(open))]
			room := rooms[rng.Intn(len(rooms))]
			if err := relay.HandleJoin(id, names[rng.Intn(len(names))], room); err == nil {
				joinedRoom[id] = room
			}
		case 2:
			if len(open) == 0 {
				continue
			}
			id := lo.Keys(open)[rng.Intn(len(open))]
			relay.HandleChatMessage(id, "ping", nil)
		case 3:
			if len(open) == 0 {
				continue
			}
			id := lo.Keys(open)[rng.Intn(len(open))]
			relay.HandleDisconnect(id)
			delete(open, id)
			delete(joinedRoom, id)
		}

		memberCount := 0
		for _, name := range rooms {
			room, ok := store.Room(name)
			if !ok {
				require.Empty(t, transport.groups[name], "step %d: group %q outlived its room", step, name)
				continue
			}
			require.Positive(t, room.Len(), "step %d: empty room %q kept", step, name)
			require.Equal(t, room.Len(), len(lo.Uniq(room.Names())), "step %d: duplicate names in %q", step, name)
			require.Len(t, transport.groups[name], room.Len(), "step %d: group and room disagree", step)
			memberCount += room.Len()
		}
		require.Equal(t, len(joinedRoom), memberCount, "step %d", step)
		for id, roomName := range joinedRoom {
			room, ok := store.FindRoomOf(id)
			require.True(t, ok, "step %d: %s lost its room", step, id)
			require.Equal(t, roomName, room.Name)
		}
	}
}
