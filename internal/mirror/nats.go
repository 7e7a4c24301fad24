// Package mirror republishes room broadcasts to NATS so that processes outside
// the relay can observe room traffic.
package mirror

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/nats-io/nats.go"
)

// Publisher is the part of *nats.Conn the mirror uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Envelope is the body of every mirrored NATS message.
type Envelope struct {
	Room    string    `json:"room"`
	Event   string    `json:"event"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Transport decorates a chat.Transport: every call is forwarded unchanged and
// every group broadcast is also published on "<prefix>.rooms.<room>".
// Direct sends are private and are not mirrored.
type Transport struct {
	next   chat.Transport
	pub    Publisher
	prefix string
	log    *slog.Logger
	now    func() time.Time
}

var _ chat.Transport = (*Transport)(nil)

// NewTransport wraps next so that its broadcasts are mirrored to pub.
func NewTransport(next chat.Transport, pub Publisher, prefix string, log *slog.Logger) *Transport {
	return &Transport{
		next:   next,
		pub:    pub,
		prefix: strings.TrimSuffix(prefix, "."),
		log:    log,
		now:    time.Now,
	}
}

// Connect dials the NATS server at url.
func Connect(url string, log *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("roomchat"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

func (t *Transport) JoinGroup(id chat.ConnID, group string) {
	t.next.JoinGroup(id, group)
}

func (t *Transport) LeaveGroup(id chat.ConnID, group string) {
	t.next.LeaveGroup(id, group)
}

func (t *Transport) SendTo(id chat.ConnID, event string, payload any) {
	t.next.SendTo(id, event, payload)
}

// BroadcastToGroup forwards the broadcast, then publishes it. Publishing
// errors are logged and never reach the room.
func (t *Transport) BroadcastToGroup(group, event string, payload any, except chat.ConnID) {
	t.next.BroadcastToGroup(group, event, payload, except)

	data, err := json.Marshal(Envelope{Room: group, Event: event, Payload: payload, At: t.now().UTC()})
	if err != nil {
		t.log.Error("Failed to serialize mirrored broadcast", "room", group, "error", err)
		return
	}
	subject := Subject(t.prefix, group)
	if err := t.pub.Publish(subject, data); err != nil {
		t.log.Warn("Failed to mirror broadcast", "subject", subject, "error", err)
	}
}

// Subject returns the NATS subject a room is mirrored on. The room name is
// escaped into a single subject token: '_' and every character NATS does not
// accept inside a token become '_' followed by two hex digits, so distinct
// rooms never share a subject.
func Subject(prefix, room string) string {
	var token strings.Builder
	for _, r := range room {
		switch {
		case r == '_', r == '.', r == '*', r == '>', r <= ' ', r == 0x7f:
			fmt.Fprintf(&token, "_%02x", r)
		default:
			token.WriteRune(r)
		}
	}
	return prefix + ".rooms." + token.String()
}
