package chat_test

import (
	"github.com/Tyrowin/roomchat/internal/chat"
)

// recordingTransport keeps group membership the way a real transport would
// and records every message each connection receives.
type recordingTransport struct {
	groups map[string]map[chat.ConnID]struct{}
	inbox  map[chat.ConnID][]chat.Message
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{
		groups: make(map[string]map[chat.ConnID]struct{}),
		inbox:  make(map[chat.ConnID][]chat.Message),
	}
}

func (t *recordingTransport) JoinGroup(id chat.ConnID, group string) {
	members, ok := t.groups[group]
	if !ok {
		members = make(map[chat.ConnID]struct{})
		t.groups[group] = members
	}
	members[id] = struct{}{}
}

func (t *recordingTransport) LeaveGroup(id chat.ConnID, group string) {
	members, ok := t.groups[group]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(t.groups, group)
	}
}

func (t *recordingTransport) BroadcastToGroup(group, event string, payload any, except chat.ConnID) {
	for id := range t.groups[group] {
		if id == except {
			continue
		}
		t.SendTo(id, event, payload)
	}
}

func (t *recordingTransport) SendTo(id chat.ConnID, event string, payload any) {
	if event != chat.EventMessage {
		return
	}
	t.inbox[id] = append(t.inbox[id], payload.(chat.Message))
}

// drain returns and clears what the connection received so far.
func (t *recordingTransport) drain(id chat.ConnID) []chat.Message {
	msgs := t.inbox[id]
	delete(t.inbox, id)
	return msgs
}
