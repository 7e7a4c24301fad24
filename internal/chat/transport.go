//go:generate go run go.uber.org/mock/mockgen -source=transport.go -destination=../mocks/mock_transport.go -package=mocks
package chat

// NoConn is passed as the except argument of BroadcastToGroup when nobody is
// excluded.
const NoConn ConnID = ""

// Transport is the capability the core needs from the real-time transport.
// Implementations must not block: they are called from inside event handlers.
type Transport interface {
	// JoinGroup subscribes the connection to the group's broadcasts.
	JoinGroup(id ConnID, group string)
	// LeaveGroup removes the connection from the group.
	LeaveGroup(id ConnID, group string)
	// BroadcastToGroup delivers the event to every member of the group except
	// the connection named by except (NoConn excludes nobody).
	BroadcastToGroup(group string, event string, payload any, except ConnID)
	// SendTo delivers the event to a single connection.
	SendTo(id ConnID, event string, payload any)
}
