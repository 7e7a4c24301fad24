// Package testhelpers provides helpers shared by the server tests: HTTP
// requests, WebSocket dialing and frame-level send and receive.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// TestOrigin is the Origin header sent by ConnectWebSocket. It matches the
// server's default allow-list.
const TestOrigin = "http://localhost:8080"

const readTimeout = 2 * time.Second

// Frame mirrors the wire envelope for assertions.
type Frame struct {
	Event     string          `json:"event"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Message is the payload of a "message" frame.
type Message struct {
	User  string          `json:"user"`
	Text  string          `json:"text"`
	Image json.RawMessage `json:"image"`
}

// Ack is the payload of an "ack" frame.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	require.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertContentType checks if the HTTP response has the expected Content-Type header.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	require.Equal(t, expected, resp.Header.Get("Content-Type"), "unexpected content type")
}

// MakeRequest creates and executes an HTTP request with a 5-second timeout.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	require.NoError(t, err, "failed to create request")

	resp, err := client.Do(req)
	require.NoError(t, err, "failed to make request")
	return resp
}

// WebSocketURL turns an httptest server URL into its /ws endpoint.
func WebSocketURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// ConnectWebSocket dials url with the given Origin header.
func ConnectWebSocket(url, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, resp, err
}

// MustConnect dials url with TestOrigin and closes the connection when the
// test ends.
func MustConnect(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := ConnectWebSocket(url, TestOrigin)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SendFrame writes one frame whose data is payload encoded as JSON.
func SendFrame(t *testing.T, conn *websocket.Conn, event, requestID string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Frame{Event: event, RequestID: requestID, Data: data}))
}

// ReadFrame reads the next frame, failing the test if none arrives in time.
func ReadFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame), "expected a frame")
	return frame
}

// ReadMessage reads the next frame and decodes it as a "message".
func ReadMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	frame := ReadFrame(t, conn)
	require.Equal(t, "message", frame.Event)
	var msg Message
	require.NoError(t, json.Unmarshal(frame.Data, &msg))
	return msg
}

// Join sends a join request and reads frames up to its acknowledgement.
// Messages delivered ahead of the ack, such as the welcome notice, are
// returned with it.
func Join(t *testing.T, conn *websocket.Conn, username, room string) (Ack, []Message) {
	t.Helper()
	requestID := "join-" + username
	SendFrame(t, conn, "join", requestID, map[string]string{"username": username, "room": room})

	var messages []Message
	for {
		frame := ReadFrame(t, conn)
		if frame.Event == "ack" {
			require.Equal(t, requestID, frame.RequestID)
			var ack Ack
			require.NoError(t, json.Unmarshal(frame.Data, &ack))
			return ack, messages
		}
		require.Equal(t, "message", frame.Event)
		var msg Message
		require.NoError(t, json.Unmarshal(frame.Data, &msg))
		messages = append(messages, msg)
	}
}

// MustJoin joins the room and checks that the welcome notice came first.
func MustJoin(t *testing.T, conn *websocket.Conn, username, room string) {
	t.Helper()
	ack, messages := Join(t, conn, username, room)
	require.Equal(t, "ok", ack.Status, ack.Message)
	require.Len(t, messages, 1)
	require.Equal(t, "system", messages[0].User)
}

// ExpectNoFrame fails the test if a frame arrives within wait.
func ExpectNoFrame(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame: %s", data)
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
