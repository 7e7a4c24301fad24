// Command client is a terminal client for the room chat server.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/server"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
)

var (
	addr   = flag.String("addr", "localhost:8080", "server address")
	origin = flag.String("origin", "http://localhost:8080", "Origin header sent with the handshake")
	name   = flag.String("name", "", "nickname (prompted when empty)")
	room   = flag.String("room", "", "room to join (prompted when empty)")
)

var (
	systemStyle = color.New(color.FgGray, color.OpItalic)
	userStyle   = color.New(color.FgGreen, color.OpBold)
	selfStyle   = color.New(color.FgCyan, color.OpBold)
	errorStyle  = color.New(color.FgRed)
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		errorStyle.Printf("%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	stdin := bufio.NewScanner(os.Stdin)

	conn, err := dial()
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	nickname, err := joinRoom(conn, stdin, os.Stdout)
	if err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go readMessages(conn, nickname, os.Stdout, done)
	writeMessages(conn, stdin, interrupt, done)
	return nil
}

func dial() (*websocket.Conn, error) {
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	headers := http.Header{}
	headers.Set("Origin", *origin)

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, resp, err := dialer.Dial(u.String(), headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

func prompt(stdin *bufio.Scanner, out io.Writer, label, value string) string {
	for strings.TrimSpace(value) == "" {
		fmt.Fprint(out, label)
		if !stdin.Scan() {
			return ""
		}
		value = stdin.Text()
	}
	return value
}

func sendFrame(conn *websocket.Conn, event, requestID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteJSON(server.Frame{Event: event, RequestID: requestID, Data: data})
}

// joinRoom asks for a nickname until the server accepts one.
func joinRoom(conn *websocket.Conn, stdin *bufio.Scanner, out io.Writer) (string, error) {
	roomName := prompt(stdin, out, "Room: ", *room)
	nickname := *name

	for attempt := 1; ; attempt++ {
		nickname = prompt(stdin, out, "Nickname: ", nickname)
		if nickname == "" {
			return "", errors.New("no nickname given")
		}

		requestID := fmt.Sprintf("join-%d", attempt)
		req := chat.JoinRequest{Username: nickname, Room: roomName}
		if err := sendFrame(conn, server.EventJoin, requestID, req); err != nil {
			return "", fmt.Errorf("failed to send join: %w", err)
		}

		ack, err := waitForAck(conn, requestID, nickname, out)
		if err != nil {
			return "", err
		}
		if ack.Status == server.StatusOK {
			return nickname, nil
		}
		fmt.Fprintln(out, errorStyle.Render(ack.Message))
		nickname = ""
	}
}

// waitForAck reads until the ack of requestID. The welcome notice arrives
// ahead of it and is printed like any other message.
func waitForAck(conn *websocket.Conn, requestID, nickname string, out io.Writer) (server.JoinAck, error) {
	for {
		var f server.Frame
		if err := conn.ReadJSON(&f); err != nil {
			return server.JoinAck{}, fmt.Errorf("connection lost while joining: %w", err)
		}
		switch {
		case f.Event == server.EventMessage:
			printFrame(out, f, nickname)
		case f.Event == server.EventAck && f.RequestID == requestID:
			var ack server.JoinAck
			if err := json.Unmarshal(f.Data, &ack); err != nil {
				return server.JoinAck{}, fmt.Errorf("malformed ack: %w", err)
			}
			return ack, nil
		}
	}
}

func readMessages(conn *websocket.Conn, nickname string, out io.Writer, done chan struct{}) {
	defer close(done)
	for {
		var f server.Frame
		if err := conn.ReadJSON(&f); err != nil {
			fmt.Fprintln(out, errorStyle.Sprintf("Disconnected: %v", err))
			return
		}
		if f.Event == server.EventMessage {
			printFrame(out, f, nickname)
		}
	}
}

func printFrame(out io.Writer, f server.Frame, nickname string) {
	var msg chat.Message
	if err := json.Unmarshal(f.Data, &msg); err != nil {
		return
	}
	printMessage(out, msg, nickname)
}

func printMessage(out io.Writer, msg chat.Message, nickname string) {
	switch msg.User {
	case chat.SystemUser:
		fmt.Fprintln(out, systemStyle.Render(msg.Text))
		return
	case nickname:
		fmt.Fprint(out, selfStyle.Render(msg.User), ": ", msg.Text)
	default:
		fmt.Fprint(out, userStyle.Render(msg.User), ": ", msg.Text)
	}
	if len(msg.Image) > 0 && string(msg.Image) != "null" {
		fmt.Fprint(out, systemStyle.Sprintf(" [image, %d bytes]", len(msg.Image)))
	}
	fmt.Fprintln(out)
}

// writeMessages is the only writer once the room is joined.
func writeMessages(conn *websocket.Conn, stdin *bufio.Scanner, interrupt chan os.Signal, done chan struct{}) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for stdin.Scan() {
			lines <- stdin.Text()
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			err := conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				errorStyle.Printf("Error during close: %v\n", err)
			}
			return
		case text, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			if err := sendFrame(conn, server.EventChat, "", server.ChatPayload{Text: text}); err != nil {
				errorStyle.Printf("Failed to send: %v\n", err)
				return
			}
		}
	}
}
