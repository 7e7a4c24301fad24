// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in test page.
package server

import (
	"fmt"
	"net/http"
)

// WebSocketHandler returns the handler of the /ws endpoint. It validates that
// the request uses the GET method, upgrades the HTTP connection to WebSocket,
// and registers a new Client with the hub, which starts its pumps.
func WebSocketHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "error", err)
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr)
		if !hub.Register(client) {
			client.closeConnection()
		}
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Room chat server is running!")
}

// TestPageHandler serves an HTML page for joining a room and chatting from a
// browser. Any other path under / is a 404.
func TestPageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, testPage)
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>Room Chat</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; background-color: #f9f9f9; }
        #messages img { max-width: 240px; display: block; }
        .system { color: gray; font-style: italic; }
        .error { color: #721c24; }
        input[type="text"] { width: 200px; padding: 5px; margin-right: 10px; }
    </style>
</head>
<body>
    <h1>Room Chat</h1>

    <div id="join">
        <input type="text" id="username" placeholder="Nickname">
        <input type="text" id="room" placeholder="Room">
        <button onclick="join()">Join</button>
    </div>

    <div id="chat" hidden>
        <input type="text" id="text" placeholder="Type a message...">
        <input type="file" id="image" accept="image/*">
        <button onclick="send()">Send</button>
    </div>

    <div id="messages"></div>

    <script>
        const messages = document.getElementById('messages');
        const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(scheme + location.host + '/ws');
        let nextRequest = 1;

        function show(text, cls) {
            const line = document.createElement('div');
            if (cls) line.className = cls;
            line.textContent = text;
            messages.appendChild(line);
            messages.scrollTop = messages.scrollHeight;
            return line;
        }

        ws.onmessage = function(event) {
            const frame = JSON.parse(event.data);
            if (frame.event === 'ack') {
                if (frame.data.status === 'ok') {
                    document.getElementById('join').hidden = true;
                    document.getElementById('chat').hidden = false;
                } else {
                    show(frame.data.message, 'error');
                }
                return;
            }
            if (frame.event !== 'message') return;
            const msg = frame.data;
            if (msg.user === 'system') {
                show(msg.text, 'system');
                return;
            }
            const line = show(msg.user + ': ' + msg.text);
            if (typeof msg.image === 'string') {
                const img = document.createElement('img');
                img.src = msg.image;
                line.appendChild(img);
            }
        };
        ws.onclose = function() { show('Connection closed', 'error'); };

        function join() {
            ws.send(JSON.stringify({
                event: 'join',
                request_id: String(nextRequest++),
                data: {
                    username: document.getElementById('username').value,
                    room: document.getElementById('room').value
                }
            }));
        }

        function send() {
            const text = document.getElementById('text');
            const file = document.getElementById('image');
            const emit = function(image) {
                ws.send(JSON.stringify({ event: 'chat', data: { text: text.value, image: image } }));
                text.value = '';
                file.value = '';
            };
            if (file.files.length === 0) {
                emit(null);
                return;
            }
            const reader = new FileReader();
            reader.onload = function() { emit(reader.result); };
            reader.readAsDataURL(file.files[0]);
        }

        document.getElementById('text').addEventListener('keypress', function(e) {
            if (e.key === 'Enter') send();
        });
    </script>
</body>
</html>`
