// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	applog "earshot/internal/log"

	"github.com/gorilla/websocket"
)

const (
	broadcastQueue = 256
	writeWait      = 5 * time.Second
	flushWait      = 2 * time.Second // Upper bound on delivering queued messages at Close.
)

// WebSocketTransport broadcasts every sent value as JSON to all clients
// connected on /ws. Slow or broken clients are dropped.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	done      chan struct{}
	flushed   chan struct{} // Closed once the broadcast loop has drained and exited.
	closeOnce sync.Once
	server    *http.Server
	log       applog.Logger
}

// NewWebSocketTransport creates the hub and starts its broadcast loop. Serve
// it with Handler or Listen.
func NewWebSocketTransport() *WebSocketTransport {
	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Progress is read-only and local.
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, broadcastQueue),
		done:      make(chan struct{}),
		flushed:   make(chan struct{}),
		log:       applog.For("websocket"),
	}
	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP handler serving the /ws endpoint.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	return mux
}

// Listen binds addr and serves the hub in the background. It returns the bound
// address, which differs from addr when addr uses port 0.
func (wst *WebSocketTransport) Listen(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	wst.server = &http.Server{
		Handler:           wst.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		wst.log.Infof("serving progress on ws://%s/ws", ln.Addr())
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			wst.log.Errorf("server error: %v", err)
		}
	}()
	return ln.Addr().String(), nil
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wst.log.Warnf("upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	n := len(wst.clients)
	wst.clientsMu.Unlock()
	wst.log.Debugf("client connected, total: %d", n)

	// Clients never send; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.drop(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) drop(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	if _, ok := wst.clients[conn]; ok {
		delete(wst.clients, conn)
		conn.Close()
	}
	n := len(wst.clients)
	wst.clientsMu.Unlock()
	wst.log.Debugf("client disconnected, total: %d", n)
}

// handleBroadcasts sends messages to all connected clients. After Close it
// delivers whatever is still queued, then exits.
func (wst *WebSocketTransport) handleBroadcasts() {
	defer close(wst.flushed)
	for {
		select {
		case data := <-wst.broadcast:
			wst.write(data)
		case <-wst.done:
			for {
				select {
				case data := <-wst.broadcast:
					wst.write(data)
				default:
					return
				}
			}
		}
	}
}

func (wst *WebSocketTransport) write(data any) {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	for client := range wst.clients {
		_ = client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteJSON(data); err != nil {
			wst.log.Warnf("error sending to client: %v", err)
			client.Close()
			delete(wst.clients, client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (wst *WebSocketTransport) ClientCount() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Send queues data for broadcast. When the queue is full the message is
// dropped; progress is advisory.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case <-wst.done:
		return errors.New("websocket transport closed")
	default:
	}
	select {
	case wst.broadcast <- data:
	default:
		wst.log.Debugf("broadcast queue full, dropping %T", data)
	}
	return nil
}

// Close flushes queued messages (waiting at most flushWait), then
// disconnects all clients and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		close(wst.done)
		select {
		case <-wst.flushed:
		case <-time.After(flushWait):
			wst.log.Warnf("gave up flushing queued messages after %s", flushWait)
		}

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()

		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)
