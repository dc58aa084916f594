package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/gorilla/websocket"

	"github.com/KonishchevDmitry/feedsync/internal/updater"
)

const (
	MessageStatus       = "update-status"
	MessageNotification = "notification"

	clientQueueSize = 16
	readLimit       = 4096
	readTimeout     = time.Minute
	writeTimeout    = 10 * time.Second
	pingInterval    = 30 * time.Second
)

// Message is an event sent to websocket clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub broadcasts scheduler events to all connected websocket clients. Clients which can't keep up with the events are
// disconnected, so broadcasting never blocks.
type Hub struct {
	upgrader websocket.Upgrader

	lock      sync.Mutex
	clients   map[*subscriber]struct{}
	closed    bool
	waitGroup sync.WaitGroup
}

var (
	_ updater.Comm     = &Hub{}
	_ updater.Notifier = &Hub{}
)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*subscriber]struct{}),
	}
}

func (h *Hub) BroadcastStatus(status updater.Status) {
	h.broadcast(Message{Type: MessageStatus, Data: status})
}

func (h *Hub) Notify(ctx context.Context, notification updater.Notification) {
	logging.L(ctx).Infof("%s: %s.", notification.Title, notification.Message)
	h.broadcast(Message{Type: MessageNotification, Data: notification})
}

func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and waits for their connections to be closed.
func (h *Hub) Close() {
	h.lock.Lock()
	h.closed = true
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.lock.Unlock()

	h.waitGroup.Wait()
}

func (h *Hub) broadcast(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		panic(err)
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// Serves a websocket connection until the client disconnects. onConnect is called when the client is ready to receive
// events.
func (h *Hub) serve(ctx context.Context, writer http.ResponseWriter, request *http.Request, onConnect func()) {
	conn, err := h.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		logging.L(ctx).Warnf("Failed to establish websocket connection: %s.", err)
		return
	}
	defer conn.Close()

	client := &subscriber{
		conn: conn,
		send: make(chan []byte, clientQueueSize),
	}
	if !h.add(client) {
		logging.L(ctx).Debugf("Rejecting websocket connection: the server is shutting down.")
		return
	}
	defer h.release(client)

	logging.L(ctx).Debugf("%s has connected.", request.RemoteAddr)
	defer logging.L(ctx).Debugf("%s has disconnected.", request.RemoteAddr)

	done := make(chan struct{})
	var waitGroup sync.WaitGroup
	defer waitGroup.Wait()
	defer close(done)

	waitGroup.Go(func() {
		h.writer(ctx, client, done)
	})

	onConnect()
	h.reader(ctx, client)
}

func (h *Hub) add(client *subscriber) bool {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.closed {
		return false
	}

	h.clients[client] = struct{}{}
	h.waitGroup.Add(1)
	return true
}

func (h *Hub) release(client *subscriber) {
	defer h.waitGroup.Done()

	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// Clients don't send anything, but the connection has to be read to process control messages.
func (h *Hub) reader(ctx context.Context, client *subscriber) {
	conn := client.conn
	conn.SetReadLimit(readLimit)

	extendDeadline := func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	}
	if err := extendDeadline(""); err != nil {
		logging.L(ctx).Warnf("Failed to set websocket read deadline: %s.", err)
		return
	}
	conn.SetPongHandler(extendDeadline)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			logging.L(ctx).Logf(logLevel(err), "Websocket connection has been closed: %s.", err)
			return
		}
	}
}

func (h *Hub) writer(ctx context.Context, client *subscriber, done <-chan struct{}) {
	conn := client.conn

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-client.send:
			if !ok {
				logging.L(ctx).Debugf("Closing websocket connection.")
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeTimeout))
				_ = conn.Close()
				return
			}

			err := conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err == nil {
				err = conn.WriteMessage(websocket.TextMessage, data)
			}
			if err != nil {
				logging.L(ctx).Logf(logLevel(err), "Failed to send websocket message: %s.", err)
				_ = conn.Close()
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				logging.L(ctx).Logf(logLevel(err), "Failed to ping websocket client: %s.", err)
				_ = conn.Close()
				return
			}

		case <-done:
			return
		}
	}
}
