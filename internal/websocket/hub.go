package websocket

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tahcohcat/tgrelay/internal/bot"
	"github.com/tahcohcat/tgrelay/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Development transport only; no origin checking
		return true
	},
}

// Hub is a local chat transport for development: each websocket connection
// acts as its own chat, text frames are relayed through the conversation
// handler and replies are routed back to the originating connection.
type Hub struct {
	handler    *bot.Handler
	clients    map[int64]*client
	register   chan *client
	unregister chan *client
	outbound   chan reply
	nextID     atomic.Int64
	logger     *logger.Log
}

type client struct {
	id   int64
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type reply struct {
	chatID int64
	text   string
	errc   chan error
}

func NewHub(handler *bot.Handler) *Hub {
	return &Hub{
		handler:    handler,
		clients:    make(map[int64]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		outbound:   make(chan reply),
		logger:     logger.New(),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			return

		case c := <-h.register:
			h.clients[c.id] = c
			h.logger.Info(fmt.Sprintf("chat client %d connected. Total: %d", c.id, len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
				h.logger.Info(fmt.Sprintf("chat client %d disconnected. Total: %d", c.id, len(h.clients)))
			}

		case r := <-h.outbound:
			c, ok := h.clients[r.chatID]
			if !ok {
				r.errc <- fmt.Errorf("chat client %d is gone", r.chatID)
				continue
			}
			select {
			case c.send <- []byte(r.text):
				r.errc <- nil
			default:
				close(c.send)
				delete(h.clients, r.chatID)
				r.errc <- fmt.Errorf("chat client %d send buffer full", r.chatID)
			}
		}
	}
}

// SendMessage implements bot.Sender. Replies go only to the connection the
// message came from.
func (h *Hub) SendMessage(ctx context.Context, chatID int64, text string) error {
	errc := make(chan error, 1)

	select {
	case h.outbound <- reply{chatID: chatID, text: text, errc: errc}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-ctx.Done():
		}
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Warn("websocket read error")
			}
			break
		}

		go c.hub.handler.HandleMessage(ctx, c.hub, c.id, string(data))
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.logger.WithError(err).Warn("websocket write error")
			return
		}
	}

	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Hub) handleWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade error")
		return
	}

	c := &client{id: h.nextID.Add(1), hub: h, conn: conn, send: make(chan []byte, 16)}

	// The hub loop stops with ctx; a late upgrade must not block on a
	// registration nobody is reading.
	select {
	case h.register <- c:
	case <-ctx.Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(ctx)
}

// RegisterRoutes mounts the /ws endpoint and starts the hub loop.
func (h *Hub) RegisterRoutes(ctx context.Context, r *mux.Router) {
	go h.Run(ctx)

	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		h.handleWebSocket(ctx, w, req)
	})
}
