package dev

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MessageType identifies a live channel message.
type MessageType string

const (
	TypeHello    MessageType = "hello"
	TypeReload   MessageType = "reload"
	TypeError    MessageType = "error"
	TypeMatch    MessageType = "match"
	TypeGenerate MessageType = "generate"
)

// Message is exchanged with live channel clients. Requests carry an ID
// that is echoed on the answer.
type Message struct {
	Type   MessageType       `json:"type"`
	ID     string            `json:"id,omitempty"`
	Client string            `json:"client,omitempty"`
	Path   string            `json:"path,omitempty"`
	Name   string            `json:"name,omitempty"`
	Args   []string          `json:"args,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Query  map[string]string `json:"query,omitempty"`
	URL    string            `json:"url,omitempty"`
	Match  *MatchResult      `json:"match,omitempty"`
	Error  string            `json:"error,omitempty"`
	Code   string            `json:"code,omitempty"`
	File   string            `json:"file,omitempty"`
}

// HandlerFunc answers a client request. A nil reply sends nothing.
type HandlerFunc func(req Message) *Message

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages live channel connections.
type Hub struct {
	clients  map[string]*client
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	handler  HandlerFunc
}

// NewHub creates a hub that answers requests with handler.
func NewHub(handler HandlerFunc) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
		handler: handler,
	}
}

// HandleWebSocket upgrades the connection and serves it until the client
// disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c.id)
		h.mu.Unlock()
		conn.Close()
	}()

	if err := h.sendTo(c, Message{Type: TypeHello, Client: c.id}); err != nil {
		return
	}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if _, ok := err.(*json.SyntaxError); ok {
				_ = h.sendTo(c, Message{Type: TypeError, Error: "malformed message"})
				continue
			}
			return
		}
		if h.handler == nil {
			continue
		}
		if reply := h.handler(msg); reply != nil {
			if err := h.sendTo(c, *reply); err != nil {
				return
			}
		}
	}
}

// NotifyReload tells all clients that the route map was rebuilt.
func (h *Hub) NotifyReload(file string) {
	h.broadcast(Message{Type: TypeReload, File: file})
}

// NotifyError tells all clients that rebuilding the route map failed.
func (h *Hub) NotifyError(file, code, message string) {
	h.broadcast(Message{Type: TypeError, File: file, Code: code, Error: message})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		c.conn.Close()
		delete(h.clients, id)
	}
}

func (h *Hub) sendTo(c *client, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.send(data)
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.send(data)
	}
}
