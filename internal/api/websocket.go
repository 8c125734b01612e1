package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ifwatch/agent/internal/collector"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// ClientMessage represents a message from client to server.
type ClientMessage struct {
	Type       string   `json:"type"`       // "subscribe" or "unsubscribe"
	Interfaces []string `json:"interfaces"` // interface names or ["all"]
}

// ServerMessage represents a message from server to client.
type ServerMessage struct {
	Type string      `json:"type"` // "snapshot", "transition", "error"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages.
type Hub struct {
	clients map[*Client]bool

	broadcast chan ServerMessage

	register   chan *Client
	unregister chan *Client

	collector    *collector.Collector
	collectorSub <-chan collector.Event

	done chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan ServerMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetCollector sets the collector and subscribes to its events.
func (h *Hub) SetCollector(c *collector.Collector) {
	h.collector = c
	h.collectorSub = c.Subscribe()
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	if h.collectorSub != nil {
		go h.listenCollector()
	}

	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			log.Println("[WebSocket] Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[WebSocket] Client connected (total: %d)", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("[WebSocket] Client disconnected (total: %d)", len(h.clients))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if message.Type == "snapshot" {
					if ev, ok := message.Data.(collector.Event); ok && ev.Snapshot != nil {
						if !client.isSubscribed(ev.Snapshot.Iface) {
							continue
						}
					}
				}

				select {
				case client.send <- message:
				default:
					h.mu.RUnlock()
					h.mu.Lock()
					close(client.send)
					delete(h.clients, client)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop signals the hub to shutdown.
func (h *Hub) Stop() {
	close(h.done)
}

// listenCollector listens for events from the collector.
func (h *Hub) listenCollector() {
	for ev := range h.collectorSub {
		h.broadcast <- ServerMessage{Type: ev.Type, Data: ev}
	}
}

// Client represents a WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan ServerMessage

	// Subscribed interfaces; snapshot events are delivered only for these
	// unless allInterfaces is set
	interfaces    map[string]bool
	allInterfaces bool
	mu            sync.RWMutex
}

// isSubscribed checks if client is subscribed to an interface.
func (c *Client) isSubscribed(iface string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.allInterfaces {
		return true
	}
	return c.interfaces[iface]
}

// subscribe adds interfaces to subscription.
func (c *Client) subscribe(interfaces []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range interfaces {
		if name == "all" {
			c.allInterfaces = true
			return
		}
		c.interfaces[name] = true
	}
}

// unsubscribe removes interfaces from subscription.
func (c *Client) unsubscribe(interfaces []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range interfaces {
		if name == "all" {
			c.allInterfaces = false
			c.interfaces = make(map[string]bool)
			return
		}
		delete(c.interfaces, name)
	}
}

// readPump pumps messages from the WebSocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] Read error: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message format")
			continue
		}

		switch msg.Type {
		case "subscribe":
			c.subscribe(msg.Interfaces)
			log.Printf("[WebSocket] Client subscribed to: %v", msg.Interfaces)
		case "unsubscribe":
			c.unsubscribe(msg.Interfaces)
			log.Printf("[WebSocket] Client unsubscribed from: %v", msg.Interfaces)
		default:
			c.sendError("Unknown message type: " + msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("[WebSocket] Marshal error: %v", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendError sends an error message to the client.
func (c *Client) sendError(msg string) {
	select {
	case c.send <- ServerMessage{Type: "error", Data: msg}:
	default:
	}
}

// ServeWebSocket handles WebSocket requests from clients.
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WebSocket] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:        hub,
			conn:       conn,
			send:       make(chan ServerMessage, 256),
			interfaces: make(map[string]bool),
		}

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
