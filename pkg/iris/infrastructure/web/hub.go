package web

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/websocket"

	"kgeyst.com/iris/pkg/iris/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// Event is what status feed subscribers receive.
type Event struct {
	Type         string `json:"type"`
	State        string `json:"state,omitempty"`
	Outcome      string `json:"outcome,omitempty"`
	LastResponse string `json:"lastResponse,omitempty"`
	Visible      *bool  `json:"visible,omitempty"`
}

const (
	EventTypeState    = "state"
	EventTypeCycle    = "cycle"
	EventTypeRejected = "rejected"
	EventTypeSettings = "settings"
)

// Hub broadcasts orchestrator events to every connected websocket client. It's a domain.Listener.
type Hub struct {
	mutex   sync.Mutex
	clients map[*client]struct{}
	logger  log.Interface
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub(logger log.Interface) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) StateChanged(state domain.State) {
	h.Broadcast(Event{Type: EventTypeState, State: state.String()})
}

func (h *Hub) CycleCompleted(outcome domain.CycleOutcome, lastResponse string) {
	h.Broadcast(Event{Type: EventTypeCycle, Outcome: outcome.String(), LastResponse: lastResponse})
}

func (h *Hub) TriggerRejected(outcome domain.TriggerOutcome) {
	h.Broadcast(Event{Type: EventTypeRejected, Outcome: outcome.String()})
}

func (h *Hub) SettingsVisibilityChanged(visible bool) {
	h.Broadcast(Event{Type: EventTypeSettings, Visible: &visible})
}

// Broadcast never blocks: a client which can't keep up is disconnected.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("failed to serialize an event")
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.removeLocked(c)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Register takes ownership of the connection.
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()
	go c.writePump()
	go c.readPump()
}

// Close disconnects everyone.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// The feed is one-way; reading is only needed to notice that the client has gone away.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Debug("websocket read failed")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			err := c.conn.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}
