package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/WhalePrompt/stiky-note-md/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message is pushed to preview pages over the websocket
type Message struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Message types
const (
	TypeConnected = "connected"
	TypeReload    = "reload"
	TypeDeleted   = "deleted"
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// hub fans note change notifications out to the preview pages watching
// each note
type hub struct {
	log *logger.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]struct{} // note id -> clients
}

func newHub(log *logger.Logger) *hub {
	return &hub{
		log:     log,
		clients: make(map[string]map[*client]struct{}),
	}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.id] == nil {
		h.clients[c.id] = make(map[*client]struct{})
	}
	h.clients[c.id][c] = struct{}{}
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.id]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.id)
	}
}

func (h *hub) count(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[id])
}

// send queues msg for a single client
func (h *hub) send(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		h.log.Debug("dropping websocket message", "id", c.id, "type", msg.Type)
	}
}

// notify sends msg to every client of the note. Slow clients drop the
// message rather than block the sender.
func (h *hub) notify(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[msg.ID] {
		select {
		case c.send <- data:
		default:
			h.log.Debug("dropping websocket message", "id", msg.ID)
		}
	}
}

// closeAll disconnects every client
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, id)
	}
}

func (h *hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket error", "id", c.id, "error", err)
			}
			return
		}
	}
}

func (h *hub) writePump(c *client) {
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
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
