package monitor

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	// empty filters accept everything
	agent string
	types map[string]struct{}
}

func (c *client) accepts(f Frame) bool {
	if c.agent != "" && c.agent != f.Source {
		return false
	}
	if len(c.types) > 0 {
		if _, ok := c.types[f.Type]; !ok {
			return false
		}
	}
	return true
}

type hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	dropped atomic.Uint64
}

func newHub() *hub { return &hub{clients: make(map[*client]struct{})} }

func (h *hub) add(c *client) { h.mu.Lock(); h.clients[c] = struct{}{}; h.mu.Unlock() }

// remove closes the client's queue; safe to call more than once.
func (h *hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *hub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast never blocks; frames for clients with a full queue are dropped.
func (h *hub) broadcast(f Frame, b []byte) {
	h.mu.RLock()
	for c := range h.clients {
		if !c.accepts(f) {
			continue
		}
		select {
		case c.send <- b:
		default:
			h.dropped.Add(1)
		}
	}
	h.mu.RUnlock()
}

func (h *hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}
