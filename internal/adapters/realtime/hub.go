// Package realtime pushes notifications and alerts to connected users over
// websockets.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/metrics"

	"github.com/sirupsen/logrus"
)

// Push message types
const (
	TypeNotification   = "notification"
	TypeEmergencyAlert = "emergency_alert"
	TypeAlertResolved  = "alert_resolved"
	TypeAnnouncement   = "announcement"
	TypePong           = "pong"
)

// Message is the frame sent to clients.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type envelope struct {
	userID uint // 0 broadcasts to everyone
	data   []byte
}

// Hub maintains connected clients keyed by user.
type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	outbound   chan envelope
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	metrics    metrics.Recorder
	log        *logrus.Entry
}

// NewHub creates a hub. rec may be nil.
func NewHub(rec metrics.Recorder) *Hub {
	if rec == nil {
		rec = (*metrics.Collector)(nil)
	}
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan envelope, 256),
		done:       make(chan struct{}),
		metrics:    rec,
		log:        logger.With(logrus.Fields{"component": "realtime"}),
	}
}

// Run processes registrations and deliveries until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.userID] == nil {
				h.clients[c.userID] = make(map[*Client]bool)
			}
			h.clients[c.userID][c] = true
			h.mu.Unlock()
			h.metrics.WSConnected()
			h.log.WithFields(logrus.Fields{"user_id": c.userID, "client_id": c.id}).Debug("client connected")

		case c := <-h.unregister:
			h.remove(c)

		case env := <-h.outbound:
			h.deliver(env)

		case <-h.done:
			h.mu.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
					h.metrics.WSDisconnected()
				}
			}
			h.clients = make(map[uint]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	h.metrics.WSDisconnected()
	h.log.WithFields(logrus.Fields{"user_id": c.userID, "client_id": c.id}).Debug("client disconnected")
}

func (h *Hub) deliver(env envelope) {
	h.mu.RLock()
	var targets []*Client
	if env.userID == 0 {
		for _, set := range h.clients {
			for c := range set {
				targets = append(targets, c)
			}
		}
	} else {
		for c := range h.clients[env.userID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- env.data:
		default:
			// slow consumer
			h.log.WithField("client_id", c.id).Warn("⚠️ send buffer full, dropping client")
			go h.drop(c)
		}
	}
}

func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) enqueue(userID uint, msgType string, data any) {
	raw, err := json.Marshal(Message{Type: msgType, Data: data, Timestamp: time.Now()})
	if err != nil {
		h.log.WithError(err).Error("❌ failed to marshal push message")
		return
	}
	select {
	case h.outbound <- envelope{userID: userID, data: raw}:
	case <-h.done:
	}
}

// SendToUser pushes a message to every connection of userID.
func (h *Hub) SendToUser(userID uint, msgType string, data any) {
	if userID == 0 {
		return
	}
	h.enqueue(userID, msgType, data)
}

// Broadcast pushes a message to every connected user.
func (h *Hub) Broadcast(msgType string, data any) {
	h.enqueue(0, msgType, data)
}

// Online reports how many connections userID has open.
func (h *Hub) Online(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
