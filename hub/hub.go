package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Topics the hub publishes on. Dashboard clients subscribe to both.
const (
	TopicTables       = "tables"
	TopicReservations = "reservations"
)

// Event types carried in messages.
const (
	EventTableSnapshot       = "table_snapshot"
	EventReservationSnapshot = "reservation_snapshot"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Subscriber receives every message published on a topic, starting with the
// current snapshot at subscription time.
type Subscriber func(Message)

// Hub is an explicit observer registry: any number of subscribers per topic,
// each mutation re-publishes the full current snapshot (not a diff).
type Hub struct {
	mu        sync.Mutex
	nextID    uint64
	subs      map[string]map[uint64]Subscriber
	snapshots map[string]*Message // last published message per topic
	clients   map[*websocket.Conn][]func()
	log       *logrus.Logger
}

func New(log *logrus.Logger) *Hub {
	return &Hub{
		subs:      make(map[string]map[uint64]Subscriber),
		snapshots: make(map[string]*Message),
		clients:   make(map[*websocket.Conn][]func()),
		log:       log,
	}
}

// Subscribe registers fn on a topic and immediately delivers the current
// snapshot if one exists. The returned function removes the subscription.
func (h *Hub) Subscribe(topic string, fn Subscriber) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[uint64]Subscriber)
	}
	h.subs[topic][id] = fn
	snapshot := h.snapshots[topic]
	h.mu.Unlock()

	if snapshot != nil {
		fn(*snapshot)
	}

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[topic], id)
	}
}

// Publish stores msg as the topic's snapshot and fans it out to every
// subscriber. Publishing with no subscribers is a no-op beyond the store.
func (h *Hub) Publish(topic string, msg Message) {
	h.mu.Lock()
	h.snapshots[topic] = &msg
	targets := make([]Subscriber, 0, len(h.subs[topic]))
	for _, fn := range h.subs[topic] {
		targets = append(targets, fn)
	}
	h.mu.Unlock()

	for _, fn := range targets {
		fn(msg)
	}
}

// RegisterClient attaches a websocket connection as a subscriber on the given
// topics. Writes to the socket are serialized per connection.
func (h *Hub) RegisterClient(conn *websocket.Conn, topics ...string) {
	var writeMu sync.Mutex
	send := func(msg Message) {
		data, err := json.Marshal(msg)
		if err != nil {
			h.log.Errorf("Error marshaling hub message: %v", err)
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Errorf("Error sending hub message to client: %v", err)
		}
	}

	unsubs := make([]func(), 0, len(topics))
	for _, topic := range topics {
		unsubs = append(unsubs, h.Subscribe(topic, send))
	}

	h.mu.Lock()
	h.clients[conn] = unsubs
	h.mu.Unlock()
}

// UnregisterClient drops the connection's subscriptions and closes it.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mu.Lock()
	unsubs := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	conn.Close()
}
