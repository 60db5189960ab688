package socket

import (
	"context"
	"encoding/json"
	"sync"

	"backoffice/pkg/logger"
)

const (
	SubscribedType = "SUBSCRIBED" // Sent to a client once it joined a room
	CreateType     = "CREATE"     // A record was created
	DeleteType     = "DELETE"     // A record was deleted
	ReloadType     = "RELOAD"     // The backing store changed outside the API
)

// Event is a change notification for one collection. An empty Collection
// addresses every room.
type Event struct {
	Type       string          `json:"type"`
	Collection string          `json:"collection,omitempty"`
	ID         string          `json:"id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Hub fans change events out to websocket clients grouped by collection.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client

	mu   sync.Mutex
	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.Collection] == nil {
				h.Rooms[client.Collection] = make(map[*Client]bool)
			}
			h.Rooms[client.Collection][client] = true
			h.mu.Unlock()

			msg, _ := json.Marshal(Event{Type: SubscribedType, Collection: client.Collection})
			h.deliver(client, msg)

		case client := <-h.Unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case ev := <-h.Broadcast:
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast event: %v", err)
				continue
			}

			// Collect recipients under the lock, send outside it.
			h.mu.Lock()
			var recipients []*Client
			for name, room := range h.Rooms {
				if ev.Collection != "" && name != ev.Collection {
					continue
				}
				for client := range room {
					recipients = append(recipients, client)
				}
			}
			h.mu.Unlock()

			for _, client := range recipients {
				h.deliver(client, payload)
			}
		}
	}
}

// Publish queues ev for broadcast. It never blocks the caller; events are
// dropped when the queue is full or the hub has stopped.
func (h *Hub) Publish(ev Event) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.Broadcast <- ev:
	default:
		logger.Sugar.Warnf("Broadcast queue full, dropping %s event for %s", ev.Type, ev.Collection)
	}
}

// ClientCount returns the number of clients subscribed to collection.
func (h *Hub) ClientCount(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[collection])
}

// deliver must only be called from Run.
func (h *Hub) deliver(client *Client, msg []byte) {
	select {
	case client.Send <- msg:
	default:
		// The client is lagging; drop it rather than block the hub.
		logger.Sugar.Warnf("Client on %s has a full send buffer. Unregistering.", client.Collection)
		h.mu.Lock()
		h.removeLocked(client)
		h.mu.Unlock()
	}
}

func (h *Hub) removeLocked(client *Client) {
	room, ok := h.Rooms[client.Collection]
	if !ok || !room[client] {
		return
	}
	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.Rooms, client.Collection)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	close(h.done)
	for _, room := range h.Rooms {
		for client := range room {
			h.removeLocked(client)
		}
	}
	logger.Sugar.Info("Websocket hub stopped")
}
