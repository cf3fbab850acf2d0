// Package ws pushes live cart updates to subscribed storefront views so the
// sidebar, accordion summary, and tray preview all render the same derived
// order state without re-deriving it client-side.
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event types broadcast to cart subscribers.
const (
	EventCartUpdated = "cart.updated"
	EventCartDeleted = "cart.deleted"
)

// Event is a message broadcast to every subscriber of one cart.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// cartEvent routes an event to one cart's room.
type cartEvent struct {
	CartID uuid.UUID
	Event  Event
}

// Hub tracks active subscribers per cart and fans events out to them.
type Hub struct {
	// Registered clients by cart ID
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *cartEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *cartEvent, 256),
	}
}

// Run starts the hub's main loop.
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.cartID] == nil {
				h.rooms[client.cartID] = make(map[*Client]bool)
			}
			h.rooms[client.cartID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.cartID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.cartID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.CartID]

			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Subscriber can't keep up; drop it.
					close(client.send)
					delete(h.rooms[event.CartID], client)
					if len(h.rooms[event.CartID]) == 0 {
						delete(h.rooms, event.CartID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// CartUpdated broadcasts a fresh cart summary to the cart's subscribers.
// The payload is marshalled here so handler code stays JSON-agnostic.
func (h *Hub) CartUpdated(cartID uuid.UUID, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal cart update payload: %v", err)
		return
	}
	h.broadcast <- &cartEvent{
		CartID: cartID,
		Event:  Event{Type: EventCartUpdated, Payload: raw},
	}
}

// CartDeleted tells subscribers the cart session is gone.
func (h *Hub) CartDeleted(cartID uuid.UUID) {
	h.broadcast <- &cartEvent{
		CartID: cartID,
		Event:  Event{Type: EventCartDeleted, Payload: json.RawMessage(`{}`)},
	}
}
