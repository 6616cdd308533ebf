// Package websocket streams ticket events to operations dashboards.
package websocket

import "support-bot-backend/internal/events"

type Hub struct {
	clients    map[string]*FeedClient
	Register   chan *FeedClient
	Unregister chan *FeedClient
	Broadcast  chan events.Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*FeedClient),
		Register:   make(chan *FeedClient),
		Unregister: make(chan *FeedClient),
		Broadcast:  make(chan events.Event),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client.ID] = client
			incConnections()

		case client := <-h.Unregister:
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Feed)
				decConnections()
			}

		case event := <-h.Broadcast:
			delivered := 0
			for _, client := range h.clients {
				select {
				case client.Feed <- event:
					delivered++
				default:
					// Slow consumer: drop the connection rather than the feed.
					close(client.Feed)
					delete(h.clients, client.ID)
					decConnections()
				}
			}
			if delivered > 0 {
				addDelivered(delivered)
			}
		}
	}
}
