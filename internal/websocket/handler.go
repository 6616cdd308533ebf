package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"support-bot-backend/internal/events"
	"support-bot-backend/internal/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ErrUnauthorized marks a handshake rejected for a missing or invalid token.
var ErrUnauthorized = errors.New("feed token rejected")

type Handler struct {
	hub    *Hub
	secret string
}

func NewHandler(hub *Hub, secret string) *Handler {
	return &Handler{hub: hub, secret: secret}
}

// ServeFeed upgrades an authenticated request to a live event stream. The
// short-lived token arrives as a query parameter because browsers cannot set
// headers on websocket handshakes.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) error {
	adminID, err := jwt.ParseToken(r.URL.Query().Get("token"), jwt.RoleOps, h.secret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		log.Printf("feed upgrade: %v", err)
		return nil
	}

	cl := &FeedClient{
		Conn:    conn,
		Feed:    make(chan events.Event, 16),
		ID:      uuid.NewString(),
		AdminID: adminID,
	}
	cl.done = make(chan struct{})

	h.hub.Register <- cl

	go cl.keepAlive()
	go cl.writeEvents()
	go cl.readLoop(h.hub)
	log.Printf("Feed client %s (admin %d) connected", cl.ID, adminID)
	return nil
}

// Pump forwards a subscribed event stream into the hub until the source
// closes or the context ends.
func (h *Handler) Pump(ctx context.Context, stream <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-stream:
			if !ok {
				return
			}
			h.hub.Broadcast <- event
		}
	}
}
