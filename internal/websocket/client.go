package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"support-bot-backend/internal/events"
)

// FeedClient is one connected dashboard. AdminID is the identity minted into
// the feed token.
type FeedClient struct {
	Conn     *websocket.Conn
	Feed     chan events.Event
	ID       string
	AdminID  int64
	done     chan struct{}
	mu       sync.Mutex
	isClosed bool
}

func (cl *FeedClient) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Ping error for feed client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *FeedClient) writeEvents() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.Conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case event, ok := <-cl.Feed:
			if !ok {
				return
			}

			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteJSON(event)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Error sending event to feed client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

// readLoop drains the connection; the feed is one-way, inbound frames only
// matter as liveness and close signals.
func (cl *FeedClient) readLoop(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in readLoop: %v", r)
		}

		if cl.done != nil {
			close(cl.done)
		}

		hub.Unregister <- cl
		log.Printf("Feed client %s (admin %d) disconnected", cl.ID, cl.AdminID)
	}()

	cl.Conn.SetReadLimit(4 * 1024)

	for {
		if _, _, err := cl.Conn.ReadMessage(); err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("Error reading from feed client %s: %v", cl.ID, err)
			break
		}
	}
}
