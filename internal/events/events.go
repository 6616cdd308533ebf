// Package events publishes ticket lifecycle events to Redis so other
// processes (the ops feed) can observe the bot without sharing its memory.
// Publishing is best effort: a failed publish is logged, never fatal.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Channel is the Redis pub/sub channel all ticket events go through.
const Channel = "support-bot:tickets"

type Type string

const (
	TypeTicketCreated  Type = "ticket_created"
	TypeTicketReplied  Type = "ticket_replied"
	TypeTicketResolved Type = "ticket_resolved"
	TypeTicketReopened Type = "ticket_reopened"
	TypeTicketRated    Type = "ticket_rated"
	TypeUserBanned     Type = "user_banned"
	TypeBroadcastSent  Type = "broadcast_sent"
)

type Event struct {
	ID       string `json:"id"`
	Type     Type   `json:"type"`
	TicketID string `json:"ticketId,omitempty"`
	Category string `json:"category,omitempty"`
	Actor    int64  `json:"actor,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Time     string `json:"time"`
}

// Recorder is what the router depends on; tests plug their own.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

type Publisher struct {
	client *redis.Client
	now    func() time.Time
}

func NewPublisher(addr, password string) *Publisher {
	return &Publisher{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
		now: time.Now,
	}
}

func (p *Publisher) Record(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time == "" {
		e.Time = p.now().UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	if err := p.client.Publish(ctx, Channel, string(payload)).Err(); err != nil {
		return fmt.Errorf("events: publish: %w", err)
	}
	return nil
}

// Subscribe returns a channel of decoded events. The channel closes when ctx
// is cancelled or the subscription drops.
func (p *Publisher) Subscribe(ctx context.Context) <-chan Event {
	out := make(chan Event, 16)
	sub := p.client.Subscribe(ctx, Channel)

	go func() {
		defer close(out)
		defer sub.Close()
		for msg := range sub.Channel() {
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				continue
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Nop is used when no Redis endpoint is configured.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
