package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"support-bot-backend/internal/model"
	"support-bot-backend/internal/transport"
)

type stubTransport struct {
	mu   sync.Mutex
	sent []int64
	fail map[int64]error
}

func (s *stubTransport) SendText(_ context.Context, recipient int64, text string, kb transport.Keyboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[recipient]; ok {
		return err
	}
	s.sent = append(s.sent, recipient)
	return nil
}

func (s *stubTransport) SendMedia(context.Context, int64, model.MediaRef, string, transport.Keyboard) error {
	return nil
}

func (s *stubTransport) SendMediaBatch(context.Context, int64, []model.MediaRef) error {
	return nil
}

func (s *stubTransport) EditView(context.Context, transport.Location, string, *model.MediaRef, transport.Keyboard) error {
	return nil
}

func (s *stubTransport) Acknowledge(context.Context, string, string) error {
	return nil
}

func TestDispatcherDeliversAllJobs(t *testing.T) {
	tp := &stubTransport{}
	d := NewDispatcher(tp, 8, 2, nil)

	for i := int64(1); i <= 20; i++ {
		d.Enqueue(Job{Recipient: i, Text: "hello"})
	}
	d.Shutdown()

	tp.mu.Lock()
	defer tp.mu.Unlock()
	if len(tp.sent) != 20 {
		t.Fatalf("expected 20 deliveries, got %d", len(tp.sent))
	}
}

func TestDispatcherReportsOutcomeOnErrc(t *testing.T) {
	tp := &stubTransport{fail: map[int64]error{7: errors.New("blocked by recipient")}}
	var failures atomic.Int32
	d := NewDispatcher(tp, 4, 1, func() { failures.Add(1) })

	okc := make(chan error, 1)
	badc := make(chan error, 1)
	d.Enqueue(Job{Recipient: 1, Text: "a", Errc: okc})
	d.Enqueue(Job{Recipient: 7, Text: "b", Errc: badc})

	if err := <-okc; err != nil {
		t.Fatalf("delivery to 1 should succeed, got %v", err)
	}
	if err := <-badc; err == nil {
		t.Fatal("delivery to 7 should fail")
	}
	d.Shutdown()

	if failures.Load() != 1 {
		t.Fatalf("failure hook called %d times, want 1", failures.Load())
	}
}
