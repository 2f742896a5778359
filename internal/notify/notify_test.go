package notify

import (
	"sync"
	"testing"
)

type captureSink struct {
	mu       sync.Mutex
	received []Notification
}

func (s *captureSink) Deliver(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, n)
}

func TestDispatcher_DeliversBeforeClose(t *testing.T) {
	sink := &captureSink{}
	dispatcher := NewDispatcher(sink, 8)

	for i := 0; i < 5; i++ {
		dispatcher.Dispatch(Notification{
			TenantId: "t1",
			UserId:   "u1",
			Kind:     "credits_received",
			Message:  "You received credits",
		})
	}
	dispatcher.Close()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.received) != 5 {
		t.Errorf("Expected 5 delivered notifications, got %d", len(sink.received))
	}
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	dispatcher := NewDispatcher(&captureSink{}, 1)
	dispatcher.Close()
	dispatcher.Close()
}

func TestDispatcher_NilSinkDefaultsToLog(t *testing.T) {
	dispatcher := NewDispatcher(nil, 1)
	dispatcher.Dispatch(Notification{TenantId: "t1", UserId: "u1", Kind: "test", Message: "hello"})
	dispatcher.Close()
}
