package websocket

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newTestClient(userID uuid.UUID) *Client {
	return &Client{
		UserID: userID,
		Role:   "patient",
		Send:   make(chan []byte, 256),
	}
}

func mustEvent(t *testing.T, name string, payload any) Event {
	t.Helper()
	evt, ok := NewEvent(name, payload)
	if !ok {
		t.Fatalf("failed to build event %q", name)
	}
	return evt
}

func TestHub_PublishToUser(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	userID := uuid.New()
	client := newTestClient(userID)
	hub.Register(client)

	hub.Publish(userID, mustEvent(t, "appointmentCreated", map[string]string{"id": "a1"}))

	select {
	case raw := <-client.Send:
		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Event != "appointmentCreated" {
			t.Errorf("event = %q, want appointmentCreated", evt.Event)
		}
	default:
		t.Fatal("expected event on client channel")
	}
}

func TestHub_PublishToAbsentUserIsNoop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	// Must not panic or block.
	hub.Publish(uuid.New(), mustEvent(t, "appointmentUpdated", nil))
}

func TestHub_MultiDeviceFanOut(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	userID := uuid.New()
	phone := newTestClient(userID)
	laptop := newTestClient(userID)
	other := newTestClient(uuid.New())
	hub.Register(phone)
	hub.Register(laptop)
	hub.Register(other)

	hub.Publish(userID, mustEvent(t, "appointmentStatusUpdated", map[string]string{"status": "confirmed"}))

	for name, c := range map[string]*Client{"phone": phone, "laptop": laptop} {
		select {
		case <-c.Send:
		default:
			t.Errorf("%s connection did not receive the event", name)
		}
	}
	select {
	case <-other.Send:
		t.Error("unrelated user received the event")
	default:
	}
}

func TestHub_PerConnectionOrdering(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	userID := uuid.New()
	client := newTestClient(userID)
	hub.Register(client)

	for i := 0; i < 5; i++ {
		hub.Publish(userID, mustEvent(t, "appointmentUpdated", map[string]int{"seq": i}))
	}

	for i := 0; i < 5; i++ {
		raw := <-client.Send
		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		var payload struct {
			Seq int `json:"seq"`
		}
		if err := json.Unmarshal(evt.Data, &payload); err != nil {
			t.Fatalf("unmarshal data: %v", err)
		}
		if payload.Seq != i {
			t.Fatalf("event %d arrived out of order (seq %d)", i, payload.Seq)
		}
	}
}

func TestHub_UnregisterRemovesClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	userID := uuid.New()
	client := newTestClient(userID)
	hub.Register(client)

	hub.Unregister(client)
	if got := hub.UserConnectionCount(userID); got != 0 {
		t.Errorf("UserConnectionCount = %d, want 0", got)
	}
	if _, open := <-client.Send; open {
		t.Error("expected Send channel to be closed")
	}

	// Double unregister must not panic.
	hub.Unregister(client)
}

func TestHub_DisconnectUserClosesAllConnections(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	userID := uuid.New()
	a := newTestClient(userID)
	b := newTestClient(userID)
	hub.Register(a)
	hub.Register(b)

	hub.DisconnectUser(userID)

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d, want 0", got)
	}
	for name, c := range map[string]*Client{"a": a, "b": b} {
		if _, open := <-c.Send; open {
			t.Errorf("connection %s channel still open", name)
		}
	}
}

func TestHub_FullBufferDoesNotBlockPublish(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	userID := uuid.New()
	client := &Client{UserID: userID, Send: make(chan []byte, 1)}
	hub.Register(client)

	// Second publish overflows the buffer and must be dropped, not block.
	hub.Publish(userID, mustEvent(t, "appointmentCreated", nil))
	hub.Publish(userID, mustEvent(t, "appointmentCreated", nil))

	if got := len(client.Send); got != 1 {
		t.Errorf("buffered events = %d, want 1", got)
	}
}

func TestHub_ConcurrentPublishAndRegister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	userID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := newTestClient(userID)
			hub.Register(c)
			hub.Unregister(c)
		}()
		go func() {
			defer wg.Done()
			hub.Publish(userID, mustEvent(t, "appointmentUpdated", nil))
		}()
	}
	wg.Wait()
}
