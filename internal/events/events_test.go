package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type mockHub struct {
	mu     sync.Mutex
	frames map[string][][]byte
}

func (m *mockHub) Broadcast(room string, msg []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frames == nil {
		m.frames = map[string][][]byte{}
	}
	m.frames[room] = append(m.frames[room], msg)
}

type mockPublisher struct {
	events []Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, ev Event) error {
	m.events = append(m.events, ev)
	return m.err
}

type mockChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
	err       error
}

func (m *mockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	m.declared = append(m.declared, name+":"+kind)
	return m.err
}

func (m *mockChannel) PublishWithContext(_ context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	m.keys = append(m.keys, exchange+"/"+key)
	m.published = append(m.published, msg)
	return nil
}

func TestNotify_BroadcastsToMerchantAndSessionRooms(t *testing.T) {
	hub := &mockHub{}
	pub := &mockPublisher{}
	n := NewNotifier(hub, pub)

	n.Notify(context.Background(), Event{
		Type:       "order.created",
		MerchantID: "M1",
		SessionID:  "S1",
		OrderID:    "O1",
	})

	if len(hub.frames["merchant:M1"]) != 1 {
		t.Fatalf("merchant room frames = %d, want 1", len(hub.frames["merchant:M1"]))
	}
	if len(hub.frames["session:S1"]) != 1 {
		t.Fatalf("session room frames = %d, want 1", len(hub.frames["session:S1"]))
	}

	var got Event
	if err := json.Unmarshal(hub.frames["merchant:M1"][0], &got); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if got.OrderID != "O1" || got.OccurredAt.IsZero() {
		t.Errorf("frame = %+v, want order O1 with timestamp", got)
	}
	if len(pub.events) != 1 {
		t.Errorf("published = %d, want 1", len(pub.events))
	}
}

func TestNotify_NoSessionSkipsSessionRoom(t *testing.T) {
	hub := &mockHub{}
	n := NewNotifier(hub, nil)

	n.Notify(context.Background(), Event{Type: "payment.updated", MerchantID: "M1", OrderID: "O1"})

	if len(hub.frames) != 1 {
		t.Errorf("rooms = %v, want only merchant room", hub.frames)
	}
}

func TestNotify_PublisherErrorIsSwallowed(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	n := NewNotifier(nil, pub)

	// Must not panic with a nil hub.
	n.Notify(context.Background(), Event{Type: "order.created", MerchantID: "M1", OrderID: "O1"})

	if len(pub.events) != 1 {
		t.Errorf("published = %d, want 1", len(pub.events))
	}
}

func TestRabbitPublisher_RoutesByEventType(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewRabbitPublisher(ch, "ngantri.orders")
	if err != nil {
		t.Fatalf("NewRabbitPublisher: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "ngantri.orders:topic" {
		t.Errorf("declared = %v", ch.declared)
	}

	if err := p.Publish(context.Background(), Event{Type: "order.status_changed", OrderID: "O1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ch.keys[0] != "ngantri.orders/order.status_changed" {
		t.Errorf("key = %s", ch.keys[0])
	}
	msg := ch.published[0]
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Errorf("publishing = %+v", msg)
	}
	if msg.MessageId != "O1" {
		t.Errorf("MessageId = %q, want O1", msg.MessageId)
	}
}

func TestNewRabbitPublisher_DeclareError(t *testing.T) {
	ch := &mockChannel{err: errors.New("denied")}
	if _, err := NewRabbitPublisher(ch, "x"); err == nil {
		t.Fatal("expected error")
	}
}
