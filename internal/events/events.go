// Package events carries order and payment changes to everything that
// watches them: WebSocket rooms for merchants and diners, and the message
// broker for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/logging"
)

// Event is one order or payment change.
type Event struct {
	Type       string    `json:"type"`
	MerchantID string    `json:"merchant_id"`
	SessionID  string    `json:"session_id,omitempty"`
	OrderID    string    `json:"order_id"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// MerchantRoom and SessionRoom name the hub rooms an event is delivered to.
func MerchantRoom(merchantID string) string { return "merchant:" + merchantID }
func SessionRoom(sessionID string) string   { return "session:" + sessionID }

// Broadcaster delivers raw frames to a hub room. Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(room string, msg []byte)
}

// Publisher sends events to a broker. Satisfied by *RabbitPublisher.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Notifier fans an event out to the hub and, when configured, the broker.
// Delivery is best effort: failures are logged and never returned.
type Notifier struct {
	hub       Broadcaster
	publisher Publisher
	logger    *slog.Logger
}

// NewNotifier creates a Notifier. Either argument may be nil.
func NewNotifier(hub Broadcaster, publisher Publisher) *Notifier {
	return &Notifier{hub: hub, publisher: publisher, logger: logging.New("events")}
}

// Notify delivers ev to the merchant room, the session room and the broker.
func (n *Notifier) Notify(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	if n.hub != nil {
		frame, err := json.Marshal(ev)
		if err != nil {
			n.logger.Error("marshal event", "type", ev.Type, "err", err)
			return
		}
		n.hub.Broadcast(MerchantRoom(ev.MerchantID), frame)
		if ev.SessionID != "" {
			n.hub.Broadcast(SessionRoom(ev.SessionID), frame)
		}
	}

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, ev); err != nil {
			n.logger.Warn("publish event", "type", ev.Type, "order_id", ev.OrderID, "err", err)
		}
	}
}
