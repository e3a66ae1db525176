package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/Noore22/Cake-Craft/internal/services"
)

// PubSubOrderPublisher publishes order lifecycle events to a Pub/Sub topic.
// Events use the order id as ordering key, so subscribers see one order's
// status changes in the sequence they happened.
type PubSubOrderPublisher struct {
	topic *pubsub.Topic
}

var _ services.OrderEventPublisher = (*PubSubOrderPublisher)(nil)

// NewPubSubOrderPublisher enables message ordering on topic and wraps it.
func NewPubSubOrderPublisher(topic *pubsub.Topic) (*PubSubOrderPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub order publisher: topic is required")
	}
	topic.EnableMessageOrdering = true
	return &PubSubOrderPublisher{topic: topic}, nil
}

// PublishOrderEvent sends the event and waits for the server to acknowledge it.
func (p *PubSubOrderPublisher) PublishOrderEvent(ctx context.Context, event services.OrderEvent) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub order publisher: not initialised")
	}
	msg, err := orderEventMessage(event)
	if err != nil {
		return err
	}
	if _, err := p.topic.Publish(ctx, msg).Get(ctx); err != nil {
		// A failed ordered publish pauses the key until resumed.
		if msg.OrderingKey != "" {
			p.topic.ResumePublish(msg.OrderingKey)
		}
		return fmt.Errorf("publish %s for %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}

// Ping confirms the topic exists.
func (p *PubSubOrderPublisher) Ping(ctx context.Context) error {
	ok, err := p.topic.Exists(ctx)
	switch {
	case err != nil:
		return fmt.Errorf("pubsub order publisher: %w", err)
	case !ok:
		return fmt.Errorf("pubsub order publisher: topic %s not found", p.topic.ID())
	}
	return nil
}

// Stop flushes pending messages.
func (p *PubSubOrderPublisher) Stop() {
	if p != nil && p.topic != nil {
		p.topic.Stop()
	}
}

// orderEventMessage encodes the event as JSON and copies the routing fields
// into attributes so subscriptions can filter without decoding.
func orderEventMessage(event services.OrderEvent) (*pubsub.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal order event: %w", err)
	}
	attrs := make(map[string]string, 6)
	for key, value := range map[string]string{
		"eventType":      event.Type,
		"orderId":        event.OrderID,
		"checkoutId":     event.CheckoutID,
		"status":         event.CurrentStatus,
		"previousStatus": event.PreviousStatus,
	} {
		if v := strings.TrimSpace(value); v != "" {
			attrs[key] = v
		}
	}
	if !event.OccurredAt.IsZero() {
		attrs["occurredAt"] = event.OccurredAt.UTC().Format(time.RFC3339)
	}
	return &pubsub.Message{
		Data:        data,
		Attributes:  attrs,
		OrderingKey: strings.TrimSpace(event.OrderID),
	}, nil
}
