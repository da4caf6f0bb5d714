package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"sitesage/internal/middleware"
)

const (
	TypePageIndexed  = "page.indexed"
	TypePageFailed   = "page.failed"
	TypeRunCompleted = "run.completed"
)

// Event is one indexing progress notification.
type Event struct {
	Type          string    `json:"type"`
	URL           string    `json:"url,omitempty"`
	Chunks        int       `json:"chunks,omitempty"`
	Pages         int64     `json:"pages,omitempty"`
	Error         string    `json:"error,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Producer matches the publish side of an NSQ producer.
type Producer interface {
	Publish(topic string, body []byte) error
}

// NSQPublisher emits events to an NSQ topic. Publishing is best effort:
// a broker failure is logged and never disturbs the indexing run.
type NSQPublisher struct {
	producer Producer
	topic    string
}

func NewNSQPublisher(p Producer, topic string) *NSQPublisher {
	return &NSQPublisher{producer: p, topic: topic}
}

func (n *NSQPublisher) Publish(ctx context.Context, ev Event) {
	ev.Timestamp = time.Now().UTC()
	if ev.CorrelationID == "" {
		ev.CorrelationID = middleware.GetCorrelationID(ctx)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal index event", "error", err)
		return
	}
	if err := n.producer.Publish(n.topic, body); err != nil {
		slog.WarnContext(ctx, "failed to publish index event", "type", ev.Type, "error", err)
	}
}

// NopPublisher drops every event. Used when NSQ is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
