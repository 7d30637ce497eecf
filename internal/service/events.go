package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/pkg/kafka"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"github.com/prohmpiriya/hostel-saas/pkg/telemetry"
)

// EventPublisher delivers domain events after a write has committed
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event interface{}) error
}

// KafkaEventPublisher publishes JSON events through franz-go
type KafkaEventPublisher struct {
	producer *kafka.Producer
}

// NewKafkaEventPublisher creates a publisher on an open producer
func NewKafkaEventPublisher(producer *kafka.Producer) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, topic, key string, event interface{}) error {
	headers := map[string]string{"content-type": "application/json"}
	if traceID := telemetry.GetTraceID(ctx); traceID != "" {
		headers["trace-id"] = traceID
	}
	return p.producer.ProduceJSON(ctx, topic, key, event, headers)
}

// NoopEventPublisher drops every event
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, string, string, interface{}) error { return nil }

// PublishedEvent is one event captured by MemoryEventPublisher
type PublishedEvent struct {
	Topic string
	Key   string
	Event interface{}
}

// MemoryEventPublisher records events in order
type MemoryEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func (p *MemoryEventPublisher) Publish(_ context.Context, topic, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

// Events returns a copy of everything published so far
func (p *MemoryEventPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// ChangeNotifier runs the post-commit side effects every tenant write shares:
// the hostel's stats go stale and a change event goes out.
type ChangeNotifier struct {
	cache     StatsCache
	publisher EventPublisher
	clock     Clock
	log       *logger.Logger
}

// NewChangeNotifier creates a ChangeNotifier; nil dependencies fall back to no-ops
func NewChangeNotifier(cache StatsCache, publisher EventPublisher, clock Clock, log *logger.Logger) *ChangeNotifier {
	if cache == nil {
		cache = NoopStatsCache{}
	}
	if publisher == nil {
		publisher = NoopEventPublisher{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ChangeNotifier{cache: cache, publisher: publisher, clock: clock, log: log.Named("events")}
}

func (n *ChangeNotifier) changed(ctx context.Context, topic string, event *dto.EntityChangedEvent) {
	n.cache.Invalidate(ctx, event.HostelID)

	event.EventType = topic
	event.Timestamp = n.clock.Now().UTC()
	// Publish failures never undo a committed write
	if err := n.publisher.Publish(ctx, topic, event.Key(), event); err != nil {
		n.log.WarnContext(ctx, "failed to publish event",
			zap.String("topic", topic),
			zap.String("hostel_id", event.HostelID),
			zap.String("entity_id", event.EntityID),
			zap.Error(err),
		)
	}
}

func (n *ChangeNotifier) registered(ctx context.Context, event *dto.UserRegisteredEvent) {
	event.EventType = dto.TopicUserRegistered
	event.Timestamp = n.clock.Now().UTC()
	if err := n.publisher.Publish(ctx, dto.TopicUserRegistered, event.Key(), event); err != nil {
		n.log.WarnContext(ctx, "failed to publish event",
			zap.String("topic", dto.TopicUserRegistered),
			zap.String("hostel_id", event.HostelID),
			zap.Error(err),
		)
	}
}
