// internal/app/system/events/events.go
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event types.
const (
	EquipmentAdded    = "equipment.added"
	EquipmentUpdated  = "equipment.updated"
	EquipmentRemoved  = "equipment.removed"
	SyncCompleted     = "sync.completed"
	SyncFailed        = "sync.failed"
	EmissionsRecorded = "emissions.recorded"
)

// Event is a domain change announced to downstream consumers.
type Event struct {
	Type           string    `json:"type"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Time           time.Time `json:"time"`
	Payload        any       `json:"payload,omitempty"`
}

// Publisher announces events. Implementations log delivery failures and
// never return them to callers.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
	Close() error
}

// KafkaPublisher writes events as JSON messages to a single topic, keyed by
// organization so one organization's events stay ordered.
type KafkaPublisher struct {
	w      *kafka.Writer
	logger *zap.Logger
}

// NewKafka creates a publisher for the given brokers and topic.
func NewKafka(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Publish encodes ev and writes it to Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	msg, err := Message(ev)
	if err != nil {
		p.logger.Warn("event encode failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("event publish failed",
			zap.String("type", ev.Type),
			zap.String("topic", p.w.Topic),
			zap.Error(err))
		return
	}
	p.logger.Debug("event published", zap.String("type", ev.Type))
}

// Close flushes pending writes and releases the connection.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Message builds the Kafka message for ev.
func Message(ev Event) (kafka.Message, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.OrganizationID),
		Value: b,
		Time:  ev.Time,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	}, nil
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
func (Nop) Close() error                   { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the type of each recorded event in publish order.
func (r *Recorder) Types() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}
