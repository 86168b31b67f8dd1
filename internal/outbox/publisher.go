// Package outbox delivers habit events to Kafka.
package outbox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is a domain event ready for delivery. Key selects the Kafka partition.
type Event struct {
	Type    string
	Key     string
	Payload interface{}
}

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

type schemaRegistrar interface {
	EnsureSchema(context.Context, string, string) (int, error)
}

// KafkaPublisher writes events to a single topic using Confluent wire framing.
type KafkaPublisher struct {
	producer      messageWriter
	registry      schemaRegistrar
	topic         string
	schemaIDCache sync.Map
	now           func() time.Time
}

// NewKafkaPublisher constructs a KafkaPublisher. registry may be nil, in which case
// frames carry schema id 0.
func NewKafkaPublisher(producer messageWriter, registry schemaRegistrar, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		registry: registry,
		topic:    topic,
		now:      time.Now,
	}
}

// Publish encodes the event payload and writes it to the configured topic.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	meta, ok := schemaCatalog[event.Type]
	if !ok {
		publishFailedCounter.WithLabelValues(event.Type).Inc()
		return fmt.Errorf("no schema metadata for event_type=%s", event.Type)
	}

	body, err := json.Marshal(event.Payload)
	if err != nil {
		publishFailedCounter.WithLabelValues(event.Type).Inc()
		return err
	}

	schemaID, err := p.schemaID(ctx, meta)
	if err != nil {
		publishFailedCounter.WithLabelValues(event.Type).Inc()
		return err
	}

	record := kafka.Message{
		Key:   []byte(event.Key),
		Value: encodeWireFormat(schemaID, body),
		Time:  p.now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "schema_subject", Value: []byte(meta.Subject)},
		},
	}

	if err := p.producer.WriteMessages(ctx, p.topic, record); err != nil {
		publishFailedCounter.WithLabelValues(event.Type).Inc()
		return err
	}
	publishedCounter.WithLabelValues(event.Type).Inc()
	return nil
}

func (p *KafkaPublisher) schemaID(ctx context.Context, meta SchemaCatalogEntry) (int, error) {
	if p.registry == nil {
		return 0, nil
	}
	if cached, ok := p.schemaIDCache.Load(meta.Subject); ok {
		return cached.(int), nil
	}
	id, err := p.registry.EnsureSchema(ctx, meta.Subject, meta.Schema)
	if err != nil {
		return 0, err
	}
	p.schemaIDCache.Store(meta.Subject, id)
	return id, nil
}

// encodeWireFormat applies Confluent framing for Schema Registry aware payloads.
func encodeWireFormat(schemaID int, payload []byte) []byte {
	frame := make([]byte, 5+len(payload))
	frame[0] = 0
	binary.BigEndian.PutUint32(frame[1:5], uint32(schemaID))
	copy(frame[5:], payload)
	return frame
}

// DecodeWireFormat splits a Confluent frame into schema id and payload.
func DecodeWireFormat(frame []byte) (int, []byte, error) {
	if len(frame) < 5 {
		return 0, nil, fmt.Errorf("invalid payload length: %d", len(frame))
	}
	if frame[0] != 0 {
		return 0, nil, fmt.Errorf("unknown magic byte %d", frame[0])
	}
	return int(binary.BigEndian.Uint32(frame[1:5])), frame[5:], nil
}
