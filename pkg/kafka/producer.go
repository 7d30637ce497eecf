package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ErrNoBrokers is returned when the producer is configured without seed brokers
var ErrNoBrokers = errors.New("kafka: no brokers configured")

// ProducerConfig holds producer settings
type ProducerConfig struct {
	Brokers       []string
	ClientID      string
	TopicPrefix   string
	ProduceLinger time.Duration
	// PingTimeout bounds the connectivity check in NewProducer; zero skips it
	PingTimeout time.Duration
}

// Message is a keyed record for one topic
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// Producer publishes records synchronously with franz-go
type Producer struct {
	client *kgo.Client
	prefix string
}

// NewProducer builds a client and optionally verifies broker connectivity
func NewProducer(ctx context.Context, cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression(), kgo.NoCompression()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.ProduceLinger > 0 {
		opts = append(opts, kgo.ProducerLinger(cfg.ProduceLinger))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if cfg.PingTimeout > 0 {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to reach kafka brokers %s: %w", strings.Join(cfg.Brokers, ","), err)
		}
	}

	return &Producer{client: client, prefix: cfg.TopicPrefix}, nil
}

// Topic applies the configured prefix, e.g. "hostel" + "booking.created"
func (p *Producer) Topic(name string) string {
	return TopicName(p.prefix, name)
}

// TopicName joins a prefix and a topic with a dot
func TopicName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Produce writes one message and waits for the broker acknowledgement
func (p *Producer) Produce(ctx context.Context, msg Message) error {
	rec := &kgo.Record{
		Topic: p.Topic(msg.Topic),
		Key:   []byte(msg.Key),
		Value: msg.Value,
	}
	for k, v := range msg.Headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", rec.Topic, err)
	}
	return nil
}

// ProduceJSON marshals v as the record value
func (p *Producer) ProduceJSON(ctx context.Context, topic, key string, v interface{}, headers map[string]string) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", topic, err)
	}
	return p.Produce(ctx, Message{Topic: topic, Key: key, Value: value, Headers: headers})
}

// Close flushes buffered records and closes the client
func (p *Producer) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}
