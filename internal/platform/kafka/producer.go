package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"chequeprint/internal/platform/config"
)

// Producer publishes to a single topic and waits for broker acknowledgement.
type Producer struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewProducer returns nil when no brokers are configured.
func NewProducer(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (*Producer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	logger.InfoContext(ctx, "kafka producer ready", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return &Producer{client: client, topic: cfg.Topic, logger: logger}, nil
}

func (p *Producer) Produce(ctx context.Context, key string, value []byte, headers map[string]string) error {
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: value,
	}
	for k, v := range headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Producer) Close() {
	p.client.Close()
}
