package kafka

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type ProducerConfig struct {
	Brokers []string
	Topic   string
	// BatchTimeout bounds how long a lone event waits for company.
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// Producer publishes catalog events with kafka-go. It satisfies
// broadcaster.Publisher. Writes are synchronous and wait for every
// in-sync replica, so an acked outbox record is really on the broker.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(cfg ProducerConfig, log logrus.FieldLogger) (*Producer, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka producer needs brokers and a topic")
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	return &Producer{
		topic: cfg.Topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: cfg.BatchTimeout,
			WriteTimeout: cfg.WriteTimeout,
			ErrorLogger:  kafka.LoggerFunc(log.Errorf),
		},
	}, nil
}

// Publish writes one event keyed by author, so every move of one author's
// books stays ordered on a single partition.
func (p *Producer) Publish(ctx context.Context, author, event []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{Key: author, Value: event})
	return errors.Wrapf(err, "publish to %s", p.topic)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
