package kafka

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Writer is the part of *kafka.Writer the producer uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON messages to one topic
type Producer struct {
	writer Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compressionCodec(cfg.Compression),
		AllowAutoTopicCreation: true,
	}

	return NewProducerWithWriter(writer, cfg.Topic, logger)
}

// NewProducerWithWriter creates a producer over an existing writer.
func NewProducerWithWriter(writer Writer, topic string, logger ectologger.Logger) *Producer {
	return &Producer{
		writer: writer,
		logger: logger,
		topic:  topic,
	}
}

func compressionCodec(name string) kafka.Compression {
	switch name {
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	case "none":
		return 0
	default:
		return kafka.Snappy
	}
}

// Topic returns the topic the producer writes to.
func (p *Producer) Topic() string { return p.topic }

// GetName implements startup.StartupDependency.
func (p *Producer) GetName() string { return "kafka-producer" }

// DependsOn implements startup.StartupDependency.
func (p *Producer) DependsOn() []string { return nil }

// Start implements startup.StartupDependency. The writer connects lazily.
func (p *Producer) Start(context.Context) error { return nil }

// Stop flushes pending messages and closes the writer.
func (p *Producer) Stop(context.Context) error { return p.writer.Close() }

// Publish writes messages in one batch. The trace parent of ctx is attached
// to every message.
func (p *Producer) Publish(ctx context.Context, messages ...OutgoingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.Publish")
	defer span.End()

	if len(messages) == 0 {
		return nil
	}

	traceParent := tracing.GetTraceParent(ctx)
	encoded := make([]kafka.Message, 0, len(messages))
	for _, m := range messages {
		if traceParent != "" {
			if m.Headers == nil {
				m.Headers = make(map[string]string, 1)
			}
			m.Headers[HeaderTraceParent] = traceParent
		}
		msg, err := m.encode(p.topic)
		if err != nil {
			return err
		}
		encoded = append(encoded, msg)
	}

	start := time.Now()
	err := p.writer.WriteMessages(ctx, encoded...)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordKafkaPublish(p.topic, status, time.Since(start).Seconds())

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"topic":      p.topic,
		"batch_size": len(encoded),
	})
	if err != nil {
		log.WithError(err).Error("Failed to publish messages")
		return err
	}

	log.Debug("Published messages")
	return nil
}
