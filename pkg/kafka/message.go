package kafka

import (
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	HeaderTraceParent   = "traceparent"
	HeaderCorrelationID = "correlation_id"
	HeaderEventType     = "event_type"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string
}

func newIncomingMessage(msg kafka.Message) *IncomingMessage {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	return &IncomingMessage{
		Key:       string(msg.Key),
		Value:     msg.Value,
		Headers:   headers,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Topic:     msg.Topic,
	}
}

// Decode unmarshals the JSON value into v.
func (m *IncomingMessage) Decode(v any) error {
	return json.Unmarshal(m.Value, v)
}

// OutgoingMessage is a JSON payload to publish.
type OutgoingMessage struct {
	Key     string
	Value   any
	Headers map[string]string
}

func (m OutgoingMessage) encode(topic string) (kafka.Message, error) {
	data, err := json.Marshal(m.Value)
	if err != nil {
		return kafka.Message{}, err
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(m.Key),
		Value: data,
	}
	for k, v := range m.Headers {
		if v == "" {
			continue
		}
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return msg, nil
}
