package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "match.completed", testLogger())

	err := p.Publish(context.Background(),
		OutgoingMessage{Key: "42", Value: map[string]int{"entity_id": 42}, Headers: map[string]string{HeaderEventType: "automatch", "empty": ""}},
		OutgoingMessage{Key: "43", Value: []string{"x"}},
	)
	require.NoError(t, err)
	require.Len(t, w.messages, 2)

	first := w.messages[0]
	assert.Equal(t, "match.completed", first.Topic)
	assert.Equal(t, "42", string(first.Key))
	assert.JSONEq(t, `{"entity_id":42}`, string(first.Value))
	assert.Equal(t, []kafka.Header{{Key: HeaderEventType, Value: []byte("automatch")}}, first.Headers)
	assert.Empty(t, w.messages[1].Headers)

	require.NoError(t, p.Publish(context.Background()))
	assert.Len(t, w.messages, 2)

	require.NoError(t, p.Stop(context.Background()))
	assert.True(t, w.closed)
}

func TestProducer_PublishErrors(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{err: errors.New("broker down")}, "t", testLogger())
	assert.ErrorContains(t, p.Publish(context.Background(), OutgoingMessage{Key: "1", Value: 1}), "broker down")

	p = NewProducerWithWriter(&fakeWriter{}, "t", testLogger())
	assert.Error(t, p.Publish(context.Background(), OutgoingMessage{Key: "1", Value: make(chan int)}))
}

func TestCompressionCodec(t *testing.T) {
	assert.Equal(t, kafka.Gzip, compressionCodec("gzip"))
	assert.Equal(t, kafka.Zstd, compressionCodec("zstd"))
	assert.Equal(t, kafka.Snappy, compressionCodec(""))
	assert.Equal(t, kafka.Compression(0), compressionCodec("none"))
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestConsumer_CommitsOnlyHandledMessages(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Topic: "dedupe.requested", Offset: 1, Key: []byte("1"), Value: []byte(`{"entity_id":1}`), Headers: []kafka.Header{{Key: "a", Value: []byte("b")}}},
		{Topic: "dedupe.requested", Offset: 2, Value: []byte(`{"entity_id":2}`)},
		{Topic: "dedupe.requested", Offset: 3, Value: []byte(`{"entity_id":3}`)},
	}}

	var (
		mu   sync.Mutex
		seen []*IncomingMessage
		done = make(chan struct{})
	)
	handler := func(_ context.Context, msg *IncomingMessage) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, msg)
		if len(seen) == 3 {
			close(done)
		}
		if msg.Offset == 2 {
			return errors.New("transient")
		}
		return nil
	}

	c := NewConsumerWithReader(reader, "dedupe.requested", testLogger(), handler)
	require.NoError(t, c.Start(context.Background()))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called for every message")
	}
	require.NoError(t, c.Stop(context.Background()))

	assert.Equal(t, []int64{1, 3}, reader.commits())
	assert.True(t, reader.closed)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "1", seen[0].Key)
	assert.Equal(t, "b", seen[0].Headers["a"])

	var body struct {
		EntityID int64 `json:"entity_id"`
	}
	require.NoError(t, seen[0].Decode(&body))
	assert.Equal(t, int64(1), body.EntityID)
}
