package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_RoutesByType(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, Event{Type: TypeCartChanged, Key: "cart", Payload: map[string]any{"count": 2}}))
	require.NoError(t, p.Publish(ctx, Event{Type: TypeOrderPlaced, Key: "BH1700000000000"}))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, TopicCart, w.msgs[0].Topic)
	assert.Equal(t, TopicOrder, w.msgs[1].Topic)
	assert.Equal(t, "BH1700000000000", string(w.msgs[1].Key))

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, TypeCartChanged, got.Type)
	assert.EqualValues(t, 2, got.Payload["count"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewKafkaPublisher(&fakeWriter{err: errors.New("broker down")})
	err := p.Publish(context.Background(), Event{Type: TypeCartChanged})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart_events")
}

func TestBus_ListenersAndDownstream(t *testing.T) {
	w := &fakeWriter{}
	bus := NewBus(NewKafkaPublisher(w), nil)

	var seen []string
	bus.Subscribe(func(e Event) { seen = append(seen, e.Type) })

	require.NoError(t, bus.Publish(context.Background(), Event{Type: TypeWishlistChanged}))
	assert.Equal(t, []string{TypeWishlistChanged}, seen)
	require.Len(t, w.msgs, 1)
}

func TestBus_DownstreamFailureIsSwallowed(t *testing.T) {
	bus := NewBus(NewKafkaPublisher(&fakeWriter{err: errors.New("broker down")}), nil)

	called := false
	bus.Subscribe(func(Event) { called = true })

	assert.NoError(t, bus.Publish(context.Background(), Event{Type: TypeCartChanged}))
	assert.True(t, called)
}

func TestBus_CanceledContextStillDelivers(t *testing.T) {
	w := &fakeWriter{}
	bus := NewBus(NewKafkaPublisher(w), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, bus.Publish(ctx, Event{Type: TypeOrderPlaced}))
	assert.Len(t, w.msgs, 1)
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	bus := NewBus(nil, log)
	bus.Subscribe(LogListener(log))
	require.NoError(t, bus.Publish(context.Background(), Event{Type: TypeOrderPlaced, Key: "BH1700000000000"}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "storefront_event", line["msg"])
	assert.Equal(t, TypeOrderPlaced, line["type"])
	assert.Equal(t, TopicOrder, line["topic"])
	assert.Equal(t, "BH1700000000000", line["key"])
}
