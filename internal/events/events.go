package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	TopicCart  = "cart_events"
	TopicOrder = "order_events"

	TypeCartChanged     = "cart.changed"
	TypeWishlistChanged = "wishlist.changed"
	TypeOrderPlaced     = "order.placed"
)

type Event struct {
	Type    string         `json:"type"`
	Key     string         `json:"key,omitempty"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Topic returns the kafka topic an event type is routed to.
func (e Event) Topic() string {
	if e.Type == TypeOrderPlaced {
		return TopicOrder
	}
	return TopicCart
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

type Listener func(e Event)

// LogListener records every emitted event at debug level.
func LogListener(log *slog.Logger) Listener {
	log = log.With("component", "events.log")
	return func(e Event) {
		log.Debug("storefront_event", "type", e.Type, "topic", e.Topic(), "key", e.Key, "at", e.At)
	}
}

// Bus fans events out to in-process listeners and then to an optional downstream publisher.
// Downstream failures are logged and never returned to the store that emitted the event.
type Bus struct {
	mu        sync.RWMutex
	listeners []Listener
	next      Publisher
	timeout   time.Duration
	log       *slog.Logger
}

func NewBus(next Publisher, log *slog.Logger) *Bus {
	if next == nil {
		next = Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bus{next: next, timeout: 5 * time.Second, log: log.With("component", "events.bus")}
}

func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

func (b *Bus) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	ls := make([]Listener, len(b.listeners))
	copy(ls, b.listeners)
	b.mu.RUnlock()

	for _, l := range ls {
		l(e)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()
	if err := b.next.Publish(ctx, e); err != nil {
		b.log.Error("event_publish_failed", "type", e.Type, "topic", e.Topic(), "error", err)
	}
	return nil
}
