// Package events provides the in-process publish/subscribe bus that links
// the store, navigation, bridge and the browser event stream.
package events

import (
	"context"
	"sync"
	"time"
)

// Topic names a class of events.
type Topic string

const (
	// TopicStoreChanged fires after every successful store mutation.
	TopicStoreChanged Topic = "store.changed"
	// TopicModuleActivated fires after a module becomes the active module.
	TopicModuleActivated Topic = "module.activated"
	// TopicModuleDeactivated fires when no module is active anymore.
	TopicModuleDeactivated Topic = "module.deactivated"
	// TopicModuleHandoff fires when an external-entry module is handed off.
	TopicModuleHandoff Topic = "module.handoff"
	// TopicReminderDue fires when a scheduled reminder is delivered.
	TopicReminderDue Topic = "reminder.due"
)

// Topics lists every topic known to the bus in a stable order.
func Topics() []Topic {
	return []Topic{
		TopicStoreChanged,
		TopicModuleActivated,
		TopicModuleDeactivated,
		TopicModuleHandoff,
		TopicReminderDue,
	}
}

// Event is one published message. Seq increases by one per publish.
type Event struct {
	Seq     uint64            `json:"seq"`
	Topic   Topic             `json:"topic"`
	At      time.Time         `json:"at"`
	Payload map[string]string `json:"payload,omitempty"`
}

// Handler receives events synchronously on the publishing goroutine.
// Handlers must not call Publish on the same bus.
type Handler func(context.Context, Event)

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(ctx context.Context, topic Topic, payload map[string]string) Event
}

// Observer is notified of every published topic, typically for metrics.
type Observer interface {
	EventPublished(topic string)
}

type subscription struct {
	id      uint64
	topic   Topic
	all     bool
	handler Handler
}

// Bus is a synchronous, ordered event bus. Delivery happens in publish order
// and every handler has returned before Publish returns.
type Bus struct {
	mu       sync.Mutex
	dispatch sync.Mutex
	seq      uint64
	nextID   uint64
	subs     []subscription
	now      func() time.Time
	observer Observer
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		if now != nil {
			b.now = now
		}
	}
}

// WithObserver attaches an observer notified on each publish.
func WithObserver(observer Observer) Option {
	return func(b *Bus) { b.observer = observer }
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, handler Handler) func() {
	return b.add(subscription{topic: topic, handler: handler})
}

// SubscribeAll registers handler for every topic.
func (b *Bus) SubscribeAll(handler Handler) func() {
	return b.add(subscription{all: true, handler: handler})
}

func (b *Bus) add(sub subscription) func() {
	if sub.handler == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers an event to the matching handlers and returns it.
func (b *Bus) Publish(ctx context.Context, topic Topic, payload map[string]string) Event {
	if ctx == nil {
		ctx = context.Background()
	}
	b.dispatch.Lock()
	defer b.dispatch.Unlock()

	b.mu.Lock()
	b.seq++
	evt := Event{Seq: b.seq, Topic: topic, At: b.now().UTC(), Payload: copyPayload(payload)}
	targets := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.all || sub.topic == topic {
			targets = append(targets, sub.handler)
		}
	}
	b.mu.Unlock()

	if b.observer != nil {
		b.observer.EventPublished(string(topic))
	}
	for _, handler := range targets {
		handler(ctx, evt)
	}
	return evt
}

// Seq returns the sequence number of the last published event.
func (b *Bus) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

func copyPayload(payload map[string]string) map[string]string {
	if len(payload) == 0 {
		return nil
	}
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	return out
}
