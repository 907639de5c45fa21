// Package events implements the per-user server-sent-events fanout used to
// push compliance status changes to connected clients.
package events

import (
	"encoding/json"
	"sync"

	"dreistrom/internal/logger"
)

// Event is one named SSE message.
type Event struct {
	Name string
	Data []byte
}

// Well-known event names pushed on the stream.
const (
	EventKleinunternehmer = "kleinunternehmer-status"
	EventAbfaerbung       = "abfaerbung-status"
	EventSocialInsurance  = "social-insurance-status"
	EventMandatoryFiling  = "mandatory-filing-status"
	EventFeatureFlags     = "feature-flags"
	EventCalendarChanged  = "calendar-changed"
	EventInvoiceChanged   = "invoice-changed"
	EventHeartbeat        = "heartbeat"
)

// Broker fans events out to all of a user's open streams. Slow subscribers
// never block publishers: the send is non-blocking and drops when a
// subscriber's buffer is full.
type Broker struct {
	mu sync.Mutex
	// subs maps each open stream to its dedup cache: the last payload
	// delivered on that stream per event name. The cache lives and dies
	// with the subscription, so a reconnecting client always gets a
	// fresh snapshot.
	subs map[string]map[chan Event]map[string]string
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan Event]map[string]string),
	}
}

// Subscribe registers a new stream for the user and returns its channel.
func (b *Broker) Subscribe(userID string) chan Event {
	ch := make(chan Event, 16)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan Event]map[string]string)
	}
	b.subs[userID][ch] = make(map[string]string)
	return ch
}

// Unsubscribe removes the stream and closes its channel.
func (b *Broker) Unsubscribe(userID string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[userID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(b.subs, userID)
		}
	}
}

// Publish marshals the payload and sends it to every open stream of the user.
func (b *Broker) Publish(userID, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Get().Errorw("failed to marshal sse payload", "event", name, "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliver(userID, Event{Name: name, Data: data})
}

// PublishIfChanged sends the payload to each stream that has not already
// received it as the last payload under this event name. Dedup is tracked
// per stream, so a subscriber joining later still gets the current state
// even when longer-lived streams saw it before.
func (b *Broker) PublishIfChanged(userID, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Get().Errorw("failed to marshal sse payload", "event", name, "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ev := Event{Name: name, Data: data}
	for ch, last := range b.subs[userID] {
		if last[name] == string(data) {
			continue
		}
		last[name] = string(data)
		select {
		case ch <- ev:
		default:
			// Subscriber is not keeping up; drop rather than block.
		}
	}
}

// deliver sends to all of a user's channels without blocking. Callers must
// hold the mutex.
func (b *Broker) deliver(userID string, ev Event) {
	for ch := range b.subs[userID] {
		select {
		case ch <- ev:
		default:
			// Subscriber is not keeping up; drop rather than block.
		}
	}
}

// SubscriberCount returns the number of open streams for a user.
func (b *Broker) SubscriberCount(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[userID])
}
