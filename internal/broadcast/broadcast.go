// Package broadcast is a same-origin style message bus: every subscriber
// receives messages published by every other subscriber, but never its own.
// It stands in for the browser BroadcastChannel the token refresh protocol
// was designed around; a process with a single subscription simply has no
// peers and publishing becomes a no-op.
package broadcast

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"streamglass/models"
)

const subscriberBuffer = 16

// Bus fans TokenMessage values out to all subscriptions except the sender.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]*Subscription)}
}

// Subscription is one attached peer. Messages from other peers arrive on C.
type Subscription struct {
	bus *Bus
	id  string
	ch  chan models.TokenMessage

	closeOnce sync.Once
}

// Subscribe attaches a new peer to the bus.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus: b,
		id:  uuid.NewString(),
		ch:  make(chan models.TokenMessage, subscriberBuffer),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	return sub
}

// C returns the receive channel. It is closed when the subscription closes.
func (s *Subscription) C() <-chan models.TokenMessage {
	return s.ch
}

// Publish delivers msg to every other subscription on the bus. Delivery is
// non-blocking: a peer whose buffer is full misses the message, mirroring the
// at-most-once delivery of the underlying platform primitive.
func (s *Subscription) Publish(msg models.TokenMessage) {
	s.bus.mu.RLock()
	defer s.bus.mu.RUnlock()

	for id, peer := range s.bus.subs {
		if id == s.id {
			continue
		}
		select {
		case peer.ch <- msg:
		default:
			log.Printf("[broadcast] dropping %q message for slow subscriber %s", msg.Action, id)
		}
	}
}

// Close detaches the subscription and closes its receive channel.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}
