// services/events.go
package services

import (
	"sync"
	"time"

	"leftover-food-system/models"
)

const (
	EventCreated   = "created"
	EventClaimed   = "claimed"
	EventInTransit = "in_transit"
	EventCompleted = "completed"
)

// FoodEvent is pushed to live subscribers after a successful mutation.
type FoodEvent struct {
	Type string          `json:"type"`
	Food models.FoodItem `json:"food"`
	At   time.Time       `json:"at"`
}

// Broker fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[chan FoodEvent]struct{}
	buffer int
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{
		subs:   make(map[chan FoodEvent]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be called
// exactly once; it closes the channel.
func (b *Broker) Subscribe() (<-chan FoodEvent, func()) {
	ch := make(chan FoodEvent, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broker) Publish(ev FoodEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
