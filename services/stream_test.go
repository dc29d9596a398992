package services

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.uber.org/goleak"

	"leftover-food-system/models"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitUntil(c *qt.C, cond func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			c.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	c := qt.New(t)
	b := NewBroker(1)

	slow, cancelSlow := b.Subscribe()
	c.Assert(b.Subscribers(), qt.Equals, 1)

	b.Publish(FoodEvent{Type: EventCreated})
	b.Publish(FoodEvent{Type: EventClaimed}) // buffer full, dropped

	c.Assert(len(slow), qt.Equals, 1)
	c.Assert((<-slow).Type, qt.Equals, EventCreated)

	cancelSlow()
	cancelSlow()
	c.Assert(b.Subscribers(), qt.Equals, 0)
	_, open := <-slow
	c.Assert(open, qt.IsFalse)
}

func TestWriteEventsStreamsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	c := qt.New(t)

	b := NewBroker(4)
	events, cancelSub := b.Subscribe()
	defer cancelSub()

	out := &lockedBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- writeEvents(ctx, bufio.NewWriter(out), events, time.Hour)
	}()

	waitUntil(c, func() bool { return strings.HasPrefix(out.String(), ":\n\n") })

	b.Publish(FoodEvent{Type: EventClaimed, Food: models.FoodItem{ID: 42, Status: models.StatusClaimed}})
	waitUntil(c, func() bool { return strings.Contains(out.String(), "event: food\n") })
	c.Assert(out.String(), qt.Contains, `"type":"claimed"`)
	c.Assert(out.String(), qt.Contains, `"id":42`)

	cancel()
	select {
	case err := <-done:
		c.Assert(err, qt.IsNil)
	case <-time.After(5 * time.Second):
		c.Fatal("writeEvents did not return")
	}
}

func TestWriteEventsStopsWhenSubscriptionCloses(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	c := qt.New(t)

	b := NewBroker(4)
	events, cancelSub := b.Subscribe()
	cancelSub()

	err := writeEvents(context.Background(), bufio.NewWriter(&lockedBuffer{}), events, time.Hour)
	c.Assert(err, qt.IsNil)
}
