package transport

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/armadafleet/fleetsynth/internal/models"
)

// Dispatcher copies point events from one stream to every subscriber.
// A subscriber whose buffer is full misses the event instead of stalling the
// stream; misses are counted and logged.
type Dispatcher struct {
	source      <-chan models.Event
	subscribers []chan models.Event
	bufferSize  int
	mu          sync.Mutex
	dispatched  atomic.Int64
	dropped     atomic.Int64
}

func NewDispatcher(source <-chan models.Event, bufferSize int) *Dispatcher {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Dispatcher{
		source:     source,
		bufferSize: bufferSize,
	}
}

// Subscribe returns a channel that receives a copy of every event.
// Subscribe before Run so no events are missed.
func (d *Dispatcher) Subscribe() <-chan models.Event {
	ch := make(chan models.Event, d.bufferSize)
	d.mu.Lock()
	d.subscribers = append(d.subscribers, ch)
	d.mu.Unlock()
	return ch
}

// SubscriberCount returns the number of subscribers.
func (d *Dispatcher) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}

// Dispatched returns the number of events read from the source.
func (d *Dispatcher) Dispatched() int64 {
	return d.dispatched.Load()
}

// Dropped returns the number of per-subscriber deliveries skipped because a
// buffer was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Run blocks until ctx is cancelled or the source closes, then closes every
// subscriber channel.
func (d *Dispatcher) Run(ctx context.Context) {
	defer d.closeSubscribers()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-d.source:
			if !ok {
				return
			}
			d.dispatched.Add(1)
			d.dispatch(ctx, event)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event models.Event) {
	d.mu.Lock()
	subs := d.subscribers
	d.mu.Unlock()

	missed := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		case <-ctx.Done():
			return
		default:
			missed++
		}
	}

	if missed > 0 {
		d.dropped.Add(int64(missed))
		log.Printf("Dispatcher: point %d (seq %d) dropped for %d subscriber(s), buffer full",
			event.Point.TimePercent, event.Meta.Sequence, missed)
	}
}

func (d *Dispatcher) closeSubscribers() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, sub := range d.subscribers {
		close(sub)
	}
}
