package transport

import (
	"context"
	"log"

	"github.com/armadafleet/fleetsynth/internal/models"
)

// Broadcaster pushes encoded point events to connected clients
type Broadcaster interface {
	Start(ctx context.Context) error
	Broadcast(event models.Event) error
	ClientCount() int
	Address() string
}

// Pump feeds events from a channel into a broadcaster until the channel
// closes or ctx is cancelled. Broadcast failures are logged, not fatal.
func Pump(ctx context.Context, b Broadcaster, events <-chan models.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := b.Broadcast(event); err != nil {
				log.Printf("Broadcast to %s failed: %v", b.Address(), err)
			}
		}
	}
}
