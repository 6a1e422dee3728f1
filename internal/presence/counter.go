package presence

import (
	"context"
	"sync/atomic"
)

// Counter consumes presence snapshots and keeps the number of chat
// users currently online, ignoring administrator connections. The
// dashboard's live "online users" card reads this value.
type Counter struct {
	events <-chan []Identity
	online atomic.Int64
}

// NewCounter builds a counter fed by a hub subscription.
func NewCounter(events <-chan []Identity) *Counter {
	return &Counter{events: events}
}

// Run processes snapshots in the order they arrive until the context is
// cancelled. Intended to run as `go counter.Run(ctx)`.
func (c *Counter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-c.events:
			n := 0
			for _, id := range snapshot {
				if !id.IsAdmin() {
					n++
				}
			}
			c.online.Store(int64(n))
		}
	}
}

// Value returns the most recently observed online chat-user count.
func (c *Counter) Value() int {
	return int(c.online.Load())
}
