package presence

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry tracks which identities currently hold live push channels.
// It is the only mutable shared state of the presence core; everything
// else observes it through snapshots.
type Registry interface {
	// Register adds a channel under the identity, creating the entry if
	// absent. Registering the same handle twice yields duplicate
	// delivery, not deduplication: each call represents a live resource.
	Register(id Identity, ch Channel)

	// Unregister removes one occurrence of the channel. When the last
	// channel of an identity goes, the identity leaves the registry.
	// Unregistering an unknown handle is a no-op.
	Unregister(id Identity, ch Channel)

	// Snapshot returns the set of currently registered identities.
	// Channel detail is deliberately not exposed.
	Snapshot() []Identity

	// Size returns the number of distinct registered identities.
	Size() int
}

// Hub is the registry together with its publisher: every successful
// mutation fans a fresh snapshot out to all registered channels and to
// in-process subscribers, in mutation order.
type Hub struct {
	mu    sync.Mutex
	conns map[Identity][]Channel
	subs  []chan []Identity
	log   *zerolog.Logger
}

// NewHub creates an empty presence hub.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		conns: make(map[Identity][]Channel),
		log:   logger,
	}
}

type fault struct {
	id Identity
	ch Channel
}

// Register implements Registry. The registering channel receives the
// resulting snapshot too, which doubles as the initial presence event
// for a new connection.
func (h *Hub) Register(id Identity, ch Channel) {
	h.mu.Lock()
	h.conns[id] = append(h.conns[id], ch)
	faults := h.broadcastLocked()
	h.mu.Unlock()

	h.log.Debug().Str("identity", id.String()).Int("online", h.Size()).Msg("presence channel registered")
	h.retire(faults)
}

// Unregister implements Registry.
func (h *Hub) Unregister(id Identity, ch Channel) {
	h.mu.Lock()
	chans, ok := h.conns[id]
	idx := -1
	for i, c := range chans {
		if c == ch {
			idx = i
			break
		}
	}
	if !ok || idx < 0 {
		// Unknown handle: already released, nothing to broadcast.
		h.mu.Unlock()
		return
	}

	chans = append(chans[:idx], chans[idx+1:]...)
	if len(chans) == 0 {
		delete(h.conns, id)
	} else {
		h.conns[id] = chans
	}
	faults := h.broadcastLocked()
	h.mu.Unlock()

	h.log.Debug().Str("identity", id.String()).Int("online", h.Size()).Msg("presence channel unregistered")
	h.retire(faults)
}

// Snapshot implements Registry.
func (h *Hub) Snapshot() []Identity {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]Identity, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	return ids
}

// Size implements Registry.
func (h *Hub) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Subscribe returns a channel carrying identity snapshots, one per
// registry mutation. The buffer holds a single element and a newer
// snapshot replaces an unconsumed one, so a slow subscriber always
// observes the latest state without delaying the hub.
func (h *Hub) Subscribe() <-chan []Identity {
	sub := make(chan []Identity, 1)
	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()
	return sub
}

// broadcastLocked builds an immutable snapshot and fans it out. Taking
// the snapshot and enqueueing every delivery under the hub lock is what
// keeps broadcasts ordered relative to the mutations producing them.
// Channels that refuse delivery are reported for retirement.
func (h *Hub) broadcastLocked() []fault {
	wire := make([]string, 0, len(h.conns))
	ids := make([]Identity, 0, len(h.conns))
	for id := range h.conns {
		wire = append(wire, id.String())
		ids = append(ids, id)
	}

	var faults []fault
	for id, chans := range h.conns {
		for _, ch := range chans {
			if !ch.Deliver(wire) {
				faults = append(faults, fault{id: id, ch: ch})
			}
		}
	}

	for _, sub := range h.subs {
		select {
		case sub <- ids:
		default:
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- ids:
			default:
			}
		}
	}

	return faults
}

// retire removes faulted channels as if their clients had disconnected.
// Runs outside the hub lock since each removal broadcasts again.
func (h *Hub) retire(faults []fault) {
	for _, f := range faults {
		h.log.Warn().Str("identity", f.id.String()).Msg("presence channel faulted, removing")
		h.Unregister(f.id, f.ch)
	}
}
