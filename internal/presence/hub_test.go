package presence

import (
	"sort"
	"sync"
	"testing"
)

// recordChannel captures every snapshot it is handed. Deliveries happen
// synchronously inside hub mutations, so no polling is needed.
type recordChannel struct {
	mu        sync.Mutex
	snapshots [][]string
	fail      bool
}

func (c *recordChannel) Deliver(snapshot []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return false
	}
	c.snapshots = append(c.snapshots, snapshot)
	return true
}

func (c *recordChannel) received() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]string, len(c.snapshots))
	copy(out, c.snapshots)
	return out
}

func sorted(ss []string) []string {
	out := make([]string, len(ss))
	copy(out, ss)
	sort.Strings(out)
	return out
}

func TestHubSnapshotTracksIdentities(t *testing.T) {
	hub := NewHub(nil)

	u1 := Identity{Kind: KindChatUser, ID: "u1"}
	u2 := Identity{Kind: KindChatUser, ID: "u2"}

	tab1 := &recordChannel{}
	tab2 := &recordChannel{}
	other := &recordChannel{}

	hub.Register(u1, tab1)
	hub.Register(u1, tab2) // second tab, same identity
	if hub.Size() != 1 {
		t.Fatalf("expected size 1 with two tabs, got %d", hub.Size())
	}

	hub.Register(u2, other)
	if hub.Size() != 2 {
		t.Fatalf("expected size 2, got %d", hub.Size())
	}

	hub.Unregister(u1, tab1)
	if hub.Size() != 2 {
		t.Fatalf("identity must stay while a tab remains, got size %d", hub.Size())
	}

	hub.Unregister(u1, tab2)
	if hub.Size() != 1 {
		t.Fatalf("expected size 1 after last tab closed, got %d", hub.Size())
	}

	snap := hub.Snapshot()
	if len(snap) != 1 || snap[0] != u2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestHubUnregisterUnknownIsNoop(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe()

	hub.Unregister(Identity{Kind: KindChatUser, ID: "ghost"}, &recordChannel{})

	if hub.Size() != 0 {
		t.Fatalf("expected empty hub, got size %d", hub.Size())
	}
	select {
	case snap := <-sub:
		t.Fatalf("no-op unregister must not broadcast, got %v", snap)
	default:
	}
}

func TestHubBroadcastPerMutationInOrder(t *testing.T) {
	hub := NewHub(nil)

	u1 := Identity{Kind: KindChatUser, ID: "u1"}
	u2 := Identity{Kind: KindChatUser, ID: "u2"}

	ch1 := &recordChannel{}
	ch2 := &recordChannel{}

	hub.Register(u1, ch1)
	hub.Register(u2, ch2)
	hub.Unregister(u2, ch2)

	got := ch1.received()
	if len(got) != 3 {
		t.Fatalf("expected exactly one broadcast per mutation (3), got %d", len(got))
	}

	want := [][]string{
		{"u1"},
		{"u1", "u2"},
		{"u1"},
	}
	for i := range want {
		g := sorted(got[i])
		if len(g) != len(want[i]) {
			t.Fatalf("broadcast %d: got %v, want %v", i, g, want[i])
		}
		for j := range g {
			if g[j] != want[i][j] {
				t.Fatalf("broadcast %d: got %v, want %v", i, g, want[i])
			}
		}
	}
}

func TestHubDuplicateHandleDeliversTwice(t *testing.T) {
	hub := NewHub(nil)

	u1 := Identity{Kind: KindChatUser, ID: "u1"}
	ch := &recordChannel{}

	hub.Register(u1, ch)
	hub.Register(u1, ch) // same live handle registered twice

	if hub.Size() != 1 {
		t.Fatalf("duplicate handle must not add an identity, got size %d", hub.Size())
	}

	// First mutation delivers once, second delivers to both occurrences.
	if got := len(ch.received()); got != 3 {
		t.Fatalf("expected 3 deliveries, got %d", got)
	}

	// Each closure releases one occurrence.
	hub.Unregister(u1, ch)
	if hub.Size() != 1 {
		t.Fatalf("one occurrence must remain, got size %d", hub.Size())
	}
	hub.Unregister(u1, ch)
	if hub.Size() != 0 {
		t.Fatalf("expected empty hub, got size %d", hub.Size())
	}
}

func TestHubRetiresFaultedChannel(t *testing.T) {
	hub := NewHub(nil)

	u1 := Identity{Kind: KindChatUser, ID: "u1"}
	u2 := Identity{Kind: KindChatUser, ID: "u2"}

	healthy := &recordChannel{}
	broken := &recordChannel{fail: true}

	hub.Register(u1, healthy)
	hub.Register(u2, broken)

	// The broken channel refused its own registration broadcast and was
	// removed as if disconnected; its identity is gone again.
	if hub.Size() != 1 {
		t.Fatalf("expected faulted channel to be retired, size %d", hub.Size())
	}

	got := healthy.received()
	last := sorted(got[len(got)-1])
	if len(last) != 1 || last[0] != "u1" {
		t.Fatalf("final broadcast should exclude retired identity, got %v", last)
	}
}

func TestHubSubscribeLatestWins(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe()

	chans := make([]*recordChannel, 3)
	for i, id := range []string{"u1", "u2", "u3"} {
		chans[i] = &recordChannel{}
		hub.Register(Identity{Kind: KindChatUser, ID: id}, chans[i])
	}

	// Unconsumed subscription: only the newest snapshot remains.
	var snap []Identity
	select {
	case snap = <-sub:
	default:
		t.Fatal("expected a pending snapshot")
	}
	if len(snap) != 3 {
		t.Fatalf("expected latest snapshot with 3 identities, got %d", len(snap))
	}
	select {
	case extra := <-sub:
		t.Fatalf("expected a single buffered snapshot, got extra %v", extra)
	default:
	}
}
