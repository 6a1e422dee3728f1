package presence

// Channel is a live push handle bound to one client connection.
//
// Deliver hands an identity snapshot (wire form) to the connection and
// must not block: implementations buffer internally and may replace a
// pending snapshot with a newer one, since only the latest set matters.
// A false return means the handle has faulted (its connection is gone)
// and the hub removes it as if the client had disconnected.
//
// Implementations must be comparable (pointer receivers in practice):
// the registry identifies a handle by equality when removing it.
type Channel interface {
	Deliver(snapshot []string) bool
}
