// ABOUTME: Per-subscribed-provider state held in the manager's subscription table
// ABOUTME: Bundles identity, outbound connection, and pending-publish correlators

package provider

import "github.com/google/uuid"

// entry is the per-subscribed-provider state held in the subscription
// table: identity info, its outbound connection, and its pending-publish
// correlator table. Touched only from the actor's single-writer context
// (invariant #1); no internal lock is needed.
type entry struct {
	info       ResourceProviderInfo
	conn       *HttpConnection
	publishes  map[uuid.UUID]*publishPromise
}

func newEntry(info ResourceProviderInfo, conn *HttpConnection) *entry {
	return &entry{
		info:      info,
		conn:      conn,
		publishes: make(map[uuid.UUID]*publishPromise),
	}
}

// evict closes the connection and fails every still-pending publish promise
// with ErrConnectionClosed, satisfying the eviction-cascade invariant. The
// caller must have already removed this entry from the subscription table
// before calling evict, so no new promise can land in a dying entry.
func (e *entry) evict() {
	e.conn.Close()
	for id, p := range e.publishes {
		p.resolve(ErrConnectionClosed)
		delete(e.publishes, id)
	}
}
