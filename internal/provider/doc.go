// Package provider implements the resource-provider-manager core: the
// actor that mediates between an orchestrator agent and a fleet of
// external resource providers connected over streaming HTTP.
//
// Manager is the single-writer state machine. It owns the subscription
// table (provider id -> entry), where each entry bundles a provider's
// identity, its HttpConnection (the write half of its chunked response
// stream), and its pending-publish correlator table.
//
// Codec (see codec.go) decodes inbound Calls and encodes outbound Events
// as either JSON or hand-rolled protobuf, framing Events with a RecordIO
// scheme so multiple Events share one response stream.
//
// HttpConnection (see connection.go) exposes a non-blocking Send that
// returns false once the writer is closed or broken, and a Closed()
// channel the Manager watches to run eviction exactly once per
// connection.
//
// OutboundQueue (see queue.go) is the unbounded FIFO of
// ResourceProviderMessage values the Manager produces for the rest of the
// agent to drain.
//
// Thread safety: every Manager method reads and writes the subscription
// table, and sends on a subscribed entry's connection, while holding a
// single mutex (in particular, Subscribe queues the SUBSCRIBED event and
// installs the entry under one hold of that lock, so the event is queued
// before the entry is visible). Work that touches neither — grouping input,
// waiting on publish promises, tearing down an entry already removed from
// the table, pushing onto the outbound queue — runs outside the lock. A
// live entry's pending-publish table is only touched under the lock.
package provider
