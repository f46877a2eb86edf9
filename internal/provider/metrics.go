// ABOUTME: Per-event-type counters for the manager actor
// ABOUTME: Exposed over /debug/vars via WriteTo, expvar-style

package provider

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Metrics holds the manager's per-event-type counters. spec.md is silent on
// observability (and does not name it as a Non-goal), so this recovers the
// original agent's per-call-type counters as a small in-process struct
// rather than wiring a metrics library the rest of the corpus never needed
// for a concern this narrow — see DESIGN.md.
type Metrics struct {
	subscribes                 atomic.Int64
	evictions                  atomic.Int64
	applyOfferOperations       atomic.Int64
	acknowledgeOfferOperations atomic.Int64
	reconcileOfferOperations   atomic.Int64
	publishResources           atomic.Int64
}

// NewMetrics returns a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// WriteTo renders the counters as plain text, one "name value" pair per
// line, for the httpapi debug endpoint.
func (m *Metrics) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"provider_subscribes %d\nprovider_evictions %d\nprovider_apply_offer_operations %d\nprovider_acknowledge_offer_operations %d\nprovider_reconcile_offer_operations %d\nprovider_publish_resources %d\n",
		m.subscribes.Load(),
		m.evictions.Load(),
		m.applyOfferOperations.Load(),
		m.acknowledgeOfferOperations.Load(),
		m.reconcileOfferOperations.Load(),
		m.publishResources.Load(),
	)
	return int64(n), err
}
