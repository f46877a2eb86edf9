// ABOUTME: Per-provider correlator cell for a pending publish-resources call
// ABOUTME: Resolved by a matching status update or failed by eviction, never both

package provider

import (
	"context"
	"sync"
)

// publishPromise is the per-provider correlator cell for one publish
// correlation uuid: installed into a ResourceProvider's pending-publish
// table at send-time, resolved by a matching UPDATE_PUBLISH_RESOURCES_STATUS
// call or failed by eviction, never both.
type publishPromise struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newPublishPromise() *publishPromise {
	return &publishPromise{done: make(chan struct{})}
}

// resolve settles the promise exactly once; subsequent calls are no-ops so
// a race between a late status update and eviction can't double-resolve.
func (p *publishPromise) resolve(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Wait blocks until the promise settles or ctx is cancelled.
func (p *publishPromise) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Future is returned by PublishResources to the caller: it resolves with
// success iff every per-provider promise resolves with success, per the
// fan-in semantics in spec.md §4.C.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(err error) {
	f.err = err
	close(f.done)
}

// Wait blocks until the future settles or ctx is cancelled.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
