// ABOUTME: Single-writer actor mediating between the orchestrator and resource providers
// ABOUTME: Owns the subscription table and dispatches every operation under one mutex

package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Manager is the single-writer state machine described in spec.md §4.C: it
// holds the subscription table and performs every table access, every send
// to a subscribed connection, and every install or removal of an entry under
// a single mutex, without
// the continuation-passing a channel-actor would need for the eviction
// callback. This mirrors the teacher's agent.Manager (a sync.RWMutex guarding
// a map[string]*Connection) rather than a channel-consuming goroutine loop;
// unlike that read-heavy agent registry, every Manager operation here
// mutates shared state, so a plain Mutex is used in place of an RWMutex.
type Manager struct {
	mu   sync.Mutex
	subs map[string]*entry

	queue   *OutboundQueue
	metrics *Metrics
	logger  *slog.Logger
}

// NewManager constructs an empty Manager. queue receives every
// ResourceProviderMessage the actor produces.
func NewManager(queue *OutboundQueue, logger *slog.Logger) *Manager {
	return &Manager{
		subs:    make(map[string]*entry),
		queue:   queue,
		metrics: NewMetrics(),
		logger:  logger.With("component", "provider_manager"),
	}
}

// Metrics exposes the manager's counters for the httpapi debug endpoint.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// Close evicts every subscribed provider — closing its connection and
// failing any pending publish promises — and closes the outbound queue,
// mirroring the worker-pool Stop() idiom of closing every owned resource on
// shutdown rather than leaving connections to time out on their own.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.subs))
	for id, e := range m.subs {
		entries = append(entries, e)
		delete(m.subs, id)
	}
	m.mu.Unlock()

	for _, e := range entries {
		e.evict()
	}
	m.queue.Close()
	m.logger.Info("manager closed", "evicted", len(entries))
}

// newResourceProviderId mints a fresh random id rendered as text.
func (m *Manager) newResourceProviderId() string {
	return uuid.New().String()
}

// Lookup reports whether providerID currently has a subscribed entry and,
// if so, the stream-id it must present on every non-subscribe call. Used by
// the front controller to produce the right 4xx before dispatching into a
// handler.
func (m *Manager) Lookup(providerID string) (streamID uuid.UUID, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.subs[providerID]
	if !ok {
		return uuid.Nil, false
	}
	return e.conn.StreamID(), true
}

// Subscribe installs a new (or replacement) ResourceProvider entry. It
// mints an id if info carries none, sends the SUBSCRIBED event first, and
// only installs the entry into the table on send success — matching
// spec.md's "on send-failure, abandon (do not install)" rule. Replacing an
// existing entry with the same id is unconditional; this spec leaves
// type/name consistency across resubscribe as an open question (see
// DESIGN.md).
func (m *Manager) Subscribe(conn *HttpConnection, payload CallSubscribe) (string, error) {
	info := payload.ResourceProviderInfo
	var id string
	if info.ID != nil && info.ID.Value != "" {
		id = info.ID.Value
	} else {
		id = m.newResourceProviderId()
	}
	info.ID = &ResourceProviderID{Value: id}

	m.mu.Lock()
	if !conn.Send(&Event{
		Type:       EventSubscribedType,
		Subscribed: &EventSubscribed{ProviderID: *info.ID},
	}) {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: sending SUBSCRIBED event", ErrConnectionClosed)
	}

	newE := newEntry(info, conn)
	old := m.subs[id]
	m.subs[id] = newE
	m.mu.Unlock()

	m.metrics.subscribes.Add(1)
	m.logger.Info("provider subscribed", "provider_id", id, "type", info.Type, "name", info.Name, "resubscribe", old != nil)

	if old != nil {
		m.logger.Info("replacing existing entry on resubscribe", "provider_id", id)
		old.evict()
	}

	go m.watch(id, newE)

	return id, nil
}

// watch runs for the lifetime of one connection, posting the eviction back
// into the actor exactly once when the reader half observes EOF or error.
func (m *Manager) watch(id string, e *entry) {
	<-e.conn.Closed()
	m.evictIfCurrent(id, e)
}

// evictIfCurrent removes e from the table and cascades eviction, but only if
// e is still the entry installed under id — guarding against a resubscribe
// race where the old connection's watcher fires after a replacement has
// already been installed.
func (m *Manager) evictIfCurrent(id string, e *entry) {
	m.mu.Lock()
	current, ok := m.subs[id]
	if !ok || current != e {
		m.mu.Unlock()
		return
	}
	delete(m.subs, id)
	m.mu.Unlock()

	m.metrics.evictions.Add(1)
	m.logger.Info("provider evicted", "provider_id", id)
	e.evict()
}

// ApplyOfferOperationInput carries the fields applyOfferOperation needs out
// of the caller's Operation record.
type ApplyOfferOperationInput struct {
	FrameworkID         string
	Operation           OfferOperation
	OperationUUID       uuid.UUID
	ResourceVersionUUID ResourceVersionUUID
}

// ApplyOfferOperation derives the target provider from the operation's
// resources and, if subscribed, sends an APPLY_OFFER_OPERATION event.
// Unroutable or unsubscribed targets are dropped with a warning; send
// failure is logged and never retried.
func (m *Manager) ApplyOfferOperation(in ApplyOfferOperationInput) {
	providerID, found := in.Operation.DeriveProviderID()
	if !found {
		m.logger.Warn("apply offer operation: no resource-provider-id derivable from operation", "operation_uuid", in.OperationUUID)
		return
	}
	if providerID == "" {
		m.logger.Warn("apply offer operation: operation resources name more than one resource-provider-id", "operation_uuid", in.OperationUUID)
		return
	}
	if in.ResourceVersionUUID.ProviderID != "" && in.ResourceVersionUUID.ProviderID != providerID {
		m.logger.Warn("apply offer operation: resource_version_uuid provider mismatch",
			"derived_provider_id", providerID, "version_provider_id", in.ResourceVersionUUID.ProviderID, "operation_uuid", in.OperationUUID)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.subs[providerID]
	if !ok {
		m.logger.Warn("apply offer operation: provider not subscribed", "provider_id", providerID, "operation_uuid", in.OperationUUID)
		return
	}

	ok = e.conn.Send(&Event{
		Type: EventApplyOfferOperationType,
		ApplyOfferOperation: &EventApplyOfferOperation{
			FrameworkID:         in.FrameworkID,
			Info:                in.Operation,
			OperationUUID:       in.OperationUUID,
			ResourceVersionUUID: in.ResourceVersionUUID.UUID[:],
		},
	})
	m.metrics.applyOfferOperations.Add(1)
	if !ok {
		m.logger.Warn("apply offer operation: send failed", "provider_id", providerID, "operation_uuid", in.OperationUUID)
	}
}

// AcknowledgeOfferOperationInput carries the fields for an acknowledgement.
type AcknowledgeOfferOperationInput struct {
	ProviderID    string
	StatusUUID    uuid.UUID
	OperationUUID uuid.UUID
}

// AcknowledgeOfferOperationUpdate sends an ACKNOWLEDGE_OFFER_OPERATION
// event, dropping with a warning if the target is not subscribed.
func (m *Manager) AcknowledgeOfferOperationUpdate(in AcknowledgeOfferOperationInput) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.subs[in.ProviderID]
	if !ok {
		m.logger.Warn("acknowledge offer operation: provider not subscribed", "provider_id", in.ProviderID, "operation_uuid", in.OperationUUID)
		return
	}

	ok = e.conn.Send(&Event{
		Type: EventAcknowledgeOfferOperationType,
		AcknowledgeOfferOperation: &EventAcknowledgeOfferOperation{
			StatusUUID:    in.StatusUUID,
			OperationUUID: in.OperationUUID,
		},
	})
	m.metrics.acknowledgeOfferOperations.Add(1)
	if !ok {
		m.logger.Warn("acknowledge offer operation: send failed", "provider_id", in.ProviderID, "operation_uuid", in.OperationUUID)
	}
}

// ReconcileOperationInput names one operation to reconcile.
type ReconcileOperationInput struct {
	ProviderID    string
	OperationUUID uuid.UUID
}

// ReconcileOfferOperations groups input operations by provider id, skipping
// operations with no provider id and providers that are not subscribed, and
// sends one RECONCILE_OFFER_OPERATIONS event per remaining group, uuids in
// the order encountered.
func (m *Manager) ReconcileOfferOperations(ops []ReconcileOperationInput) {
	order := make([]string, 0)
	grouped := make(map[string][]uuid.UUID)
	for _, op := range ops {
		if op.ProviderID == "" {
			m.logger.Debug("reconcile: operation without resource-provider-id dropped", "operation_uuid", op.OperationUUID)
			continue
		}
		if _, seen := grouped[op.ProviderID]; !seen {
			order = append(order, op.ProviderID)
		}
		grouped[op.ProviderID] = append(grouped[op.ProviderID], op.OperationUUID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, providerID := range order {
		e, ok := m.subs[providerID]
		if !ok {
			m.logger.Warn("reconcile: provider not subscribed", "provider_id", providerID)
			continue
		}
		e.conn.Send(&Event{
			Type: EventReconcileOfferOperationsType,
			ReconcileOfferOperations: &EventReconcileOfferOperations{
				OperationUUIDs: grouped[providerID],
			},
		})
		m.metrics.reconcileOfferOperations.Add(1)
	}
}

// PublishResources partitions resources by provider id, fails immediately
// (no partial dispatch) if any targeted provider is unsubscribed, otherwise
// sends one PUBLISH_RESOURCES event per provider group under a fresh
// correlation uuid and returns a future that succeeds once every per-group
// promise succeeds, or fails with the first failure. ctx bounds how long the caller is willing to wait on the
// fan-in, not how long the promises themselves may remain pending.
func (m *Manager) PublishResources(ctx context.Context, resources []Resource) (*Future, error) {
	order := make([]string, 0)
	grouped := make(map[string][]Resource)
	for _, r := range resources {
		if r.ProviderID == "" {
			continue
		}
		if _, seen := grouped[r.ProviderID]; !seen {
			order = append(order, r.ProviderID)
		}
		grouped[r.ProviderID] = append(grouped[r.ProviderID], r)
	}
	sort.Strings(order)

	m.mu.Lock()

	for _, providerID := range order {
		if _, ok := m.subs[providerID]; !ok {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: provider %q", ErrNotSubscribed, providerID)
		}
	}

	promises := make([]*publishPromise, 0, len(order))
	for _, providerID := range order {
		e := m.subs[providerID]
		correlationID := uuid.New()

		ok := e.conn.Send(&Event{
			Type: EventPublishResourcesType,
			PublishResources: &EventPublishResources{
				UUID:      correlationID,
				Resources: grouped[providerID],
			},
		})
		if !ok {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: publish to provider %q", ErrConnectionClosed, providerID)
		}

		p := newPublishPromise()
		e.publishes[correlationID] = p
		promises = append(promises, p)
		m.metrics.publishResources.Add(1)
	}

	m.mu.Unlock()

	future := newFuture()
	go func() {
		eg, egCtx := errgroup.WithContext(ctx)
		for _, p := range promises {
			p := p
			eg.Go(func() error { return p.Wait(egCtx) })
		}
		future.resolve(eg.Wait())
	}()
	return future, nil
}

// UpdatePublishResourcesStatus resolves or fails the pending-publish promise
// named by payload.UUID. The uuid arrives already parsed (a malformed one
// fails decoding of the call); an unknown uuid is logged and dropped
// (treated as stale). The table entry is removed in both the success and
// failure cases.
func (m *Manager) UpdatePublishResourcesStatus(providerID string, payload CallUpdatePublishResourcesStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.subs[providerID]
	if !ok {
		m.logger.Warn("update publish resources status: provider not subscribed", "provider_id", providerID)
		return
	}

	p, ok := e.publishes[payload.UUID]
	if !ok {
		m.logger.Warn("update publish resources status: unknown correlation uuid", "provider_id", providerID, "uuid", payload.UUID)
		return
	}
	delete(e.publishes, payload.UUID)

	if payload.Status == PublishStatusOK {
		p.resolve(nil)
	} else {
		p.resolve(fmt.Errorf("provider reported status %q", payload.Status))
	}
}

// UpdateOfferOperationStatusInput carries a provider-reported status.
type UpdateOfferOperationStatusInput struct {
	FrameworkID   string
	Status        OfferOperationStatusState
	OperationUUID uuid.UUID
	LatestStatus  *OfferOperationStatusState
}

// UpdateOfferOperationStatus packages the report and enqueues it on the
// outbound queue for the agent to consume. No validation beyond
// protocol-level well-formedness, already performed by the front
// controller.
func (m *Manager) UpdateOfferOperationStatus(providerID string, in UpdateOfferOperationStatusInput) {
	m.mu.Lock()
	_, ok := m.subs[providerID]
	m.mu.Unlock()
	if !ok {
		m.logger.Warn("update offer operation status: provider not subscribed", "provider_id", providerID)
		return
	}

	m.queue.Push(&ResourceProviderMessage{
		Type: MessageUpdateOfferOperationStatus,
		UpdateOfferOperationStatus: &UpdateOfferOperationStatusPayload{
			FrameworkID:   in.FrameworkID,
			Status:        in.Status,
			OperationUUID: in.OperationUUID,
			LatestStatus:  in.LatestStatus,
		},
	})
}

// UpdateStateInput carries a provider's full resource-state snapshot.
type UpdateStateInput struct {
	Resources           []Resource
	ResourceVersionUUID uuid.UUID
	Operations          []OfferOperationStatusEntry
}

// UpdateState asserts every resource carries this provider's id, indexes
// the reported operations by uuid, and enqueues a snapshot message for the
// agent to consume.
func (m *Manager) UpdateState(providerID string, in UpdateStateInput) error {
	m.mu.Lock()
	e, ok := m.subs[providerID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, providerID)
	}

	for _, r := range in.Resources {
		if r.ProviderID != providerID {
			return fmt.Errorf("update state: resource provider-id %q does not match entry %q", r.ProviderID, providerID)
		}
	}

	byUUID := make(map[uuid.UUID]OfferOperationStatusEntry, len(in.Operations))
	for _, op := range in.Operations {
		byUUID[op.OperationUUID] = op
	}

	m.queue.Push(&ResourceProviderMessage{
		Type: MessageUpdateState,
		UpdateState: &UpdateStatePayload{
			ProviderInfo:        e.info,
			ResourceVersionUUID: in.ResourceVersionUUID,
			Resources:           in.Resources,
			OperationsByUUID:    byUUID,
		},
	})
	return nil
}
