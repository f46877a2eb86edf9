// ABOUTME: Tests for the Manager actor's subscribe, dispatch, and eviction behavior
// ABOUTME: Drives HttpConnection over an in-process pipe to observe what the actor writes

package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testProvider wires an HttpConnection to an in-process RecordReader so
// tests can both Send through the Manager and observe what it wrote,
// mirroring the io.Pipe-driven fixtures in internal/agent/manager_test.go.
type testProvider struct {
	conn   *HttpConnection
	reader *RecordReader
	done   chan struct{}
	pw     *io.PipeWriter
}

func newTestProvider(t *testing.T) *testProvider {
	t.Helper()
	pr, pw := io.Pipe()
	bufPr, bufPw := io.Pipe()
	done := make(chan struct{})
	conn := NewHttpConnection(pw, ContentTypeJSON, done, testLogger())

	// Mirror httpapi.pumpStream: a dedicated goroutine drains the
	// connection's reader half and closes done once it observes EOF or
	// error, since NewHttpConnection documents that done must be closed
	// by the caller, not by the connection itself.
	go func() {
		defer close(done)
		defer bufPw.Close()
		io.Copy(bufPw, pr)
	}()

	return &testProvider{
		conn:   conn,
		reader: NewRecordReader(bufPr),
		done:   done,
		pw:     pw,
	}
}

func (tp *testProvider) readEvent(t *testing.T) *Event {
	t.Helper()
	record, err := tp.reader.ReadRecord()
	require.NoError(t, err)
	var evt Event
	require.NoError(t, json.Unmarshal(record, &evt))
	return &evt
}

func TestManager_SubscribeAssignsIDAndSendsSubscribed(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	tp := newTestProvider(t)

	id, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{Type: "disk", Name: "local"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	evt := tp.readEvent(t)
	assert.Equal(t, EventSubscribedType, evt.Type)
	require.NotNil(t, evt.Subscribed)
	assert.Equal(t, id, evt.Subscribed.ProviderID.Value)

	streamID, ok := m.Lookup(id)
	assert.True(t, ok)
	assert.Equal(t, tp.conn.StreamID(), streamID)
}

func TestManager_SubscribeEchoesExistingID(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	tp := newTestProvider(t)

	id, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{
			ID:   &ResourceProviderID{Value: "fixed-id"},
			Type: "disk",
			Name: "local",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestManager_ResubscribeReplacesAndEvictsOld(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	first := newTestProvider(t)

	id, err := m.Subscribe(first.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{
			ID:   &ResourceProviderID{Value: "p-1"},
			Type: "disk",
			Name: "local",
		},
	})
	require.NoError(t, err)
	first.readEvent(t) // drain SUBSCRIBED

	second := newTestProvider(t)
	id2, err := m.Subscribe(second.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{
			ID:   &ResourceProviderID{Value: "p-1"},
			Type: "disk",
			Name: "local",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	second.readEvent(t) // drain SUBSCRIBED

	streamID, ok := m.Lookup("p-1")
	require.True(t, ok)
	assert.Equal(t, second.conn.StreamID(), streamID)

	select {
	case <-first.conn.Closed():
	case <-time.After(time.Second):
		t.Fatal("old connection's done channel was never observed closed")
	}
}

func TestManager_ApplyOfferOperationRoutesByResourceProviderID(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	tp := newTestProvider(t)

	id, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{Type: "disk", Name: "local"},
	})
	require.NoError(t, err)
	tp.readEvent(t) // SUBSCRIBED

	opUUID := uuid.New()
	m.ApplyOfferOperation(ApplyOfferOperationInput{
		FrameworkID: "fw-1",
		Operation: OfferOperation{
			Type:      "RESERVE",
			Resources: []Resource{{ProviderID: id, Name: "disk0"}},
		},
		OperationUUID: opUUID,
	})

	evt := tp.readEvent(t)
	assert.Equal(t, EventApplyOfferOperationType, evt.Type)
	require.NotNil(t, evt.ApplyOfferOperation)
	assert.Equal(t, opUUID, evt.ApplyOfferOperation.OperationUUID)
}

func TestManager_ApplyOfferOperationDropsUnroutable(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	m.ApplyOfferOperation(ApplyOfferOperationInput{
		Operation:     OfferOperation{Type: "RESERVE"},
		OperationUUID: uuid.New(),
	})
	// No subscriber exists; the call must return without blocking or panicking.
}

func TestManager_PublishResourcesFailsFastWhenAnyProviderUnsubscribed(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	tp := newTestProvider(t)

	id, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{Type: "disk", Name: "local"},
	})
	require.NoError(t, err)
	tp.readEvent(t)

	_, err = m.PublishResources(context.Background(), []Resource{
		{ProviderID: id, Name: "disk0"},
		{ProviderID: "unknown-provider", Name: "disk1"},
	})
	assert.ErrorIs(t, err, ErrNotSubscribed)
}

func TestManager_PublishResourcesFutureResolvesOnAck(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	tp := newTestProvider(t)

	id, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{Type: "disk", Name: "local"},
	})
	require.NoError(t, err)
	tp.readEvent(t)

	future, err := m.PublishResources(context.Background(), []Resource{
		{ProviderID: id, Name: "disk0"},
	})
	require.NoError(t, err)

	evt := tp.readEvent(t)
	require.NotNil(t, evt.PublishResources)
	correlationID := evt.PublishResources.UUID

	m.UpdatePublishResourcesStatus(id, CallUpdatePublishResourcesStatus{
		UUID:   correlationID,
		Status: PublishStatusOK,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, future.Wait(ctx))
}

func TestManager_PublishResourcesFutureFailsOnNonOKStatus(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	tp := newTestProvider(t)

	id, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{Type: "disk", Name: "local"},
	})
	require.NoError(t, err)
	tp.readEvent(t)

	future, err := m.PublishResources(context.Background(), []Resource{
		{ProviderID: id, Name: "disk0"},
	})
	require.NoError(t, err)

	evt := tp.readEvent(t)
	correlationID := evt.PublishResources.UUID

	m.UpdatePublishResourcesStatus(id, CallUpdatePublishResourcesStatus{
		UUID:   correlationID,
		Status: PublishStatus("FAILED"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, future.Wait(ctx))
}

func TestManager_UpdateStateRejectsForeignProviderID(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	tp := newTestProvider(t)

	id, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{Type: "disk", Name: "local"},
	})
	require.NoError(t, err)
	tp.readEvent(t)

	err = m.UpdateState(id, UpdateStateInput{
		Resources: []Resource{{ProviderID: "someone-else"}},
	})
	assert.Error(t, err)
}

func TestManager_UpdateStateEnqueuesSnapshot(t *testing.T) {
	queue := NewOutboundQueue()
	m := NewManager(queue, testLogger())
	tp := newTestProvider(t)

	id, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{Type: "disk", Name: "local"},
	})
	require.NoError(t, err)
	tp.readEvent(t)

	versionUUID := uuid.New()
	opUUID := uuid.New()
	err = m.UpdateState(id, UpdateStateInput{
		Resources:           []Resource{{ProviderID: id, Name: "disk0"}},
		ResourceVersionUUID: versionUUID,
		Operations: []OfferOperationStatusEntry{
			{OperationUUID: opUUID, Status: OfferOperationStatusState("OPERATION_FINISHED")},
		},
	})
	require.NoError(t, err)

	msg, ok := queue.TryPop()
	require.True(t, ok)
	assert.Equal(t, MessageUpdateState, msg.Type)
	require.NotNil(t, msg.UpdateState)
	assert.Equal(t, versionUUID, msg.UpdateState.ResourceVersionUUID)
	entry, ok := msg.UpdateState.OperationsByUUID[opUUID]
	require.True(t, ok)
	assert.Equal(t, OfferOperationStatusState("OPERATION_FINISHED"), entry.Status)
}

func TestManager_ReconcileOfferOperationsGroupsByProvider(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	tp := newTestProvider(t)

	id, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{Type: "disk", Name: "local"},
	})
	require.NoError(t, err)
	tp.readEvent(t)

	op1, op2 := uuid.New(), uuid.New()
	m.ReconcileOfferOperations([]ReconcileOperationInput{
		{ProviderID: id, OperationUUID: op1},
		{ProviderID: id, OperationUUID: op2},
		{ProviderID: "", OperationUUID: uuid.New()},
	})

	evt := tp.readEvent(t)
	require.NotNil(t, evt.ReconcileOfferOperations)
	assert.ElementsMatch(t, []uuid.UUID{op1, op2}, evt.ReconcileOfferOperations.OperationUUIDs)
}

func TestManager_CloseEvictsEveryEntry(t *testing.T) {
	m := NewManager(NewOutboundQueue(), testLogger())
	tp := newTestProvider(t)

	_, err := m.Subscribe(tp.conn, CallSubscribe{
		ResourceProviderInfo: ResourceProviderInfo{Type: "disk", Name: "local"},
	})
	require.NoError(t, err)
	tp.readEvent(t)

	m.Close()

	assert.False(t, tp.conn.Send(&Event{Type: EventSubscribedType}))
}
