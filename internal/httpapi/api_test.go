// ABOUTME: Tests for the front controller's HTTP dispatch and streaming subscribe
// ABOUTME: Drives the handler over a real httptest.Server for end-to-end coverage

package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/rpmanager/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*httptest.Server, *provider.Manager) {
	t.Helper()
	manager := provider.NewManager(provider.NewOutboundQueue(), testLogger())
	srv := NewServer(Config{Addr: "ignored"}, manager, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(manager.Close)
	return ts, manager
}

// subscribeOverHTTP issues a SUBSCRIBE call against ts and returns the
// stream-id header, a RecordReader over the chunked body, and a closer.
func subscribeOverHTTP(t *testing.T, ts *httptest.Server, providerType string) (string, *provider.RecordReader, io.Closer) {
	t.Helper()

	call := provider.Call{
		Type: provider.CallSubscribeType,
		Subscribe: &provider.CallSubscribe{
			ResourceProviderInfo: provider.ResourceProviderInfo{Type: providerType, Name: "n"},
		},
	}
	body, err := json.Marshal(call)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/resource-providers/call", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	streamID := resp.Header.Get(streamIDHeader)
	require.NotEmpty(t, streamID)

	return streamID, provider.NewRecordReader(resp.Body), resp.Body
}

func TestHandleCall_SubscribeOpensStream(t *testing.T) {
	ts, _ := newTestServer(t)

	streamID, rr, closer := subscribeOverHTTP(t, ts, "disk")
	defer closer.Close()

	record, err := rr.ReadRecord()
	require.NoError(t, err)
	var evt provider.Event
	require.NoError(t, json.Unmarshal(record, &evt))
	assert.Equal(t, provider.EventSubscribedType, evt.Type)
	require.NotNil(t, evt.Subscribed)
	assert.NotEmpty(t, evt.Subscribed.ProviderID.Value)
	assert.NotEqual(t, uuid.Nil.String(), streamID)
}

func TestHandleCall_SubscribeRejectsStreamIDHeader(t *testing.T) {
	ts, _ := newTestServer(t)

	call := provider.Call{
		Type: provider.CallSubscribeType,
		Subscribe: &provider.CallSubscribe{
			ResourceProviderInfo: provider.ResourceProviderInfo{Type: "disk", Name: "n"},
		},
	}
	body, err := json.Marshal(call)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/resource-providers/call", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(streamIDHeader, uuid.New().String())

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCall_NonSubscribeRequiresStreamID(t *testing.T) {
	ts, _ := newTestServer(t)

	_, rr, closer := subscribeOverHTTP(t, ts, "disk")
	defer closer.Close()

	record, err := rr.ReadRecord()
	require.NoError(t, err)
	var subscribed provider.Event
	require.NoError(t, json.Unmarshal(record, &subscribed))
	providerID := subscribed.Subscribed.ProviderID.Value

	call := provider.Call{
		Type:               provider.CallUpdatePublishResourcesStatusType,
		ResourceProviderID: &provider.ResourceProviderID{Value: providerID},
		UpdatePublishResourcesStatus: &provider.CallUpdatePublishResourcesStatus{
			UUID:   uuid.New(),
			Status: provider.PublishStatusOK,
		},
	}
	body, err := json.Marshal(call)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/resource-providers/call", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCall_NonSubscribeRejectsMismatchedStreamID(t *testing.T) {
	ts, _ := newTestServer(t)

	streamID, rr, closer := subscribeOverHTTP(t, ts, "disk")
	defer closer.Close()
	_ = streamID

	record, err := rr.ReadRecord()
	require.NoError(t, err)
	var subscribed provider.Event
	require.NoError(t, json.Unmarshal(record, &subscribed))
	providerID := subscribed.Subscribed.ProviderID.Value

	call := provider.Call{
		Type:               provider.CallUpdatePublishResourcesStatusType,
		ResourceProviderID: &provider.ResourceProviderID{Value: providerID},
		UpdatePublishResourcesStatus: &provider.CallUpdatePublishResourcesStatus{
			UUID:   uuid.New(),
			Status: provider.PublishStatusOK,
		},
	}
	body, err := json.Marshal(call)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/resource-providers/call", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(streamIDHeader, uuid.New().String())

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCall_UnsupportedContentType(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/resource-providers/call", bytes.NewReader([]byte("nope")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestHandleCall_MethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/resource-providers/call")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleCall_UpdateStateFullRoundTrip(t *testing.T) {
	ts, manager := newTestServer(t)

	streamID, rr, closer := subscribeOverHTTP(t, ts, "disk")
	defer closer.Close()

	record, err := rr.ReadRecord()
	require.NoError(t, err)
	var subscribed provider.Event
	require.NoError(t, json.Unmarshal(record, &subscribed))
	providerID := subscribed.Subscribed.ProviderID.Value

	versionUUID := uuid.New()
	call := provider.Call{
		Type:               provider.CallUpdateStateType,
		ResourceProviderID: &provider.ResourceProviderID{Value: providerID},
		UpdateState: &provider.CallUpdateState{
			Resources:           []provider.Resource{{ProviderID: providerID, Name: "disk0"}},
			ResourceVersionUUID: versionUUID,
		},
	}
	body, err := json.Marshal(call)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/resource-providers/call", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(streamIDHeader, streamID)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	streamIDParsed, ok := manager.Lookup(providerID)
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, streamIDParsed)
}

func TestHandleHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleReady(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleMetrics(t *testing.T) {
	ts, _ := newTestServer(t)

	_, _, closer := subscribeOverHTTP(t, ts, "disk")
	defer closer.Close()

	resp, err := ts.Client().Get(ts.URL + "/debug/vars")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "subscribe")
}
