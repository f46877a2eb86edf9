// ABOUTME: Front controller implementing the single api(request, principal) operation
// ABOUTME: Dispatches SUBSCRIBE into a streamed response and everything else into the manager

package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/cuemby/rpmanager/internal/provider"
)

const streamIDHeader = "Mesos-Stream-Id"

// handleCall implements the single front-controller operation described in
// spec.md §4.C: api(request, principal) -> Response. It parses one inbound
// request, negotiates content type, and dispatches into the Manager actor.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, methodNotAllowed("method not allowed"), http.MethodPost)
		return
	}

	contentTypeHeader := r.Header.Get("Content-Type")
	if contentTypeHeader == "" {
		writeError(w, badRequest("Content-Type header is required"), "")
		return
	}
	ct, ok := provider.ParseContentType(contentTypeHeader)
	if !ok {
		writeError(w, unsupportedMedia(fmt.Sprintf(
			"unsupported content type %q: expected application/json or application/x-protobuf", contentTypeHeader)), "")
		return
	}

	call, err := provider.DecodeCall(r.Body, ct)
	if err != nil {
		writeError(w, badRequest(fmt.Sprintf("decoding call: %v", err)), "")
		return
	}

	if err := validateCall(call); err != nil {
		writeError(w, badRequest(err.Error()), "")
		return
	}

	if call.Type == provider.CallSubscribeType {
		s.handleSubscribe(w, r, call)
		return
	}

	s.handleNonSubscribe(w, r, call, ct)
}

// handleSubscribe opens a new streaming response and registers the
// provider, per spec.md §4.C step 5.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request, call *provider.Call) {
	if r.Header.Get(streamIDHeader) != "" {
		writeError(w, badRequest("SUBSCRIBE must not carry a Mesos-Stream-Id header"), "")
		return
	}

	respCT, ok := provider.NegotiateSubscribeContentType(r.Header.Get("Accept"))
	if !ok {
		writeError(w, notAcceptable("no acceptable content type in Accept header"), "")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, internalError("streaming not supported"), "")
		return
	}

	pr, pw := io.Pipe()
	done := make(chan struct{})
	conn := provider.NewHttpConnection(pw, respCT, done, s.logger, provider.WithSendTimeout(s.sendTimeout))

	providerID, err := s.manager.Subscribe(conn, *call.Subscribe)
	if err != nil {
		writeError(w, internalError(fmt.Sprintf("subscribe: %v", err)), "")
		return
	}

	w.Header().Set("Content-Type", respCT.String())
	w.Header().Set(streamIDHeader, conn.StreamID().String())
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.logger.Info("provider stream opened", "provider_id", providerID, "stream_id", conn.StreamID())

	go pumpStream(w, flusher, pr, done)

	select {
	case <-done:
	case <-r.Context().Done():
		pw.CloseWithError(r.Context().Err())
		<-done
	}
}

// pumpStream copies RecordIO bytes from the manager's pipe to the HTTP
// response, flushing after every read so chunks reach the peer promptly,
// and closes done once the pipe reports EOF or error (local close or
// write failure to a disconnected peer).
func pumpStream(w http.ResponseWriter, flusher http.Flusher, pr *io.PipeReader, done chan struct{}) {
	defer close(done)
	buf := make([]byte, 4096)
	for {
		n, readErr := pr.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				pr.CloseWithError(writeErr)
				return
			}
			flusher.Flush()
		}
		if readErr != nil {
			return
		}
	}
}

// handleNonSubscribe implements spec.md §4.C step 6: validate subscription
// and stream-id, then dispatch by call type.
func (s *Server) handleNonSubscribe(w http.ResponseWriter, r *http.Request, call *provider.Call, ct provider.ContentType) {
	if call.ResourceProviderID == nil || call.ResourceProviderID.Value == "" {
		writeError(w, badRequest("call must carry resource_provider_id"), "")
		return
	}
	providerID := call.ResourceProviderID.Value

	streamID, subscribed := s.manager.Lookup(providerID)
	if !subscribed {
		writeError(w, badRequest(fmt.Sprintf("resource provider %q is not subscribed", providerID)), "")
		return
	}

	given := r.Header.Get(streamIDHeader)
	if given == "" {
		writeError(w, badRequest("Mesos-Stream-Id header is required"), "")
		return
	}
	givenID, err := uuid.Parse(given)
	if err != nil || givenID != streamID {
		writeError(w, badRequest(fmt.Sprintf(
			"stream id mismatch: request carries %q, provider %q is bound to %q", given, providerID, streamID)), "")
		return
	}

	switch call.Type {
	case provider.CallUpdateOfferOperationStatusType:
		payload := call.UpdateOfferOperationStatus
		s.manager.UpdateOfferOperationStatus(providerID, provider.UpdateOfferOperationStatusInput{
			FrameworkID:   payload.FrameworkID,
			Status:        payload.Status,
			OperationUUID: payload.OperationUUID,
			LatestStatus:  payload.LatestStatus,
		})
		w.WriteHeader(http.StatusAccepted)

	case provider.CallUpdateStateType:
		payload := call.UpdateState
		if err := s.manager.UpdateState(providerID, provider.UpdateStateInput{
			Resources:           payload.Resources,
			ResourceVersionUUID: payload.ResourceVersionUUID,
			Operations:          payload.Operations,
		}); err != nil {
			writeError(w, badRequest(err.Error()), "")
			return
		}
		w.WriteHeader(http.StatusAccepted)

	case provider.CallUpdatePublishResourcesStatusType:
		payload := call.UpdatePublishResourcesStatus
		s.manager.UpdatePublishResourcesStatus(providerID, *payload)
		w.WriteHeader(http.StatusAccepted)

	case provider.CallUnknownType:
		writeError(w, notImplemented("unknown call type"), "")

	case provider.CallSubscribeType:
		s.logger.Error("subscribe call reached non-subscribe dispatch", "provider_id", providerID)
		writeError(w, internalError(provider.ErrUnreachableCallType.Error()), "")

	default:
		writeError(w, notImplemented(fmt.Sprintf("unrecognized call type %q", call.Type)), "")
	}
}
