// ABOUTME: Wire codec decoding Calls and encoding Events as JSON or protobuf
// ABOUTME: RecordIO framing multiplexes multiple Events over one chunked HTTP response

package provider

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// ContentType is one of the two wire formats the manager recognizes.
type ContentType int

const (
	ContentTypeJSON ContentType = iota
	ContentTypeProtobuf
)

const (
	mimeJSON     = "application/json"
	mimeProtobuf = "application/x-protobuf"
)

// String renders the canonical MIME type for a ContentType.
func (c ContentType) String() string {
	switch c {
	case ContentTypeJSON:
		return mimeJSON
	case ContentTypeProtobuf:
		return mimeProtobuf
	default:
		return "unknown"
	}
}

// ParseContentType matches a Content-Type (or a single Accept candidate)
// header value against the two recognized MIME types, case-insensitively
// and ignoring any parameters (e.g. "; charset=utf-8").
func ParseContentType(header string) (ContentType, bool) {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(header, ";", 2)[0]))
	switch base {
	case mimeJSON:
		return ContentTypeJSON, true
	case mimeProtobuf:
		return ContentTypeProtobuf, true
	default:
		return 0, false
	}
}

// NegotiateSubscribeContentType picks the response content type for a
// SUBSCRIBE call from an Accept header: prefer JSON, fall back to
// protobuf, and default an empty/wildcard Accept to JSON. Returns false if
// neither recognized type is acceptable.
func NegotiateSubscribeContentType(accept string) (ContentType, bool) {
	accept = strings.TrimSpace(accept)
	if accept == "" || accept == "*/*" {
		return ContentTypeJSON, true
	}

	sawJSON, sawProtobuf := false, false
	for _, candidate := range strings.Split(accept, ",") {
		base := strings.ToLower(strings.TrimSpace(strings.SplitN(candidate, ";", 2)[0]))
		switch base {
		case mimeJSON, "*/*", "application/*":
			sawJSON = true
		case mimeProtobuf:
			sawProtobuf = true
		}
	}
	switch {
	case sawJSON:
		return ContentTypeJSON, true
	case sawProtobuf:
		return ContentTypeProtobuf, true
	default:
		return 0, false
	}
}

// DecodeCall decodes a single Call from a request body in the given
// content type. A decode failure is a protocol error (caller maps it to
// HTTP 400) and never touches manager state.
func DecodeCall(body io.Reader, ct ContentType) (*Call, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading call body: %w", err)
	}

	switch ct {
	case ContentTypeJSON:
		var call Call
		if err := json.Unmarshal(data, &call); err != nil {
			return nil, fmt.Errorf("decoding json call: %w", err)
		}
		return &call, nil
	case ContentTypeProtobuf:
		return unmarshalCall(data)
	default:
		return nil, ErrUnsupportedContentType
	}
}

// EncodeEvent serializes an Event to bytes in the given content type. The
// result is a single record payload; RecordIO framing is applied by the
// caller (see WriteRecord).
func EncodeEvent(e *Event, ct ContentType) ([]byte, error) {
	switch ct {
	case ContentTypeJSON:
		return json.Marshal(e)
	case ContentTypeProtobuf:
		return marshalEvent(e), nil
	default:
		return nil, ErrUnsupportedContentType
	}
}

// WriteRecord frames a single payload as `<decimal-length>\n<payload>` and
// writes it in one call, so a slow/broken writer fails atomically rather
// than leaving a half-written record on the wire.
func WriteRecord(w io.Writer, payload []byte) error {
	header := strconv.Itoa(len(payload)) + "\n"
	record := make([]byte, 0, len(header)+len(payload))
	record = append(record, header...)
	record = append(record, payload...)
	_, err := w.Write(record)
	return err
}

// RecordReader reads RecordIO-framed records off a peer's chunked response
// body — used by tests and by any code reading a provider's event stream
// back (e.g. to observe Events in scenario tests).
type RecordReader struct {
	r *bufio.Reader
}

// NewRecordReader wraps r for RecordIO decoding.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: bufio.NewReader(r)}
}

// ReadRecord reads one length-prefixed record, returning io.EOF when the
// stream ends cleanly between records.
func (rr *RecordReader) ReadRecord() ([]byte, error) {
	line, err := rr.r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	line = strings.TrimSuffix(line, "\n")
	n, err := strconv.Atoi(line)
	if err != nil {
		return nil, fmt.Errorf("invalid record length %q: %w", line, err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rr.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// --- protobuf wire encode/decode ---
//
// Call and Event are declared in spec.md as opaque value types owned by a
// schema defined elsewhere, so no .proto file ships with this spec. The
// functions below hand-encode the same field layout using the wire-format
// primitives from the already-required google.golang.org/protobuf module
// (protowire), giving protobuf content-type parity with the JSON path
// without inventing a parallel ad hoc binary format.

func appendUUID(b []byte, num protowire.Number, u uuid.UUID) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, u[:])
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	if msg == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func marshalResourceProviderID(id *ResourceProviderID) []byte {
	if id == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, id.Value)
	return b
}

func unmarshalResourceProviderID(data []byte) (*ResourceProviderID, error) {
	id := &ResourceProviderID{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			id.Value = string(v)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return id, nil
}

func marshalResourceProviderInfo(info ResourceProviderInfo) []byte {
	var b []byte
	b = appendMessage(b, 1, marshalResourceProviderID(info.ID))
	b = appendString(b, 2, info.Type)
	b = appendString(b, 3, info.Name)
	return b
}

func unmarshalResourceProviderInfo(data []byte) (ResourceProviderInfo, error) {
	var info ResourceProviderInfo
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return info, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return info, protowire.ParseError(m)
			}
			id, err := unmarshalResourceProviderID(v)
			if err != nil {
				return info, err
			}
			info.ID = id
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return info, protowire.ParseError(m)
			}
			info.Type = string(v)
			data = data[m:]
		case 3:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return info, protowire.ParseError(m)
			}
			info.Name = string(v)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return info, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return info, nil
}

func marshalResource(r Resource) []byte {
	var b []byte
	b = appendString(b, 1, r.ProviderID)
	b = appendString(b, 2, r.Name)
	return b
}

func unmarshalResource(data []byte) (Resource, error) {
	var r Resource
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return r, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return r, protowire.ParseError(m)
			}
			r.ProviderID = string(v)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return r, protowire.ParseError(m)
			}
			r.Name = string(v)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return r, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return r, nil
}

func marshalOfferOperation(o OfferOperation) []byte {
	var b []byte
	b = appendString(b, 1, o.Type)
	for _, r := range o.Resources {
		b = appendMessage(b, 2, marshalResource(r))
	}
	return b
}

func unmarshalOfferOperation(data []byte) (OfferOperation, error) {
	var o OfferOperation
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return o, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return o, protowire.ParseError(m)
			}
			o.Type = string(v)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return o, protowire.ParseError(m)
			}
			res, err := unmarshalResource(v)
			if err != nil {
				return o, err
			}
			o.Resources = append(o.Resources, res)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return o, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return o, nil
}

func consumeUnknown(data []byte, typ protowire.Type) int {
	n := protowire.ConsumeFieldValue(0, typ, data)
	return n
}

// marshalCall and unmarshalCall cover the Call envelope and each of its
// mutually-exclusive payloads.
func marshalCall(c *Call) []byte {
	var b []byte
	b = appendString(b, 1, string(c.Type))
	b = appendMessage(b, 2, marshalResourceProviderID(c.ResourceProviderID))

	if c.Subscribe != nil {
		b = appendMessage(b, 3, marshalResourceProviderInfo(c.Subscribe.ResourceProviderInfo))
	}
	if s := c.UpdateOfferOperationStatus; s != nil {
		var sb []byte
		sb = appendString(sb, 1, s.FrameworkID)
		sb = appendString(sb, 2, string(s.Status))
		sb = appendUUID(sb, 3, s.OperationUUID)
		if s.LatestStatus != nil {
			sb = appendString(sb, 4, string(*s.LatestStatus))
		}
		b = appendMessage(b, 4, sb)
	}
	if s := c.UpdateState; s != nil {
		var sb []byte
		for _, r := range s.Resources {
			sb = appendMessage(sb, 1, marshalResource(r))
		}
		sb = appendUUID(sb, 2, s.ResourceVersionUUID)
		for _, op := range s.Operations {
			var ob []byte
			ob = appendUUID(ob, 1, op.OperationUUID)
			ob = appendString(ob, 2, string(op.Status))
			sb = appendMessage(sb, 3, ob)
		}
		b = appendMessage(b, 5, sb)
	}
	if s := c.UpdatePublishResourcesStatus; s != nil {
		var sb []byte
		sb = appendUUID(sb, 1, s.UUID)
		sb = appendString(sb, 2, string(s.Status))
		b = appendMessage(b, 6, sb)
	}
	return b
}

func unmarshalCall(data []byte) (*Call, error) {
	c := &Call{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			c.Type = CallType(v)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			id, err := unmarshalResourceProviderID(v)
			if err != nil {
				return nil, err
			}
			c.ResourceProviderID = id
			data = data[m:]
		case 3:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			info, err := unmarshalResourceProviderInfo(v)
			if err != nil {
				return nil, err
			}
			c.Subscribe = &CallSubscribe{ResourceProviderInfo: info}
			data = data[m:]
		case 4:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s, err := unmarshalCallUpdateOfferOperationStatus(v)
			if err != nil {
				return nil, err
			}
			c.UpdateOfferOperationStatus = s
			data = data[m:]
		case 5:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s, err := unmarshalCallUpdateState(v)
			if err != nil {
				return nil, err
			}
			c.UpdateState = s
			data = data[m:]
		case 6:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s, err := unmarshalCallUpdatePublishResourcesStatus(v)
			if err != nil {
				return nil, err
			}
			c.UpdatePublishResourcesStatus = s
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return c, nil
}

func unmarshalCallUpdateOfferOperationStatus(data []byte) (*CallUpdateOfferOperationStatus, error) {
	s := &CallUpdateOfferOperationStatus{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s.FrameworkID = string(v)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s.Status = OfferOperationStatusState(v)
			data = data[m:]
		case 3:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, err
			}
			s.OperationUUID = u
			data = data[m:]
		case 4:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			st := OfferOperationStatusState(v)
			s.LatestStatus = &st
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return s, nil
}

func unmarshalCallUpdateState(data []byte) (*CallUpdateState, error) {
	s := &CallUpdateState{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			r, err := unmarshalResource(v)
			if err != nil {
				return nil, err
			}
			s.Resources = append(s.Resources, r)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, err
			}
			s.ResourceVersionUUID = u
			data = data[m:]
		case 3:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			entry, err := unmarshalOfferOperationStatusEntry(v)
			if err != nil {
				return nil, err
			}
			s.Operations = append(s.Operations, entry)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return s, nil
}

func unmarshalOfferOperationStatusEntry(data []byte) (OfferOperationStatusEntry, error) {
	var e OfferOperationStatusEntry
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return e, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return e, protowire.ParseError(m)
			}
			u, err := uuid.FromBytes(v)
			if err != nil {
				return e, err
			}
			e.OperationUUID = u
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return e, protowire.ParseError(m)
			}
			e.Status = OfferOperationStatusState(v)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return e, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return e, nil
}

func unmarshalCallUpdatePublishResourcesStatus(data []byte) (*CallUpdatePublishResourcesStatus, error) {
	s := &CallUpdatePublishResourcesStatus{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, err
			}
			s.UUID = u
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s.Status = PublishStatus(v)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return s, nil
}

// marshalEvent and unmarshalEvent cover the Event envelope.
func marshalEvent(e *Event) []byte {
	var b []byte
	b = appendString(b, 1, string(e.Type))

	if s := e.Subscribed; s != nil {
		b = appendMessage(b, 2, marshalResourceProviderID(&s.ProviderID))
	}
	if s := e.ApplyOfferOperation; s != nil {
		var sb []byte
		sb = appendString(sb, 1, s.FrameworkID)
		sb = appendMessage(sb, 2, marshalOfferOperation(s.Info))
		sb = appendUUID(sb, 3, s.OperationUUID)
		if len(s.ResourceVersionUUID) > 0 {
			sb = protowire.AppendTag(sb, 4, protowire.BytesType)
			sb = protowire.AppendBytes(sb, s.ResourceVersionUUID)
		}
		b = appendMessage(b, 3, sb)
	}
	if s := e.AcknowledgeOfferOperation; s != nil {
		var sb []byte
		sb = appendUUID(sb, 1, s.StatusUUID)
		sb = appendUUID(sb, 2, s.OperationUUID)
		b = appendMessage(b, 4, sb)
	}
	if s := e.ReconcileOfferOperations; s != nil {
		var sb []byte
		for _, u := range s.OperationUUIDs {
			sb = appendUUID(sb, 1, u)
		}
		b = appendMessage(b, 5, sb)
	}
	if s := e.PublishResources; s != nil {
		var sb []byte
		sb = appendUUID(sb, 1, s.UUID)
		for _, r := range s.Resources {
			sb = appendMessage(sb, 2, marshalResource(r))
		}
		b = appendMessage(b, 6, sb)
	}
	return b
}

func unmarshalEvent(data []byte) (*Event, error) {
	e := &Event{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			e.Type = EventType(v)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			id, err := unmarshalResourceProviderID(v)
			if err != nil {
				return nil, err
			}
			e.Subscribed = &EventSubscribed{ProviderID: *id}
			data = data[m:]
		case 3:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s, err := unmarshalEventApplyOfferOperation(v)
			if err != nil {
				return nil, err
			}
			e.ApplyOfferOperation = s
			data = data[m:]
		case 4:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s, err := unmarshalEventAcknowledgeOfferOperation(v)
			if err != nil {
				return nil, err
			}
			e.AcknowledgeOfferOperation = s
			data = data[m:]
		case 5:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s, err := unmarshalEventReconcileOfferOperations(v)
			if err != nil {
				return nil, err
			}
			e.ReconcileOfferOperations = s
			data = data[m:]
		case 6:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s, err := unmarshalEventPublishResources(v)
			if err != nil {
				return nil, err
			}
			e.PublishResources = s
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return e, nil
}

func unmarshalEventApplyOfferOperation(data []byte) (*EventApplyOfferOperation, error) {
	s := &EventApplyOfferOperation{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s.FrameworkID = string(v)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			info, err := unmarshalOfferOperation(v)
			if err != nil {
				return nil, err
			}
			s.Info = info
			data = data[m:]
		case 3:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, err
			}
			s.OperationUUID = u
			data = data[m:]
		case 4:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			s.ResourceVersionUUID = append([]byte(nil), v...)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return s, nil
}

func unmarshalEventAcknowledgeOfferOperation(data []byte) (*EventAcknowledgeOfferOperation, error) {
	s := &EventAcknowledgeOfferOperation{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, err
			}
			s.StatusUUID = u
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, err
			}
			s.OperationUUID = u
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return s, nil
}

func unmarshalEventReconcileOfferOperations(data []byte) (*EventReconcileOfferOperations, error) {
	s := &EventReconcileOfferOperations{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, err
			}
			s.OperationUUIDs = append(s.OperationUUIDs, u)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return s, nil
}

func unmarshalEventPublishResources(data []byte) (*EventPublishResources, error) {
	s := &EventPublishResources{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, err
			}
			s.UUID = u
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			r, err := unmarshalResource(v)
			if err != nil {
				return nil, err
			}
			s.Resources = append(s.Resources, r)
			data = data[m:]
		default:
			m := consumeUnknown(data, typ)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return s, nil
}
