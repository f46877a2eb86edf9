// ABOUTME: Sentinel errors matched with errors.Is across the provider package
// ABOUTME: Protocol validation failures stay plain, wrapped errors instead

package provider

import "errors"

// Sentinel errors the httpapi front controller and callers match against
// with errors.Is. Protocol-level validation failures are returned as plain
// errors (wrapped with %w) since the front controller only needs their
// message, not their identity.
var (
	// ErrNotSubscribed is returned when a call or outbound request targets
	// a resource-provider-id that has no entry in the subscription table.
	ErrNotSubscribed = errors.New("resource provider not subscribed")

	// ErrStreamIDMismatch names the condition where a non-subscribe call
	// carries a Mesos-Stream-Id that does not match the entry's assigned
	// stream id. No function in this package returns it; the httpapi front
	// controller compares the header itself and answers 400.
	ErrStreamIDMismatch = errors.New("stream id mismatch")

	// ErrConnectionClosed is the reason every pending publish promise fails
	// with when its provider's entry is evicted from the table.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrUnsupportedContentType is returned by DecodeCall and EncodeEvent
	// when given a ContentType value the Codec does not recognize. Header
	// matching (ParseContentType, NegotiateSubscribeContentType) reports an
	// unrecognized header through its boolean result instead.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrUnreachableCallType indicates SUBSCRIBE reached the non-subscribe
	// dispatch path, which cannot happen through the front controller and
	// signals a caller bypassing it directly.
	ErrUnreachableCallType = errors.New("subscribe call reached non-subscribe dispatch")
)
