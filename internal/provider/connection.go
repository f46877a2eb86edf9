// ABOUTME: Buffered, non-blocking write side of one provider's HTTP event stream
// ABOUTME: A dedicated goroutine owns the underlying writer so Send never blocks callers

package provider

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sendBufferSize bounds how many encoded events may be queued for a
// connection before it is treated as a slow consumer. Matches the teacher's
// agent.Connection response channel (internal/agent/connection.go), which
// buffers at capacity 16 and drops with a non-blocking select/default
// rather than blocking the caller.
const sendBufferSize = 16

// HttpConnection owns one provider's outbound event stream: the writer half
// of its chunked HTTP response, the negotiated content type, the assigned
// stream-id, and a RecordIO encoder. Its lifetime runs from subscribe to
// eviction; send after close always returns false rather than faulting.
//
// Send itself never touches the underlying writer — it only enqueues onto
// an internal buffered channel. A dedicated goroutine started at
// construction drains that channel and performs the actual (possibly
// blocking) write. This keeps a stalled peer from ever blocking a caller
// holding the manager's actor lock (spec.md §4.B, §5): the same shape as
// the teacher's Connection.HandleResponse, which enqueues onto a
// capacity-16 channel with select/default instead of writing inline.
type HttpConnection struct {
	streamID    uuid.UUID
	contentType ContentType

	sendCh      chan []byte
	sendTimeout time.Duration

	mu     sync.Mutex
	closed bool

	writer          io.WriteCloser
	closeWriterOnce sync.Once

	done   chan struct{}
	logger *slog.Logger
}

// HttpConnectionOption configures optional HttpConnection behavior.
type HttpConnectionOption func(*HttpConnection)

// WithSendTimeout bounds how long the drain goroutine waits for a single
// write to complete before treating the peer as a slow consumer and
// closing the connection. Zero (the default) leaves a write unbounded —
// it can still only block the drain goroutine, never the caller of Send.
// Set from providers.send_timeout (internal/config).
func WithSendTimeout(d time.Duration) HttpConnectionOption {
	return func(c *HttpConnection) {
		c.sendTimeout = d
	}
}

// NewHttpConnection wraps the write half of a provider's response body and
// starts the background goroutine that drains sends onto it. done must be
// closed by the caller once the reader half observes EOF or error
// (typically a goroutine blocked on the paired pipe reader or on the
// underlying ResponseWriter's CloseNotify-equivalent).
func NewHttpConnection(writer io.WriteCloser, contentType ContentType, done chan struct{}, logger *slog.Logger, opts ...HttpConnectionOption) *HttpConnection {
	c := &HttpConnection{
		streamID:    uuid.New(),
		contentType: contentType,
		sendCh:      make(chan []byte, sendBufferSize),
		writer:      writer,
		done:        done,
		logger:      logger.With("component", "http_connection"),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.drain()

	return c
}

// StreamID returns the stream-id a provider must echo on every subsequent
// non-subscribe call.
func (c *HttpConnection) StreamID() uuid.UUID {
	return c.streamID
}

// ContentType returns the content type fixed for the lifetime of the stream.
func (c *HttpConnection) ContentType() ContentType {
	return c.contentType
}

// Send encodes an Event and enqueues it for the drain goroutine to frame
// and write as one RecordIO record. It returns false iff the event cannot
// be encoded, the connection is already closed, or the send buffer is
// full — in every case the caller
// treats the connection as a dead end without faulting. Send never blocks:
// a full buffer means the peer isn't keeping up, and is treated the same
// as a dead connection rather than waited on (spec.md §4.B).
func (c *HttpConnection) Send(event *Event) bool {
	payload, err := EncodeEvent(event, c.contentType)
	if err != nil {
		c.logger.Error("encoding event", "error", err, "stream_id", c.streamID)
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	select {
	case c.sendCh <- payload:
		c.mu.Unlock()
		return true
	default:
	}

	c.closed = true
	close(c.sendCh)
	c.mu.Unlock()

	c.logger.Warn("send buffer full, evicting slow consumer", "stream_id", c.streamID)
	c.closeWriter()
	return false
}

// drain runs for the lifetime of the connection, performing every write the
// HTTP layer or the actor queued via Send. It is the only goroutine that
// touches writer, so a stalled peer only ever blocks this goroutine — never
// Send's caller, and never the manager's actor lock.
func (c *HttpConnection) drain() {
	for payload := range c.sendCh {
		if err := c.writeRecord(payload); err != nil {
			c.logger.Debug("write failed, closing connection", "error", err, "stream_id", c.streamID)
			c.Close()
			return
		}
	}
}

// writeRecord performs one write, optionally bounded by sendTimeout. On
// timeout it closes the writer to unblock the in-flight write (closing
// either end of an io.Pipe wakes a blocked Write) and reports an error so
// the drain loop stops.
func (c *HttpConnection) writeRecord(payload []byte) error {
	if c.sendTimeout <= 0 {
		return WriteRecord(c.writer, payload)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- WriteRecord(c.writer, payload) }()

	select {
	case err := <-errCh:
		return err
	case <-time.After(c.sendTimeout):
		c.logger.Warn("write exceeded send timeout, evicting slow consumer", "stream_id", c.streamID, "timeout", c.sendTimeout)
		c.closeWriter()
		<-errCh
		return fmt.Errorf("write exceeded send timeout of %s", c.sendTimeout)
	}
}

// Close marks the connection dead and closes the underlying writer. The
// drain goroutine observes the closed send channel, finishes any write
// already in flight, and exits. Safe to call more than once and
// concurrently with Send.
func (c *HttpConnection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.sendCh)
	c.mu.Unlock()

	c.closeWriter()
}

// closeWriter closes the underlying writer exactly once, regardless of
// whether it is reached via Close, a write timeout, or a write error.
func (c *HttpConnection) closeWriter() {
	c.closeWriterOnce.Do(func() {
		if err := c.writer.Close(); err != nil {
			c.logger.Debug("closing writer", "error", err, "stream_id", c.streamID)
		}
	})
}

// Closed returns a channel that is closed once the reader half has observed
// EOF or error — either because the peer disconnected or because Close was
// called locally. The manager actor selects on this to run eviction exactly
// once per connection.
func (c *HttpConnection) Closed() <-chan struct{} {
	return c.done
}
