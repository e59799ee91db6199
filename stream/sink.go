package stream

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/poiesic/rgsearch/core"
)

// Sink receives search events. Delivery is fire-and-forget: the streamer logs
// and drops any error returned by Emit.
type Sink interface {
	Emit(event core.SearchEvent) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event core.SearchEvent) error

// Emit calls f(event).
func (f SinkFunc) Emit(event core.SearchEvent) error {
	return f(event)
}

// ChanSink forwards events to a channel. Emit blocks until the event is
// received or the sink's context is done, which gives the process natural
// backpressure through its output pipe.
type ChanSink struct {
	ctx context.Context
	ch  chan core.SearchEvent
}

var _ Sink = (*ChanSink)(nil)

// NewChanSink creates a ChanSink with the given channel buffer.
// Once ctx is done, Emit returns ErrSinkClosed instead of blocking.
func NewChanSink(ctx context.Context, buffer int) *ChanSink {
	return &ChanSink{
		ctx: ctx,
		ch:  make(chan core.SearchEvent, buffer),
	}
}

// Emit implements Sink.
func (c *ChanSink) Emit(event core.SearchEvent) error {
	select {
	case c.ch <- event:
		return nil
	case <-c.ctx.Done():
		return ErrSinkClosed
	}
}

// Events returns the receive side. It is never closed, since several
// sessions may share one sink; stop reading when the context is done.
func (c *ChanSink) Events() <-chan core.SearchEvent {
	return c.ch
}

// JSONSink writes each event as one JSON document per line. Malformed events
// are rejected rather than written.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

var _ Sink = (*JSONSink)(nil)

// NewJSONSink creates a sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

// Emit implements Sink.
func (j *JSONSink) Emit(event core.SearchEvent) error {
	if err := core.ValidateEvent(event); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(event)
}

// Recorder keeps every event it receives. It is safe for concurrent use and
// is mostly useful in tests.
type Recorder struct {
	mu       sync.Mutex
	events   []core.SearchEvent
	finished chan struct{}
	closed   bool
}

var _ Sink = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{finished: make(chan struct{})}
}

// Emit implements Sink.
func (r *Recorder) Emit(event core.SearchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	if event.IsFinished() && !r.closed {
		r.closed = true
		close(r.finished)
	}
	return nil
}

// Finished is closed when the first finished event arrives.
func (r *Recorder) Finished() <-chan struct{} {
	return r.finished
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []core.SearchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.SearchEvent(nil), r.events...)
}

// SessionEvents returns the recorded events of one session, in order.
func (r *Recorder) SessionEvents(session core.SessionID) []core.SearchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.SearchEvent
	for _, e := range r.events {
		if e.Session == session {
			out = append(out, e)
		}
	}
	return out
}

// Lines concatenates the lines of all recorded data events.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lines []string
	for _, e := range r.events {
		lines = append(lines, e.Lines...)
	}
	return lines
}
