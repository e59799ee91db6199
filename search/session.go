package search

import (
	"time"

	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/process"
	"github.com/poiesic/rgsearch/stream"
)

// Session is one search from spawn to finished event.
type Session struct {
	id        core.SessionID
	args      []string
	handle    *process.Handle
	startedAt time.Time

	done   chan struct{}
	result stream.Result // valid once done is closed
}

// ID returns the tag carried by this session's events.
func (s *Session) ID() core.SessionID {
	return s.id
}

// Args returns the arguments the executable was started with.
func (s *Session) Args() []string {
	return s.args
}

// Pid returns the process ID of the search executable.
func (s *Session) Pid() int {
	return s.handle.Pid()
}

// StartedAt returns when the process was spawned.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Terminated reports whether the process has been sent a kill, by eviction,
// cancellation, the match cap or the end of its stream.
func (s *Session) Terminated() bool {
	return s.handle.Terminated()
}

// Done is closed after the session's finished event has been emitted.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session has emitted its finished event.
func (s *Session) Wait() stream.Result {
	<-s.done
	return s.result
}

// Exited is closed once the search process has exited and been reaped.
func (s *Session) Exited() <-chan struct{} {
	return s.handle.Done()
}
