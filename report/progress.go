package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/stream"
)

// ProgressTracker prints streaming progress for search sessions.
// It implements stream.Monitor.
type ProgressTracker struct {
	writer         io.Writer
	reportInterval int

	mu       sync.Mutex
	session  core.SessionID
	lines    int
	reported int
	start    time.Time
}

var _ stream.Monitor = (*ProgressTracker)(nil)

// NewProgressTracker creates a tracker that writes to writer every
// reportInterval lines. A non-positive interval reports every batch.
func NewProgressTracker(writer io.Writer, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		reportInterval: reportInterval,
	}
}

// Start resets the tracker for a new session.
func (p *ProgressTracker) Start(session core.SessionID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.session = session
	p.lines = 0
	p.reported = 0
	p.start = time.Now()
}

// Batch records a delivered batch.
func (p *ProgressTracker) Batch(session core.SessionID, lines int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if session != p.session {
		return
	}
	p.lines += lines
	if p.lines-p.reported >= p.reportInterval {
		p.report("")
		p.reported = p.lines
	}
}

// Capped notes that the session hit the match cap.
func (p *ProgressTracker) Capped(session core.SessionID, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if session != p.session {
		return
	}
	p.report(fmt.Sprintf(" (limit of %d reached)", total))
	p.reported = p.lines
}

// Finish prints the final count for the session.
func (p *ProgressTracker) Finish(session core.SessionID, result stream.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if session != p.session {
		return
	}
	p.lines = result.Lines
	p.report("")
	fmt.Fprintln(p.writer)
}

// Lines returns the lines counted for the current session.
func (p *ProgressTracker) Lines() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lines
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report(suffix string) {
	rate := 0.0
	if secs := time.Since(p.start).Seconds(); secs > 0 {
		rate = float64(p.lines) / secs
	}
	fmt.Fprintf(p.writer, "\rsearch %d: %d lines - %.1f lines/s%s", p.session, p.lines, rate, suffix)
}
