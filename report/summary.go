package report

import (
	"sync"

	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/stream"
)

// Summary accumulates statistics for one streaming session.
// It implements stream.Sink and is safe for concurrent use.
type Summary struct {
	mu sync.Mutex

	session  core.SessionID
	capped   bool
	lines    int
	matches  int
	other    int
	invalid  int
	files    map[string]struct{}
	finished bool
}

// Snapshot is a point-in-time copy of a Summary.
type Snapshot struct {
	Lines    int  // Lines received
	Matches  int  // Lines that decoded as match messages
	Files    int  // Distinct files with at least one match
	Other    int  // Valid non-match messages (begin, end, context, summary)
	Invalid  int  // Lines that were not ripgrep JSON
	Capped   bool // The match cap stopped the stream, as set by Complete
	Finished bool // The terminal event arrived
}

// NewSummary creates a summary for session. Events tagged with another
// session are ignored; a zero session accepts every event.
func NewSummary(session core.SessionID) *Summary {
	return &Summary{
		session: session,
		files:   make(map[string]struct{}),
	}
}

// Complete records the streamer's result for the session. Only the result
// knows whether the cap cut the stream short; a stream that ends on its own
// at exactly the cap is not capped.
func (s *Summary) Complete(result stream.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capped = result.Capped
}

// Emit folds a search event into the summary.
func (s *Summary) Emit(event core.SearchEvent) error {
	if s.session != 0 && event.Session != s.session {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if event.IsFinished() {
		s.finished = true
		return nil
	}
	for _, line := range event.Lines {
		s.addLine(line)
	}
	return nil
}

func (s *Summary) addLine(line string) {
	s.lines++

	msg, err := ParseMessage(line)
	if err != nil {
		s.invalid++
		return
	}
	if msg.Type != MessageMatch {
		s.other++
		return
	}

	s.matches++
	if path := msg.Data.Path.String(); path != "" {
		s.files[path] = struct{}{}
	}
}

// Snapshot returns the current statistics.
func (s *Summary) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Lines:    s.lines,
		Matches:  s.matches,
		Files:    len(s.files),
		Other:    s.other,
		Invalid:  s.invalid,
		Capped:   s.capped,
		Finished: s.finished,
	}
}
