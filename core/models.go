package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EventKind tags a SearchEvent.
type EventKind string

const (
	// EventData carries a batch of output lines.
	EventData EventKind = "data"
	// EventFinished is the terminal event of a streaming session. It never carries lines.
	EventFinished EventKind = "finished"
)

// SessionID identifies one search from spawn to terminal event.
// Zero means untagged.
type SessionID uint64

// SearchEvent is the unit delivered to a UI sink.
type SearchEvent struct {
	Kind    EventKind `json:"kind"`
	Lines   []string  `json:"lines"`
	Session SessionID `json:"session,omitempty"`
}

// DataEvent builds a data event. Ownership of lines passes to the event.
func DataEvent(session SessionID, lines []string) SearchEvent {
	return SearchEvent{Kind: EventData, Lines: lines, Session: session}
}

// FinishedEvent builds the terminal event of a session.
func FinishedEvent(session SessionID) SearchEvent {
	return SearchEvent{Kind: EventFinished, Lines: []string{}, Session: session}
}

// IsFinished reports whether e is a terminal event.
func (e SearchEvent) IsFinished() bool {
	return e.Kind == EventFinished
}

// SearchOptions are the user-facing toggles translated into ripgrep arguments.
type SearchOptions struct {
	CaseSensitive bool
	WholeWord     bool
	Regex         bool
	Globs         []string // Optional --glob filters, passed through verbatim
}

// HistoryEntry records one search the user ran.
type HistoryEntry struct {
	Id        ID
	Query     string
	Path      string
	Options   SearchOptions
	Timestamp time.Time // When the search was started
}

// Tuple returns the entry's identity as Path and Query joined by a NUL byte.
// NUL cannot occur in a command-line argument or a file path, so distinct
// (query, path) pairs never share a tuple. Entries with the same tuple are
// the same search.
func (h *HistoryEntry) Tuple() string {
	return h.Path + "\x00" + h.Query
}
