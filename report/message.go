package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// MessageType is the "type" field of a ripgrep JSON message.
type MessageType string

const (
	MessageBegin   MessageType = "begin"
	MessageMatch   MessageType = "match"
	MessageContext MessageType = "context"
	MessageEnd     MessageType = "end"
	MessageSummary MessageType = "summary"
)

// Data is ripgrep's arbitrary-data encoding: UTF-8 text, or base64 bytes
// when the value is not valid UTF-8.
type Data struct {
	Text  *string `json:"text,omitempty"`
	Bytes *string `json:"bytes,omitempty"`
}

// String returns the decoded value. Undecodable bytes yield "".
func (d Data) String() string {
	if d.Text != nil {
		return *d.Text
	}
	if d.Bytes != nil {
		raw, err := base64.StdEncoding.DecodeString(*d.Bytes)
		if err != nil {
			return ""
		}
		return string(raw)
	}
	return ""
}

// Submatch is one matched span within a line.
type Submatch struct {
	Match Data `json:"match"`
	Start int  `json:"start"`
	End   int  `json:"end"`
}

// Message is one line of ripgrep --json output. Only the fields used for
// reporting are decoded.
type Message struct {
	Type MessageType `json:"type"`
	Data struct {
		Path       Data       `json:"path"`
		Lines      Data       `json:"lines"`
		LineNumber *int       `json:"line_number"`
		Submatches []Submatch `json:"submatches"`
	} `json:"data"`
}

// Match is a decoded match message.
type Match struct {
	Path       string
	LineNumber int
	Text       string
	Submatches []Submatch
}

// ParseMessage decodes a single output line.
func ParseMessage(line string) (*Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotJSON, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrNotJSON)
	}
	return &msg, nil
}

// Match returns the message as a Match.
func (m *Message) Match() (*Match, error) {
	if m.Type != MessageMatch {
		return nil, fmt.Errorf("%w: %s", ErrNotMatch, m.Type)
	}

	match := &Match{
		Path:       m.Data.Path.String(),
		Text:       trimNewline(m.Data.Lines.String()),
		Submatches: m.Data.Submatches,
	}
	if m.Data.LineNumber != nil {
		match.LineNumber = *m.Data.LineNumber
	}
	return match, nil
}

// ParseMatch decodes line and returns it as a Match.
func ParseMatch(line string) (*Match, error) {
	msg, err := ParseMessage(line)
	if err != nil {
		return nil, err
	}
	return msg.Match()
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n := len(s); n > 0 && s[n-1] == '\r' {
			s = s[:n-1]
		}
	}
	return s
}
