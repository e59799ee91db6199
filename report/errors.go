package report

import "errors"

var (
	// ErrNotJSON is returned when a line is not a ripgrep JSON message.
	ErrNotJSON = errors.New("line is not a ripgrep JSON message")

	// ErrNotMatch is returned when a match is requested from another message type.
	ErrNotMatch = errors.New("message is not a match")
)
