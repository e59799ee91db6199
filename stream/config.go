package stream

import (
	"fmt"
	"time"
)

const (
	// DefaultBatchSize is the number of lines that forces a flush.
	DefaultBatchSize = 1000
	// DefaultFlushInterval is the time since the last flush that forces a flush.
	DefaultFlushInterval = 50 * time.Millisecond
	// DefaultMatchCap is the maximum number of lines streamed per session.
	DefaultMatchCap = 20000
)

// Config holds the batching thresholds.
type Config struct {
	// BatchSize flushes the accumulator once it holds this many lines.
	BatchSize int

	// FlushInterval flushes the accumulator when this much time has passed
	// since the previous flush. Checked as each line arrives.
	FlushInterval time.Duration

	// MatchCap stops the session after this many lines and terminates the process.
	MatchCap int
}

// DefaultConfig returns the standard thresholds: 1000 lines, 50ms, 20000 lines.
func DefaultConfig() Config {
	return Config{
		BatchSize:     DefaultBatchSize,
		FlushInterval: DefaultFlushInterval,
		MatchCap:      DefaultMatchCap,
	}
}

// Validate checks that all thresholds are positive.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be greater than 0", ErrInvalidConfig)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("%w: flush interval must be greater than 0", ErrInvalidConfig)
	}
	if c.MatchCap <= 0 {
		return fmt.Errorf("%w: match cap must be greater than 0", ErrInvalidConfig)
	}
	return nil
}
