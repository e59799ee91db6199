package stream

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/rgsearch/core"
	"golang.org/x/time/rate"
)

const readBufferSize = 64 * 1024

// Result summarizes one streaming run.
type Result struct {
	Lines   int   // Lines delivered in data events
	Batches int   // Data events emitted
	Capped  bool  // The match cap stopped the run
	Err     error // Read error that ended the run, if any; io.EOF is not reported
}

// Streamer batches lines from a reader into search events.
// A single Streamer may run many sessions concurrently.
type Streamer struct {
	cfg     Config
	sink    Sink
	monitor Monitor
	logger  *slog.Logger
}

// Option configures a Streamer.
type Option func(*Streamer) error

// WithConfig sets the batching thresholds.
// Default is DefaultConfig().
func WithConfig(cfg Config) Option {
	return func(s *Streamer) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.cfg = cfg
		return nil
	}
}

// WithMonitor installs observation hooks.
func WithMonitor(monitor Monitor) Option {
	return func(s *Streamer) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Streamer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStreamer creates a streamer delivering events to sink.
func NewStreamer(sink Sink, opts ...Option) (*Streamer, error) {
	if sink == nil {
		return nil, ErrSinkRequired
	}

	s := &Streamer{
		cfg:     DefaultConfig(),
		sink:    sink,
		monitor: &noopMonitor{},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Config returns the thresholds in use.
func (s *Streamer) Config() Config {
	return s.cfg
}

// Run consumes r line by line until it is exhausted, a read fails, or the
// match cap is reached. onCap, if non-nil, is called once when the cap trips,
// before reading stops; it is where the owning process gets terminated.
//
// Run always finishes by emitting exactly one finished event.
func (s *Streamer) Run(session core.SessionID, r io.Reader, onCap func()) Result {
	var (
		result    Result
		batch     = make([]string, 0, s.cfg.BatchSize)
		lastFlush = time.Now()
		reader    = bufio.NewReaderSize(r, readBufferSize)
		progress  = rate.Sometimes{First: 1, Interval: time.Second}
	)

	s.monitor.Start(session)

	flush := func() {
		lines := batch
		batch = make([]string, 0, s.cfg.BatchSize)
		lastFlush = time.Now()
		result.Lines += len(lines)
		result.Batches++
		s.emit(core.DataEvent(session, lines))
		s.monitor.Batch(session, len(lines))
	}

	total := 0
	for {
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				result.Err = err
				s.logger.Debug("stream read ended", "session", session, "err", err)
			}
			break
		}

		total++
		batch = append(batch, line)

		if len(batch) >= s.cfg.BatchSize || time.Since(lastFlush) >= s.cfg.FlushInterval {
			flush()
		}

		progress.Do(func() {
			s.logger.Debug("streaming", "session", session, "lines", total)
		})

		if total >= s.cfg.MatchCap {
			result.Capped = true
			s.logger.Info("match cap reached", "session", session, "cap", s.cfg.MatchCap)
			s.monitor.Capped(session, total)
			if onCap != nil {
				onCap()
			}
			break
		}
	}

	if len(batch) > 0 {
		flush()
	}

	s.emit(core.FinishedEvent(session))
	s.monitor.Finish(session, result)
	s.logger.Debug("stream finished", "session", session, "lines", result.Lines, "batches", result.Batches, "capped", result.Capped)

	return result
}

func (s *Streamer) emit(event core.SearchEvent) {
	if err := s.sink.Emit(event); err != nil {
		s.logger.Debug("dropped search event", "session", event.Session, "kind", event.Kind, "err", err)
	}
}

// readLine returns the next line without its terminator ("\n" or "\r\n").
// A final line without a newline is still returned; io.EOF follows it.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		} else {
			return "", err
		}
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	if !utf8.ValidString(line) {
		return "", ErrInvalidLine
	}
	return line, nil
}
