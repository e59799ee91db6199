package search

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/process"
	"github.com/poiesic/rgsearch/slot"
	"github.com/poiesic/rgsearch/stream"
)

const (
	// DefaultExecutable is looked up on PATH.
	DefaultExecutable = "rg"

	defaultPoolSize       = 8
	defaultReleaseTimeout = 5 * time.Second
)

// Slot is the shared registry holding the running search process.
type Slot = slot.Slot[*process.Handle]

// NewSlot returns an empty slot for a Controller.
func NewSlot() *Slot {
	return slot.New[*process.Handle]()
}

// Controller starts and cancels searches. It is safe for concurrent use.
type Controller struct {
	slot     *Slot
	sink     stream.Sink
	streamer *stream.Streamer
	pool     *ants.Pool

	executable string
	dir        string
	stderr     io.Writer
	poolSize   int
	streamCfg  stream.Config
	monitor    stream.Monitor
	logger     *slog.Logger

	nextSession atomic.Uint64
	released    atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller) error

// WithExecutable sets the search executable.
// Default is "rg".
func WithExecutable(name string) Option {
	return func(c *Controller) error {
		if name == "" {
			return ErrExecutableRequired
		}
		c.executable = name
		return nil
	}
}

// WithDir sets the working directory searches run in.
func WithDir(dir string) Option {
	return func(c *Controller) error {
		c.dir = dir
		return nil
	}
}

// WithStderr forwards the search process's standard error to w.
func WithStderr(w io.Writer) Option {
	return func(c *Controller) error {
		c.stderr = w
		return nil
	}
}

// WithStreamConfig sets the batching thresholds and match cap.
// Default is stream.DefaultConfig().
func WithStreamConfig(cfg stream.Config) Option {
	return func(c *Controller) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.streamCfg = cfg
		return nil
	}
}

// WithMonitor installs streaming hooks.
func WithMonitor(monitor stream.Monitor) Option {
	return func(c *Controller) error {
		c.monitor = monitor
		return nil
	}
}

// WithPoolSize sets how many streaming sessions may run at once.
// A superseded session keeps its worker until it drains, so this must allow
// for a few overlapping sessions. Default is 8, minimum 2.
func WithPoolSize(size int) Option {
	return func(c *Controller) error {
		if size < 2 {
			size = 2
		}
		c.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewController creates a controller that installs processes in s and
// delivers events to sink. Several controllers must not share one slot
// unless they are meant to evict each other's searches.
func NewController(s *Slot, sink stream.Sink, opts ...Option) (*Controller, error) {
	if s == nil {
		return nil, ErrSlotRequired
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}

	c := &Controller{
		slot:       s,
		sink:       sink,
		executable: DefaultExecutable,
		poolSize:   defaultPoolSize,
		streamCfg:  stream.DefaultConfig(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// Build the streamer and pool after options so they get the final config.
	streamer, err := stream.NewStreamer(sink,
		stream.WithConfig(c.streamCfg),
		stream.WithMonitor(c.monitor),
		stream.WithLogger(c.logger),
	)
	if err != nil {
		return nil, err
	}
	c.streamer = streamer

	pool, err := ants.NewPool(c.poolSize,
		ants.WithLogger(&antsLoggerAdapter{logger: c.logger}),
		ants.WithPanicHandler(func(p any) {
			c.logger.Error("streaming session panicked", "panic", p)
		}),
	)
	if err != nil {
		return nil, err
	}
	c.pool = pool

	return c, nil
}

// StartSearch terminates any running search, spawns the executable with args
// and starts streaming its output. It returns once the new process is
// installed; the returned Session can be used to wait for the stream to end.
// Only spawning can fail.
func (c *Controller) StartSearch(args []string) (*Session, error) {
	if c.released.Load() {
		return nil, ErrControllerReleased
	}

	// The previous process dies before the new one is spawned.
	if evicted, err := c.slot.Evict(); err != nil {
		return nil, fmt.Errorf("evicting previous search: %w", err)
	} else if evicted {
		c.logger.Debug("evicted previous search")
	}

	handle, err := process.Spawn(c.executable, args,
		process.WithDir(c.dir),
		process.WithStderr(c.stderr),
		process.WithLogger(c.logger),
	)
	if err != nil {
		return nil, err
	}

	out, err := handle.TakeOutput()
	if err != nil {
		handle.Terminate()
		return nil, fmt.Errorf("acquiring output stream: %w", err)
	}

	old, err := c.slot.Replace(handle)
	if err != nil {
		handle.Terminate()
		out.Close()
		return nil, fmt.Errorf("installing search: %w", err)
	}
	if old != nil {
		// A concurrent StartSearch got in between our eviction and install.
		old.Terminate()
	}

	session := &Session{
		id:        core.SessionID(c.nextSession.Add(1)),
		args:      append([]string(nil), args...),
		handle:    handle,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}

	if err := c.pool.Submit(func() { c.run(session, out) }); err != nil {
		if owned, _ := c.slot.TakeIf(handle); owned {
			handle.Terminate()
		}
		out.Close()
		close(session.done)
		return nil, fmt.Errorf("starting stream: %w", err)
	}

	c.logger.Info("search started", "session", session.id, "pid", handle.Pid(), "args", args)
	return session, nil
}

// run is the body of one streaming session.
func (c *Controller) run(session *Session, out io.ReadCloser) {
	defer close(session.done)
	defer out.Close()

	handle := session.handle
	evictSelf := func() {
		if owned, _ := c.slot.TakeIf(handle); owned {
			handle.Terminate()
		}
	}

	session.result = c.streamer.Run(session.id, out, evictSelf)

	// Natural exhaustion or a read failure: the process is done either way.
	evictSelf()

	c.logger.Info("search finished",
		"session", session.id,
		"lines", session.result.Lines,
		"capped", session.result.Capped,
		"elapsed", time.Since(session.startedAt))
}

// CancelSearch terminates the running search, if any. It does not wait for
// the session's finished event. Cancelling with nothing running is a no-op.
func (c *Controller) CancelSearch() error {
	evicted, err := c.slot.Evict()
	if err != nil {
		return fmt.Errorf("cancelling search: %w", err)
	}
	if evicted {
		c.logger.Info("search cancelled")
	}
	return nil
}

// Active reports whether a search process is currently installed.
func (c *Controller) Active() bool {
	return c.slot.Occupied()
}

// Release terminates any running search, closes the slot and waits briefly
// for streaming sessions to drain. The controller must not be used afterwards.
func (c *Controller) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	c.slot.Close()
	if err := c.pool.ReleaseTimeout(defaultReleaseTimeout); err != nil {
		c.logger.Warn("streaming sessions still running at release", "err", err)
	}
}

// antsLoggerAdapter adapts slog.Logger to the ants.Logger interface.
type antsLoggerAdapter struct {
	logger *slog.Logger
}

var _ ants.Logger = (*antsLoggerAdapter)(nil)

func (al *antsLoggerAdapter) Printf(format string, args ...any) {
	al.logger.Warn(fmt.Sprintf(format, args...))
}
