package process

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

// Handle owns one live child process and its standard output.
type Handle struct {
	cmd    *exec.Cmd
	logger *slog.Logger

	mu         sync.Mutex
	stdout     *os.File // read end; nil once taken
	taken      bool
	terminated bool

	done    chan struct{} // closed once the process has been reaped
	waitErr error
}

// Option configures Spawn.
type Option func(*spawnOptions)

type spawnOptions struct {
	dir    string
	stderr io.Writer
	logger *slog.Logger
}

// WithDir sets the working directory of the child.
func WithDir(dir string) Option {
	return func(o *spawnOptions) {
		o.dir = dir
	}
}

// WithStderr forwards the child's standard error to w.
// By default it is discarded.
func WithStderr(w io.Writer) Option {
	return func(o *spawnOptions) {
		o.stderr = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *spawnOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// Spawn launches name with args, piping its standard output back to the caller.
// The arguments are passed verbatim.
func Spawn(name string, args []string, opts ...Option) (*Handle, error) {
	options := &spawnOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = options.dir
	cmd.Stderr = options.stderr
	cmd.SysProcAttr = sysProcAttr()

	// A plain os.Pipe instead of cmd.StdoutPipe: Wait must not close the read
	// end while the consumer is still draining it.
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, name, err)
	}
	cmd.Stdout = w

	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, name, err)
	}
	// The child holds its own copy of the write end.
	w.Close()

	h := &Handle{
		cmd:    cmd,
		logger: options.logger,
		stdout: r,
		done:   make(chan struct{}),
	}
	go h.reap()

	h.logger.Debug("spawned process", "exe", name, "pid", cmd.Process.Pid, "args", args)
	return h, nil
}

func (h *Handle) reap() {
	err := h.cmd.Wait()
	h.mu.Lock()
	h.waitErr = err
	h.mu.Unlock()
	close(h.done)
}

// Pid returns the operating system process ID.
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// TakeOutput hands out the process's output stream. It succeeds exactly once;
// the caller becomes responsible for closing the returned reader.
func (h *Handle) TakeOutput() (io.ReadCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.taken {
		return nil, ErrOutputTaken
	}
	if h.stdout == nil {
		return nil, ErrNoOutput
	}
	h.taken = true
	r := h.stdout
	h.stdout = nil
	return r, nil
}

// Terminate kills the process. It is idempotent and never fails: killing a
// process that already exited is not an error. It does not wait for exit.
func (h *Handle) Terminate() {
	h.mu.Lock()
	if h.terminated {
		h.mu.Unlock()
		return
	}
	h.terminated = true
	h.mu.Unlock()

	select {
	case <-h.done:
		// Already reaped; the pid may belong to someone else by now.
		return
	default:
	}

	if err := killProcess(h.cmd.Process); err != nil {
		h.logger.Debug("kill failed", "pid", h.Pid(), "err", err)
		return
	}
	h.logger.Debug("terminated process", "pid", h.Pid())
}

// Terminated reports whether Terminate has been called.
func (h *Handle) Terminated() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.terminated
}

// Done returns a channel closed once the process has exited and been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the process has been reaped and returns its exit error.
func (h *Handle) Wait() error {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waitErr
}
