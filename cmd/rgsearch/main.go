// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/rgsearch"
	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/history"
	"github.com/poiesic/rgsearch/process"
	"github.com/poiesic/rgsearch/query"
	"github.com/poiesic/rgsearch/report"
	"github.com/poiesic/rgsearch/search"
	"github.com/poiesic/rgsearch/storage/badger"
	"github.com/poiesic/rgsearch/stream"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const eventBuffer = 16

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "rgsearch",
		Usage: "Stream ripgrep results in batches, one search at a time",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run one search and print its matches",
				ArgsUsage: "QUERY [PATH]",
				Action:    searchCommand,
				Flags: append(searchFlags(),
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "Print ripgrep output lines verbatim",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print search events as JSON lines",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report streaming progress on stderr",
					},
				),
			},
			{
				Name:      "interactive",
				Usage:     "Read queries from stdin; each line replaces the running search",
				ArgsUsage: "[PATH]",
				Action:    interactiveCommand,
				Flags:     searchFlags(),
			},
			{
				Name:  "history",
				Usage: "Inspect or clear search history",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List recent searches, newest first",
						Action: historyListCommand,
						Flags:  []cli.Flag{dbFlag(true)},
					},
					{
						Name:   "clear",
						Usage:  "Remove all recorded searches",
						Action: historyClearCommand,
						Flags:  []cli.Flag{dbFlag(true)},
					},
				},
			},
			{
				Name:   "check",
				Usage:  "Check that ripgrep is installed",
				Action: checkCommand,
				Flags:  []cli.Flag{executableFlag()},
			},
		},
	}
}

func dbFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB search history directory",
		Required: required,
	}
}

func executableFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "executable",
		Usage: "ripgrep executable name or path",
		Value: search.DefaultExecutable,
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "case-sensitive",
			Aliases: []string{"s"},
			Usage:   "Match case exactly (default is smart case)",
		},
		&cli.BoolFlag{
			Name:    "word",
			Aliases: []string{"w"},
			Usage:   "Only match whole words",
		},
		&cli.BoolFlag{
			Name:    "regex",
			Aliases: []string{"e"},
			Usage:   "Treat the query as a regular expression",
		},
		&cli.StringSliceFlag{
			Name:    "glob",
			Aliases: []string{"g"},
			Usage:   "Include or exclude files matching the glob",
		},
		&cli.IntFlag{
			Name:  "max-count",
			Usage: "Limit matches per file (0 means no limit)",
		},
		dbFlag(false),
		executableFlag(),
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Lines per batch",
			Value: stream.DefaultBatchSize,
		},
		&cli.DurationFlag{
			Name:  "flush-interval",
			Usage: "Maximum time a batch is held before delivery",
			Value: stream.DefaultFlushInterval,
		},
		&cli.IntFlag{
			Name:  "match-cap",
			Usage: "Stop the search after this many lines",
			Value: stream.DefaultMatchCap,
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// searchOptions maps command flags onto core.SearchOptions.
func searchOptions(c *cli.Context) core.SearchOptions {
	return core.SearchOptions{
		CaseSensitive: c.Bool("case-sensitive"),
		WholeWord:     c.Bool("word"),
		Regex:         c.Bool("regex"),
		Globs:         c.StringSlice("glob"),
	}
}

// streamConfig reads the batching flags.
func streamConfig(c *cli.Context) (stream.Config, error) {
	cfg := stream.Config{
		BatchSize:     c.Int("batch-size"),
		FlushInterval: c.Duration("flush-interval"),
		MatchCap:      c.Int("match-cap"),
	}
	if err := cfg.Validate(); err != nil {
		return stream.Config{}, err
	}
	return cfg, nil
}

// openApp builds an App from the shared search flags.
func openApp(ctx context.Context, c *cli.Context, sink stream.Sink, extra ...search.Option) (*rgsearch.App, error) {
	cfg, err := streamConfig(c)
	if err != nil {
		return nil, err
	}

	searchOpts := append([]search.Option{
		search.WithExecutable(c.String("executable")),
		search.WithStreamConfig(cfg),
		search.WithStderr(c.App.ErrWriter),
	}, extra...)

	opts := []rgsearch.AppOption{rgsearch.WithSearchOptions(searchOpts...)}
	if db := c.String("db"); db != "" {
		opts = append(opts, rgsearch.WithHistory(db))
	}

	app, err := rgsearch.NewApp(ctx, sink, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	return app, nil
}

// closeApp closes the sink before releasing the app, so a session blocked
// delivering to a reader that has stopped is freed instead of holding
// Release until its timeout.
func closeApp(app *rgsearch.App, closeSink context.CancelFunc) {
	closeSink()
	if err := app.Close(); err != nil {
		slog.Warn("error closing search history", "err", err)
	}
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("search query is required")
	}
	req := query.Request{
		Query:    c.Args().Get(0),
		Path:     c.Args().Get(1),
		Options:  searchOptions(c),
		MaxCount: c.Int("max-count"),
	}

	// The sink outlives the interrupt: a cancelled search still delivers its
	// finished event.
	sinkCtx, closeSink := context.WithCancel(context.Background())
	defer closeSink()
	sink := stream.NewChanSink(sinkCtx, eventBuffer)

	var extra []search.Option
	if c.Bool("progress") {
		extra = append(extra, search.WithMonitor(report.NewProgressTracker(c.App.ErrWriter, stream.DefaultBatchSize)))
	}

	runCtx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	app, err := openApp(runCtx, c, sink, extra...)
	if err != nil {
		return err
	}
	defer closeApp(app, closeSink)

	session, err := app.Search(runCtx, req)
	if err != nil {
		return err
	}

	p := newPrinter(c.App.Writer, printMode(c))
	summary := report.NewSummary(session.ID())
	finished := make(chan struct{})

	g := new(errgroup.Group)
	g.Go(func() error {
		select {
		case <-runCtx.Done():
			slog.Info("interrupted, cancelling search")
			return app.Cancel()
		case <-finished:
			return nil
		}
	})
	g.Go(func() error {
		defer close(finished)
		for event := range sink.Events() {
			if event.Session != session.ID() {
				continue
			}
			_ = summary.Emit(event)
			if err := p.event(event); err != nil {
				return err
			}
			if event.IsFinished() {
				return nil
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	summary.Complete(session.Wait())

	if p.mode != modeJSON {
		fmt.Fprintln(c.App.ErrWriter, formatSummary(summary.Snapshot(), time.Since(session.StartedAt())))
	}
	return nil
}

func interactiveCommand(c *cli.Context) error {
	path := c.Args().Get(0)
	options := searchOptions(c)

	sinkCtx, closeSink := context.WithCancel(context.Background())
	defer closeSink()
	sink := stream.NewChanSink(sinkCtx, eventBuffer)

	runCtx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	app, err := openApp(runCtx, c, sink)
	if err != nil {
		return err
	}
	defer closeApp(app, closeSink)

	ctx, cancel := context.WithCancel(runCtx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	queries := make(chan string)
	go readQueries(gctx, c.App.Reader, queries)
	p := newPrinter(c.App.Writer, modePretty)

	g.Go(func() error {
		defer cancel()
		var last *search.Session
		for {
			select {
			case <-gctx.Done():
				return app.Cancel()
			case q, ok := <-queries:
				if !ok {
					if last != nil {
						select {
						case <-last.Done():
						case <-gctx.Done():
							return app.Cancel()
						}
					}
					return nil
				}
				session, err := app.Search(gctx, query.Request{Query: q, Path: path, Options: options})
				if err != nil {
					fmt.Fprintln(c.App.ErrWriter, errorStyle.Render(err.Error()))
					continue
				}
				last = session
			}
		}
	})
	g.Go(func() error {
		// Session IDs increase, so anything older than the newest seen is stale.
		var latest core.SessionID
		handle := func(event core.SearchEvent) error {
			if event.Session < latest {
				return nil
			}
			if event.Session > latest {
				latest = event.Session
				p.header(latest)
			}
			return p.event(event)
		}

		for {
			select {
			case event := <-sink.Events():
				if err := handle(event); err != nil {
					return err
				}
			case <-gctx.Done():
				// Print whatever the last session left buffered.
				for {
					select {
					case event := <-sink.Events():
						if err := handle(event); err != nil {
							return err
						}
					default:
						return nil
					}
				}
			}
		}
	})

	return g.Wait()
}

// readQueries sends each non-blank line of r and closes out at EOF or once
// ctx is done. A read already blocked on r returns with its next line.
func readQueries(ctx context.Context, r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		select {
		case out <- q:
		case <-ctx.Done():
			return
		}
	}
}

// openHistory opens the history store named by --db.
func openHistory(c *cli.Context) (*history.Service, func(), error) {
	backend, err := badger.OpenBackendWithRetry(c.Context, c.String("db"), 3, 100*time.Millisecond)
	if err != nil {
		return nil, nil, err
	}
	repo := badger.NewHistoryRepository(backend)

	svc, err := history.New(repo)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	closer := func() {
		repo.Close()
		backend.Close()
	}
	return svc, closer, nil
}

func historyListCommand(c *cli.Context) error {
	svc, closer, err := openHistory(c)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer closer()

	entries, err := svc.List(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.App.Writer, mutedStyle.Render("no searches recorded"))
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintln(c.App.Writer, formatHistoryEntry(entry))
	}
	return nil
}

func historyClearCommand(c *cli.Context) error {
	svc, closer, err := openHistory(c)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer closer()

	if err := svc.Clear(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "history cleared")
	return nil
}

func checkCommand(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	version, err := process.CheckInstalled(ctx, c.String("executable"))
	if err != nil {
		return fmt.Errorf("ripgrep not available: %w", err)
	}
	fmt.Fprintln(c.App.Writer, successStyle.Render(version))
	return nil
}
