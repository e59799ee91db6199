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

package rgsearch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/history"
	"github.com/poiesic/rgsearch/query"
	"github.com/poiesic/rgsearch/search"
	"github.com/poiesic/rgsearch/storage"
	"github.com/poiesic/rgsearch/storage/badger"
	"github.com/poiesic/rgsearch/stream"
)

const (
	defaultOpenAttempts = 3
	defaultOpenDelay    = 100 * time.Millisecond
)

// App wires a search controller to an optional persistent history.
type App struct {
	backend     *badger.Backend
	historyRepo storage.HistoryRepository
	history     *history.Service
	controller  *search.Controller
	logger      *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	historyPath  string
	inMemory     bool
	historyLimit int
	searchOpts   []search.Option
	logger       *slog.Logger
}

// WithHistory persists search history in a BadgerDB directory.
func WithHistory(path string) AppOption {
	return func(o *appOptions) {
		o.historyPath = path
	}
}

// WithMemoryHistory keeps search history in memory for the App's lifetime.
func WithMemoryHistory() AppOption {
	return func(o *appOptions) {
		o.inMemory = true
	}
}

// WithHistoryLimit sets how many history entries are kept.
func WithHistoryLimit(limit int) AppOption {
	return func(o *appOptions) {
		o.historyLimit = limit
	}
}

// WithSearchOptions passes options through to the search controller.
func WithSearchOptions(opts ...search.Option) AppOption {
	return func(o *appOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) AppOption {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// NewApp creates an App delivering search events to sink.
func NewApp(ctx context.Context, sink stream.Sink, opts ...AppOption) (*App, error) {
	options := &appOptions{
		historyLimit: history.DefaultLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	app := &App{logger: options.logger}

	if options.inMemory || options.historyPath != "" {
		if err := app.openHistory(ctx, options); err != nil {
			return nil, err
		}
	}

	searchOpts := append([]search.Option{search.WithLogger(options.logger)}, options.searchOpts...)
	controller, err := search.NewController(search.NewSlot(), sink, searchOpts...)
	if err != nil {
		app.closeHistory()
		return nil, err
	}
	app.controller = controller

	return app, nil
}

func (a *App) openHistory(ctx context.Context, options *appOptions) error {
	var (
		backend *badger.Backend
		err     error
	)
	if options.inMemory {
		backend, err = badger.OpenBackend("", true)
	} else {
		backend, err = badger.OpenBackendWithRetry(ctx, options.historyPath, defaultOpenAttempts, defaultOpenDelay)
	}
	if err != nil {
		return err
	}

	repo := badger.NewHistoryRepository(backend)
	svc, err := history.New(repo,
		history.WithLimit(options.historyLimit),
		history.WithLogger(options.logger),
	)
	if err != nil {
		repo.Close()
		backend.Close()
		return err
	}

	a.backend = backend
	a.historyRepo = repo
	a.history = svc
	return nil
}

// Search records req in the history and starts it, replacing any running
// search. A history failure is logged and does not stop the search.
func (a *App) Search(ctx context.Context, req query.Request) (*search.Session, error) {
	args, err := query.Build(req)
	if err != nil {
		return nil, err
	}

	if a.history != nil {
		if _, err := a.history.Add(ctx, req.Query, req.Path, req.Options); err != nil {
			a.logger.Warn("failed to record search history", "query", req.Query, "err", err)
		}
	}

	return a.controller.StartSearch(args)
}

// Cancel terminates the running search, if any.
func (a *App) Cancel() error {
	return a.controller.CancelSearch()
}

// History returns recorded searches, most recent first. Without a history
// store it returns nil.
func (a *App) History(ctx context.Context) ([]*core.HistoryEntry, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.List(ctx)
}

// ClearHistory removes every recorded search.
func (a *App) ClearHistory(ctx context.Context) error {
	if a.history == nil {
		return nil
	}
	return a.history.Clear(ctx)
}

// Controller returns the underlying search controller.
func (a *App) Controller() *search.Controller {
	return a.controller
}

// Close stops any running search and closes the history store.
func (a *App) Close() error {
	if a.controller != nil {
		a.controller.Release()
	}
	return a.closeHistory()
}

func (a *App) closeHistory() error {
	if a.backend == nil {
		return nil
	}

	var errs []error
	if err := a.historyRepo.Close(); err != nil {
		a.logger.Error("error closing history repository", "err", err)
		errs = append(errs, err)
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing history storage", "err", err)
		errs = append(errs, err)
	}
	a.backend = nil
	return errors.Join(errs...)
}
