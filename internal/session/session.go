package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Rana718/tablekeep/internal/database"
	"github.com/Rana718/tablekeep/internal/metrics"
	"github.com/Rana718/tablekeep/internal/tables"
)

// Repository loads and stores the whole collection.
type Repository interface {
	Load(ctx context.Context) (*tables.Collection, bool, error)
	SaveSnapshot(ctx context.Context, snap *tables.Snapshot) error
}

type options struct {
	logger      *slog.Logger
	recorder    *metrics.Recorder
	storeOpts   []tables.Option
	saveTimeout time.Duration
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(o *options) {
		o.recorder = rec
	}
}

func WithStoreOptions(opts ...tables.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

func WithSaveTimeout(d time.Duration) Option {
	return func(o *options) {
		o.saveTimeout = d
	}
}

// Session is a store that has completed its initial load and saves every
// committed change in the background.
type Session struct {
	store  *tables.Store
	saver  *database.Saver
	cancel func()
	logger *slog.Logger
	found  bool
}

// Open loads the stored collection once and returns a session around it. A
// failed load is logged and the session starts empty. Saving begins only
// after the load has finished.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Session, error) {
	if repo == nil {
		return nil, errors.New("session needs a repository")
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	initial, found, err := repo.Load(ctx)
	if err != nil {
		o.logger.Warn("could not load stored tables, starting empty", "error", err)
		initial, found = nil, false
	}

	storeOpts := []tables.Option{tables.WithLogger(o.logger)}
	saverOpts := []database.SaverOption{
		database.WithSaverLogger(o.logger),
		database.WithSaveTimeout(o.saveTimeout),
	}
	if o.recorder != nil {
		storeOpts = append(storeOpts, tables.WithObserver(o.recorder))
		saverOpts = append(saverOpts, database.WithSaveObserver(o.recorder))
	}
	storeOpts = append(storeOpts, o.storeOpts...)

	store := tables.NewStore(initial, storeOpts...)
	saver := database.NewSaver(repo, saverOpts...)

	s := &Session{store: store, saver: saver, logger: o.logger, found: found}
	if o.recorder != nil {
		o.recorder.ObserveSnapshot(store.Snapshot())
	}

	saved := store.Snapshot().Version()
	s.cancel = store.Subscribe(func(ev tables.Event) {
		if ev.Snapshot.Version() <= saved {
			return
		}
		saved = ev.Snapshot.Version()
		saver.Save(ev.Snapshot)
		if o.recorder != nil {
			o.recorder.ObserveSnapshot(ev.Snapshot)
		}
	})

	o.logger.Debug("session ready", "found", found, "tables", store.Snapshot().Len(), "active", store.Active())
	return s, nil
}

func (s *Session) Store() *tables.Store {
	return s.store
}

// Restored reports whether a stored collection was loaded.
func (s *Session) Restored() bool {
	return s.found
}

// Flush waits for every change made so far to be written.
func (s *Session) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Close stops saving new changes and waits for pending writes.
func (s *Session) Close(ctx context.Context) error {
	s.cancel()
	return s.saver.Close(ctx)
}
