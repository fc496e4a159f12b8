package database

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Rana718/tablekeep/internal/tables"
)

var ErrSaverClosed = errors.New("saver is closed")

// SnapshotWriter persists one snapshot.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, snap *tables.Snapshot) error
}

// SaveObserver is told about every completed write.
type SaveObserver interface {
	ObserveSave(d time.Duration, err error)
}

type SaverOption func(*Saver)

func WithSaveTimeout(d time.Duration) SaverOption {
	return func(s *Saver) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithSaveObserver(o SaveObserver) SaverOption {
	return func(s *Saver) {
		s.observer = o
	}
}

func WithSaverLogger(logger *slog.Logger) SaverOption {
	return func(s *Saver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type saveJob struct {
	snap    *tables.Snapshot
	waiters []chan error
}

// Saver writes snapshots from a single background goroutine. Saves that
// arrive while a write is running are merged: only the newest snapshot is
// written next and every merged caller receives that write's result.
type Saver struct {
	w        SnapshotWriter
	logger   *slog.Logger
	observer SaveObserver
	timeout  time.Duration

	mu       sync.Mutex
	pending  *saveJob
	inflight bool
	closed   bool
	flushers []chan struct{}

	wake      chan struct{}
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func NewSaver(w SnapshotWriter, opts ...SaverOption) *Saver {
	s := &Saver{
		w:       w,
		logger:  slog.Default(),
		timeout: 30 * time.Second,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Save schedules snap to be written and returns right away. The returned
// channel receives the outcome of the write that covered snap.
func (s *Saver) Save(snap *tables.Snapshot) <-chan error {
	done := make(chan error, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- ErrSaverClosed
		return done
	}
	if s.pending == nil {
		s.pending = &saveJob{}
	}
	if s.pending.snap == nil || snap.Version() >= s.pending.snap.Version() {
		s.pending.snap = snap
	}
	s.pending.waiters = append(s.pending.waiters, done)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return done
}

// Flush waits until every save scheduled so far has been written.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == nil && !s.inflight {
		s.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	s.flushers = append(s.flushers, ch)
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes whatever is pending and stops the background goroutine.
// Later saves fail with ErrSaverClosed.
func (s *Saver) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.quit)
	})

	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Saver) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.quit:
			s.drain()
			return
		}
	}
}

func (s *Saver) drain() {
	for {
		s.mu.Lock()
		job := s.pending
		s.pending = nil
		if job == nil {
			s.inflight = false
			for _, ch := range s.flushers {
				close(ch)
			}
			s.flushers = nil
			s.mu.Unlock()
			return
		}
		s.inflight = true
		s.mu.Unlock()

		err := s.write(job.snap)
		for _, ch := range job.waiters {
			ch <- err
		}
	}
}

func (s *Saver) write(snap *tables.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := s.w.SaveSnapshot(ctx, snap)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveSave(elapsed, err)
	}
	if err != nil {
		s.logger.Warn("failed to save tables", "version", snap.Version(), "error", err)
		return err
	}
	s.logger.Debug("saved tables", "version", snap.Version(), "tables", snap.Len(), "took", elapsed)
	return nil
}
