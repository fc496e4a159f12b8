package tables

import (
	"log/slog"
	"sync"
)

// Op names a store operation. It is carried by events and reported to
// observers.
type Op string

const (
	OpCreateTables  Op = "create_tables"
	OpRenameTables  Op = "rename_tables"
	OpDeleteTables  Op = "delete_tables"
	OpSelect        Op = "select"
	OpAddColumns    Op = "add_columns"
	OpRenameColumns Op = "rename_columns"
	OpDeleteColumns Op = "delete_columns"
	OpAddRow        Op = "add_row"
	OpEditRow       Op = "edit_row"
	OpDeleteRow     Op = "delete_row"
	OpReplace       Op = "replace"
)

// Event is delivered to subscribers after a change is committed.
type Event struct {
	Op       Op
	Snapshot *Snapshot
	Active   string
}

// Observer is told about the outcome of every operation, including rejected
// ones. A nil error means the operation succeeded.
type Observer interface {
	ObserveMutation(op Op, err error)
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// WithRequireCompleteRows makes AddRow and EditRow reject rows that leave any
// column of the table blank.
func WithRequireCompleteRows(require bool) Option {
	return func(s *Store) {
		s.requireComplete = require
	}
}

// Store owns the table collection and the active selection. Every mutation
// validates against the current snapshot and either commits a new snapshot or
// leaves everything untouched.
type Store struct {
	mu              sync.RWMutex
	snap            *Snapshot
	active          string
	subs            map[int]func(Event)
	nextSub         int
	logger          *slog.Logger
	observer        Observer
	requireComplete bool
}

// NewStore creates a store seeded with a copy of initial, which may be nil.
// The first table, if any, becomes the active selection.
func NewStore(initial *Collection, opts ...Option) *Store {
	s := &Store{
		subs:   make(map[int]func(Event)),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	var c *Collection
	if initial != nil {
		c = initial.Clone()
	}
	s.snap = newSnapshot(c, 0)
	s.active = s.snap.First()
	return s
}

// Snapshot returns the current committed state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Active returns the active table name, or "" when nothing is selected.
func (s *Store) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// State returns the snapshot and selection read together.
func (s *Store) State() (*Snapshot, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.active
}

// Subscribe registers fn to be called after every committed change. Calls are
// made in commit order while the store is locked, so fn must not call back
// into the store. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Select makes name the active table. An empty name clears the selection.
func (s *Store) Select(name string) error {
	return s.apply(OpSelect, func(_ *Collection, active string) (string, bool, error) {
		if name != "" && !s.snap.Has(name) {
			return active, false, unknownTable(name)
		}
		return name, name != active, nil
	})
}

// mutation receives a private copy of the collection mapping and the current
// selection. It returns the new selection and whether anything changed.
// Table values must be replaced, never modified in place.
type mutation func(c *Collection, active string) (newActive string, changed bool, err error)

func (s *Store) apply(op Op, fn mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.tables.shallowClone()
	active, changed, err := fn(next, s.active)
	if s.observer != nil {
		s.observer.ObserveMutation(op, err)
	}
	if err != nil {
		s.logger.Debug("operation rejected", "op", op, "error", err)
		return err
	}
	if !changed {
		return nil
	}

	if op != OpSelect {
		s.snap = newSnapshot(next, s.snap.version+1)
	}
	if active != "" && !s.snap.Has(active) {
		active = s.snap.First()
	}
	s.active = active
	s.logger.Debug("committed", "op", op, "version", s.snap.version, "active", s.active)

	ev := Event{Op: op, Snapshot: s.snap, Active: s.active}
	for _, fn := range s.subs {
		fn(ev)
	}
	return nil
}
