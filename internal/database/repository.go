package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Rana718/tablekeep/internal/tables"
)

// Layout of the persisted state.
const (
	DatabaseName  = "TableStateDB"
	SchemaVersion = 1
	Namespace     = "TableState"
	StateKey      = "TableState"
)

// Repository reads and writes the whole table collection as one JSON blob.
type Repository struct {
	adapter Adapter
	logger  *slog.Logger

	mu      sync.Mutex
	ensured bool
}

func NewRepository(adapter Adapter, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{adapter: adapter, logger: logger}
}

// Open connects to the provider's database and returns a repository on it.
func Open(ctx context.Context, provider, url string, logger *slog.Logger) (*Repository, error) {
	adapter := NewAdapter(provider)
	if err := adapter.Connect(ctx, url); err != nil {
		return nil, err
	}
	if err := adapter.Ping(ctx); err != nil {
		adapter.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", provider, err)
	}
	return NewRepository(adapter, logger), nil
}

func (r *Repository) Close() error {
	return r.adapter.Close()
}

func (r *Repository) ensure(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ensured {
		return nil
	}
	if err := r.adapter.EnsureNamespace(ctx, Namespace, SchemaVersion); err != nil {
		return fmt.Errorf("failed to prepare %s: %w", DatabaseName, err)
	}
	r.ensured = true
	return nil
}

// Load returns the stored collection. found is false when nothing has been
// saved yet.
func (r *Repository) Load(ctx context.Context) (*tables.Collection, bool, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, false, err
	}

	data, found, err := r.adapter.Get(ctx, Namespace, StateKey)
	if err != nil {
		return nil, false, err
	}
	if !found {
		r.logger.Debug("no stored tables")
		return nil, false, nil
	}

	c := tables.NewCollection()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, false, fmt.Errorf("failed to decode stored tables: %w", err)
	}
	r.logger.Debug("loaded tables", "tables", c.Len(), "bytes", len(data))
	return c, true, nil
}

// Save replaces the stored collection with c.
func (r *Repository) Save(ctx context.Context, c *tables.Collection) error {
	return r.put(ctx, c)
}

// SaveSnapshot replaces the stored collection with the snapshot's tables.
func (r *Repository) SaveSnapshot(ctx context.Context, snap *tables.Snapshot) error {
	return r.put(ctx, snap)
}

func (r *Repository) put(ctx context.Context, v json.Marshaler) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode tables: %w", err)
	}
	return r.adapter.Put(ctx, Namespace, StateKey, data)
}
