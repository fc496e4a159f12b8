package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/Rana718/tablekeep/internal/database/common"
)

type Adapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Adapter) EnsureNamespace(ctx context.Context, namespace string, version int) error {
	if err := common.ValidateNamespace(namespace); err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+common.MetaTable+` (
		name TEXT PRIMARY KEY,
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create meta table: %w", err)
	}
	// state_value stays TEXT: jsonb would reorder object keys.
	if _, err := tx.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		state_key TEXT PRIMARY KEY,
		state_value TEXT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`, pq.QuoteIdentifier(namespace))); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", namespace, err)
	}

	if err := p.ensureVersion(ctx, tx, namespace, version); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Adapter) ensureVersion(ctx context.Context, tx pgx.Tx, namespace string, version int) error {
	query, args, err := p.qb.Select("version").From(common.MetaTable).
		Where(squirrel.Eq{"name": namespace}).ToSql()
	if err != nil {
		return err
	}

	var stored int
	err = tx.QueryRow(ctx, query, args...).Scan(&stored)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		query, args, err = p.qb.Insert(common.MetaTable).Columns("name", "version").
			Values(namespace, version).ToSql()
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	default:
		if err := common.CheckVersion(namespace, stored, version); err != nil {
			return err
		}
		if stored == version {
			return nil
		}
		query, args, err = p.qb.Update(common.MetaTable).Set("version", version).
			Where(squirrel.Eq{"name": namespace}).ToSql()
	}
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

func (p *Adapter) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	query, args, err := p.qb.Select("state_value").From(pq.QuoteIdentifier(namespace)).
		Where(squirrel.Eq{"state_key": key}).ToSql()
	if err != nil {
		return nil, false, err
	}

	var value string
	err = p.pool.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s/%s: %w", namespace, key, err)
	}
	return []byte(value), true, nil
}

func (p *Adapter) Put(ctx context.Context, namespace, key string, value []byte) error {
	query, args, err := p.qb.Insert(pq.QuoteIdentifier(namespace)).
		Columns("state_key", "state_value", "updated_at").
		Values(key, string(value), time.Now().UTC()).
		Suffix("ON CONFLICT (state_key) DO UPDATE SET state_value = EXCLUDED.state_value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", namespace, key, err)
	}
	return tx.Commit(ctx)
}
