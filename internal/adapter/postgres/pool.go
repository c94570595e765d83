package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/config"
)

// ErrPoolClosed is returned by LazyPool after Close.
var ErrPoolClosed = errors.New("postgres: pool closed")

// NewPool creates a PostgreSQL connection pool configured from DatabaseConfig.
// It parses the DSN, applies pool settings (max/min conns, lifetimes), pings
// the database for fail-fast validation, and returns the ready pool.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// LazyPool connects on first use and reuses the pool for the life of the
// process. Concurrent first callers share one connection attempt; a failed
// attempt is not cached, so the next caller retries.
type LazyPool struct {
	cfg   config.DatabaseConfig
	group singleflight.Group

	mu     sync.RWMutex
	pool   *pgxpool.Pool
	closed bool

	// connect is swapped in tests.
	connect func(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error)
}

// NewLazyPool returns a pool handle that has not connected yet.
func NewLazyPool(cfg config.DatabaseConfig) *LazyPool {
	return &LazyPool{cfg: cfg, connect: NewPool}
}

// Pool returns the shared pool, connecting if this is the first call.
func (p *LazyPool) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	p.mu.RLock()
	pool, closed := p.pool, p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}
	if pool != nil {
		return pool, nil
	}

	v, err, _ := p.group.Do("connect", func() (any, error) {
		p.mu.RLock()
		existing := p.pool
		p.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		// The attempt is shared, so one caller's cancellation must not fail the rest.
		connectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.ConnectTimeout)
		defer cancel()

		created, err := p.connect(connectCtx, p.cfg)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			created.Close()
			return nil, ErrPoolClosed
		}
		p.pool = created
		return created, nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return v.(*pgxpool.Pool), nil
}

// Querier returns the transaction stored in ctx, or the shared pool.
func (p *LazyPool) Querier(ctx context.Context) (Querier, error) {
	if tx, ok := txFromCtx(ctx); ok {
		return tx, nil
	}
	pool, err := p.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Ping connects if needed and round-trips to the server.
func (p *LazyPool) Ping(ctx context.Context) error {
	pool, err := p.Pool(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close releases the pool if it was ever opened. Later calls to Pool fail.
func (p *LazyPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}
