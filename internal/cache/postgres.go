package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/platewise/costoracle/internal/model"
)

// Pool abstracts pgxpool for testing with pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresCache implements Cache over a shared Postgres table. Unlike the
// file backend, concurrent processes are safe here: the upsert is atomic.
type PostgresCache struct {
	pool Pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cost_estimates (
	key        TEXT PRIMARY KEY,
	estimate   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// NewPostgres connects a pool and ensures the schema exists.
func NewPostgres(ctx context.Context, connString string) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "cache: postgres connect")
	}
	c := &PostgresCache{pool: pool}
	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "cache: postgres migrate")
	}
	return c, nil
}

// NewPostgresFromPool wraps an existing pool without migrating. Used in tests.
func NewPostgresFromPool(pool Pool) *PostgresCache {
	return &PostgresCache{pool: pool}
}

func (c *PostgresCache) Get(ctx context.Context, key string) (*model.CostEstimate, bool, error) {
	var raw []byte
	err := c.pool.QueryRow(ctx,
		`SELECT estimate FROM cost_estimates WHERE key = $1`, key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: postgres get")
	}

	var e model.CostEstimate
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, eris.Wrap(err, "cache: postgres unmarshal estimate")
	}
	return &e, true, nil
}

func (c *PostgresCache) Put(ctx context.Context, key string, estimate *model.CostEstimate) error {
	raw, err := json.Marshal(estimate)
	if err != nil {
		return eris.Wrap(err, "cache: postgres marshal estimate")
	}

	_, err = c.pool.Exec(ctx, `
		INSERT INTO cost_estimates (key, estimate, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			estimate = EXCLUDED.estimate,
			updated_at = now()`,
		key, raw,
	)
	return eris.Wrap(err, "cache: postgres put")
}

func (c *PostgresCache) Close() error {
	c.pool.Close()
	return nil
}
