package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/platewise/costoracle/internal/model"
)

// SQLiteCache implements Cache using modernc.org/sqlite.
type SQLiteCache struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS cost_estimates (
	key        TEXT PRIMARY KEY,
	estimate   TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// NewSQLite opens a SQLite-backed cache at the given DSN, configures WAL
// mode, and ensures the schema exists.
func NewSQLite(ctx context.Context, dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: sqlite exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: sqlite migrate")
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (*model.CostEstimate, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT estimate FROM cost_estimates WHERE key = ?`, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: sqlite get")
	}

	var e model.CostEstimate
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, false, eris.Wrap(err, "cache: sqlite unmarshal estimate")
	}
	return &e, true, nil
}

func (c *SQLiteCache) Put(ctx context.Context, key string, estimate *model.CostEstimate) error {
	raw, err := json.Marshal(estimate)
	if err != nil {
		return eris.Wrap(err, "cache: sqlite marshal estimate")
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO cost_estimates (key, estimate, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			estimate = excluded.estimate,
			updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC(),
	)
	return eris.Wrap(err, "cache: sqlite put")
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
