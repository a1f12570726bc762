// Package cache persists cost estimates keyed by target identity. The cache
// is a pure memo: entries have no TTL and are re-served verbatim forever.
package cache

import (
	"context"

	"github.com/platewise/costoracle/internal/model"
)

// Cache is the estimate memo. Get returns ok=false on a miss. Put overwrites
// unconditionally; concurrent writers are not coordinated beyond what each
// backend provides (last writer wins).
type Cache interface {
	Get(ctx context.Context, key string) (*model.CostEstimate, bool, error)
	Put(ctx context.Context, key string, estimate *model.CostEstimate) error
	Close() error
}
