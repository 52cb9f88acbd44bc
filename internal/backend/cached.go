package backend

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"budgetdash/internal/cache"
	"budgetdash/internal/ledger"
	"budgetdash/internal/log"
)

// DefaultSharedFetchTimeout bounds a fetch shared by several callers. It
// runs detached from any single caller's context.
const DefaultSharedFetchTimeout = time.Minute

// CachedLedger wraps a Loader with a TTL cache of the normalized batch, so
// rows are fetched and normalized once per cache fill. Concurrent loads on a
// cold cache share one fetch. Failed fetches are not cached.
type CachedLedger struct {
	loader  *Loader
	batches *cache.LRUCache[ledger.Batch]
	group   singleflight.Group
	gen     atomic.Uint64
	timeout time.Duration
	logger  *log.Logger
}

// NewCachedLedger caches loader results for ttl. A zero ttl keeps the batch
// until Invalidate is called.
func NewCachedLedger(loader *Loader, ttl time.Duration, logger *log.Logger) *CachedLedger {
	if logger == nil {
		logger = log.Discard()
	}
	return &CachedLedger{
		loader:  loader,
		batches: cache.NewLRUCache[ledger.Batch](1, ttl),
		timeout: DefaultSharedFetchTimeout,
		logger:  logger.WithComponent(log.ComponentCache),
	}
}

// Cache exposes the underlying cache so it can be registered with a
// cache.Manager.
func (c *CachedLedger) Cache() *cache.LRUCache[ledger.Batch] {
	return c.batches
}

// Name identifies the wrapped source.
func (c *CachedLedger) Name() string {
	return c.loader.Source().Name()
}

// Load returns the cached batch or loads it. Callers get their own copy of
// the transaction list.
//
// The shared fetch does not inherit the caller's cancellation: a caller whose
// context ends stops waiting, the others still get the result.
func (c *CachedLedger) Load(ctx context.Context) (ledger.Batch, error) {
	key := c.Name()
	if b, ok := c.batches.Get(key); ok {
		return cloneBatch(b), nil
	}

	gen := c.gen.Load()
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		b, err := c.loader.Load(fetchCtx)
		if err != nil {
			return nil, err
		}
		// Rows fetched before an Invalidate are stale.
		if c.gen.Load() == gen {
			c.batches.Set(key, b)
		}
		return b, nil
	})

	select {
	case <-ctx.Done():
		return ledger.Batch{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return ledger.Batch{}, res.Err
		}
		c.logger.DebugContext(ctx, "Loaded ledger",
			log.FieldOperation, log.OpFetch,
			log.FieldSource, key,
			log.FieldShared, res.Shared)
		return cloneBatch(res.Val.(ledger.Batch)), nil
	}
}

// Invalidate drops the cached batch so the next load reads the source. A
// fetch already in flight is neither joined nor cached afterwards.
func (c *CachedLedger) Invalidate() {
	key := c.Name()
	c.gen.Add(1)
	c.group.Forget(key)
	c.batches.Purge()
	c.logger.Debug("Invalidated cached ledger", log.FieldOperation, log.OpRefresh, log.FieldSource, key)
}

func cloneBatch(b ledger.Batch) ledger.Batch {
	b.Transactions = slices.Clone(b.Transactions)
	return b
}
