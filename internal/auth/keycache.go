package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/middleware"
	"github.com/SscSPs/family_bank/internal/platform/metrics"
	"golang.org/x/sync/singleflight"
)

// Defaults for KeyCache.
const (
	DefaultRefreshInterval = time.Hour
	DefaultFetchTimeout    = 5 * time.Second
)

type keySet struct {
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// KeyCache holds issuers' signing keys. A set older than the refresh interval,
// or one missing a requested key ID, is refetched. Concurrent refetches of one
// issuer share a single fetch.
type KeyCache struct {
	fetcher         KeySetFetcher
	refreshInterval time.Duration
	fetchTimeout    time.Duration
	now             func() time.Time

	mu    sync.RWMutex
	sets  map[string]*keySet // by issuer
	group singleflight.Group
}

// KeyCacheOption configures a KeyCache.
type KeyCacheOption func(*KeyCache)

// WithRefreshInterval sets the age after which a cached set is refetched.
func WithRefreshInterval(d time.Duration) KeyCacheOption {
	return func(c *KeyCache) {
		if d > 0 {
			c.refreshInterval = d
		}
	}
}

// WithFetchTimeout bounds each key set fetch.
func WithFetchTimeout(d time.Duration) KeyCacheOption {
	return func(c *KeyCache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) KeyCacheOption {
	return func(c *KeyCache) {
		c.now = now
	}
}

// NewKeyCache creates an empty cache backed by fetcher.
func NewKeyCache(fetcher KeySetFetcher, opts ...KeyCacheOption) *KeyCache {
	c := &KeyCache{
		fetcher:         fetcher,
		refreshInterval: DefaultRefreshInterval,
		fetchTimeout:    DefaultFetchTimeout,
		now:             time.Now,
		sets:            make(map[string]*keySet),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the public key kid of issuer, fetching jwksURL when needed.
// If a refetch fails, a key from the previous set is still returned.
func (c *KeyCache) Key(ctx context.Context, issuer, jwksURL, kid string) (*rsa.PublicKey, error) {
	current := c.cached(issuer)
	if current != nil && !c.isStale(current) {
		if k, ok := current.keys[kid]; ok {
			return k, nil
		}
	}

	fresh, err := c.refresh(ctx, issuer, jwksURL, current)
	if err != nil {
		if current != nil {
			if k, ok := current.keys[kid]; ok {
				middleware.GetLoggerFromCtx(ctx).Warn("Using stale signing key after failed refresh",
					slog.String("issuer", issuer),
					slog.String("kid", kid),
					slog.String("error", err.Error()))
				return k, nil
			}
		}
		return nil, fmt.Errorf("%w: kid %q: key set unavailable: %v", apperrors.ErrKeyNotFound, kid, err)
	}

	if k, ok := fresh.keys[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("%w: kid %q", apperrors.ErrKeyNotFound, kid)
}

func (c *KeyCache) cached(issuer string) *keySet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sets[issuer]
}

func (c *KeyCache) isStale(set *keySet) bool {
	return c.now().Sub(set.fetchedAt) >= c.refreshInterval
}

// refresh fetches the issuer's set unless another caller replaced seen with a
// fresh set in the meantime. The fetch outlives a cancelled waiter.
func (c *KeyCache) refresh(ctx context.Context, issuer, jwksURL string, seen *keySet) (*keySet, error) {
	ch := c.group.DoChan(issuer, func() (any, error) {
		if cur := c.cached(issuer); cur != nil && cur != seen && !c.isStale(cur) {
			return cur, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		keys, err := c.fetcher.FetchKeySet(fetchCtx, jwksURL)
		metrics.RecordKeySetFetch(err == nil)
		if err != nil {
			return nil, err
		}

		set := &keySet{keys: keys, fetchedAt: c.now()}
		c.mu.Lock()
		c.sets[issuer] = set
		c.mu.Unlock()
		return set, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*keySet), nil
	}
}
