package dids

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"didweb-anoncreds/pkg/platform/sentinel"
)

var (
	documentCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "didweb_did_document_cache_lookups_total",
		Help: "DID document cache lookups by result (hit, miss, error)",
	}, []string{"result"})
	documentResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "didweb_did_document_resolve_duration_seconds",
		Help:    "Duration of upstream DID document resolutions",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
)

// DefaultCacheTTL bounds how long a resolved document is reused.
const DefaultCacheTTL = 5 * time.Minute

// DocumentCache stores resolved documents. Get returns sentinel.ErrNotFound on a miss.
type DocumentCache interface {
	Get(ctx context.Context, did string) (*Document, error)
	Set(ctx context.Context, did string, doc *Document, ttl time.Duration) error
}

// CachingResolver puts a DocumentCache in front of another resolver.
// Concurrent misses for the same DID share one upstream resolution.
// Failed resolutions are never cached.
type CachingResolver struct {
	next   DocumentResolver
	cache  DocumentCache
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

type CacheOption func(*CachingResolver)

func WithTTL(ttl time.Duration) CacheOption {
	return func(r *CachingResolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(r *CachingResolver) {
		r.logger = logger
	}
}

func NewCachingResolver(next DocumentResolver, cache DocumentCache, opts ...CacheOption) *CachingResolver {
	r := &CachingResolver{
		next:   next,
		cache:  cache,
		ttl:    DefaultCacheTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *CachingResolver) ResolveDocument(ctx context.Context, did string) (*Document, error) {
	doc, err := r.cache.Get(ctx, did)
	switch {
	case err == nil:
		documentCacheLookups.WithLabelValues("hit").Inc()
		return doc, nil
	case errors.Is(err, sentinel.ErrNotFound):
		documentCacheLookups.WithLabelValues("miss").Inc()
	default:
		// A broken cache degrades to direct resolution.
		documentCacheLookups.WithLabelValues("error").Inc()
		r.logger.WarnContext(ctx, "did document cache read failed", "did", did, "error", err)
	}

	// The shared resolution outlives any single caller; each caller waits on
	// its own context. The upstream HTTP client bounds the call.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(did, func() (any, error) {
		start := time.Now()
		resolved, err := r.next.ResolveDocument(shared, did)
		documentResolveDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(shared, did, resolved, r.ttl); err != nil {
			r.logger.WarnContext(shared, "did document cache write failed", "did", did, "error", err)
		}
		return resolved, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Document), nil
	}
}

type cachedDocument struct {
	doc       *Document
	expiresAt time.Time
}

// MemoryCache is a process-local DocumentCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedDocument
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cachedDocument),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, did string) (*Document, error) {
	c.mu.RLock()
	entry, ok := c.entries[did]
	c.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, ok := c.entries[did]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, did)
		}
		c.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	return entry.doc, nil
}

func (c *MemoryCache) Set(_ context.Context, did string, doc *Document, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[did] = cachedDocument{doc: doc, expiresAt: c.now().Add(ttl)}
	return nil
}
