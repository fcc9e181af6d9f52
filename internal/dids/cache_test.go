package dids

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"didweb-anoncreds/pkg/platform/sentinel"
)

type stubResolver struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (s *stubResolver) ResolveDocument(_ context.Context, did string) (*Document, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return &Document{ID: did}, nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (*Document, error) {
	return nil, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, *Document, time.Duration) error {
	return errors.New("cache down")
}

func TestCachingResolverServesHits(t *testing.T) {
	upstream := &stubResolver{}
	r := NewCachingResolver(upstream, NewMemoryCache())
	ctx := context.Background()

	for range 3 {
		doc, err := r.ResolveDocument(ctx, "did:web:example.com")
		require.NoError(t, err)
		assert.Equal(t, "did:web:example.com", doc.ID)
	}
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestCachingResolverDoesNotCacheFailures(t *testing.T) {
	upstream := &stubResolver{err: sentinel.ErrNotFound}
	r := NewCachingResolver(upstream, NewMemoryCache())
	ctx := context.Background()

	for range 2 {
		_, err := r.ResolveDocument(ctx, "did:web:example.com")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	}
	assert.Equal(t, int32(2), upstream.calls.Load())
}

func TestCachingResolverCoalescesConcurrentMisses(t *testing.T) {
	upstream := &stubResolver{release: make(chan struct{})}
	r := NewCachingResolver(upstream, NewMemoryCache())
	ctx := context.Background()

	const callers = 10
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			doc, err := r.ResolveDocument(ctx, "did:web:example.com")
			assert.NoError(t, err)
			assert.NotNil(t, doc)
		}()
	}
	started.Wait()
	// Give the goroutines time to join the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(upstream.release)
	wg.Wait()

	assert.Less(t, upstream.calls.Load(), int32(callers))
}

// contextResolver blocks until released or until its context ends.
type contextResolver struct {
	calls   atomic.Int32
	release chan struct{}
}

func (c *contextResolver) ResolveDocument(ctx context.Context, did string) (*Document, error) {
	c.calls.Add(1)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.release:
		return &Document{ID: did}, nil
	}
}

func TestCachingResolverCancelledCallerDoesNotFailOthers(t *testing.T) {
	upstream := &contextResolver{release: make(chan struct{})}
	r := NewCachingResolver(upstream, NewMemoryCache())
	const did = "did:web:example.com"

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancelledErr := make(chan error, 1)
	go func() {
		_, err := r.ResolveDocument(cancelCtx, did)
		cancelledErr <- err
	}()
	require.Eventually(t, func() bool { return upstream.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		doc *Document
		err error
	}
	waiting := make(chan result, 1)
	go func() {
		doc, err := r.ResolveDocument(context.Background(), did)
		waiting <- result{doc, err}
	}()
	// Let the second caller join the in-flight call.
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-cancelledErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(upstream.release)
	select {
	case res := <-waiting:
		require.NoError(t, res.err)
		assert.Equal(t, did, res.doc.ID)
	case <-time.After(time.Second):
		t.Fatal("waiting caller did not return")
	}
}

func TestCachingResolverFallsThroughBrokenCache(t *testing.T) {
	upstream := &stubResolver{}
	r := NewCachingResolver(upstream, brokenCache{})

	doc, err := r.ResolveDocument(context.Background(), "did:web:example.com")
	require.NoError(t, err)
	assert.Equal(t, "did:web:example.com", doc.ID)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "did:web:example.com", &Document{ID: "did:web:example.com"}, time.Minute))

	doc, err := cache.Get(ctx, "did:web:example.com")
	require.NoError(t, err)
	assert.Equal(t, "did:web:example.com", doc.ID)

	now = now.Add(time.Minute)
	_, err = cache.Get(ctx, "did:web:example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = cache.Get(ctx, "did:web:other.example")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
