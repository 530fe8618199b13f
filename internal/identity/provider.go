package identity

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// StaticProvider holds a fixed token table in memory. It backs local
// development and tests; production deployments swap in a provider
// backed by the real session store.
type StaticProvider struct {
	mu     sync.RWMutex
	tokens map[string]Identity
}

// NewStaticProvider creates a provider from a token -> identity table.
func NewStaticProvider(tokens map[string]Identity) *StaticProvider {
	if tokens == nil {
		tokens = make(map[string]Identity)
	}
	return &StaticProvider{tokens: tokens}
}

// Add registers a token for an identity.
func (p *StaticProvider) Add(token string, id Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[token] = id
}

// Resolve implements Provider.
func (p *StaticProvider) Resolve(_ context.Context, token string) (Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.tokens[token]
	return id, ok
}

// CachingProvider wraps another Provider with an expiring LRU so hot
// tokens skip the underlying lookup. Only successful resolutions are
// cached; misses always fall through.
type CachingProvider struct {
	inner Provider
	cache *expirable.LRU[string, Identity]
}

// NewCachingProvider creates a caching wrapper with the given capacity and TTL.
func NewCachingProvider(inner Provider, size int, ttl time.Duration) *CachingProvider {
	return &CachingProvider{
		inner: inner,
		cache: expirable.NewLRU[string, Identity](size, nil, ttl),
	}
}

// Resolve implements Provider.
func (p *CachingProvider) Resolve(ctx context.Context, token string) (Identity, bool) {
	if id, ok := p.cache.Get(token); ok {
		return id, true
	}
	id, ok := p.inner.Resolve(ctx, token)
	if ok {
		p.cache.Add(token, id)
	}
	return id, ok
}
