// Package mapping owns the principal-to-external-identity mapping: its
// model, persistence contract, the request-scoped lookup cache and the
// operator save path.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"idbridge/internal/access"
	"idbridge/pkg/platform/sentinel"
)

// AccessChecker is the subset of the access gate the cache needs.
type AccessChecker interface {
	Ensure(ctx context.Context, check access.Check) error
}

type cacheKey struct {
	provider  string
	principal string
}

// Cache memoizes mapping lookups for one request. Each (provider, principal)
// pair hits the store at most once; misses are remembered as nil.
type Cache struct {
	store  Store
	access AccessChecker

	mu      sync.Mutex
	entries map[cacheKey]*Mapping
}

func NewCache(store Store, access AccessChecker) *Cache {
	return &Cache{
		store:   store,
		access:  access,
		entries: make(map[cacheKey]*Mapping),
	}
}

// Get returns the mapping for the pair, or nil when none exists.
func (c *Cache) Get(ctx context.Context, provider, principal string) (*Mapping, error) {
	key := cacheKey{provider: provider, principal: principal}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.entries[key]; ok {
		return m, nil
	}

	if err := c.access.Ensure(ctx, access.MappingRead); err != nil {
		return nil, err
	}
	m, err := c.store.FindByKey(ctx, provider, principal)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("find mapping: %w", err)
	}
	if err != nil {
		m = nil
	}
	c.entries[key] = m
	return m, nil
}

func (c *Cache) Exists(ctx context.Context, provider, principal string) (bool, error) {
	m, err := c.Get(ctx, provider, principal)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// TargetIdentifier returns the external identity for the pair, if mapped.
func (c *Cache) TargetIdentifier(ctx context.Context, provider, principal string) (string, bool, error) {
	m, err := c.Get(ctx, provider, principal)
	if err != nil || m == nil {
		return "", false, err
	}
	return m.TargetIdentifier, true, nil
}

type cacheCtxKey struct{}

// WithCache scopes c to ctx.
func WithCache(ctx context.Context, c *Cache) context.Context {
	return context.WithValue(ctx, cacheCtxKey{}, c)
}

// CacheFrom returns the cache scoped to ctx.
func CacheFrom(ctx context.Context) (*Cache, bool) {
	c, ok := ctx.Value(cacheCtxKey{}).(*Cache)
	return c, ok
}
