package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/lee-tech/workforce-admin/internal/constants"
	"github.com/lee-tech/workforce-admin/internal/models"
)

// Recorder receives hit and miss notifications. *metrics.Metrics satisfies it.
type Recorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

type noopRecorder struct{}

func (noopRecorder) CacheHit(string)  {}
func (noopRecorder) CacheMiss(string) {}

// Typed is a single cached value of type T stored as JSON under one key.
type Typed[T any] struct {
	name     string
	key      string
	store    Store
	ttl      time.Duration
	recorder Recorder
}

func NewTyped[T any](name, key string, store Store, ttl time.Duration, recorder Recorder) *Typed[T] {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Typed[T]{name: name, key: key, store: store, ttl: ttl, recorder: recorder}
}

// Get returns the cached value. A corrupt entry is reported as a miss and
// removed; a failure to remove it is returned.
func (c *Typed[T]) Get(ctx context.Context) (T, bool, error) {
	var zero T
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return zero, false, fmt.Errorf("cache %s get: %w", c.name, err)
	}
	if !ok {
		c.recorder.CacheMiss(c.name)
		return zero, false, nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		c.recorder.CacheMiss(c.name)
		if err := c.store.Delete(ctx, c.key); err != nil {
			return zero, false, fmt.Errorf("cache %s evict corrupt entry: %w", c.name, err)
		}
		return zero, false, nil
	}
	c.recorder.CacheHit(c.name)
	return value, true, nil
}

func (c *Typed[T]) Set(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache %s encode: %w", c.name, err)
	}
	if err := c.store.Set(ctx, c.key, raw, c.ttl); err != nil {
		return fmt.Errorf("cache %s set: %w", c.name, err)
	}
	return nil
}

func (c *Typed[T]) Invalidate(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("cache %s invalidate: %w", c.name, err)
	}
	return nil
}

// Catalog owns the module and role caches. One instance is built at startup
// and shared by everything that reads the catalog.
type Catalog struct {
	Modules *Typed[[]models.Module]
	Roles   *Typed[[]models.Role]
}

func NewCatalog(store Store, ttl time.Duration, recorder Recorder) *Catalog {
	return &Catalog{
		Modules: NewTyped[[]models.Module]("modules", constants.CacheKey.Modules, store, ttl, recorder),
		Roles:   NewTyped[[]models.Role]("roles", constants.CacheKey.Roles, store, ttl, recorder),
	}
}

// Clear invalidates both caches. Both are attempted even when one fails.
func (c *Catalog) Clear(ctx context.Context) error {
	return multierr.Append(c.Modules.Invalidate(ctx), c.Roles.Invalidate(ctx))
}
