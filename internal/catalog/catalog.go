// Package catalog caches the category and account listings read by the UI.
//
// Listings are loaded from a Source on first use and served from memory until
// invalidated. Writes made through the Catalog invalidate the affected listing;
// writes made directly against the Source must call the Invalidate methods.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"

	"github.com/cleared-dev/bankimport/internal/model"
)

// ErrUnknownCategory is returned by CategoryByName when no category has that name.
var ErrUnknownCategory = errors.New("unknown category")

// Source loads the listings. *store.Store implements it.
type Source interface {
	Categories(ctx context.Context) ([]model.Category, error)
	AddCategory(ctx context.Context, c model.Category) (int64, error)
	Accounts(ctx context.Context) ([]model.Account, error)
}

const (
	categoriesKey = "categories"
	accountsKey   = "accounts"
)

// Catalog is safe for concurrent use.
type Catalog struct {
	src   Source
	cache *ristretto.Cache
	group singleflight.Group

	mu  sync.Mutex
	gen map[string]uint64 // bumped on every invalidation of a key
}

// New creates a Catalog over src.
func New(src Source) (*Catalog, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        100, // a handful of listing keys
		MaxCost:            1 << 10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating catalog cache: %w", err)
	}
	return &Catalog{src: src, cache: cache, gen: make(map[string]uint64)}, nil
}

// Close releases the cache.
func (c *Catalog) Close() {
	c.cache.Close()
}

// Categories returns all categories, loading them on a miss.
func (c *Catalog) Categories(ctx context.Context) ([]model.Category, error) {
	v, err := c.load(categoriesKey, func() (any, error) { return c.src.Categories(ctx) })
	if err != nil {
		return nil, err
	}
	return clone(v.([]model.Category)), nil
}

// Accounts returns all accounts, loading them on a miss.
func (c *Catalog) Accounts(ctx context.Context) ([]model.Account, error) {
	v, err := c.load(accountsKey, func() (any, error) { return c.src.Accounts(ctx) })
	if err != nil {
		return nil, err
	}
	return clone(v.([]model.Account)), nil
}

// CategoryByName finds a category by exact name.
func (c *Catalog) CategoryByName(ctx context.Context, name string) (model.Category, error) {
	cats, err := c.Categories(ctx)
	if err != nil {
		return model.Category{}, err
	}
	for _, cat := range cats {
		if cat.Name == name {
			return cat, nil
		}
	}
	return model.Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// AddCategory writes through to the Source and invalidates the category listing.
func (c *Catalog) AddCategory(ctx context.Context, cat model.Category) (int64, error) {
	id, err := c.src.AddCategory(ctx, cat)
	if err != nil {
		return 0, err
	}
	c.InvalidateCategories()
	return id, nil
}

// InvalidateCategories drops the cached category listing.
func (c *Catalog) InvalidateCategories() {
	c.invalidate(categoriesKey)
}

// InvalidateAccounts drops the cached account listing.
func (c *Catalog) InvalidateAccounts() {
	c.invalidate(accountsKey)
}

// invalidate drops key and detaches any in-flight load so its result is not cached.
func (c *Catalog) invalidate(key string) {
	c.mu.Lock()
	c.gen[key]++
	c.cache.Del(key)
	c.mu.Unlock()
	c.group.Forget(key)
}

func (c *Catalog) load(key string, fetch func() (any, error)) (any, error) {
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		gen := c.gen[key]
		c.mu.Unlock()

		v, err := fetch()
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", key, err)
		}

		// A listing read before an invalidation is returned to its callers but not cached.
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen[key] == gen {
			c.cache.Set(key, v, 1)
			c.cache.Wait()
		}
		return v, nil
	})
	return v, err
}

func clone[T any](s []T) []T {
	return append([]T(nil), s...)
}
