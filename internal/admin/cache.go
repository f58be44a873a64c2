package admin

import (
	"context"
	"slices"
	"sync"

	"CatalogAdmin/internal/catalog"
)

const defaultFetchError = "failed to fetch products"

// State is a snapshot of the cache. Products is a private copy.
type State struct {
	Products []catalog.Product
	Loading  bool
	Error    string
}

// Cache mirrors the server's product collection. The mirror only changes
// after the server confirms an operation; calls are neither queued nor
// coalesced, so concurrent calls apply in completion order.
type Cache struct {
	api API

	mu       sync.RWMutex
	products []catalog.Product
	loading  bool
	err      string
}

func NewCache(api API) *Cache {
	return &Cache{api: api}
}

// FetchAll replaces the mirror with the server's collection. On failure the
// previous list is kept and the error flag carries the message.
func (c *Cache) FetchAll(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.err = ""
	c.mu.Unlock()

	products, err := c.api.ListProducts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.err = err.Error()
		if c.err == "" {
			c.err = defaultFetchError
		}
		return err
	}
	c.products = slices.Clone(products)
	return nil
}

// Update writes p and, once the server confirms, swaps the cached entry with
// the same id for the server's value.
func (c *Cache) Update(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	saved, err := c.api.UpdateProduct(ctx, p)
	if err != nil {
		return catalog.Product{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.IndexFunc(c.products, func(q catalog.Product) bool { return q.ID == saved.ID }); i >= 0 {
		c.products[i] = saved
	}
	return saved, nil
}

func (c *Cache) Delete(ctx context.Context, id int64) error {
	if err := c.api.DeleteProduct(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = slices.DeleteFunc(c.products, func(p catalog.Product) bool { return p.ID == id })
	return nil
}

func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Products: slices.Clone(c.products),
		Loading:  c.loading,
		Error:    c.err,
	}
}

func (c *Cache) Find(id int64) (catalog.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}
