package backend

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedClient serves list calls from the Redis cache and collapses concurrent
// identical loads. Writes go straight to the backend and bump the cache version.
type CachedClient struct {
	next        Records
	cache       *Cache
	logger      *slog.Logger
	group       singleflight.Group
	loadTimeout time.Duration
}

const defaultLoadTimeout = 10 * time.Second

var _ Records = (*CachedClient)(nil)

// NewCachedClient wraps next.
func NewCachedClient(next Records, cache *Cache, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClient{next: next, cache: cache, logger: logger, loadTimeout: defaultLoadTimeout}
}

// WithLoadTimeout bounds a shared load. Shared loads outlive the caller that
// started them, so they run on their own deadline.
func (c *CachedClient) WithLoadTimeout(d time.Duration) *CachedClient {
	if d > 0 {
		c.loadTimeout = d
	}
	return c
}

func (c *CachedClient) ListCustomers(ctx context.Context, userID string) ([]Customer, error) {
	return cachedList(ctx, c, "customers", userID, c.next.ListCustomers)
}

func (c *CachedClient) ListProducts(ctx context.Context, userID string) ([]Product, error) {
	return cachedList(ctx, c, "products", userID, c.next.ListProducts)
}

func (c *CachedClient) ListPurchases(ctx context.Context, userID string) ([]Purchase, error) {
	return cachedList(ctx, c, "purchases", userID, c.next.ListPurchases)
}

func (c *CachedClient) AddCustomer(ctx context.Context, userID string, in CustomerInput) (*Customer, error) {
	out, err := c.next.AddCustomer(ctx, userID, in)
	c.bump(ctx, err)
	return out, err
}

func (c *CachedClient) EditCustomer(ctx context.Context, id string, in CustomerInput) (*Customer, error) {
	out, err := c.next.EditCustomer(ctx, id, in)
	c.bump(ctx, err)
	return out, err
}

func (c *CachedClient) DeleteCustomer(ctx context.Context, id string) error {
	err := c.next.DeleteCustomer(ctx, id)
	c.bump(ctx, err)
	return err
}

func (c *CachedClient) AddProduct(ctx context.Context, userID string, in ProductInput) (*Product, error) {
	out, err := c.next.AddProduct(ctx, userID, in)
	c.bump(ctx, err)
	return out, err
}

func (c *CachedClient) EditProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	out, err := c.next.EditProduct(ctx, id, in)
	c.bump(ctx, err)
	return out, err
}

func (c *CachedClient) DeleteProduct(ctx context.Context, id string) error {
	err := c.next.DeleteProduct(ctx, id)
	c.bump(ctx, err)
	return err
}

func (c *CachedClient) AddPurchase(ctx context.Context, in NewPurchase) error {
	err := c.next.AddPurchase(ctx, in)
	c.bump(ctx, err)
	return err
}

func (c *CachedClient) bump(ctx context.Context, err error) {
	if err != nil {
		return
	}
	if bumpErr := c.cache.Bump(ctx); bumpErr != nil {
		c.logger.Warn("bump records cache", slog.Any("error", bumpErr))
	}
}

func cachedList[T any](ctx context.Context, c *CachedClient, kind, userID string, load func(context.Context, string) ([]T, error)) ([]T, error) {
	key, err := c.cache.BuildKey(ctx, "backoffice", kind, userID)
	if err != nil {
		c.logger.Warn("records cache unavailable", slog.String("kind", kind), slog.Any("error", err))
		return load(ctx, userID)
	}
	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		var out []T
		err := c.cache.FetchJSON(loadCtx, key, &out, func(ctx context.Context) (any, error) {
			return load(ctx, userID)
		})
		return out, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	}
}
