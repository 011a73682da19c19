// Package refcache owns the shared reference collections (customers,
// suppliers, inventory, dimensions). Every write that can move a derived
// aggregate must invalidate the affected kinds here; the cache never
// computes balances or quantities itself, it only re-fetches what the
// store currently says.
package refcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger-service/internal/models"
	"ledger-service/internal/redisclient"
	"ledger-service/internal/sheets"
	"ledger-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Kind names one cached reference collection.
type Kind string

const (
	KindCustomers  Kind = "customers"
	KindSuppliers  Kind = "suppliers"
	KindInventory  Kind = "inventory"
	KindDimensions Kind = "dimensions"
)

// AllKinds lists every cached collection.
func AllKinds() []Kind {
	return []Kind{KindCustomers, KindSuppliers, KindInventory, KindDimensions}
}

var kindRanges = map[Kind]string{
	KindCustomers:  sheets.RangeCustomers,
	KindSuppliers:  sheets.RangeSuppliers,
	KindInventory:  sheets.RangeInventory,
	KindDimensions: sheets.RangeDimensions,
}

// Cache is a read-through cache: memory, then redis (when configured),
// then the store. Values may be stale immediately after a write; callers
// must not expect a just-written aggregate to be reflected.
type Cache struct {
	store  sheets.Store
	redis  *redisclient.Client
	ttl    time.Duration
	logger *zap.Logger

	mu         sync.RWMutex
	customers  []models.Customer
	suppliers  []models.Supplier
	inventory  []models.InventoryItem
	dimensions []models.Dimension
	loaded     map[Kind]bool
}

// New creates a cache. redis may be nil, in which case only the
// in-process layer is used.
func New(store sheets.Store, redis *redisclient.Client, ttl time.Duration) *Cache {
	return &Cache{
		store:  store,
		redis:  redis,
		ttl:    ttl,
		logger: util.NamedLogger("refcache"),
		loaded: make(map[Kind]bool),
	}
}

func redisKey(kind Kind) string { return fmt.Sprintf("refcache:%s", kind) }

// Customers returns the cached customer collection, fetching on miss.
func (c *Cache) Customers(ctx context.Context) ([]models.Customer, error) {
	c.mu.RLock()
	if c.loaded[KindCustomers] {
		out := c.customers
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	var cached []models.Customer
	if c.fromRedis(ctx, KindCustomers, &cached) {
		c.mu.Lock()
		c.customers = cached
		c.loaded[KindCustomers] = true
		c.mu.Unlock()
		return cached, nil
	}

	records, err := c.store.ReadRange(ctx, sheets.RangeCustomers)
	if err != nil {
		return nil, err
	}
	out := make([]models.Customer, 0, len(records))
	for _, r := range records {
		out = append(out, sheets.DecodeCustomer(r))
	}

	c.mu.Lock()
	c.customers = out
	c.loaded[KindCustomers] = true
	c.mu.Unlock()
	c.toRedis(ctx, KindCustomers, out)
	return out, nil
}

// Suppliers returns the cached supplier collection, fetching on miss.
func (c *Cache) Suppliers(ctx context.Context) ([]models.Supplier, error) {
	c.mu.RLock()
	if c.loaded[KindSuppliers] {
		out := c.suppliers
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	var cached []models.Supplier
	if c.fromRedis(ctx, KindSuppliers, &cached) {
		c.mu.Lock()
		c.suppliers = cached
		c.loaded[KindSuppliers] = true
		c.mu.Unlock()
		return cached, nil
	}

	records, err := c.store.ReadRange(ctx, sheets.RangeSuppliers)
	if err != nil {
		return nil, err
	}
	out := make([]models.Supplier, 0, len(records))
	for _, r := range records {
		out = append(out, sheets.DecodeSupplier(r))
	}

	c.mu.Lock()
	c.suppliers = out
	c.loaded[KindSuppliers] = true
	c.mu.Unlock()
	c.toRedis(ctx, KindSuppliers, out)
	return out, nil
}

// Inventory returns the cached inventory collection, fetching on miss.
func (c *Cache) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	c.mu.RLock()
	if c.loaded[KindInventory] {
		out := c.inventory
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	var cached []models.InventoryItem
	if c.fromRedis(ctx, KindInventory, &cached) {
		c.mu.Lock()
		c.inventory = cached
		c.loaded[KindInventory] = true
		c.mu.Unlock()
		return cached, nil
	}

	records, err := c.store.ReadRange(ctx, sheets.RangeInventory)
	if err != nil {
		return nil, err
	}
	out := make([]models.InventoryItem, 0, len(records))
	for _, r := range records {
		out = append(out, sheets.DecodeInventoryItem(r))
	}

	c.mu.Lock()
	c.inventory = out
	c.loaded[KindInventory] = true
	c.mu.Unlock()
	c.toRedis(ctx, KindInventory, out)
	return out, nil
}

// Dimensions returns the cached dimension rows, fetching on miss.
func (c *Cache) Dimensions(ctx context.Context) ([]models.Dimension, error) {
	c.mu.RLock()
	if c.loaded[KindDimensions] {
		out := c.dimensions
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	var cached []models.Dimension
	if c.fromRedis(ctx, KindDimensions, &cached) {
		c.mu.Lock()
		c.dimensions = cached
		c.loaded[KindDimensions] = true
		c.mu.Unlock()
		return cached, nil
	}

	records, err := c.store.ReadRange(ctx, sheets.RangeDimensions)
	if err != nil {
		return nil, err
	}
	out := make([]models.Dimension, 0, len(records))
	for _, r := range records {
		out = append(out, sheets.DecodeDimension(r))
	}

	c.mu.Lock()
	c.dimensions = out
	c.loaded[KindDimensions] = true
	c.mu.Unlock()
	c.toRedis(ctx, KindDimensions, out)
	return out, nil
}

// CustomerByID looks up a customer in the cached collection.
func (c *Cache) CustomerByID(ctx context.Context, id string) (models.Customer, bool, error) {
	customers, err := c.Customers(ctx)
	if err != nil {
		return models.Customer{}, false, err
	}
	for _, cu := range customers {
		if cu.ID == id {
			return cu, true, nil
		}
	}
	return models.Customer{}, false, nil
}

// SupplierByID looks up a supplier in the cached collection.
func (c *Cache) SupplierByID(ctx context.Context, id string) (models.Supplier, bool, error) {
	suppliers, err := c.Suppliers(ctx)
	if err != nil {
		return models.Supplier{}, false, err
	}
	for _, s := range suppliers {
		if s.ID == id {
			return s, true, nil
		}
	}
	return models.Supplier{}, false, nil
}

// ItemByID looks up an inventory item in the cached collection.
func (c *Cache) ItemByID(ctx context.Context, id string) (models.InventoryItem, bool, error) {
	items, err := c.Inventory(ctx)
	if err != nil {
		return models.InventoryItem{}, false, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, true, nil
		}
	}
	return models.InventoryItem{}, false, nil
}

// Invalidate drops the given kinds (all kinds when none are named) from
// memory and redis. The next read fetches fresh data from the store.
func (c *Cache) Invalidate(ctx context.Context, kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = AllKinds()
	}

	c.mu.Lock()
	for _, k := range kinds {
		delete(c.loaded, k)
		util.CacheInvalidationsTotal.WithLabelValues(string(k)).Inc()
	}
	c.mu.Unlock()

	if c.redis != nil {
		keys := make([]string, len(kinds))
		for i, k := range kinds {
			keys[i] = redisKey(k)
		}
		if err := c.redis.Delete(ctx, keys...); err != nil {
			c.logger.Warn("redis invalidation failed", zap.Error(err))
		}
	}
}

// RefreshAll re-fetches the four reference ranges in parallel. Any
// single failed read fails the whole refresh and leaves the previous
// contents in place.
func (c *Cache) RefreshAll(ctx context.Context) error {
	results := make(map[Kind][]sheets.Record, len(kindRanges))
	var resMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for kind, rangeName := range kindRanges {
		kind, rangeName := kind, rangeName
		g.Go(func() error {
			records, err := c.store.ReadRange(gctx, rangeName)
			if err != nil {
				return fmt.Errorf("refresh %s: %w", kind, err)
			}
			resMu.Lock()
			results[kind] = records
			resMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		util.CacheRefreshTotal.WithLabelValues("error").Inc()
		return err
	}

	customers := make([]models.Customer, 0, len(results[KindCustomers]))
	for _, r := range results[KindCustomers] {
		customers = append(customers, sheets.DecodeCustomer(r))
	}
	suppliers := make([]models.Supplier, 0, len(results[KindSuppliers]))
	for _, r := range results[KindSuppliers] {
		suppliers = append(suppliers, sheets.DecodeSupplier(r))
	}
	inventory := make([]models.InventoryItem, 0, len(results[KindInventory]))
	for _, r := range results[KindInventory] {
		inventory = append(inventory, sheets.DecodeInventoryItem(r))
	}
	dimensions := make([]models.Dimension, 0, len(results[KindDimensions]))
	for _, r := range results[KindDimensions] {
		dimensions = append(dimensions, sheets.DecodeDimension(r))
	}

	c.mu.Lock()
	c.customers = customers
	c.suppliers = suppliers
	c.inventory = inventory
	c.dimensions = dimensions
	for _, k := range AllKinds() {
		c.loaded[k] = true
	}
	c.mu.Unlock()

	c.toRedis(ctx, KindCustomers, customers)
	c.toRedis(ctx, KindSuppliers, suppliers)
	c.toRedis(ctx, KindInventory, inventory)
	c.toRedis(ctx, KindDimensions, dimensions)

	util.CacheRefreshTotal.WithLabelValues("ok").Inc()
	c.logger.Info("reference data refreshed",
		zap.Int("customers", len(customers)),
		zap.Int("suppliers", len(suppliers)),
		zap.Int("inventory", len(inventory)),
		zap.Int("dimensions", len(dimensions)))
	return nil
}

func (c *Cache) fromRedis(ctx context.Context, kind Kind, dest interface{}) bool {
	if c.redis == nil {
		return false
	}
	err := c.redis.GetJSON(ctx, redisKey(kind), dest)
	if err == redisclient.ErrCacheMiss {
		return false
	}
	if err != nil {
		c.logger.Warn("redis read failed", zap.String("kind", string(kind)), zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) toRedis(ctx context.Context, kind Kind, value interface{}) {
	if c.redis == nil {
		return
	}
	if err := c.redis.SetJSON(ctx, redisKey(kind), value, c.ttl); err != nil {
		c.logger.Warn("redis write failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}
