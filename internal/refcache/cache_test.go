package refcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ledger-service/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	mu      sync.Mutex
	ranges  map[string][]sheets.Record
	reads   map[string]int
	readErr error
}

func newCountingStore() *countingStore {
	return &countingStore{
		ranges: make(map[string][]sheets.Record),
		reads:  make(map[string]int),
	}
}

func (s *countingStore) ReadRange(_ context.Context, rangeName string) ([]sheets.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[rangeName]++
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.ranges[rangeName], nil
}

func (s *countingStore) AppendRow(context.Context, string, []interface{}) error { return nil }
func (s *countingStore) UpdateRow(context.Context, string, []interface{}) error { return nil }
func (s *countingStore) DeleteRow(context.Context, string, int) error           { return nil }

func (s *countingStore) set(rangeName string, records []sheets.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges[rangeName] = records
}

func (s *countingStore) readCount(rangeName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[rangeName]
}

func TestCustomersServedFromMemoryUntilInvalidated(t *testing.T) {
	store := newCountingStore()
	store.set(sheets.RangeCustomers, []sheets.Record{
		{"Customer ID": "C10001", "Customer Name": "Acme Traders"},
	})
	cache := New(store, nil, time.Minute)
	ctx := context.Background()

	first, err := cache.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = cache.Customers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.readCount(sheets.RangeCustomers))

	// The aggregate moved on the store side; a plain read must not see it.
	store.set(sheets.RangeCustomers, []sheets.Record{
		{"Customer ID": "C10001", "Customer Name": "Acme Traders", "Balance Receivable": "500"},
	})
	stale, err := cache.Customers(ctx)
	require.NoError(t, err)
	assert.Zero(t, stale[0].BalanceReceivable)

	cache.Invalidate(ctx, KindCustomers)

	fresh, err := cache.Customers(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, fresh[0].BalanceReceivable, 0.01)
	assert.Equal(t, 2, store.readCount(sheets.RangeCustomers))
}

func TestInvalidateWithoutKindsDropsEverything(t *testing.T) {
	store := newCountingStore()
	cache := New(store, nil, time.Minute)
	ctx := context.Background()

	_, err := cache.Customers(ctx)
	require.NoError(t, err)
	_, err = cache.Suppliers(ctx)
	require.NoError(t, err)

	cache.Invalidate(ctx)

	_, err = cache.Customers(ctx)
	require.NoError(t, err)
	_, err = cache.Suppliers(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, store.readCount(sheets.RangeCustomers))
	assert.Equal(t, 2, store.readCount(sheets.RangeSuppliers))
}

func TestRefreshAllLoadsEveryKind(t *testing.T) {
	store := newCountingStore()
	store.set(sheets.RangeCustomers, []sheets.Record{{"Customer ID": "C10001"}})
	store.set(sheets.RangeSuppliers, []sheets.Record{{"Supplier ID": "P20001"}})
	store.set(sheets.RangeInventory, []sheets.Record{{"Item ID": "P30001"}})
	store.set(sheets.RangeDimensions, []sheets.Record{{"State": "Karnataka"}})
	cache := New(store, nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.RefreshAll(ctx))

	customers, err := cache.Customers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.Equal(t, 1, store.readCount(sheets.RangeCustomers))

	items, err := cache.Inventory(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, store.readCount(sheets.RangeInventory))
}

func TestRefreshAllFailsWhole(t *testing.T) {
	store := newCountingStore()
	store.readErr = errors.New("store unavailable")
	cache := New(store, nil, time.Minute)

	err := cache.RefreshAll(context.Background())
	assert.Error(t, err)
}

func TestLookupsByID(t *testing.T) {
	store := newCountingStore()
	store.set(sheets.RangeInventory, []sheets.Record{
		{"Item ID": "P30001", "Item Name": "Studio Headphones"},
	})
	cache := New(store, nil, time.Minute)
	ctx := context.Background()

	item, ok, err := cache.ItemByID(ctx, "P30001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Studio Headphones", item.Name)

	_, ok, err = cache.ItemByID(ctx, "P99999")
	require.NoError(t, err)
	assert.False(t, ok)
}
