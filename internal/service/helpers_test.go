package service

import (
	"context"
	"sync"
	"time"

	"ledger-service/internal/refcache"
	"ledger-service/internal/sheets"
)

type appendCall struct {
	rangeName string
	values    []interface{}
}

type updateCall struct {
	cellRange string
	values    []interface{}
}

type deleteCall struct {
	sheetName string
	rowNumber int
}

// fakeStore is an in-memory sheets.Store. Reads serve canned records per
// range; writes are recorded for assertions. failOnWrite makes the n-th
// append (1-based) fail with writeErr.
type fakeStore struct {
	mu          sync.Mutex
	ranges      map[string][]sheets.Record
	appends     []appendCall
	updates     []updateCall
	deletes     []deleteCall
	reads       map[string]int
	failOnWrite int
	writeErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ranges: make(map[string][]sheets.Record),
		reads:  make(map[string]int),
	}
}

func (f *fakeStore) ReadRange(_ context.Context, rangeName string) ([]sheets.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads[rangeName]++
	return f.ranges[rangeName], nil
}

func (f *fakeStore) AppendRow(_ context.Context, rangeName string, values []interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOnWrite > 0 && len(f.appends)+1 == f.failOnWrite {
		return f.writeErr
	}
	f.appends = append(f.appends, appendCall{rangeName: rangeName, values: values})
	return nil
}

func (f *fakeStore) UpdateRow(_ context.Context, cellRange string, values []interface{}) error {
	f.updates = append(f.updates, updateCall{cellRange: cellRange, values: values})
	return nil
}

func (f *fakeStore) DeleteRow(_ context.Context, sheetName string, rowNumber int) error {
	f.deletes = append(f.deletes, deleteCall{sheetName: sheetName, rowNumber: rowNumber})
	return nil
}

func (f *fakeStore) appendsTo(rangeName string) []appendCall {
	var out []appendCall
	for _, a := range f.appends {
		if a.rangeName == rangeName {
			out = append(out, a)
		}
	}
	return out
}

func newTestCache(store sheets.Store) *refcache.Cache {
	return refcache.New(store, nil, time.Minute)
}

func seedCatalog(store *fakeStore) {
	store.ranges[sheets.RangeCustomers] = []sheets.Record{
		{"Customer ID": "C10001", "Customer Name": "Acme Traders", "State": "Karnataka", "City": "Bengaluru"},
	}
	store.ranges[sheets.RangeSuppliers] = []sheets.Record{
		{"Supplier ID": "P20001", "Supplier Name": "Globex Supply", "State": "Maharashtra", "City": "Pune"},
	}
	store.ranges[sheets.RangeInventory] = []sheets.Record{
		{"Item ID": "P30001", "Item Type": "Electronics", "Item Category": "Audio",
			"Item Subcategory": "Headphones", "Item Name": "Studio Headphones"},
		{"Item ID": "P30002", "Item Type": "Electronics", "Item Category": "Video",
			"Item Subcategory": "Webcams", "Item Name": "HD Webcam"},
	}
}
