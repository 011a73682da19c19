package service

import (
	"context"
	"testing"

	"ledger-service/internal/models"
	"ledger-service/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(store *fakeStore) *CatalogService {
	idgen := NewIDGeneratorWithSource(func(n int) int { return 0 })
	return NewCatalogService(store, newTestCache(store), idgen, nil)
}

func TestCreateCustomerSeedsZeroAggregates(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newCatalogService(store)

	customer, err := svc.CreateCustomer(context.Background(), &CustomerRequest{
		Name:  "New Trader",
		State: "Kerala",
		City:  "Kochi",
	})
	require.NoError(t, err)
	assert.Equal(t, "C10000", customer.ID)

	appends := store.appendsTo(sheets.RangeCustomers)
	require.Len(t, appends, 1)
	row := appends[0].values
	require.Len(t, row, 10)
	assert.Equal(t, "C10000", row[0])
	assert.Equal(t, "New Trader", row[1])
	assert.Equal(t, 0, row[7])
	assert.Equal(t, 0, row[8])
	assert.Equal(t, 0, row[9])
}

func TestCreateCustomerRejectsDuplicateID(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newCatalogService(store)

	_, err := svc.CreateCustomer(context.Background(), &CustomerRequest{
		ID:    "C10001",
		Name:  "Copycat",
		State: "Kerala",
		City:  "Kochi",
	})

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.appends)
}

func TestUpdateCustomerWritesEditableSpanOnly(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	store.ranges[sheets.RangeCustomers] = append(store.ranges[sheets.RangeCustomers],
		sheets.Record{"Customer ID": "C10002", "Customer Name": "Second Trader",
			"State": "Goa", "City": "Panaji", "Balance Receivable": "150"})
	svc := newCatalogService(store)

	err := svc.UpdateCustomer(context.Background(), "C10002", &CustomerRequest{
		Name:  "Second Trader Renamed",
		State: "Goa",
		City:  "Margao",
	})
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	// Second data row sits at sheet row 3.
	assert.Equal(t, "Customers!A3:G3", store.updates[0].cellRange)
	assert.Len(t, store.updates[0].values, 7)
	assert.Equal(t, "Second Trader Renamed", store.updates[0].values[1])
}

func TestUpdateCustomerUnknownID(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newCatalogService(store)

	err := svc.UpdateCustomer(context.Background(), "C99999", &CustomerRequest{
		Name: "Ghost", State: "X", City: "Y",
	})

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.updates)
}

func TestDeleteCustomerGuardsOutstandingBalance(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeCustomers] = []sheets.Record{
		{"Customer ID": "C10001", "Customer Name": "Acme Traders", "Balance Receivable": "150"},
	}
	svc := newCatalogService(store)

	err := svc.DeleteCustomer(context.Background(), "C10001")

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.deletes)
}

func TestDeleteCustomerWithZeroBalance(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeCustomers] = []sheets.Record{
		{"Customer ID": "C10001", "Customer Name": "Acme Traders", "Balance Receivable": "0"},
	}
	svc := newCatalogService(store)

	err := svc.DeleteCustomer(context.Background(), "C10001")
	require.NoError(t, err)

	require.Len(t, store.deletes, 1)
	assert.Equal(t, sheets.SheetCustomers, store.deletes[0].sheetName)
	assert.Equal(t, 2, store.deletes[0].rowNumber)
}

func TestDeleteSupplierGuardsOutstandingBalance(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeSuppliers] = []sheets.Record{
		{"Supplier ID": "P20001", "Supplier Name": "Globex Supply", "Balance Payable": "99.5"},
	}
	svc := newCatalogService(store)

	err := svc.DeleteSupplier(context.Background(), "P20001")

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.deletes)
}

func TestCreateInventoryItemSeedsDerivedColumns(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newCatalogService(store)

	item, err := svc.CreateInventoryItem(context.Background(), &InventoryItemRequest{
		Type:         "Electronics",
		Category:     "Audio",
		Subcategory:  "Speakers",
		Name:         "Desk Speaker",
		ReorderLevel: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "P10000", item.ID)

	appends := store.appendsTo(sheets.RangeInventory)
	require.Len(t, appends, 1)
	row := appends[0].values
	require.Len(t, row, 10)
	assert.Equal(t, 0, row[5])
	assert.Equal(t, 0, row[6])
	assert.Equal(t, 0, row[7])
	assert.Equal(t, 5.0, row[8])
	assert.Equal(t, "No", row[9])
}

func TestUpdateInventoryItemCarriesDerivedQuantities(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeInventory] = []sheets.Record{
		{"Item ID": "P30001", "Item Type": "Electronics", "Item Category": "Audio",
			"Item Subcategory": "Headphones", "Item Name": "Studio Headphones",
			"QTY Purchased": "40", "QTY Sold": "25", "Remaining QTY": "15", "Reorder Level": "10"},
	}
	svc := newCatalogService(store)

	err := svc.UpdateInventoryItem(context.Background(), "P30001", &InventoryItemRequest{
		Type:         "Electronics",
		Category:     "Audio",
		Subcategory:  "Headphones",
		Name:         "Studio Headphones v2",
		ReorderLevel: 12,
	})
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	assert.Equal(t, "InventoryItems!A2:I2", store.updates[0].cellRange)
	row := store.updates[0].values
	require.Len(t, row, 9)
	assert.Equal(t, "Studio Headphones v2", row[4])
	assert.Equal(t, 40.0, row[5])
	assert.Equal(t, 25.0, row[6])
	assert.Equal(t, 15.0, row[7])
	assert.Equal(t, 12.0, row[8])
}

func TestDeleteInventoryItemGuardsRemainingStock(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeInventory] = []sheets.Record{
		{"Item ID": "P30001", "Item Name": "Studio Headphones", "Remaining QTY": "3"},
	}
	svc := newCatalogService(store)

	err := svc.DeleteInventoryItem(context.Background(), "P30001")

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.deletes)
}

func TestGenerateIDForOrdersReadsFreshRange(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeSalesOrders] = []sheets.Record{{"SO ID": "SO10000"}}

	draws := []int{0, 7}
	idgen := NewIDGeneratorWithSource(func(n int) int {
		d := draws[0]
		draws = draws[1:]
		return d
	})
	svc := NewCatalogService(store, newTestCache(store), idgen, nil)

	id, err := svc.GenerateID(context.Background(), "sales")
	require.NoError(t, err)
	assert.Equal(t, "SO10007", id)
	assert.Equal(t, 1, store.reads[sheets.RangeSalesOrders])
}

func TestGenerateIDUnknownEntity(t *testing.T) {
	store := newFakeStore()
	svc := newCatalogService(store)

	_, err := svc.GenerateID(context.Background(), "warehouses")

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestOptionsAreDistinctAndOrdered(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeDimensions] = []sheets.Record{
		{"State": "Karnataka", "City": "Bengaluru", "Item Type": "Electronics",
			"Item Category": "Audio", "Item Subcategory": "Headphones", "PMT Mode": "UPI"},
		{"State": "Karnataka", "City": "Mysuru", "Item Type": "Electronics",
			"Item Category": "Video", "PMT Mode": "Cash"},
		{"State": "Kerala", "City": "", "PMT Mode": "UPI"},
	}
	svc := newCatalogService(store)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Karnataka", "Kerala"}, opts.States)
	assert.Equal(t, []string{"Bengaluru", "Mysuru"}, opts.Cities)
	assert.Equal(t, []string{"Electronics"}, opts.ItemTypes)
	assert.Equal(t, []string{"Audio", "Video"}, opts.ItemCategories)
	assert.Equal(t, []string{"UPI", "Cash"}, opts.PaymentModes)
}
