package service

import (
	"context"
	"fmt"
	"testing"

	"ledger-service/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDashboard(store *fakeStore) {
	store.ranges[sheets.RangeSalesDetails] = []sheets.Record{
		{"SO Date": "2024-01-15", "Customer Name": "Acme Traders", "City": "Bengaluru",
			"Item Type": "Electronics", "Item Category": "Audio", "Total Sales Price": "1000"},
		{"SO Date": "2024-01-20", "Customer Name": "Beta Retail", "City": "Pune",
			"Item Type": "Electronics", "Item Category": "Video", "Total Sales Price": "400"},
		{"SO Date": "2025-02-05", "Customer Name": "Acme Traders", "City": "Bengaluru",
			"Item Type": "Apparel", "Item Category": "Audio", "Total Sales Price": "600"},
	}
	store.ranges[sheets.RangePurchaseDetails] = []sheets.Record{
		{"Date": "2024-01-10", "City": "Chennai", "Item Category": "Audio", "Total Purchase Price": "700"},
		{"Date": "2025-03-01", "City": "Chennai", "Item Category": "Video", "Total Purchase Price": "300"},
	}
	store.ranges[sheets.RangeCustomers] = []sheets.Record{
		{"Customer ID": "C10001", "Balance Receivable": "250"},
		{"Customer ID": "C10002", "Balance Receivable": "50"},
	}
	store.ranges[sheets.RangeSuppliers] = []sheets.Record{
		{"Supplier ID": "P20001", "Balance Payable": "120"},
	}
}

func TestDashboardKPIs(t *testing.T) {
	store := newFakeStore()
	seedDashboard(store)
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 2000.0, d.TotalSales, 0.01)
	assert.InDelta(t, 1000.0, d.TotalPurchases, 0.01)
	assert.InDelta(t, 1000.0, d.NetProfit, 0.01)
	assert.InDelta(t, 300.0, d.TotalReceivable, 0.01)
	assert.InDelta(t, 120.0, d.TotalPayable, 0.01)
	assert.Equal(t, "Bengaluru", d.TopLocation)
	assert.Equal(t, "Electronics", d.TopItemType)
}

func TestDashboardCurrencyText(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeSalesDetails] = []sheets.Record{
		{"SO Date": "2024-01-15", "Total Sales Price": "1234567"},
	}
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "$1,234,567", d.TotalSalesText)
}

func TestDashboardMonthlySalesBucketsByMonth(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeSalesDetails] = []sheets.Record{
		{"SO Date": "2024-01-15", "Total Sales Price": "100"},
		{"SO Date": "2024-01-28", "Total Sales Price": "50"},
		{"SO Date": "2024-03-02", "Total Sales Price": "25"},
		{"SO Date": "not-a-date", "Total Sales Price": "999"},
	}
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, d.MonthlySales, 2)
	assert.Equal(t, "2024-01-01", d.MonthlySales[0].Label)
	assert.InDelta(t, 150.0, d.MonthlySales[0].Value, 0.01)
	assert.Equal(t, "2024-03-01", d.MonthlySales[1].Label)
	assert.InDelta(t, 25.0, d.MonthlySales[1].Value, 0.01)
}

func TestDashboardUnknownFallback(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeSalesDetails] = []sheets.Record{
		{"SO Date": "2024-01-15", "City": "", "Item Type": "", "Total Sales Price": "100"},
	}
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Unknown", d.TopLocation)
	assert.Equal(t, "Unknown", d.TopItemType)
}

func TestDashboardNoSalesYieldsNA(t *testing.T) {
	store := newFakeStore()
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "N/A", d.TopLocation)
	assert.Equal(t, "N/A", d.TopItemType)
}

func TestDashboardEqualTotalsKeepEncounterOrder(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeSalesDetails] = []sheets.Record{
		{"SO Date": "2024-01-15", "Item Type": "Furniture", "Total Sales Price": "100"},
		{"SO Date": "2024-01-16", "Item Type": "Apparel", "Total Sales Price": "100"},
	}
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, d.SalesByCategory, 2)
	assert.Equal(t, "Furniture", d.SalesByCategory[0].Label)
	assert.Equal(t, "Apparel", d.SalesByCategory[1].Label)
}

func TestDashboardSalesByCategoryGroupsOnItemType(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangeSalesDetails] = []sheets.Record{
		{"SO Date": "2024-01-15", "Item Type": "Electronics", "Item Category": "Audio",
			"Total Sales Price": "100"},
		{"SO Date": "2024-01-16", "Item Type": "Electronics", "Item Category": "Video",
			"Total Sales Price": "50"},
	}
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	// One bucket on the type field, not two on the category column.
	require.Len(t, d.SalesByCategory, 1)
	assert.Equal(t, "Electronics", d.SalesByCategory[0].Label)
	assert.InDelta(t, 150.0, d.SalesByCategory[0].Value, 0.01)
}

func TestDashboardTopCustomersTruncatesToTen(t *testing.T) {
	store := newFakeStore()
	var details []sheets.Record
	for i := 0; i < 12; i++ {
		details = append(details, sheets.Record{
			"SO Date":           "2024-05-01",
			"Customer Name":     fmt.Sprintf("Customer %02d", i),
			"Total Sales Price": fmt.Sprintf("%d", (12-i)*10),
		})
	}
	store.ranges[sheets.RangeSalesDetails] = details
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, d.TopCustomers, 10)
	assert.Equal(t, "Customer 00", d.TopCustomers[0].Label)
	assert.InDelta(t, 120.0, d.TopCustomers[0].Value, 0.01)
	assert.Equal(t, "Customer 09", d.TopCustomers[9].Label)
}

func TestDashboardPurchaseMatrixBuiltFromPurchases(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangePurchaseDetails] = []sheets.Record{
		{"Date": "2024-02-01", "Item Type": "Electronics", "Total Purchase Price": "700"},
	}
	store.ranges[sheets.RangeSalesDetails] = nil
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, d.PurchaseCatByYear)
	assert.Equal(t, "Electronics", d.PurchaseCatByYear[0].Category)
	assert.InDelta(t, 700.0, d.PurchaseCatByYear[0].ByYear[2024], 0.01)
}

func TestDashboardPurchaseMatrixCoversReportingYearsOnly(t *testing.T) {
	store := newFakeStore()
	store.ranges[sheets.RangePurchaseDetails] = []sheets.Record{
		{"Date": "2024-01-15", "Item Type": "Electronics", "Total Purchase Price": "100"},
		{"Date": "2025-06-01", "Item Type": "Electronics", "Total Purchase Price": "40"},
		{"Date": "2023-12-31", "Item Type": "Electronics", "Total Purchase Price": "999"},
		{"Date": "2025-07-01", "Item Type": "Apparel", "Total Purchase Price": "60"},
		{"Date": "2022-01-01", "Item Type": "Furniture", "Total Purchase Price": "5"},
	}
	svc := NewDashboardService(store)

	d, err := svc.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2024, 2025}, d.ReportingYears)
	require.Len(t, d.PurchaseCatByYear, 3)

	electronics := d.PurchaseCatByYear[0]
	assert.Equal(t, "Electronics", electronics.Category)
	assert.InDelta(t, 100.0, electronics.ByYear[2024], 0.01)
	assert.InDelta(t, 40.0, electronics.ByYear[2025], 0.01)

	apparel := d.PurchaseCatByYear[1]
	assert.Equal(t, "Apparel", apparel.Category)
	assert.InDelta(t, 0.0, apparel.ByYear[2024], 0.01)
	assert.InDelta(t, 60.0, apparel.ByYear[2025], 0.01)

	// Seen only outside the reporting window: row present, all zeroes.
	furniture := d.PurchaseCatByYear[2]
	assert.Equal(t, "Furniture", furniture.Category)
	assert.InDelta(t, 0.0, furniture.ByYear[2024], 0.01)
	assert.InDelta(t, 0.0, furniture.ByYear[2025], 0.01)
}

func TestDashboardReadsSourcesOnce(t *testing.T) {
	store := newFakeStore()
	seedDashboard(store)
	svc := NewDashboardService(store)

	_, err := svc.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.reads[sheets.RangeSalesDetails])
	assert.Equal(t, 1, store.reads[sheets.RangePurchaseDetails])
	assert.Equal(t, 1, store.reads[sheets.RangeCustomers])
	assert.Equal(t, 1, store.reads[sheets.RangeSuppliers])
}
