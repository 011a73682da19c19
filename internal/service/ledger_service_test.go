package service

import (
	"context"
	"testing"

	"ledger-service/internal/models"
	"ledger-service/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerService(store *fakeStore) *LedgerService {
	return NewLedgerService(store, newTestCache(store), nil)
}

func seedOrders(store *fakeStore) {
	store.ranges[sheets.RangeSalesOrders] = []sheets.Record{
		{
			"SO Date": "2025-03-10", "SO ID": "SO12345",
			"Customer ID": "C10001", "Customer Name": "Acme Traders",
			"Invoice Num": "INV-001", "State": "Karnataka", "City": "Bengaluru",
			"Total SO Amount": "500", "Amount Settled": "200", "SO Balance": "300",
		},
	}
	store.ranges[sheets.RangePurchaseOrders] = []sheets.Record{
		{
			"Date": "2025-03-11", "PO ID": "PO54321",
			"Supplier ID": "P20001", "Supplier Name": "Globex Supply",
			"Bill Num": "BILL-001", "State": "Maharashtra", "City": "Pune",
			"Total Amount": "1000", "Amount Settled": "0", "PO Balance": "1000",
		},
	}
}

func TestRecordReceiptDenormalizesFromOrder(t *testing.T) {
	store := newFakeStore()
	seedOrders(store)
	svc := newLedgerService(store)

	receipt, err := svc.RecordReceipt(context.Background(), &RecordReceiptRequest{
		TrxID:       "RT10001",
		TrxDate:     "2025-04-01",
		OrderID:     "SO12345",
		PaymentMode: "UPI",
		Amount:      250,
	})
	require.NoError(t, err)

	assert.Equal(t, "C10001", receipt.CustomerID)
	assert.Equal(t, "Acme Traders", receipt.CustomerName)
	assert.Equal(t, "INV-001", receipt.InvoiceNum)

	appends := store.appendsTo(sheets.RangeReceipts)
	require.Len(t, appends, 1)
	row := appends[0].values
	assert.Equal(t, "RT10001", row[1])
	assert.Equal(t, "SO12345", row[6])
	assert.InDelta(t, 250.0, row[9].(float64), 0.01)
}

func TestRecordReceiptRejectsOverBalance(t *testing.T) {
	store := newFakeStore()
	seedOrders(store)
	svc := newLedgerService(store)

	_, err := svc.RecordReceipt(context.Background(), &RecordReceiptRequest{
		TrxID:       "RT10002",
		TrxDate:     "2025-04-01",
		OrderID:     "SO12345",
		PaymentMode: "UPI",
		Amount:      500,
	})

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.appends, "over-balance entry must not reach the store")
}

func TestRecordReceiptAtExactBalancePasses(t *testing.T) {
	store := newFakeStore()
	seedOrders(store)
	svc := newLedgerService(store)

	_, err := svc.RecordReceipt(context.Background(), &RecordReceiptRequest{
		TrxID:       "RT10003",
		TrxDate:     "2025-04-01",
		OrderID:     "SO12345",
		PaymentMode: "Cash",
		Amount:      300,
	})

	require.NoError(t, err)
	assert.Len(t, store.appendsTo(sheets.RangeReceipts), 1)
}

func TestRecordReceiptUnknownOrder(t *testing.T) {
	store := newFakeStore()
	seedOrders(store)
	svc := newLedgerService(store)

	_, err := svc.RecordReceipt(context.Background(), &RecordReceiptRequest{
		TrxID:       "RT10004",
		TrxDate:     "2025-04-01",
		OrderID:     "SO99999",
		PaymentMode: "Cash",
		Amount:      10,
	})

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.appends)
}

func TestRecordReceiptRejectsNonPositiveAmount(t *testing.T) {
	store := newFakeStore()
	seedOrders(store)
	svc := newLedgerService(store)

	for _, amount := range []float64{0, -5} {
		_, err := svc.RecordReceipt(context.Background(), &RecordReceiptRequest{
			TrxID:       "RT10005",
			TrxDate:     "2025-04-01",
			OrderID:     "SO12345",
			PaymentMode: "Cash",
			Amount:      amount,
		})

		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr)
	}
	assert.Empty(t, store.appends)
}

func TestRecordPaymentDenormalizesFromOrder(t *testing.T) {
	store := newFakeStore()
	seedOrders(store)
	svc := newLedgerService(store)

	payment, err := svc.RecordPayment(context.Background(), &RecordPaymentRequest{
		TrxID:       "PT10001",
		TrxDate:     "2025-04-02",
		OrderID:     "PO54321",
		PaymentMode: "Bank Transfer",
		Amount:      1000,
	})
	require.NoError(t, err)

	assert.Equal(t, "P20001", payment.SupplierID)
	assert.Equal(t, "BILL-001", payment.BillNum)

	appends := store.appendsTo(sheets.RangePayments)
	require.Len(t, appends, 1)
	assert.Equal(t, "PT10001", appends[0].values[1])
	assert.Equal(t, "PO54321", appends[0].values[6])
}

func TestRecordPaymentRejectsOverBalance(t *testing.T) {
	store := newFakeStore()
	seedOrders(store)
	svc := newLedgerService(store)

	_, err := svc.RecordPayment(context.Background(), &RecordPaymentRequest{
		TrxID:       "PT10002",
		TrxDate:     "2025-04-02",
		OrderID:     "PO54321",
		PaymentMode: "Cash",
		Amount:      1000.01,
	})

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.appends)
}
