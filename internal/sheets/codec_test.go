package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipRowsPadsShortRows(t *testing.T) {
	header := []interface{}{"Customer ID", "Customer Name", "City"}
	rows := [][]interface{}{
		{"C10001", "Acme Traders", "Bengaluru"},
		{"C10002", "Beta Retail"},
	}

	records := ZipRows(header, rows)
	require.Len(t, records, 2)

	assert.Equal(t, "Bengaluru", records[0].Get("City"))
	assert.Equal(t, "", records[1].Get("City"))
	assert.Equal(t, "Beta Retail", records[1].Get("Customer Name"))
}

func TestZipRowsNormalizesCellTypes(t *testing.T) {
	header := []interface{}{"Amount", "Flag", "Blank"}
	rows := [][]interface{}{{42.5, true, nil}}

	records := ZipRows(header, rows)
	require.Len(t, records, 1)

	assert.Equal(t, "42.5", records[0].Get("Amount"))
	assert.Equal(t, "true", records[0].Get("Flag"))
	assert.Equal(t, "", records[0].Get("Blank"))
}

func TestRecordFloatMalformedIsZero(t *testing.T) {
	rec := Record{"Amount": "12.5", "Junk": "abc", "Blank": ""}

	assert.InDelta(t, 12.5, rec.Float("Amount"), 0.001)
	assert.Zero(t, rec.Float("Junk"))
	assert.Zero(t, rec.Float("Blank"))
	assert.Zero(t, rec.Float("Missing"))
}

func TestFindRowNumberOffsetsHeader(t *testing.T) {
	records := []Record{
		{"Customer ID": "C10001"},
		{"Customer ID": "C10002"},
	}

	assert.Equal(t, 2, FindRowNumber(records, "Customer ID", "C10001"))
	assert.Equal(t, 3, FindRowNumber(records, "Customer ID", "C10002"))
	assert.Equal(t, 0, FindRowNumber(records, "Customer ID", "C10003"))
}

func TestCustomerRowSeedsAggregates(t *testing.T) {
	row := CustomerRow(DecodeCustomer(Record{
		"Customer ID": "C10001", "Customer Name": "Acme Traders",
	}))

	require.Len(t, row, 10)
	assert.Equal(t, 0, row[7])
	assert.Equal(t, 0, row[8])
	assert.Equal(t, 0, row[9])
}

func TestSalesDetailRowColumnOrder(t *testing.T) {
	rec := Record{
		"SO Date": "2025-03-10", "SO ID": "SO12345", "SO Details ID": "SO12345-1",
		"Customer ID": "C10001", "QTY Sold": "2", "Unit Price": "100",
		"Total Sales Price": "225",
	}
	d := DecodeSalesDetail(rec)
	row := SalesDetailRow(d)

	require.Len(t, row, 21)
	assert.Equal(t, "2025-03-10", row[0])
	assert.Equal(t, "SO12345", row[1])
	assert.Equal(t, "SO12345-1", row[2])
	assert.Equal(t, 2.0, row[13])
	assert.Equal(t, 100.0, row[14])
	assert.Equal(t, 225.0, row[20])
}
