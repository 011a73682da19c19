package sheets

import (
	"fmt"
	"strconv"

	"ledger-service/internal/models"
)

// Named ranges used by the service.
const (
	RangeCustomers       = "RANGECUSTOMERS"
	RangeSuppliers       = "RANGESUPPLIERS"
	RangeInventory       = "RANGEINVENTORYITEMS"
	RangeDimensions      = "RANGEDIMENSIONS"
	RangeSalesOrders     = "RANGESO"
	RangeSalesDetails    = "RANGESD"
	RangePurchaseOrders  = "RANGEPO"
	RangePurchaseDetails = "RANGEPD"
	RangeReceipts        = "RANGERECEIPTS"
	RangePayments        = "RANGEPAYMENTS"
)

// Sheet names, needed for row updates and deletes.
const (
	SheetCustomers = "Customers"
	SheetSuppliers = "Suppliers"
	SheetInventory = "InventoryItems"
)

// Record is one sheet row keyed by header-cell name. Cells arrive as
// loosely typed JSON values and are normalized to strings; typed entity
// structs are decoded from Records at this boundary and nowhere else.
type Record map[string]string

// Get returns the named field, or "" when the row is short.
func (r Record) Get(key string) string { return r[key] }

// Float parses the named field as a number. Blank or malformed cells
// count as zero, matching how the source treats hand-entered data.
func (r Record) Float(key string) float64 {
	v, err := strconv.ParseFloat(r[key], 64)
	if err != nil {
		return 0
	}
	return v
}

// ZipRows pairs a header row with data rows. Short rows are padded with
// empty fields; cells beyond the header width are dropped.
func ZipRows(header []interface{}, rows [][]interface{}) []Record {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = cellString(h)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(keys))
		for i, key := range keys {
			if i < len(row) {
				rec[key] = cellString(row[i])
			} else {
				rec[key] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// FindRowNumber locates the 1-based sheet row of the first record whose
// keyField equals keyValue: 0-based slice index, +1 for the header row,
// +1 to convert to 1-based addressing. Returns 0 when absent.
func FindRowNumber(records []Record, keyField, keyValue string) int {
	for i, rec := range records {
		if rec.Get(keyField) == keyValue {
			return i + 2
		}
	}
	return 0
}

// DecodeCustomer maps a Customers row to its typed record.
func DecodeCustomer(r Record) models.Customer {
	return models.Customer{
		ID:                r.Get("Customer ID"),
		Name:              r.Get("Customer Name"),
		Contact:           r.Get("Customer Contact"),
		Email:             r.Get("Customer Email"),
		State:             r.Get("State"),
		City:              r.Get("City"),
		Address:           r.Get("Customer Address"),
		TotalSales:        r.Float("Total Sales"),
		TotalReceipts:     r.Float("Total Receipts"),
		BalanceReceivable: r.Float("Balance Receivable"),
	}
}

// CustomerRow is the full append row: columns A-J, aggregates seeded 0.
func CustomerRow(c models.Customer) []interface{} {
	return []interface{}{c.ID, c.Name, c.Contact, c.Email, c.State, c.City, c.Address, 0, 0, 0}
}

// CustomerEditRow covers only the editable span A-G; the aggregate
// columns H-J belong to the external job and are never rewritten.
func CustomerEditRow(c models.Customer) []interface{} {
	return []interface{}{c.ID, c.Name, c.Contact, c.Email, c.State, c.City, c.Address}
}

func DecodeSupplier(r Record) models.Supplier {
	return models.Supplier{
		ID:             r.Get("Supplier ID"),
		Name:           r.Get("Supplier Name"),
		Contact:        r.Get("Supplier Contact"),
		Email:          r.Get("Supplier Email"),
		State:          r.Get("State"),
		City:           r.Get("City"),
		Address:        r.Get("Supplier Address"),
		TotalPurchases: r.Float("Total Purchases"),
		TotalPayments:  r.Float("Total Payments"),
		BalancePayable: r.Float("Balance Payable"),
	}
}

func SupplierRow(s models.Supplier) []interface{} {
	return []interface{}{s.ID, s.Name, s.Contact, s.Email, s.State, s.City, s.Address, 0, 0, 0}
}

func SupplierEditRow(s models.Supplier) []interface{} {
	return []interface{}{s.ID, s.Name, s.Contact, s.Email, s.State, s.City, s.Address}
}

func DecodeInventoryItem(r Record) models.InventoryItem {
	return models.InventoryItem{
		ID:              r.Get("Item ID"),
		Type:            r.Get("Item Type"),
		Category:        r.Get("Item Category"),
		Subcategory:     r.Get("Item Subcategory"),
		Name:            r.Get("Item Name"),
		QtyPurchased:    r.Float("QTY Purchased"),
		QtySold:         r.Float("QTY Sold"),
		RemainingQty:    r.Float("Remaining QTY"),
		ReorderLevel:    r.Float("Reorder Level"),
		ReorderRequired: r.Get("Reorder Required"),
	}
}

// InventoryItemRow is the full append row: derived quantities start at
// zero and Reorder Required at "No".
func InventoryItemRow(it models.InventoryItem) []interface{} {
	return []interface{}{it.ID, it.Type, it.Category, it.Subcategory, it.Name, 0, 0, 0, it.ReorderLevel, "No"}
}

// InventoryItemEditRow covers A-I. The derived quantity columns sit
// inside the editable span, so their current values are carried through
// unchanged; only Reorder Required (column J) is left untouched.
func InventoryItemEditRow(it models.InventoryItem) []interface{} {
	return []interface{}{it.ID, it.Type, it.Category, it.Subcategory, it.Name,
		it.QtyPurchased, it.QtySold, it.RemainingQty, it.ReorderLevel}
}

func DecodeSalesOrder(r Record) models.SalesOrder {
	return models.SalesOrder{
		Date:          r.Get("SO Date"),
		ID:            r.Get("SO ID"),
		CustomerID:    r.Get("Customer ID"),
		CustomerName:  r.Get("Customer Name"),
		InvoiceNum:    r.Get("Invoice Num"),
		State:         r.Get("State"),
		City:          r.Get("City"),
		TotalAmount:   r.Float("Total SO Amount"),
		AmountSettled: r.Float("Amount Settled"),
		Balance:       r.Float("SO Balance"),
		ReceiptStatus: r.Get("Receipt Status"),
		ShipStatus:    r.Get("Shipping Status"),
	}
}

func SalesOrderRow(o models.SalesOrder) []interface{} {
	return []interface{}{o.Date, o.ID, o.CustomerID, o.CustomerName, o.InvoiceNum,
		o.State, o.City, o.TotalAmount, o.AmountSettled, o.Balance, o.ReceiptStatus, o.ShipStatus}
}

func DecodeSalesDetail(r Record) models.SalesDetail {
	return models.SalesDetail{
		Date:          r.Get("SO Date"),
		OrderID:       r.Get("SO ID"),
		DetailID:      r.Get("SO Details ID"),
		CustomerID:    r.Get("Customer ID"),
		CustomerName:  r.Get("Customer Name"),
		State:         r.Get("State"),
		City:          r.Get("City"),
		InvoiceNum:    r.Get("Invoice Num"),
		ItemID:        r.Get("Item ID"),
		ItemType:      r.Get("Item Type"),
		ItemCategory:  r.Get("Item Category"),
		ItemSubcat:    r.Get("Item Subcategory"),
		ItemName:      r.Get("Item Name"),
		Qty:           r.Float("QTY Sold"),
		UnitPrice:     r.Float("Unit Price"),
		AmountExclTax: r.Float("Total Price Excl Tax"),
		TaxRate:       r.Float("Tax Rate"),
		TaxAmount:     r.Float("Total Tax Amount"),
		AmountInclTax: r.Float("Total Price Incl Tax"),
		Shipping:      r.Float("Shipping Charges"),
		TotalPrice:    r.Float("Total Sales Price"),
	}
}

func SalesDetailRow(d models.SalesDetail) []interface{} {
	return []interface{}{d.Date, d.OrderID, d.DetailID, d.CustomerID, d.CustomerName,
		d.State, d.City, d.InvoiceNum, d.ItemID, d.ItemType, d.ItemCategory, d.ItemSubcat,
		d.ItemName, d.Qty, d.UnitPrice, d.AmountExclTax, d.TaxRate, d.TaxAmount,
		d.AmountInclTax, d.Shipping, d.TotalPrice}
}

func DecodePurchaseOrder(r Record) models.PurchaseOrder {
	return models.PurchaseOrder{
		Date:          r.Get("Date"),
		ID:            r.Get("PO ID"),
		SupplierID:    r.Get("Supplier ID"),
		SupplierName:  r.Get("Supplier Name"),
		BillNum:       r.Get("Bill Num"),
		State:         r.Get("State"),
		City:          r.Get("City"),
		TotalAmount:   r.Float("Total Amount"),
		AmountSettled: r.Float("Amount Settled"),
		Balance:       r.Float("PO Balance"),
		PaymentStatus: r.Get("PMT Status"),
		ShipStatus:    r.Get("Shipping Status"),
	}
}

func PurchaseOrderRow(o models.PurchaseOrder) []interface{} {
	return []interface{}{o.Date, o.ID, o.SupplierID, o.SupplierName, o.BillNum,
		o.State, o.City, o.TotalAmount, o.AmountSettled, o.Balance, o.PaymentStatus, o.ShipStatus}
}

func DecodePurchaseDetail(r Record) models.PurchaseDetail {
	return models.PurchaseDetail{
		Date:          r.Get("Date"),
		OrderID:       r.Get("PO ID"),
		DetailID:      r.Get("PO Details ID"),
		SupplierID:    r.Get("Supplier ID"),
		SupplierName:  r.Get("Supplier Name"),
		State:         r.Get("State"),
		City:          r.Get("City"),
		BillNum:       r.Get("Bill Num"),
		ItemID:        r.Get("Item ID"),
		ItemType:      r.Get("Item Type"),
		ItemCategory:  r.Get("Item Category"),
		ItemSubcat:    r.Get("Item Subcategory"),
		ItemName:      r.Get("Item Name"),
		Qty:           r.Float("QTY Purchased"),
		UnitCost:      r.Float("Unit Cost"),
		AmountExclTax: r.Float("Total Cost Excl Tax"),
		TaxRate:       r.Float("Tax Rate"),
		TaxAmount:     r.Float("Total Tax Amount"),
		AmountInclTax: r.Float("Total Cost Incl Tax"),
		Shipping:      r.Float("Shipping Fees"),
		TotalPrice:    r.Float("Total Purchase Price"),
	}
}

func PurchaseDetailRow(d models.PurchaseDetail) []interface{} {
	return []interface{}{d.Date, d.OrderID, d.DetailID, d.SupplierID, d.SupplierName,
		d.State, d.City, d.BillNum, d.ItemID, d.ItemType, d.ItemCategory, d.ItemSubcat,
		d.ItemName, d.Qty, d.UnitCost, d.AmountExclTax, d.TaxRate, d.TaxAmount,
		d.AmountInclTax, d.Shipping, d.TotalPrice}
}

func DecodeReceipt(r Record) models.Receipt {
	return models.Receipt{
		TrxDate:      r.Get("Trx Date"),
		TrxID:        r.Get("Trx ID"),
		CustomerID:   r.Get("Customer ID"),
		CustomerName: r.Get("Customer Name"),
		State:        r.Get("State"),
		City:         r.Get("City"),
		OrderID:      r.Get("SO ID"),
		InvoiceNum:   r.Get("Invoice Num"),
		PaymentMode:  r.Get("PMT Mode"),
		Amount:       r.Float("Amount Received"),
	}
}

func ReceiptRow(rc models.Receipt) []interface{} {
	return []interface{}{rc.TrxDate, rc.TrxID, rc.CustomerID, rc.CustomerName,
		rc.State, rc.City, rc.OrderID, rc.InvoiceNum, rc.PaymentMode, rc.Amount}
}

func DecodePayment(r Record) models.Payment {
	return models.Payment{
		TrxDate:      r.Get("Trx Date"),
		TrxID:        r.Get("Trx ID"),
		SupplierID:   r.Get("Supplier ID"),
		SupplierName: r.Get("Supplier Name"),
		State:        r.Get("State"),
		City:         r.Get("City"),
		OrderID:      r.Get("PO ID"),
		BillNum:      r.Get("Bill Num"),
		PaymentMode:  r.Get("PMT Mode"),
		Amount:       r.Float("Amount Paid"),
	}
}

func PaymentRow(p models.Payment) []interface{} {
	return []interface{}{p.TrxDate, p.TrxID, p.SupplierID, p.SupplierName,
		p.State, p.City, p.OrderID, p.BillNum, p.PaymentMode, p.Amount}
}

func DecodeDimension(r Record) models.Dimension {
	return models.Dimension{
		State:       r.Get("State"),
		City:        r.Get("City"),
		ItemType:    r.Get("Item Type"),
		ItemCat:     r.Get("Item Category"),
		ItemSubcat:  r.Get("Item Subcategory"),
		PaymentMode: r.Get("PMT Mode"),
	}
}
