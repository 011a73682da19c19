package models

// Customer represents a row in the Customers sheet. Total Sales, Total
// Receipts and Balance Receivable are derived aggregates maintained by an
// external job; the service only reads them.
type Customer struct {
	ID                string  `json:"customer_id"`
	Name              string  `json:"customer_name"`
	Contact           string  `json:"customer_contact"`
	Email             string  `json:"customer_email"`
	State             string  `json:"state"`
	City              string  `json:"city"`
	Address           string  `json:"customer_address"`
	TotalSales        float64 `json:"total_sales"`
	TotalReceipts     float64 `json:"total_receipts"`
	BalanceReceivable float64 `json:"balance_receivable"`
}

// Supplier represents a row in the Suppliers sheet.
type Supplier struct {
	ID             string  `json:"supplier_id"`
	Name           string  `json:"supplier_name"`
	Contact        string  `json:"supplier_contact"`
	Email          string  `json:"supplier_email"`
	State          string  `json:"state"`
	City           string  `json:"city"`
	Address        string  `json:"supplier_address"`
	TotalPurchases float64 `json:"total_purchases"`
	TotalPayments  float64 `json:"total_payments"`
	BalancePayable float64 `json:"balance_payable"`
}

// InventoryItem represents a row in the InventoryItems sheet. QTY
// Purchased, QTY Sold, Remaining QTY and Reorder Required are derived;
// the service writes them only as zero values at creation.
type InventoryItem struct {
	ID              string  `json:"item_id"`
	Type            string  `json:"item_type"`
	Category        string  `json:"item_category"`
	Subcategory     string  `json:"item_subcategory"`
	Name            string  `json:"item_name"`
	QtyPurchased    float64 `json:"qty_purchased"`
	QtySold         float64 `json:"qty_sold"`
	RemainingQty    float64 `json:"remaining_qty"`
	ReorderLevel    float64 `json:"reorder_level"`
	ReorderRequired string  `json:"reorder_required"`
}

// SalesOrder is the master row for a sales order.
type SalesOrder struct {
	Date          string  `json:"so_date"`
	ID            string  `json:"so_id"`
	CustomerID    string  `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	InvoiceNum    string  `json:"invoice_num"`
	State         string  `json:"state"`
	City          string  `json:"city"`
	TotalAmount   float64 `json:"total_amount"`
	AmountSettled float64 `json:"amount_settled"`
	Balance       float64 `json:"balance"`
	ReceiptStatus string  `json:"receipt_status"`
	ShipStatus    string  `json:"shipping_status"`
}

// PurchaseOrder is the master row for a purchase order.
type PurchaseOrder struct {
	Date          string  `json:"date"`
	ID            string  `json:"po_id"`
	SupplierID    string  `json:"supplier_id"`
	SupplierName  string  `json:"supplier_name"`
	BillNum       string  `json:"bill_num"`
	State         string  `json:"state"`
	City          string  `json:"city"`
	TotalAmount   float64 `json:"total_amount"`
	AmountSettled float64 `json:"amount_settled"`
	Balance       float64 `json:"balance"`
	PaymentStatus string  `json:"pmt_status"`
	ShipStatus    string  `json:"shipping_status"`
}

// SalesDetail is one priced line item of a sales order. DetailID is
// deterministic: "{SO ID}-{1-based line index}".
type SalesDetail struct {
	Date          string  `json:"so_date"`
	OrderID       string  `json:"so_id"`
	DetailID      string  `json:"so_details_id"`
	CustomerID    string  `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	State         string  `json:"state"`
	City          string  `json:"city"`
	InvoiceNum    string  `json:"invoice_num"`
	ItemID        string  `json:"item_id"`
	ItemType      string  `json:"item_type"`
	ItemCategory  string  `json:"item_category"`
	ItemSubcat    string  `json:"item_subcategory"`
	ItemName      string  `json:"item_name"`
	Qty           float64 `json:"qty"`
	UnitPrice     float64 `json:"unit_price"`
	AmountExclTax float64 `json:"amount_excl_tax"`
	TaxRate       float64 `json:"tax_rate"`
	TaxAmount     float64 `json:"tax_amount"`
	AmountInclTax float64 `json:"amount_incl_tax"`
	Shipping      float64 `json:"shipping"`
	TotalPrice    float64 `json:"total_price"`
}

// PurchaseDetail is one priced line item of a purchase order. Shipping is
// a fixed 1% surcharge on the tax-inclusive amount, not user input.
type PurchaseDetail struct {
	Date          string  `json:"date"`
	OrderID       string  `json:"po_id"`
	DetailID      string  `json:"po_details_id"`
	SupplierID    string  `json:"supplier_id"`
	SupplierName  string  `json:"supplier_name"`
	State         string  `json:"state"`
	City          string  `json:"city"`
	BillNum       string  `json:"bill_num"`
	ItemID        string  `json:"item_id"`
	ItemType      string  `json:"item_type"`
	ItemCategory  string  `json:"item_category"`
	ItemSubcat    string  `json:"item_subcategory"`
	ItemName      string  `json:"item_name"`
	Qty           float64 `json:"qty"`
	UnitCost      float64 `json:"unit_cost"`
	AmountExclTax float64 `json:"amount_excl_tax"`
	TaxRate       float64 `json:"tax_rate"`
	TaxAmount     float64 `json:"tax_amount"`
	AmountInclTax float64 `json:"amount_incl_tax"`
	Shipping      float64 `json:"shipping"`
	TotalPrice    float64 `json:"total_price"`
}

// Receipt is a money-in ledger entry against a sales order.
type Receipt struct {
	TrxDate      string  `json:"trx_date"`
	TrxID        string  `json:"trx_id"`
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	State        string  `json:"state"`
	City         string  `json:"city"`
	OrderID      string  `json:"so_id"`
	InvoiceNum   string  `json:"invoice_num"`
	PaymentMode  string  `json:"pmt_mode"`
	Amount       float64 `json:"amount"`
}

// Payment is a money-out ledger entry against a purchase order.
type Payment struct {
	TrxDate      string  `json:"trx_date"`
	TrxID        string  `json:"trx_id"`
	SupplierID   string  `json:"supplier_id"`
	SupplierName string  `json:"supplier_name"`
	State        string  `json:"state"`
	City         string  `json:"city"`
	OrderID      string  `json:"po_id"`
	BillNum      string  `json:"bill_num"`
	PaymentMode  string  `json:"pmt_mode"`
	Amount       float64 `json:"amount"`
}

// Dimension is a lookup-only row supplying valid selection values.
type Dimension struct {
	State       string `json:"state"`
	City        string `json:"city"`
	ItemType    string `json:"item_type"`
	ItemCat     string `json:"item_category"`
	ItemSubcat  string `json:"item_subcategory"`
	PaymentMode string `json:"pmt_mode"`
}

// Order status values written at creation. Downstream status changes are
// owned by the external aggregation job.
const (
	StatusPending = "Pending"
)

// ID prefixes. Supplier and InventoryItem deliberately share "P"; the
// source system does the same and callers must not join on prefix alone.
const (
	PrefixCustomer      = "C"
	PrefixSupplier      = "P"
	PrefixInventoryItem = "P"
	PrefixPurchaseOrder = "PO"
	PrefixSalesOrder    = "SO"
	PrefixPayment       = "PT"
	PrefixReceipt       = "RT"
)
