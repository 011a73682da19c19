package models

import "time"

// Event types
const (
	EventTypeSalesOrderCreated    = "SALES_ORDER_CREATED"
	EventTypePurchaseOrderCreated = "PURCHASE_ORDER_CREATED"
	EventTypeReceiptRecorded      = "RECEIPT_RECORDED"
	EventTypePaymentRecorded      = "PAYMENT_RECORDED"
	EventTypeCatalogChanged       = "CATALOG_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent is published after an order transaction commits.
// Kind is "sales" or "purchase".
type OrderCreatedEvent struct {
	BaseEvent
	Kind           string  `json:"kind"`
	OrderID        string  `json:"order_id"`
	CounterpartyID string  `json:"counterparty_id"`
	TotalAmount    float64 `json:"total_amount"`
	LineCount      int     `json:"line_count"`
	TxnToken       string  `json:"txn_token"`
}

// LedgerEntryEvent is published after a receipt or payment row is
// appended. The referenced order's balance is recomputed externally.
type LedgerEntryEvent struct {
	BaseEvent
	TrxID          string  `json:"trx_id"`
	OrderID        string  `json:"order_id"`
	CounterpartyID string  `json:"counterparty_id"`
	Amount         float64 `json:"amount"`
}

// CatalogChangedEvent is published after a customer, supplier or
// inventory create/update/delete.
type CatalogChangedEvent struct {
	BaseEvent
	Entity   string `json:"entity"` // customers | suppliers | inventory
	EntityID string `json:"entity_id"`
	Action   string `json:"action"` // created | updated | deleted
}
