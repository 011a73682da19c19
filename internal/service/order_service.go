package service

import (
	"context"
	"fmt"
	"time"

	"ledger-service/internal/models"
	"ledger-service/internal/redisclient"
	"ledger-service/internal/refcache"
	"ledger-service/internal/sheets"
	"ledger-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// wireDateLayout is the date format the store understands.
const wireDateLayout = "2006-01-02"

// Order kinds
const (
	OrderKindSales    = "sales"
	OrderKindPurchase = "purchase"
)

// EventPublisher is the slice of the broker the services need.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishLedgerEntry(ctx context.Context, event *models.LedgerEntryEvent) error
	PublishCatalogChanged(ctx context.Context, event *models.CatalogChangedEvent) error
}

// OrderService is the order transaction coordinator. It expands a
// validated header plus line items into detail rows and one master row,
// written strictly sequentially against a store that offers no
// cross-row atomicity. A failed append mid-transaction leaves the rows
// already written in place; there is no compensating delete.
type OrderService struct {
	store     sheets.Store
	cache     *refcache.Cache
	redis     *redisclient.Client
	publisher EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service. redis and publisher may
// be nil; the transaction token record and event publishing degrade to
// log-only.
func NewOrderService(store sheets.Store, cache *refcache.Cache, redis *redisclient.Client, publisher EventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		cache:     cache,
		redis:     redis,
		publisher: publisher,
		logger:    util.NamedLogger("orders"),
	}
}

// SubmitSalesOrderRequest is a sales order header plus its line items,
// in entry order.
type SubmitSalesOrderRequest struct {
	OrderID    string      `json:"so_id" binding:"required"`
	Date       string      `json:"so_date" binding:"required"`
	CustomerID string      `json:"customer_id" binding:"required"`
	InvoiceNum string      `json:"invoice_num" binding:"required"`
	Items      []LineInput `json:"items" binding:"required,min=1"`
}

// SubmitPurchaseOrderRequest is a purchase order header plus its line
// items, in entry order.
type SubmitPurchaseOrderRequest struct {
	OrderID    string      `json:"po_id" binding:"required"`
	Date       string      `json:"date" binding:"required"`
	SupplierID string      `json:"supplier_id" binding:"required"`
	BillNum    string      `json:"bill_num" binding:"required"`
	Items      []LineInput `json:"items" binding:"required,min=1"`
}

// SubmitOrderResponse reports a committed order transaction.
type SubmitOrderResponse struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
	LineCount   int     `json:"line_count"`
	TxnToken    string  `json:"txn_token"`
	Status      string  `json:"status"`
}

// SubmitSalesOrder validates, prices and writes a sales order: one
// detail row per line in list order, then the master row. Validation
// failures return before any store call. A write failure returns
// *models.ConsistencyError naming how many rows committed.
func (s *OrderService) SubmitSalesOrder(ctx context.Context, req *SubmitSalesOrderRequest) (*SubmitOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SubmitSalesOrder")
	defer span.End()
	start := time.Now()
	defer func() {
		util.OrderSubmitLatency.WithLabelValues(OrderKindSales).Observe(time.Since(start).Seconds())
	}()

	if err := validateHeaderDate(req.Date); err != nil {
		util.OrdersFailedTotal.WithLabelValues(OrderKindSales, "validation").Inc()
		return nil, err
	}
	if err := s.checkOrderIDUnique(ctx, sheets.RangeSalesOrders, "SO ID", req.OrderID); err != nil {
		util.OrdersFailedTotal.WithLabelValues(OrderKindSales, "validation").Inc()
		return nil, err
	}

	customer, ok, err := s.cache.CustomerByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		util.OrdersFailedTotal.WithLabelValues(OrderKindSales, "validation").Inc()
		return nil, models.NewValidationError("customer_id", fmt.Sprintf("unknown customer %q", req.CustomerID))
	}

	details, err := s.buildSalesDetails(ctx, req, customer)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(OrderKindSales, "validation").Inc()
		return nil, err
	}

	rows := make([][]interface{}, 0, len(details))
	var totalAmount float64
	for _, d := range details {
		rows = append(rows, sheets.SalesDetailRow(d))
		totalAmount += d.TotalPrice
	}

	master := models.SalesOrder{
		Date:          req.Date,
		ID:            req.OrderID,
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		InvoiceNum:    req.InvoiceNum,
		State:         customer.State,
		City:          customer.City,
		TotalAmount:   totalAmount,
		AmountSettled: 0,
		Balance:       totalAmount,
		ReceiptStatus: models.StatusPending,
		ShipStatus:    models.StatusPending,
	}

	token, err := s.writeTransaction(ctx, OrderKindSales, req.OrderID,
		sheets.RangeSalesDetails, rows, sheets.RangeSalesOrders, sheets.SalesOrderRow(master))
	if err != nil {
		return nil, err
	}

	util.OrdersSubmittedTotal.WithLabelValues(OrderKindSales).Inc()
	s.logger.Info("sales order committed",
		zap.String("so_id", req.OrderID),
		zap.Float64("total_amount", totalAmount),
		zap.Int("lines", len(details)))

	s.publishOrderCreated(ctx, OrderKindSales, req.OrderID, customer.ID, totalAmount, len(details), token)
	s.cache.Invalidate(ctx)

	return &SubmitOrderResponse{
		OrderID:     req.OrderID,
		TotalAmount: totalAmount,
		LineCount:   len(details),
		TxnToken:    token,
		Status:      models.StatusPending,
	}, nil
}

// SubmitPurchaseOrder is the purchase-side twin of SubmitSalesOrder.
// Line shipping is the fixed 1% surcharge, never user input.
func (s *OrderService) SubmitPurchaseOrder(ctx context.Context, req *SubmitPurchaseOrderRequest) (*SubmitOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SubmitPurchaseOrder")
	defer span.End()
	start := time.Now()
	defer func() {
		util.OrderSubmitLatency.WithLabelValues(OrderKindPurchase).Observe(time.Since(start).Seconds())
	}()

	if err := validateHeaderDate(req.Date); err != nil {
		util.OrdersFailedTotal.WithLabelValues(OrderKindPurchase, "validation").Inc()
		return nil, err
	}
	if err := s.checkOrderIDUnique(ctx, sheets.RangePurchaseOrders, "PO ID", req.OrderID); err != nil {
		util.OrdersFailedTotal.WithLabelValues(OrderKindPurchase, "validation").Inc()
		return nil, err
	}

	supplier, ok, err := s.cache.SupplierByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if !ok {
		util.OrdersFailedTotal.WithLabelValues(OrderKindPurchase, "validation").Inc()
		return nil, models.NewValidationError("supplier_id", fmt.Sprintf("unknown supplier %q", req.SupplierID))
	}

	details, err := s.buildPurchaseDetails(ctx, req, supplier)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(OrderKindPurchase, "validation").Inc()
		return nil, err
	}

	rows := make([][]interface{}, 0, len(details))
	var totalAmount float64
	for _, d := range details {
		rows = append(rows, sheets.PurchaseDetailRow(d))
		totalAmount += d.TotalPrice
	}

	master := models.PurchaseOrder{
		Date:          req.Date,
		ID:            req.OrderID,
		SupplierID:    supplier.ID,
		SupplierName:  supplier.Name,
		BillNum:       req.BillNum,
		State:         supplier.State,
		City:          supplier.City,
		TotalAmount:   totalAmount,
		AmountSettled: 0,
		Balance:       totalAmount,
		PaymentStatus: models.StatusPending,
		ShipStatus:    models.StatusPending,
	}

	token, err := s.writeTransaction(ctx, OrderKindPurchase, req.OrderID,
		sheets.RangePurchaseDetails, rows, sheets.RangePurchaseOrders, sheets.PurchaseOrderRow(master))
	if err != nil {
		return nil, err
	}

	util.OrdersSubmittedTotal.WithLabelValues(OrderKindPurchase).Inc()
	s.logger.Info("purchase order committed",
		zap.String("po_id", req.OrderID),
		zap.Float64("total_amount", totalAmount),
		zap.Int("lines", len(details)))

	s.publishOrderCreated(ctx, OrderKindPurchase, req.OrderID, supplier.ID, totalAmount, len(details), token)
	s.cache.Invalidate(ctx)

	return &SubmitOrderResponse{
		OrderID:     req.OrderID,
		TotalAmount: totalAmount,
		LineCount:   len(details),
		TxnToken:    token,
		Status:      models.StatusPending,
	}, nil
}

// writeTransaction performs the sequential write phase: detail rows in
// list order, then the master row. Detail writes are never parallelized;
// the detail ID encodes list position. Returns the transaction token.
func (s *OrderService) writeTransaction(ctx context.Context, kind, orderID string,
	detailRange string, detailRows [][]interface{}, masterRange string, masterRow []interface{}) (string, error) {

	token := uuid.New().String()
	totalSteps := len(detailRows) + 1
	s.recordTxn(ctx, redisclient.TxnRecord{
		Token:      token,
		OrderID:    orderID,
		Kind:       kind,
		State:      redisclient.TxnStatePending,
		TotalSteps: totalSteps,
		StartedAt:  time.Now(),
	})

	for i, row := range detailRows {
		if err := s.store.AppendRow(ctx, detailRange, row); err != nil {
			return "", s.failTransaction(ctx, kind, orderID, token, i, totalSteps, err)
		}
		util.OrderRowsWrittenTotal.WithLabelValues(kind).Inc()
	}

	if err := s.store.AppendRow(ctx, masterRange, masterRow); err != nil {
		return "", s.failTransaction(ctx, kind, orderID, token, len(detailRows), totalSteps, err)
	}
	util.OrderRowsWrittenTotal.WithLabelValues(kind).Inc()

	s.recordTxn(ctx, redisclient.TxnRecord{
		Token:          token,
		OrderID:        orderID,
		Kind:           kind,
		State:          redisclient.TxnStateCommitted,
		CompletedSteps: totalSteps,
		TotalSteps:     totalSteps,
		StartedAt:      time.Now(),
	})
	return token, nil
}

func (s *OrderService) failTransaction(ctx context.Context, kind, orderID, token string,
	completed, total int, cause error) error {

	util.ConsistencyFailuresTotal.WithLabelValues(kind).Inc()
	util.OrdersFailedTotal.WithLabelValues(kind, "store_error").Inc()

	s.recordTxn(ctx, redisclient.TxnRecord{
		Token:          token,
		OrderID:        orderID,
		Kind:           kind,
		State:          redisclient.TxnStateFailed,
		CompletedSteps: completed,
		TotalSteps:     total,
		StartedAt:      time.Now(),
	})

	s.logger.Error("order transaction partially written",
		zap.String("order_id", orderID),
		zap.String("txn_token", token),
		zap.Int("completed_steps", completed),
		zap.Int("total_steps", total),
		zap.Error(cause))

	return &models.ConsistencyError{
		OrderID:        orderID,
		Token:          token,
		CompletedSteps: completed,
		TotalSteps:     total,
		Err:            cause,
	}
}

func (s *OrderService) recordTxn(ctx context.Context, rec redisclient.TxnRecord) {
	if s.redis == nil {
		return
	}
	if err := s.redis.PutTxn(ctx, rec); err != nil {
		s.logger.Warn("failed to record transaction token", zap.String("token", rec.Token), zap.Error(err))
	}
}

func (s *OrderService) publishOrderCreated(ctx context.Context, kind, orderID, counterpartyID string,
	total float64, lines int, token string) {

	if s.publisher == nil {
		return
	}
	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSalesOrderCreated,
			Timestamp: time.Now(),
		},
		Kind:           kind,
		OrderID:        orderID,
		CounterpartyID: counterpartyID,
		TotalAmount:    total,
		LineCount:      lines,
		TxnToken:       token,
	}
	if kind == OrderKindPurchase {
		event.EventType = models.EventTypePurchaseOrderCreated
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("failed to publish order event", zap.String("order_id", orderID), zap.Error(err))
	}
}

// checkOrderIDUnique reads the master range fresh and rejects an order
// ID that already exists there. Not store-enforced: a concurrent submit
// can still slip through between the read and the append.
func (s *OrderService) checkOrderIDUnique(ctx context.Context, rangeName, idField, orderID string) error {
	records, err := s.store.ReadRange(ctx, rangeName)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Get(idField) == orderID {
			return models.NewValidationError(idField, fmt.Sprintf("order %q already exists", orderID))
		}
	}
	return nil
}

func (s *OrderService) buildSalesDetails(ctx context.Context, req *SubmitSalesOrderRequest, customer models.Customer) ([]models.SalesDetail, error) {
	details := make([]models.SalesDetail, 0, len(req.Items))
	for i, line := range req.Items {
		item, err := s.validateLine(ctx, i, line)
		if err != nil {
			return nil, err
		}
		priced := PriceSalesLine(line)
		details = append(details, models.SalesDetail{
			Date:          req.Date,
			OrderID:       req.OrderID,
			DetailID:      fmt.Sprintf("%s-%d", req.OrderID, i+1),
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			State:         customer.State,
			City:          customer.City,
			InvoiceNum:    req.InvoiceNum,
			ItemID:        item.ID,
			ItemType:      item.Type,
			ItemCategory:  item.Category,
			ItemSubcat:    item.Subcategory,
			ItemName:      item.Name,
			Qty:           line.Qty,
			UnitPrice:     line.UnitCost,
			AmountExclTax: priced.AmountExclTax,
			TaxRate:       line.TaxRate,
			TaxAmount:     priced.TaxAmount,
			AmountInclTax: priced.AmountInclTax,
			Shipping:      priced.Shipping,
			TotalPrice:    priced.TotalPrice,
		})
	}
	return details, nil
}

func (s *OrderService) buildPurchaseDetails(ctx context.Context, req *SubmitPurchaseOrderRequest, supplier models.Supplier) ([]models.PurchaseDetail, error) {
	details := make([]models.PurchaseDetail, 0, len(req.Items))
	for i, line := range req.Items {
		item, err := s.validateLine(ctx, i, line)
		if err != nil {
			return nil, err
		}
		priced := PricePurchaseLine(line)
		details = append(details, models.PurchaseDetail{
			Date:          req.Date,
			OrderID:       req.OrderID,
			DetailID:      fmt.Sprintf("%s-%d", req.OrderID, i+1),
			SupplierID:    supplier.ID,
			SupplierName:  supplier.Name,
			State:         supplier.State,
			City:          supplier.City,
			BillNum:       req.BillNum,
			ItemID:        item.ID,
			ItemType:      item.Type,
			ItemCategory:  item.Category,
			ItemSubcat:    item.Subcategory,
			ItemName:      item.Name,
			Qty:           line.Qty,
			UnitCost:      line.UnitCost,
			AmountExclTax: priced.AmountExclTax,
			TaxRate:       line.TaxRate,
			TaxAmount:     priced.TaxAmount,
			AmountInclTax: priced.AmountInclTax,
			Shipping:      priced.Shipping,
			TotalPrice:    priced.TotalPrice,
		})
	}
	return details, nil
}

func (s *OrderService) validateLine(ctx context.Context, index int, line LineInput) (models.InventoryItem, error) {
	field := fmt.Sprintf("items[%d]", index)
	if line.ItemID == "" {
		return models.InventoryItem{}, models.NewValidationError(field, "item is required")
	}
	if line.Qty <= 0 {
		return models.InventoryItem{}, models.NewValidationError(field, "quantity must be greater than 0")
	}
	if line.UnitCost < 0 {
		return models.InventoryItem{}, models.NewValidationError(field, "unit price must not be negative")
	}

	item, ok, err := s.cache.ItemByID(ctx, line.ItemID)
	if err != nil {
		return models.InventoryItem{}, err
	}
	if !ok {
		return models.InventoryItem{}, models.NewValidationError(field, fmt.Sprintf("unknown item %q", line.ItemID))
	}
	return item, nil
}

func validateHeaderDate(date string) error {
	if _, err := time.Parse(wireDateLayout, date); err != nil {
		return models.NewValidationError("date", "must be YYYY-MM-DD")
	}
	return nil
}

// ListSalesOrders returns the current sales order master rows.
func (s *OrderService) ListSalesOrders(ctx context.Context) ([]models.SalesOrder, error) {
	records, err := s.store.ReadRange(ctx, sheets.RangeSalesOrders)
	if err != nil {
		return nil, err
	}
	out := make([]models.SalesOrder, 0, len(records))
	for _, r := range records {
		out = append(out, sheets.DecodeSalesOrder(r))
	}
	return out, nil
}

// ListPurchaseOrders returns the current purchase order master rows.
func (s *OrderService) ListPurchaseOrders(ctx context.Context) ([]models.PurchaseOrder, error) {
	records, err := s.store.ReadRange(ctx, sheets.RangePurchaseOrders)
	if err != nil {
		return nil, err
	}
	out := make([]models.PurchaseOrder, 0, len(records))
	for _, r := range records {
		out = append(out, sheets.DecodePurchaseOrder(r))
	}
	return out, nil
}
