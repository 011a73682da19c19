package service

import (
	"context"
	"fmt"
	"time"

	"ledger-service/internal/models"
	"ledger-service/internal/refcache"
	"ledger-service/internal/sheets"
	"ledger-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService records receipts (money in, against sales orders) and
// payments (money out, against purchase orders). Each entry is a single
// append; balances are recomputed by the external aggregation job.
type LedgerService struct {
	store     sheets.Store
	cache     *refcache.Cache
	publisher EventPublisher
	logger    *zap.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(store sheets.Store, cache *refcache.Cache, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    util.NamedLogger("ledger"),
	}
}

// RecordReceiptRequest is a money-in entry against a sales order.
type RecordReceiptRequest struct {
	TrxID       string  `json:"trx_id" binding:"required"`
	TrxDate     string  `json:"trx_date" binding:"required"`
	OrderID     string  `json:"so_id" binding:"required"`
	PaymentMode string  `json:"pmt_mode" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
}

// RecordPaymentRequest is a money-out entry against a purchase order.
type RecordPaymentRequest struct {
	TrxID       string  `json:"trx_id" binding:"required"`
	TrxDate     string  `json:"trx_date" binding:"required"`
	OrderID     string  `json:"po_id" binding:"required"`
	PaymentMode string  `json:"pmt_mode" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
}

// RecordReceipt validates the amount against the referenced sales
// order's current balance and appends one receipt row. The balance check
// reads a fresh copy of the order but is still only a client-side gate:
// two concurrent receipts can both pass it before either commits.
func (s *LedgerService) RecordReceipt(ctx context.Context, req *RecordReceiptRequest) (*models.Receipt, error) {
	ctx, span := util.StartSpan(ctx, "LedgerService.RecordReceipt")
	defer span.End()

	if err := validateHeaderDate(req.TrxDate); err != nil {
		util.LedgerEntriesRejectedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}
	if req.Amount <= 0 {
		util.LedgerEntriesRejectedTotal.WithLabelValues("validation").Inc()
		return nil, models.NewValidationError("amount", "must be greater than 0")
	}

	order, err := s.findSalesOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if req.Amount > order.Balance {
		util.LedgerEntriesRejectedTotal.WithLabelValues("over_balance").Inc()
		return nil, models.NewValidationError("amount",
			fmt.Sprintf("amount %.2f exceeds order balance %.2f", req.Amount, order.Balance))
	}

	receipt := models.Receipt{
		TrxDate:      req.TrxDate,
		TrxID:        req.TrxID,
		CustomerID:   order.CustomerID,
		CustomerName: order.CustomerName,
		State:        order.State,
		City:         order.City,
		OrderID:      order.ID,
		InvoiceNum:   order.InvoiceNum,
		PaymentMode:  req.PaymentMode,
		Amount:       req.Amount,
	}

	if err := s.store.AppendRow(ctx, sheets.RangeReceipts, sheets.ReceiptRow(receipt)); err != nil {
		return nil, err
	}

	util.ReceiptsRecordedTotal.Inc()
	s.logger.Info("receipt recorded",
		zap.String("trx_id", receipt.TrxID),
		zap.String("so_id", receipt.OrderID),
		zap.Float64("amount", receipt.Amount))

	s.publishLedgerEntry(ctx, models.EventTypeReceiptRecorded, receipt.TrxID, receipt.OrderID, receipt.CustomerID, receipt.Amount)
	s.cache.Invalidate(ctx)
	return &receipt, nil
}

// RecordPayment validates the amount against the referenced purchase
// order's current balance and appends one payment row. Same race window
// as RecordReceipt.
func (s *LedgerService) RecordPayment(ctx context.Context, req *RecordPaymentRequest) (*models.Payment, error) {
	ctx, span := util.StartSpan(ctx, "LedgerService.RecordPayment")
	defer span.End()

	if err := validateHeaderDate(req.TrxDate); err != nil {
		util.LedgerEntriesRejectedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}
	if req.Amount <= 0 {
		util.LedgerEntriesRejectedTotal.WithLabelValues("validation").Inc()
		return nil, models.NewValidationError("amount", "must be greater than 0")
	}

	order, err := s.findPurchaseOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if req.Amount > order.Balance {
		util.LedgerEntriesRejectedTotal.WithLabelValues("over_balance").Inc()
		return nil, models.NewValidationError("amount",
			fmt.Sprintf("amount %.2f exceeds order balance %.2f", req.Amount, order.Balance))
	}

	payment := models.Payment{
		TrxDate:      req.TrxDate,
		TrxID:        req.TrxID,
		SupplierID:   order.SupplierID,
		SupplierName: order.SupplierName,
		State:        order.State,
		City:         order.City,
		OrderID:      order.ID,
		BillNum:      order.BillNum,
		PaymentMode:  req.PaymentMode,
		Amount:       req.Amount,
	}

	if err := s.store.AppendRow(ctx, sheets.RangePayments, sheets.PaymentRow(payment)); err != nil {
		return nil, err
	}

	util.PaymentsRecordedTotal.Inc()
	s.logger.Info("payment recorded",
		zap.String("trx_id", payment.TrxID),
		zap.String("po_id", payment.OrderID),
		zap.Float64("amount", payment.Amount))

	s.publishLedgerEntry(ctx, models.EventTypePaymentRecorded, payment.TrxID, payment.OrderID, payment.SupplierID, payment.Amount)
	s.cache.Invalidate(ctx)
	return &payment, nil
}

// ListReceipts returns all receipt rows.
func (s *LedgerService) ListReceipts(ctx context.Context) ([]models.Receipt, error) {
	records, err := s.store.ReadRange(ctx, sheets.RangeReceipts)
	if err != nil {
		return nil, err
	}
	out := make([]models.Receipt, 0, len(records))
	for _, r := range records {
		out = append(out, sheets.DecodeReceipt(r))
	}
	return out, nil
}

// ListPayments returns all payment rows.
func (s *LedgerService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	records, err := s.store.ReadRange(ctx, sheets.RangePayments)
	if err != nil {
		return nil, err
	}
	out := make([]models.Payment, 0, len(records))
	for _, r := range records {
		out = append(out, sheets.DecodePayment(r))
	}
	return out, nil
}

func (s *LedgerService) findSalesOrder(ctx context.Context, orderID string) (models.SalesOrder, error) {
	records, err := s.store.ReadRange(ctx, sheets.RangeSalesOrders)
	if err != nil {
		return models.SalesOrder{}, err
	}
	for _, r := range records {
		if r.Get("SO ID") == orderID {
			return sheets.DecodeSalesOrder(r), nil
		}
	}
	util.LedgerEntriesRejectedTotal.WithLabelValues("validation").Inc()
	return models.SalesOrder{}, models.NewValidationError("so_id", fmt.Sprintf("unknown sales order %q", orderID))
}

func (s *LedgerService) findPurchaseOrder(ctx context.Context, orderID string) (models.PurchaseOrder, error) {
	records, err := s.store.ReadRange(ctx, sheets.RangePurchaseOrders)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	for _, r := range records {
		if r.Get("PO ID") == orderID {
			return sheets.DecodePurchaseOrder(r), nil
		}
	}
	util.LedgerEntriesRejectedTotal.WithLabelValues("validation").Inc()
	return models.PurchaseOrder{}, models.NewValidationError("po_id", fmt.Sprintf("unknown purchase order %q", orderID))
}

func (s *LedgerService) publishLedgerEntry(ctx context.Context, eventType, trxID, orderID, counterpartyID string, amount float64) {
	if s.publisher == nil {
		return
	}
	event := &models.LedgerEntryEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		TrxID:          trxID,
		OrderID:        orderID,
		CounterpartyID: counterpartyID,
		Amount:         amount,
	}
	if err := s.publisher.PublishLedgerEntry(ctx, event); err != nil {
		s.logger.Error("failed to publish ledger event", zap.String("trx_id", trxID), zap.Error(err))
	}
}
