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

// CatalogService manages customers, suppliers and inventory items:
// create with generated IDs and zeroed aggregates, edit of the
// non-derived column span, and guarded deletes.
type CatalogService struct {
	store     sheets.Store
	cache     *refcache.Cache
	idgen     *IDGenerator
	publisher EventPublisher
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store sheets.Store, cache *refcache.Cache, idgen *IDGenerator, publisher EventPublisher) *CatalogService {
	return &CatalogService{
		store:     store,
		cache:     cache,
		idgen:     idgen,
		publisher: publisher,
		logger:    util.NamedLogger("catalog"),
	}
}

// CustomerRequest carries the editable customer fields. ID is generated
// when blank on create.
type CustomerRequest struct {
	ID      string `json:"customer_id"`
	Name    string `json:"customer_name" binding:"required"`
	Contact string `json:"customer_contact"`
	Email   string `json:"customer_email"`
	State   string `json:"state" binding:"required"`
	City    string `json:"city" binding:"required"`
	Address string `json:"customer_address"`
}

// SupplierRequest carries the editable supplier fields.
type SupplierRequest struct {
	ID      string `json:"supplier_id"`
	Name    string `json:"supplier_name" binding:"required"`
	Contact string `json:"supplier_contact"`
	Email   string `json:"supplier_email"`
	State   string `json:"state" binding:"required"`
	City    string `json:"city" binding:"required"`
	Address string `json:"supplier_address"`
}

// InventoryItemRequest carries the editable item fields. The derived
// quantity columns are never accepted from callers.
type InventoryItemRequest struct {
	ID           string  `json:"item_id"`
	Type         string  `json:"item_type" binding:"required"`
	Category     string  `json:"item_category" binding:"required"`
	Subcategory  string  `json:"item_subcategory" binding:"required"`
	Name         string  `json:"item_name" binding:"required"`
	ReorderLevel float64 `json:"reorder_level"`
}

// ListCustomers returns the cached customer collection.
func (s *CatalogService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.cache.Customers(ctx)
}

// CreateCustomer appends a customer row with zeroed aggregates.
func (s *CatalogService) CreateCustomer(ctx context.Context, req *CustomerRequest) (*models.Customer, error) {
	customers, err := s.cache.Customers(ctx)
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		ids := make([]string, len(customers))
		for i, c := range customers {
			ids[i] = c.ID
		}
		id = s.idgen.Generate(models.PrefixCustomer, IDSet(ids))
	} else {
		for _, c := range customers {
			if c.ID == id {
				return nil, models.NewValidationError("customer_id", fmt.Sprintf("customer %q already exists", id))
			}
		}
	}

	customer := models.Customer{
		ID:      id,
		Name:    req.Name,
		Contact: req.Contact,
		Email:   req.Email,
		State:   req.State,
		City:    req.City,
		Address: req.Address,
	}
	if err := s.store.AppendRow(ctx, sheets.RangeCustomers, sheets.CustomerRow(customer)); err != nil {
		return nil, err
	}

	s.afterCatalogWrite(ctx, "customers", id, "created", refcache.KindCustomers, refcache.KindDimensions)
	return &customer, nil
}

// UpdateCustomer rewrites the editable span (columns A-G) of the row
// matching id. The aggregate columns are left for the external job.
func (s *CatalogService) UpdateCustomer(ctx context.Context, id string, req *CustomerRequest) error {
	records, err := s.store.ReadRange(ctx, sheets.RangeCustomers)
	if err != nil {
		return err
	}
	rowNum := sheets.FindRowNumber(records, "Customer ID", id)
	if rowNum == 0 {
		return models.NewValidationError("customer_id", fmt.Sprintf("customer %q not found", id))
	}

	customer := models.Customer{
		ID:      id,
		Name:    req.Name,
		Contact: req.Contact,
		Email:   req.Email,
		State:   req.State,
		City:    req.City,
		Address: req.Address,
	}
	cellRange := fmt.Sprintf("%s!A%d:G%d", sheets.SheetCustomers, rowNum, rowNum)
	if err := s.store.UpdateRow(ctx, cellRange, sheets.CustomerEditRow(customer)); err != nil {
		return err
	}

	s.afterCatalogWrite(ctx, "customers", id, "updated", refcache.KindCustomers, refcache.KindDimensions)
	return nil
}

// DeleteCustomer removes a customer row. Rejected while the cached
// Balance Receivable is above zero.
func (s *CatalogService) DeleteCustomer(ctx context.Context, id string) error {
	records, err := s.store.ReadRange(ctx, sheets.RangeCustomers)
	if err != nil {
		return err
	}
	rowNum := sheets.FindRowNumber(records, "Customer ID", id)
	if rowNum == 0 {
		return models.NewValidationError("customer_id", fmt.Sprintf("customer %q not found", id))
	}
	customer := sheets.DecodeCustomer(records[rowNum-2])
	if customer.BalanceReceivable > 0 {
		return models.NewValidationError("customer_id",
			fmt.Sprintf("cannot delete customer with outstanding balance %.2f", customer.BalanceReceivable))
	}

	if err := s.store.DeleteRow(ctx, sheets.SheetCustomers, rowNum); err != nil {
		return err
	}

	s.afterCatalogWrite(ctx, "customers", id, "deleted", refcache.KindCustomers, refcache.KindDimensions)
	return nil
}

// ListSuppliers returns the cached supplier collection.
func (s *CatalogService) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return s.cache.Suppliers(ctx)
}

// CreateSupplier appends a supplier row with zeroed aggregates.
func (s *CatalogService) CreateSupplier(ctx context.Context, req *SupplierRequest) (*models.Supplier, error) {
	suppliers, err := s.cache.Suppliers(ctx)
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		ids := make([]string, len(suppliers))
		for i, sp := range suppliers {
			ids[i] = sp.ID
		}
		id = s.idgen.Generate(models.PrefixSupplier, IDSet(ids))
	} else {
		for _, sp := range suppliers {
			if sp.ID == id {
				return nil, models.NewValidationError("supplier_id", fmt.Sprintf("supplier %q already exists", id))
			}
		}
	}

	supplier := models.Supplier{
		ID:      id,
		Name:    req.Name,
		Contact: req.Contact,
		Email:   req.Email,
		State:   req.State,
		City:    req.City,
		Address: req.Address,
	}
	if err := s.store.AppendRow(ctx, sheets.RangeSuppliers, sheets.SupplierRow(supplier)); err != nil {
		return nil, err
	}

	s.afterCatalogWrite(ctx, "suppliers", id, "created", refcache.KindSuppliers, refcache.KindDimensions)
	return &supplier, nil
}

// UpdateSupplier rewrites the editable span (columns A-G) of the row
// matching id.
func (s *CatalogService) UpdateSupplier(ctx context.Context, id string, req *SupplierRequest) error {
	records, err := s.store.ReadRange(ctx, sheets.RangeSuppliers)
	if err != nil {
		return err
	}
	rowNum := sheets.FindRowNumber(records, "Supplier ID", id)
	if rowNum == 0 {
		return models.NewValidationError("supplier_id", fmt.Sprintf("supplier %q not found", id))
	}

	supplier := models.Supplier{
		ID:      id,
		Name:    req.Name,
		Contact: req.Contact,
		Email:   req.Email,
		State:   req.State,
		City:    req.City,
		Address: req.Address,
	}
	cellRange := fmt.Sprintf("%s!A%d:G%d", sheets.SheetSuppliers, rowNum, rowNum)
	if err := s.store.UpdateRow(ctx, cellRange, sheets.SupplierEditRow(supplier)); err != nil {
		return err
	}

	s.afterCatalogWrite(ctx, "suppliers", id, "updated", refcache.KindSuppliers, refcache.KindDimensions)
	return nil
}

// DeleteSupplier removes a supplier row. Rejected while the cached
// Balance Payable is above zero.
func (s *CatalogService) DeleteSupplier(ctx context.Context, id string) error {
	records, err := s.store.ReadRange(ctx, sheets.RangeSuppliers)
	if err != nil {
		return err
	}
	rowNum := sheets.FindRowNumber(records, "Supplier ID", id)
	if rowNum == 0 {
		return models.NewValidationError("supplier_id", fmt.Sprintf("supplier %q not found", id))
	}
	supplier := sheets.DecodeSupplier(records[rowNum-2])
	if supplier.BalancePayable > 0 {
		return models.NewValidationError("supplier_id",
			fmt.Sprintf("cannot delete supplier with outstanding balance %.2f", supplier.BalancePayable))
	}

	if err := s.store.DeleteRow(ctx, sheets.SheetSuppliers, rowNum); err != nil {
		return err
	}

	s.afterCatalogWrite(ctx, "suppliers", id, "deleted", refcache.KindSuppliers, refcache.KindDimensions)
	return nil
}

// ListInventory returns the cached inventory collection.
func (s *CatalogService) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	return s.cache.Inventory(ctx)
}

// CreateInventoryItem appends an item row with zeroed quantities and
// Reorder Required "No".
func (s *CatalogService) CreateInventoryItem(ctx context.Context, req *InventoryItemRequest) (*models.InventoryItem, error) {
	items, err := s.cache.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		id = s.idgen.Generate(models.PrefixInventoryItem, IDSet(ids))
	} else {
		for _, it := range items {
			if it.ID == id {
				return nil, models.NewValidationError("item_id", fmt.Sprintf("item %q already exists", id))
			}
		}
	}

	item := models.InventoryItem{
		ID:              id,
		Type:            req.Type,
		Category:        req.Category,
		Subcategory:     req.Subcategory,
		Name:            req.Name,
		ReorderLevel:    req.ReorderLevel,
		ReorderRequired: "No",
	}
	if err := s.store.AppendRow(ctx, sheets.RangeInventory, sheets.InventoryItemRow(item)); err != nil {
		return nil, err
	}

	s.afterCatalogWrite(ctx, "inventory", id, "created", refcache.KindInventory, refcache.KindDimensions)
	return &item, nil
}

// UpdateInventoryItem rewrites columns A-I of the row matching id. The
// derived quantities are copied from the current row, not from the
// request.
func (s *CatalogService) UpdateInventoryItem(ctx context.Context, id string, req *InventoryItemRequest) error {
	records, err := s.store.ReadRange(ctx, sheets.RangeInventory)
	if err != nil {
		return err
	}
	rowNum := sheets.FindRowNumber(records, "Item ID", id)
	if rowNum == 0 {
		return models.NewValidationError("item_id", fmt.Sprintf("item %q not found", id))
	}
	current := sheets.DecodeInventoryItem(records[rowNum-2])

	item := models.InventoryItem{
		ID:           id,
		Type:         req.Type,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		Name:         req.Name,
		QtyPurchased: current.QtyPurchased,
		QtySold:      current.QtySold,
		RemainingQty: current.RemainingQty,
		ReorderLevel: req.ReorderLevel,
	}
	cellRange := fmt.Sprintf("%s!A%d:I%d", sheets.SheetInventory, rowNum, rowNum)
	if err := s.store.UpdateRow(ctx, cellRange, sheets.InventoryItemEditRow(item)); err != nil {
		return err
	}

	s.afterCatalogWrite(ctx, "inventory", id, "updated", refcache.KindInventory, refcache.KindDimensions)
	return nil
}

// DeleteInventoryItem removes an item row. Rejected while Remaining QTY
// is above zero.
func (s *CatalogService) DeleteInventoryItem(ctx context.Context, id string) error {
	records, err := s.store.ReadRange(ctx, sheets.RangeInventory)
	if err != nil {
		return err
	}
	rowNum := sheets.FindRowNumber(records, "Item ID", id)
	if rowNum == 0 {
		return models.NewValidationError("item_id", fmt.Sprintf("item %q not found", id))
	}
	item := sheets.DecodeInventoryItem(records[rowNum-2])
	if item.RemainingQty > 0 {
		return models.NewValidationError("item_id",
			fmt.Sprintf("cannot delete item with remaining quantity %.0f", item.RemainingQty))
	}

	if err := s.store.DeleteRow(ctx, sheets.SheetInventory, rowNum); err != nil {
		return err
	}

	s.afterCatalogWrite(ctx, "inventory", id, "deleted", refcache.KindInventory, refcache.KindDimensions)
	return nil
}

// OptionSets are the distinct selection values derived from the
// dimension table, in first-encountered order, blanks dropped.
type OptionSets struct {
	States            []string `json:"states"`
	Cities            []string `json:"cities"`
	ItemTypes         []string `json:"item_types"`
	ItemCategories    []string `json:"item_categories"`
	ItemSubcategories []string `json:"item_subcategories"`
	PaymentModes      []string `json:"payment_modes"`
}

// Options builds the selection option sets from the dimension rows.
func (s *CatalogService) Options(ctx context.Context) (*OptionSets, error) {
	dims, err := s.cache.Dimensions(ctx)
	if err != nil {
		return nil, err
	}

	out := &OptionSets{}
	for _, d := range dims {
		out.States = appendDistinct(out.States, d.State)
		out.Cities = appendDistinct(out.Cities, d.City)
		out.ItemTypes = appendDistinct(out.ItemTypes, d.ItemType)
		out.ItemCategories = appendDistinct(out.ItemCategories, d.ItemCat)
		out.ItemSubcategories = appendDistinct(out.ItemSubcategories, d.ItemSubcat)
		out.PaymentModes = appendDistinct(out.PaymentModes, d.PaymentMode)
	}
	return out, nil
}

func appendDistinct(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// GenerateID mints a fresh ID for the named entity, checked against the
// currently loaded ID set. Supplier and inventory IDs share the "P"
// prefix, as the source system does.
func (s *CatalogService) GenerateID(ctx context.Context, entity string) (string, error) {
	switch entity {
	case "customers":
		customers, err := s.cache.Customers(ctx)
		if err != nil {
			return "", err
		}
		ids := make([]string, len(customers))
		for i, c := range customers {
			ids[i] = c.ID
		}
		return s.idgen.Generate(models.PrefixCustomer, IDSet(ids)), nil
	case "suppliers":
		suppliers, err := s.cache.Suppliers(ctx)
		if err != nil {
			return "", err
		}
		ids := make([]string, len(suppliers))
		for i, sp := range suppliers {
			ids[i] = sp.ID
		}
		return s.idgen.Generate(models.PrefixSupplier, IDSet(ids)), nil
	case "inventory":
		items, err := s.cache.Inventory(ctx)
		if err != nil {
			return "", err
		}
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		return s.idgen.Generate(models.PrefixInventoryItem, IDSet(ids)), nil
	case "sales":
		return s.generateFromRange(ctx, sheets.RangeSalesOrders, "SO ID", models.PrefixSalesOrder)
	case "purchases":
		return s.generateFromRange(ctx, sheets.RangePurchaseOrders, "PO ID", models.PrefixPurchaseOrder)
	case "receipts":
		return s.generateFromRange(ctx, sheets.RangeReceipts, "Trx ID", models.PrefixReceipt)
	case "payments":
		return s.generateFromRange(ctx, sheets.RangePayments, "Trx ID", models.PrefixPayment)
	default:
		return "", models.NewValidationError("entity", fmt.Sprintf("unknown entity %q", entity))
	}
}

func (s *CatalogService) generateFromRange(ctx context.Context, rangeName, idField, prefix string) (string, error) {
	records, err := s.store.ReadRange(ctx, rangeName)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.Get(idField))
	}
	return s.idgen.Generate(prefix, IDSet(ids)), nil
}

func (s *CatalogService) afterCatalogWrite(ctx context.Context, entity, id, action string, kinds ...refcache.Kind) {
	s.cache.Invalidate(ctx, kinds...)
	s.logger.Info("catalog changed",
		zap.String("entity", entity),
		zap.String("id", id),
		zap.String("action", action))

	if s.publisher == nil {
		return
	}
	event := &models.CatalogChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCatalogChanged,
			Timestamp: time.Now(),
		},
		Entity:   entity,
		EntityID: id,
		Action:   action,
	}
	if err := s.publisher.PublishCatalogChanged(ctx, event); err != nil {
		s.logger.Error("failed to publish catalog event", zap.String("id", id), zap.Error(err))
	}
}
