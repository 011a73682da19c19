package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ledger-service/internal/models"
	"ledger-service/internal/service"
	"ledger-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService     *service.OrderService
	ledgerService    *service.LedgerService
	catalogService   *service.CatalogService
	dashboardService *service.DashboardService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	ledgerService *service.LedgerService,
	catalogService *service.CatalogService,
	dashboardService *service.DashboardService,
) *Handler {
	return &Handler{
		orderService:     orderService,
		ledgerService:    ledgerService,
		catalogService:   catalogService,
		dashboardService: dashboardService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/customers", h.listCustomers)
		v1.POST("/customers", h.createCustomer)
		v1.PUT("/customers/:id", h.updateCustomer)
		v1.DELETE("/customers/:id", h.deleteCustomer)

		v1.GET("/suppliers", h.listSuppliers)
		v1.POST("/suppliers", h.createSupplier)
		v1.PUT("/suppliers/:id", h.updateSupplier)
		v1.DELETE("/suppliers/:id", h.deleteSupplier)

		v1.GET("/inventory", h.listInventory)
		v1.POST("/inventory", h.createInventoryItem)
		v1.PUT("/inventory/:id", h.updateInventoryItem)
		v1.DELETE("/inventory/:id", h.deleteInventoryItem)

		v1.GET("/sales", h.listSalesOrders)
		v1.POST("/sales", h.submitSalesOrder)
		v1.GET("/purchases", h.listPurchaseOrders)
		v1.POST("/purchases", h.submitPurchaseOrder)

		v1.GET("/receipts", h.listReceipts)
		v1.POST("/receipts", h.recordReceipt)
		v1.GET("/payments", h.listPayments)
		v1.POST("/payments", h.recordPayment)

		v1.GET("/dashboard", h.dashboard)
		v1.GET("/dimensions", h.dimensions)
		v1.GET("/ids/:entity", h.generateID)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps domain errors onto HTTP statuses. Validation is the
// caller's fault, rate limiting asks for a retry, a consistency failure
// names the reconciliation token, anything else from the store is a
// bad gateway.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	var rateLimitErr *models.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":  "Store quota exceeded, retry later",
			"detail": rateLimitErr.Error(),
		})
		return
	}

	var consistencyErr *models.ConsistencyError
	if errors.As(err, &consistencyErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":           "Order partially written, manual reconciliation required",
			"order_id":        consistencyErr.OrderID,
			"txn_token":       consistencyErr.Token,
			"completed_steps": consistencyErr.CompletedSteps,
			"total_steps":     consistencyErr.TotalSteps,
		})
		return
	}

	var transportErr *models.TransportError
	if errors.As(err, &transportErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "Store request failed",
			"detail": transportErr.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": err.Error(),
	})
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.catalogService.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *Handler) createCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	customer, err := h.catalogService.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalogService.UpdateCustomer(c.Request.Context(), c.Param("id"), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	if err := h.catalogService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listSuppliers(c *gin.Context) {
	suppliers, err := h.catalogService.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}

func (h *Handler) createSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	supplier, err := h.catalogService.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *Handler) updateSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalogService.UpdateSupplier(c.Request.Context(), c.Param("id"), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteSupplier(c *gin.Context) {
	if err := h.catalogService.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listInventory(c *gin.Context) {
	items, err := h.catalogService.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) createInventoryItem(c *gin.Context) {
	var req service.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	item, err := h.catalogService.CreateInventoryItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateInventoryItem(c *gin.Context) {
	var req service.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalogService.UpdateInventoryItem(c.Request.Context(), c.Param("id"), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteInventoryItem(c *gin.Context) {
	if err := h.catalogService.DeleteInventoryItem(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listSalesOrders(c *gin.Context) {
	orders, err := h.orderService.ListSalesOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) submitSalesOrder(c *gin.Context) {
	var req service.SubmitSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.orderService.SubmitSalesOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listPurchaseOrders(c *gin.Context) {
	orders, err := h.orderService.ListPurchaseOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) submitPurchaseOrder(c *gin.Context) {
	var req service.SubmitPurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.orderService.SubmitPurchaseOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listReceipts(c *gin.Context) {
	receipts, err := h.ledgerService.ListReceipts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}

func (h *Handler) recordReceipt(c *gin.Context) {
	var req service.RecordReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	receipt, err := h.ledgerService.RecordReceipt(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *Handler) listPayments(c *gin.Context) {
	payments, err := h.ledgerService.ListPayments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (h *Handler) recordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	payment, err := h.ledgerService.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.dashboardService.Build(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) dimensions(c *gin.Context) {
	opts, err := h.catalogService.Options(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *Handler) generateID(c *gin.Context) {
	id, err := h.catalogService.GenerateID(c.Request.Context(), c.Param("entity"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
