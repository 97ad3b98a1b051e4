package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"store-service/internal/ledger"
	"store-service/internal/middleware"
	"store-service/internal/model"
	"store-service/pkg/database"
	"store-service/pkg/logger"
	"store-service/prometheus"
)

// OrderRequest defines the structure for order creation requests
type OrderRequest struct {
	BillingAddressID  *uint              `json:"billing_address_id"`
	ShippingAddressID *uint              `json:"shipping_address_id"`
	ShippingCost      float64            `json:"shipping_cost"`
	TaxAmount         float64            `json:"tax_amount"`
	Lines             []ledger.OrderLine `json:"lines" validate:"required"`
}

// TransitionRequest defines the structure for order status change requests
type TransitionRequest struct {
	Status model.OrderStatus `json:"status" validate:"required"`
}

// CreateOrder handles placing a new order for the authenticated customer
func CreateOrder(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new order")

	customerID, ok := middleware.GetCustomerIDFromContext(c)
	if !ok {
		log.Warn("Missing customer_id in context")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "customer identity is required",
		})
	}

	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	log.Info("Order creation request",
		zap.Uint("customer_id", customerID),
		zap.Int("line_count", len(req.Lines)),
		zap.Float64("shipping_cost", req.ShippingCost),
		zap.Float64("tax_amount", req.TaxAmount))

	order, err := ledger.New(database.GetDB()).CreateOrder(c.Request().Context(), ledger.CreateOrderInput{
		CustomerID:        customerID,
		BillingAddressID:  req.BillingAddressID,
		ShippingAddressID: req.ShippingAddressID,
		ShippingCost:      req.ShippingCost,
		TaxAmount:         req.TaxAmount,
		Lines:             req.Lines,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientStock) {
			prometheus.StockReservationFailures.Inc()
		}
		log.Warn("Order creation rejected",
			zap.Uint("customer_id", customerID),
			zap.Error(err))
		return c.JSON(ledgerErrorStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordOrderOperation("create")
	prometheus.OrderValueHistogram.Observe(order.TotalAmount)

	log.Info("Order created successfully",
		zap.Uint("order_id", order.ID),
		zap.Uint("customer_id", order.CustomerID),
		zap.Float64("total_amount", order.TotalAmount),
		zap.Int("item_count", len(order.Items)))
	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles retrieving a single order with items and payments
func GetOrder(c echo.Context) error {
	log := logger.FromContext(c)
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	log.Info("Getting order by ID", zap.Uint("order_id", orderID))

	order, err := ledger.New(database.GetDB()).GetOrder(c.Request().Context(), orderID)
	if err != nil {
		log.Error("Order not found",
			zap.Uint("order_id", orderID),
			zap.Error(err))
		return c.JSON(ledgerErrorStatus(err), echo.Map{"error": "Order not found"})
	}

	return c.JSON(http.StatusOK, order)
}

// ListOrders handles retrieving the authenticated customer's orders
func ListOrders(c echo.Context) error {
	log := logger.FromContext(c)

	customerID, ok := middleware.GetCustomerIDFromContext(c)
	if !ok {
		log.Warn("Missing customer_id in context")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "customer identity is required",
		})
	}

	orders, err := ledger.New(database.GetDB()).ListOrders(c.Request().Context(), customerID)
	if err != nil {
		log.Error("Failed to list orders",
			zap.Uint("customer_id", customerID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve orders",
		})
	}

	log.Info("Orders retrieved successfully",
		zap.Uint("customer_id", customerID),
		zap.Int("count", len(orders)))
	return c.JSON(http.StatusOK, orders)
}

// TransitionOrder handles moving an order to a new lifecycle status
func TransitionOrder(c echo.Context) error {
	log := logger.FromContext(c)
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var req TransitionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.Uint("order_id", orderID),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	log.Info("Order transition request",
		zap.Uint("order_id", orderID),
		zap.String("new_status", string(req.Status)))

	order, err := ledger.New(database.GetDB()).TransitionStatus(c.Request().Context(), orderID, req.Status)
	if err != nil {
		log.Warn("Order transition rejected",
			zap.Uint("order_id", orderID),
			zap.String("new_status", string(req.Status)),
			zap.Error(err))
		return c.JSON(ledgerErrorStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordOrderTransition(string(order.Status))

	log.Info("Order transitioned successfully",
		zap.Uint("order_id", order.ID),
		zap.String("status", string(order.Status)))
	return c.JSON(http.StatusOK, order)
}

// parseID converts a path parameter into a numeric record id
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
