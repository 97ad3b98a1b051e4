package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"store-service/internal/ledger"
	"store-service/internal/model"
	"store-service/pkg/database"
	"store-service/pkg/logger"
	"store-service/prometheus"
)

// PaymentRequest defines the structure for payment recording requests
type PaymentRequest struct {
	Amount         float64            `json:"amount" validate:"required,gt=0"`
	Method         string             `json:"method" validate:"required"`
	Status         model.PaymentState `json:"status"`
	TransactionRef string             `json:"transaction_ref"`
}

// RefundRequest defines the structure for refund requests
type RefundRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// RecordPayment handles recording a payment against an order
func RecordPayment(c echo.Context) error {
	log := logger.FromContext(c)
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.Uint("order_id", orderID),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	log.Info("Payment request",
		zap.Uint("order_id", orderID),
		zap.Float64("amount", req.Amount),
		zap.String("method", req.Method),
		zap.String("status", string(req.Status)))

	payment, err := ledger.New(database.GetDB()).RecordPayment(c.Request().Context(), orderID, ledger.PaymentInput{
		Amount:         req.Amount,
		Method:         req.Method,
		Status:         req.Status,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		log.Warn("Payment rejected",
			zap.Uint("order_id", orderID),
			zap.Float64("amount", req.Amount),
			zap.Error(err))
		return c.JSON(ledgerErrorStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordPaymentOperation("record", string(payment.Status), payment.Amount)

	log.Info("Payment recorded successfully",
		zap.Uint("payment_id", payment.ID),
		zap.Uint("order_id", payment.OrderID),
		zap.Float64("amount", payment.Amount),
		zap.String("status", string(payment.Status)),
		zap.String("transaction_ref", payment.TransactionRef))
	return c.JSON(http.StatusCreated, payment)
}

// RefundPayment handles refunding a completed payment
func RefundPayment(c echo.Context) error {
	log := logger.FromContext(c)
	paymentID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}

	var req RefundRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.Uint("payment_id", paymentID),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	log.Info("Refund request",
		zap.Uint("payment_id", paymentID),
		zap.Float64("amount", req.Amount))

	refund, err := ledger.New(database.GetDB()).RefundPayment(c.Request().Context(), paymentID, req.Amount)
	if err != nil {
		log.Warn("Refund rejected",
			zap.Uint("payment_id", paymentID),
			zap.Float64("amount", req.Amount),
			zap.Error(err))
		return c.JSON(ledgerErrorStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordPaymentOperation("refund", string(refund.Status), refund.Amount)

	log.Info("Refund recorded successfully",
		zap.Uint("refund_id", refund.ID),
		zap.Uint("order_id", refund.OrderID),
		zap.Float64("amount", refund.Amount))
	return c.JSON(http.StatusCreated, refund)
}

// ListPayments handles retrieving all payments of an order
func ListPayments(c echo.Context) error {
	log := logger.FromContext(c)
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var payments []model.Payment
	result := database.GetDB().Where("order_id = ?", orderID).Order("id").Find(&payments)
	if result.Error != nil {
		log.Error("Failed to list payments",
			zap.Uint("order_id", orderID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve payments",
		})
	}

	log.Info("Payments retrieved successfully",
		zap.Uint("order_id", orderID),
		zap.Int("count", len(payments)))
	return c.JSON(http.StatusOK, payments)
}
