package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"store-service/internal/ledger"
	"store-service/internal/model"
	"store-service/pkg/database"
	"store-service/pkg/logger"
	"store-service/prometheus"
)

// ReplenishRequest defines the structure for stock replenishment requests
type ReplenishRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// GetInventory handles retrieving the inventory record of a product
func GetInventory(c echo.Context) error {
	log := logger.FromContext(c)
	productID, err := parseID(c.Param("product_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var inv model.Inventory
	result := database.GetDB().Where("product_id = ?", productID).First(&inv)
	if result.Error != nil {
		log.Error("Inventory record not found",
			zap.Uint("product_id", productID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Inventory record not found",
		})
	}

	return c.JSON(http.StatusOK, inv)
}

// ReplenishInventory handles adding received stock for a product
func ReplenishInventory(c echo.Context) error {
	log := logger.FromContext(c)
	productID, err := parseID(c.Param("product_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req ReplenishRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.Uint("product_id", productID),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	log.Info("Replenishing inventory",
		zap.Uint("product_id", productID),
		zap.Int("quantity", req.Quantity))

	inv, err := ledger.New(database.GetDB()).Replenish(c.Request().Context(), productID, req.Quantity)
	if err != nil {
		log.Warn("Replenishment rejected",
			zap.Uint("product_id", productID),
			zap.Int("quantity", req.Quantity),
			zap.Error(err))
		return c.JSON(ledgerErrorStatus(err), echo.Map{"error": err.Error()})
	}

	var product model.Product
	if database.GetDB().First(&product, productID).Error == nil {
		prometheus.UpdateProductInventory(
			strconv.FormatUint(uint64(productID), 10),
			product.SKU,
			float64(inv.QuantityOnHand))
	}

	log.Info("Inventory replenished successfully",
		zap.Uint("product_id", productID),
		zap.Int("quantity_on_hand", inv.QuantityOnHand))
	return c.JSON(http.StatusOK, inv)
}

// ListLowStock handles listing inventory at or below its reorder level
func ListLowStock(c echo.Context) error {
	log := logger.FromContext(c)

	records, err := ledger.New(database.GetDB()).LowStock(c.Request().Context())
	if err != nil {
		log.Error("Failed to list low stock inventory", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve inventory",
		})
	}

	log.Info("Low stock inventory retrieved", zap.Int("count", len(records)))
	return c.JSON(http.StatusOK, records)
}
