package handler

import (
	"net/http"
	"store-service/internal/model"
	"store-service/pkg/database"
	"store-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddressRequest defines the structure for address creation/update requests
type AddressRequest struct {
	CustomerID uint   `json:"customer_id" validate:"required"`
	Label      string `json:"label"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country" validate:"required"`
	IsDefault  bool   `json:"is_default"`
}

// ListAddresses retrieves the addresses of a customer
func ListAddresses(c echo.Context) error {
	log := logger.FromContext(c)
	customerID := c.Param("customer_id")

	var addresses []model.Address
	result := database.GetDB().Where("customer_id = ?", customerID).Find(&addresses)
	if result.Error != nil {
		log.Error("Failed to list addresses",
			zap.String("customer_id", customerID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve addresses",
		})
	}

	return c.JSON(http.StatusOK, addresses)
}

// CreateAddress adds an address for a customer
func CreateAddress(c echo.Context) error {
	log := logger.FromContext(c)

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	// The owning customer must exist
	var count int64
	database.GetDB().Model(&model.Customer{}).Where("id = ?", req.CustomerID).Count(&count)
	if count == 0 {
		log.Warn("Customer does not exist", zap.Uint("customer_id", req.CustomerID))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Customer does not exist",
		})
	}

	address := model.Address{
		CustomerID: req.CustomerID,
		Label:      req.Label,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		Region:     req.Region,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}

	result := database.GetDB().Create(&address)
	if result.Error != nil {
		log.Error("Failed to create address",
			zap.Uint("customer_id", req.CustomerID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create address",
		})
	}

	log.Info("Address created successfully",
		zap.Uint("address_id", address.ID),
		zap.Uint("customer_id", address.CustomerID))
	return c.JSON(http.StatusCreated, address)
}

// UpdateAddress updates an existing address
func UpdateAddress(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("address_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var address model.Address
	result := database.GetDB().First(&address, id)
	if result.Error != nil {
		log.Error("Address not found for update",
			zap.String("address_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Address not found",
		})
	}

	// Ownership never moves between customers
	address.Label = req.Label
	address.Line1 = req.Line1
	address.Line2 = req.Line2
	address.City = req.City
	address.Region = req.Region
	address.PostalCode = req.PostalCode
	address.Country = req.Country
	address.IsDefault = req.IsDefault

	result = database.GetDB().Save(&address)
	if result.Error != nil {
		log.Error("Failed to update address",
			zap.String("address_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update address",
		})
	}

	log.Info("Address updated successfully", zap.String("address_id", id))
	return c.JSON(http.StatusOK, address)
}

// DeleteAddress deletes an address. Orders referencing it keep
// working: their billing/shipping reference is set to null instead of
// blocking the delete.
func DeleteAddress(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting address", zap.String("address_id", id))

	var address model.Address
	result := database.GetDB().First(&address, id)
	if result.Error != nil {
		log.Warn("Address not found for deletion", zap.String("address_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Address not found",
		})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Order{}).
			Where("billing_address_id = ?", address.ID).
			Update("billing_address_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Order{}).
			Where("shipping_address_id = ?", address.ID).
			Update("shipping_address_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&address).Error
	})
	if err != nil {
		log.Error("Failed to delete address",
			zap.String("address_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete address",
		})
	}

	log.Info("Address deleted successfully", zap.String("address_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Address deleted successfully",
	})
}
