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

// SupplierRequest defines the structure for supplier creation/update requests
type SupplierRequest struct {
	Name         string `json:"name" validate:"required"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone"`
	IsActive     bool   `json:"is_active"`
}

// ListSuppliers retrieves all suppliers
func ListSuppliers(c echo.Context) error {
	log := logger.FromContext(c)

	var suppliers []model.Supplier
	result := database.GetDB().Find(&suppliers)
	if result.Error != nil {
		log.Error("Failed to list suppliers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve suppliers",
		})
	}

	return c.JSON(http.StatusOK, suppliers)
}

// GetSupplier retrieves a single supplier by ID
func GetSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var supplier model.Supplier
	result := database.GetDB().First(&supplier, id)
	if result.Error != nil {
		log.Error("Supplier not found",
			zap.String("supplier_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supplier not found",
		})
	}

	return c.JSON(http.StatusOK, supplier)
}

// CreateSupplier adds a new supplier
func CreateSupplier(c echo.Context) error {
	log := logger.FromContext(c)

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var count int64
	database.GetDB().Model(&model.Supplier{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		log.Warn("Supplier with this name already exists", zap.String("name", req.Name))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Supplier with this name already exists",
		})
	}

	supplier := model.Supplier{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		IsActive:     req.IsActive,
	}

	result := database.GetDB().Create(&supplier)
	if result.Error != nil {
		log.Error("Failed to create supplier",
			zap.String("name", req.Name),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create supplier",
		})
	}

	log.Info("Supplier created successfully",
		zap.Uint("supplier_id", supplier.ID),
		zap.String("name", supplier.Name))
	return c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier updates an existing supplier
func UpdateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("supplier_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var supplier model.Supplier
	result := database.GetDB().First(&supplier, id)
	if result.Error != nil {
		log.Error("Supplier not found for update",
			zap.String("supplier_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supplier not found",
		})
	}

	supplier.Name = req.Name
	supplier.ContactEmail = req.ContactEmail
	supplier.Phone = req.Phone
	supplier.IsActive = req.IsActive

	result = database.GetDB().Save(&supplier)
	if result.Error != nil {
		log.Error("Failed to update supplier",
			zap.String("supplier_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update supplier",
		})
	}

	log.Info("Supplier updated successfully", zap.String("supplier_id", id))
	return c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier deletes a supplier. Products keep working: their
// supplier reference is set to null instead of blocking the delete.
func DeleteSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting supplier", zap.String("supplier_id", id))

	var supplier model.Supplier
	result := database.GetDB().First(&supplier, id)
	if result.Error != nil {
		log.Warn("Supplier not found for deletion", zap.String("supplier_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supplier not found",
		})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).
			Where("supplier_id = ?", supplier.ID).
			Update("supplier_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&supplier).Error
	})
	if err != nil {
		log.Error("Failed to delete supplier",
			zap.String("supplier_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete supplier",
		})
	}

	log.Info("Supplier deleted successfully", zap.String("supplier_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Supplier deleted successfully",
	})
}
