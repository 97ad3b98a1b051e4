package handler

import (
	"net/http"
	"store-service/internal/model"
	"store-service/pkg/database"
	"store-service/pkg/logger"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
	IsActive  bool   `json:"is_active"`
}

// ListCustomers retrieves all customers
func ListCustomers(c echo.Context) error {
	log := logger.FromContext(c)

	var customers []model.Customer
	result := database.GetDB().Find(&customers)
	if result.Error != nil {
		log.Error("Failed to list customers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve customers",
		})
	}

	log.Info("Customers retrieved successfully", zap.Int("count", len(customers)))
	return c.JSON(http.StatusOK, customers)
}

// GetCustomer retrieves a customer with their addresses
func GetCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var customer model.Customer
	result := database.GetDB().Preload("Addresses").First(&customer, id)
	if result.Error != nil {
		log.Error("Customer not found",
			zap.String("customer_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Customer not found",
		})
	}

	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer adds a new customer
func CreateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new customer")

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	// Check if customer with email already exists
	var count int64
	database.GetDB().Model(&model.Customer{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		log.Warn("Customer with this email already exists", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Customer with this email already exists",
		})
	}

	customer := model.Customer{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  req.IsActive,
	}

	result := database.GetDB().Create(&customer)
	if result.Error != nil {
		log.Error("Failed to create customer",
			zap.String("email", req.Email),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create customer",
		})
	}

	log.Info("Customer created successfully",
		zap.String("customer_id", strconv.FormatUint(uint64(customer.ID), 10)),
		zap.String("email", customer.Email))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer updates an existing customer
func UpdateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("customer_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var customer model.Customer
	result := database.GetDB().First(&customer, id)
	if result.Error != nil {
		log.Error("Customer not found for update",
			zap.String("customer_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Customer not found",
		})
	}

	if req.Email != customer.Email {
		var count int64
		database.GetDB().Model(&model.Customer{}).
			Where("email = ? AND id != ?", req.Email, id).
			Count(&count)
		if count > 0 {
			log.Warn("Customer with this email already exists", zap.String("email", req.Email))
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Customer with this email already exists",
			})
		}
	}

	customer.Email = req.Email
	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Phone = req.Phone
	customer.IsActive = req.IsActive

	result = database.GetDB().Save(&customer)
	if result.Error != nil {
		log.Error("Failed to update customer",
			zap.String("customer_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update customer",
		})
	}

	log.Info("Customer updated successfully", zap.String("customer_id", id))
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer deletes a customer. The delete is refused while the
// customer has orders; their addresses and wishlists go with them.
func DeleteCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting customer", zap.String("customer_id", id))

	var customer model.Customer
	result := database.GetDB().First(&customer, id)
	if result.Error != nil {
		log.Warn("Customer not found for deletion", zap.String("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Customer not found",
		})
	}

	// Restricted delete: orders keep the customer alive
	var orderCount int64
	database.GetDB().Model(&model.Order{}).Where("customer_id = ?", customer.ID).Count(&orderCount)
	if orderCount > 0 {
		log.Warn("Customer still referenced by orders",
			zap.String("customer_id", id),
			zap.Int64("order_count", orderCount))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Customer has existing orders and cannot be deleted",
		})
	}

	// Cascade: addresses and wishlists are owned by the customer
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customer.ID).Delete(&model.Address{}).Error; err != nil {
			return err
		}
		var wishlists []model.Wishlist
		if err := tx.Where("customer_id = ?", customer.ID).Find(&wishlists).Error; err != nil {
			return err
		}
		for _, w := range wishlists {
			if err := tx.Where("wishlist_id = ?", w.ID).Delete(&model.WishlistItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("customer_id = ?", customer.ID).Delete(&model.Wishlist{}).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
	if err != nil {
		log.Error("Failed to delete customer",
			zap.String("customer_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete customer",
		})
	}

	log.Info("Customer deleted successfully", zap.String("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Customer deleted successfully",
	})
}
