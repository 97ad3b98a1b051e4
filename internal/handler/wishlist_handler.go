package handler

import (
	"net/http"
	"store-service/internal/middleware"
	"store-service/internal/model"
	"store-service/pkg/database"
	"store-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WishlistRequest defines the structure for wishlist creation requests
type WishlistRequest struct {
	Name string `json:"name" validate:"required"`
}

// WishlistItemRequest defines the structure for wishlist item requests
type WishlistItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}

// ListWishlists retrieves the authenticated customer's wishlists
func ListWishlists(c echo.Context) error {
	log := logger.FromContext(c)

	customerID, ok := middleware.GetCustomerIDFromContext(c)
	if !ok {
		log.Warn("Missing customer_id in context")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "customer identity is required",
		})
	}

	var wishlists []model.Wishlist
	result := database.GetDB().Preload("Items").Where("customer_id = ?", customerID).Find(&wishlists)
	if result.Error != nil {
		log.Error("Failed to list wishlists",
			zap.Uint("customer_id", customerID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve wishlists",
		})
	}

	return c.JSON(http.StatusOK, wishlists)
}

// CreateWishlist adds a wishlist for the authenticated customer
func CreateWishlist(c echo.Context) error {
	log := logger.FromContext(c)

	customerID, ok := middleware.GetCustomerIDFromContext(c)
	if !ok {
		log.Warn("Missing customer_id in context")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "customer identity is required",
		})
	}

	var req WishlistRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	wishlist := model.Wishlist{
		CustomerID: customerID,
		Name:       req.Name,
	}

	result := database.GetDB().Create(&wishlist)
	if result.Error != nil {
		log.Error("Failed to create wishlist",
			zap.Uint("customer_id", customerID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create wishlist",
		})
	}

	log.Info("Wishlist created successfully",
		zap.Uint("wishlist_id", wishlist.ID),
		zap.Uint("customer_id", customerID))
	return c.JSON(http.StatusCreated, wishlist)
}

// DeleteWishlist removes a wishlist together with its items
func DeleteWishlist(c echo.Context) error {
	log := logger.FromContext(c)
	wishlistID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid wishlist id"})
	}

	var wishlist model.Wishlist
	if database.GetDB().First(&wishlist, wishlistID).Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Wishlist not found"})
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wishlist_id = ?", wishlist.ID).Delete(&model.WishlistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&wishlist).Error
	})
	if err != nil {
		log.Error("Failed to delete wishlist",
			zap.Uint("wishlist_id", wishlistID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete wishlist",
		})
	}

	log.Info("Wishlist deleted", zap.Uint("wishlist_id", wishlistID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Wishlist deleted",
	})
}

// AddWishlistItem links a product into a wishlist, at most once
func AddWishlistItem(c echo.Context) error {
	log := logger.FromContext(c)
	wishlistID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid wishlist id"})
	}

	var req WishlistItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var wishlist model.Wishlist
	if database.GetDB().First(&wishlist, wishlistID).Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Wishlist not found"})
	}

	var productCount int64
	database.GetDB().Model(&model.Product{}).Where("id = ?", req.ProductID).Count(&productCount)
	if productCount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Product does not exist"})
	}

	var count int64
	database.GetDB().Model(&model.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, req.ProductID).
		Count(&count)
	if count > 0 {
		log.Warn("Product already in wishlist",
			zap.Uint("wishlist_id", wishlistID),
			zap.Uint("product_id", req.ProductID))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Product is already in this wishlist",
		})
	}

	item := model.WishlistItem{
		WishlistID: wishlistID,
		ProductID:  req.ProductID,
	}

	result := database.GetDB().Create(&item)
	if result.Error != nil {
		log.Error("Failed to add wishlist item",
			zap.Uint("wishlist_id", wishlistID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to add wishlist item",
		})
	}

	log.Info("Wishlist item added",
		zap.Uint("wishlist_id", wishlistID),
		zap.Uint("product_id", req.ProductID))
	return c.JSON(http.StatusCreated, item)
}

// RemoveWishlistItem removes a product from a wishlist
func RemoveWishlistItem(c echo.Context) error {
	log := logger.FromContext(c)
	wishlistID := c.Param("id")
	productID := c.Param("product_id")

	result := database.GetDB().
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&model.WishlistItem{})
	if result.Error != nil {
		log.Error("Failed to remove wishlist item",
			zap.String("wishlist_id", wishlistID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to remove wishlist item",
		})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Wishlist item not found"})
	}

	log.Info("Wishlist item removed",
		zap.String("wishlist_id", wishlistID),
		zap.String("product_id", productID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Wishlist item removed",
	})
}
