package handler

import (
	"net/http"
	"store-service/internal/middleware"
	"store-service/internal/model"
	"store-service/pkg/database"
	"store-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReviewRequest defines the structure for review creation requests
type ReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// ListProductReviews retrieves the reviews of a product
func ListProductReviews(c echo.Context) error {
	log := logger.FromContext(c)
	productID := c.Param("id")

	var reviews []model.Review
	result := database.GetDB().Where("product_id = ?", productID).Order("id DESC").Find(&reviews)
	if result.Error != nil {
		log.Error("Failed to list reviews",
			zap.String("product_id", productID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve reviews",
		})
	}

	return c.JSON(http.StatusOK, reviews)
}

// CreateReview adds a review for a product, one per customer
func CreateReview(c echo.Context) error {
	log := logger.FromContext(c)
	productID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	customerID, ok := middleware.GetCustomerIDFromContext(c)
	if !ok {
		log.Warn("Missing customer_id in context")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "customer identity is required",
		})
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.Rating < 1 || req.Rating > 5 {
		log.Warn("Rating out of range", zap.Int("rating", req.Rating))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "rating must be between 1 and 5",
		})
	}

	var productCount int64
	database.GetDB().Model(&model.Product{}).Where("id = ?", productID).Count(&productCount)
	if productCount == 0 {
		log.Warn("Product does not exist", zap.Uint("product_id", productID))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	var count int64
	database.GetDB().Model(&model.Review{}).
		Where("product_id = ? AND customer_id = ?", productID, customerID).
		Count(&count)
	if count > 0 {
		log.Warn("Customer already reviewed this product",
			zap.Uint("product_id", productID),
			zap.Uint("customer_id", customerID))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "You have already reviewed this product",
		})
	}

	review := model.Review{
		ProductID:  productID,
		CustomerID: customerID,
		Rating:     req.Rating,
		Title:      req.Title,
		Body:       req.Body,
	}

	result := database.GetDB().Create(&review)
	if result.Error != nil {
		log.Error("Failed to create review",
			zap.Uint("product_id", productID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create review",
		})
	}

	log.Info("Review created successfully",
		zap.Uint("review_id", review.ID),
		zap.Uint("product_id", productID),
		zap.Int("rating", review.Rating))
	return c.JSON(http.StatusCreated, review)
}
