package handler

import (
	"errors"
	"net/http"
	"store-service/internal/catalog"
	"store-service/internal/model"
	"store-service/pkg/database"
	"store-service/pkg/logger"
	"store-service/prometheus"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
}

// ListCategories retrieves all product categories
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing categories")

	var categories []model.ProductCategory
	result := database.GetDB().Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve categories",
		})
	}

	log.Info("Categories retrieved successfully", zap.Int("count", len(categories)))
	return c.JSON(http.StatusOK, categories)
}

// GetCategoryTree retrieves the full category hierarchy as an
// id-indexed tree of root nodes
func GetCategoryTree(c echo.Context) error {
	log := logger.FromContext(c)

	var categories []model.ProductCategory
	result := database.GetDB().Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve categories",
		})
	}

	tree := catalog.Build(categories)
	log.Info("Category tree built",
		zap.Int("node_count", tree.Len()),
		zap.Int("root_count", len(tree.Roots())))
	return c.JSON(http.StatusOK, echo.Map{"roots": tree.Roots()})
}

// GetCategory retrieves a specific category by ID
func GetCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Getting category by ID", zap.String("category_id", id))

	var category model.ProductCategory
	result := database.GetDB().First(&category, id)
	if result.Error != nil {
		log.Error("Category not found",
			zap.String("category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Category not found",
		})
	}

	log.Info("Category retrieved successfully",
		zap.String("category_id", id),
		zap.String("category_name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// CreateCategory adds a new product category
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new category")

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	log.Info("Category creation request",
		zap.String("name", req.Name),
		zap.String("slug", req.Slug))

	// Check if category with same slug exists
	var count int64
	database.GetDB().Model(&model.ProductCategory{}).
		Where("slug = ?", req.Slug).
		Count(&count)
	if count > 0 {
		log.Warn("Category with this slug already exists", zap.String("slug", req.Slug))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Category with this slug already exists",
		})
	}

	// A new category cannot introduce a cycle, but its parent must exist
	if req.ParentID != nil {
		var parentCount int64
		database.GetDB().Model(&model.ProductCategory{}).
			Where("id = ?", *req.ParentID).
			Count(&parentCount)
		if parentCount == 0 {
			log.Warn("Parent category does not exist", zap.Uint("parent_id", *req.ParentID))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Parent category does not exist",
			})
		}
	}

	category := model.ProductCategory{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
	}

	result := database.GetDB().Create(&category)
	if result.Error != nil {
		log.Error("Failed to create category",
			zap.String("name", req.Name),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create category",
		})
	}

	prometheus.RecordCategoryOperation("create")

	log.Info("Category created successfully",
		zap.String("category_id", strconv.FormatUint(uint64(category.ID), 10)),
		zap.String("name", category.Name),
		zap.String("slug", category.Slug))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates an existing product category. A parent change
// is validated against the whole hierarchy so the tree stays acyclic.
func UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating category", zap.String("category_id", id))

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("category_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var category model.ProductCategory
	result := database.GetDB().First(&category, id)
	if result.Error != nil {
		log.Error("Category not found for update",
			zap.String("category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Category not found",
		})
	}

	// Check if slug is changed and if the new slug already exists
	if req.Slug != category.Slug {
		var count int64
		database.GetDB().Model(&model.ProductCategory{}).
			Where("slug = ? AND id != ?", req.Slug, id).
			Count(&count)
		if count > 0 {
			log.Warn("Category with this slug already exists", zap.String("slug", req.Slug))
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Category with this slug already exists",
			})
		}
	}

	// Validate the parent assignment against the full category set
	var categories []model.ProductCategory
	if err := database.GetDB().Find(&categories).Error; err != nil {
		log.Error("Failed to load categories for cycle check", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update category",
		})
	}
	if err := catalog.ValidateParent(categories, category.ID, req.ParentID); err != nil {
		log.Warn("Rejected category parent assignment",
			zap.String("category_id", id),
			zap.Error(err))
		status := http.StatusBadRequest
		if errors.Is(err, catalog.ErrCycle) {
			status = http.StatusConflict
		}
		return c.JSON(status, echo.Map{"error": err.Error()})
	}

	category.Name = req.Name
	category.Slug = req.Slug
	category.Description = req.Description
	category.ParentID = req.ParentID

	result = database.GetDB().Save(&category)
	if result.Error != nil {
		log.Error("Failed to update category",
			zap.String("category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update category",
		})
	}

	prometheus.RecordCategoryOperation("update")

	log.Info("Category updated successfully",
		zap.String("category_id", id),
		zap.String("name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a product category. Children of the deleted
// category become roots rather than being removed.
func DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting category", zap.String("category_id", id))

	var category model.ProductCategory
	result := database.GetDB().First(&category, id)
	if result.Error != nil {
		log.Warn("Category not found for deletion", zap.String("category_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Category not found",
		})
	}

	// Detach children before removing the parent
	if err := database.GetDB().Model(&model.ProductCategory{}).
		Where("parent_id = ?", category.ID).
		Update("parent_id", nil).Error; err != nil {
		log.Error("Failed to detach child categories",
			zap.String("category_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete category",
		})
	}

	result = database.GetDB().Delete(&category)
	if result.Error != nil {
		log.Error("Failed to delete category",
			zap.String("category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete category",
		})
	}

	prometheus.RecordCategoryOperation("delete")

	log.Info("Category deleted successfully", zap.String("category_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Category deleted successfully",
	})
}
