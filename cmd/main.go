package main

import (
	"net/http"
	"store-service/internal/handler"
	mid "store-service/internal/middleware"
	"store-service/pkg/config"
	"store-service/pkg/database"
	"store-service/pkg/jwtutil"
	"store-service/pkg/logger"
	"store-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting store-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Routes
	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Customer API routes
	customerAPI := e.Group("/api/customers", mid.AuthMiddleware)
	customerAPI.GET("", handler.ListCustomers)
	customerAPI.GET("/:id", handler.GetCustomer)
	customerAPI.POST("", handler.CreateCustomer)
	customerAPI.PUT("/:id", handler.UpdateCustomer)
	customerAPI.DELETE("/:id", handler.DeleteCustomer)
	customerAPI.GET("/:customer_id/addresses", handler.ListAddresses)

	// Address API routes
	addressAPI := e.Group("/api/addresses", mid.AuthMiddleware)
	addressAPI.POST("", handler.CreateAddress)
	addressAPI.PUT("/:id", handler.UpdateAddress)
	addressAPI.DELETE("/:id", handler.DeleteAddress)

	// Product API routes
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", handler.ListProducts)
	productAPI.GET("/:id", handler.GetProduct)
	productAPI.POST("", handler.CreateProduct)
	productAPI.PUT("/:id", handler.UpdateProduct)
	productAPI.DELETE("/:id", handler.DeleteProduct)
	productAPI.GET("/:id/reviews", handler.ListProductReviews)
	productAPI.POST("/:id/reviews", handler.CreateReview)

	// Category API routes
	categoryAPI := e.Group("/api/categories", mid.AuthMiddleware)
	categoryAPI.GET("", handler.ListCategories)
	categoryAPI.GET("/tree", handler.GetCategoryTree)
	categoryAPI.GET("/:id", handler.GetCategory)
	categoryAPI.POST("", handler.CreateCategory)
	categoryAPI.PUT("/:id", handler.UpdateCategory)
	categoryAPI.DELETE("/:id", handler.DeleteCategory)

	// Supplier API routes
	supplierAPI := e.Group("/api/suppliers", mid.AuthMiddleware)
	supplierAPI.GET("", handler.ListSuppliers)
	supplierAPI.GET("/:id", handler.GetSupplier)
	supplierAPI.POST("", handler.CreateSupplier)
	supplierAPI.PUT("/:id", handler.UpdateSupplier)
	supplierAPI.DELETE("/:id", handler.DeleteSupplier)

	// Inventory API routes
	inventoryAPI := e.Group("/api/inventory", mid.AuthMiddleware)
	inventoryAPI.GET("/low-stock", handler.ListLowStock)
	inventoryAPI.GET("/:product_id", handler.GetInventory)
	inventoryAPI.POST("/:product_id/replenish", handler.ReplenishInventory)

	// Order API routes - all order mutations go through the ledger
	orderAPI := e.Group("/api/orders", mid.AuthMiddleware)
	orderAPI.GET("", handler.ListOrders)
	orderAPI.GET("/:id", handler.GetOrder)
	orderAPI.POST("", handler.CreateOrder)
	orderAPI.POST("/:id/status", handler.TransitionOrder)
	orderAPI.GET("/:id/payments", handler.ListPayments)
	orderAPI.POST("/:id/payments", handler.RecordPayment)

	// Payment API routes
	paymentAPI := e.Group("/api/payments", mid.AuthMiddleware)
	paymentAPI.POST("/:id/refund", handler.RefundPayment)

	// Wishlist API routes
	wishlistAPI := e.Group("/api/wishlists", mid.AuthMiddleware)
	wishlistAPI.GET("", handler.ListWishlists)
	wishlistAPI.POST("", handler.CreateWishlist)
	wishlistAPI.DELETE("/:id", handler.DeleteWishlist)
	wishlistAPI.POST("/:id/items", handler.AddWishlistItem)
	wishlistAPI.DELETE("/:id/items/:product_id", handler.RemoveWishlistItem)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
