package middleware

import (
	"net/http"
	"store-service/pkg/jwtutil"
	"store-service/pkg/logger"
	"store-service/prometheus"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and extracts the customer identity
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		prometheus.AuthAttemptsCounter.Inc()

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Extract the token
		tokenString := parts[1]

		// Validate the token
		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store customer info in context for later use
		c.Set("customer_id", claims.CustomerID)
		c.Set("email", claims.Email)

		log.Info("Request authenticated",
			zap.Uint("customer_id", claims.CustomerID),
			zap.String("email", claims.Email))

		// Token is valid, proceed with the request
		return next(c)
	}
}

// GetCustomerIDFromContext retrieves the authenticated customer ID from the context.
// Returns 0, false if it is not present.
func GetCustomerIDFromContext(c echo.Context) (uint, bool) {
	customerID, ok := c.Get("customer_id").(uint)
	return customerID, ok
}
