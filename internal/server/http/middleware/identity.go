package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// EmployeeIDContextKey is a gin context key for the acting employee.
	EmployeeIDContextKey = "employeeID"
	employeeHeader       = "X-Employee-ID"
)

// EmployeeRequired ensures the request identifies the acting employee.
func EmployeeRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(employeeHeader)
		if raw == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		employeeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || employeeID <= 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(EmployeeIDContextKey, employeeID)
		c.Next()
	}
}
