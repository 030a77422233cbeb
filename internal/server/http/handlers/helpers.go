package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/buyside/procure/internal/adapter/orderservice"
	domainErrors "github.com/buyside/procure/internal/domain/errors"
	"github.com/buyside/procure/internal/server/http/middleware"
)

// CurrentEmployeeID extracts the acting employee identifier from context.
func CurrentEmployeeID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.EmployeeIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// tenantID parses the tenant path parameter, answering 400 on garbage.
func tenantID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("tenant_id"), 10, 64)
	if err != nil || id <= 0 {
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// orderID parses the order path parameter, answering 400 on garbage.
func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil || id <= 0 {
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// respondError maps domain failures onto HTTP statuses. Rate limiting carries
// a Retry-After hint so callers can back off.
func respondError(c *gin.Context, err error) {
	var rateLimited orderservice.TooManyRequestsError
	if errors.As(err, &rateLimited) {
		c.Header("Retry-After", strconv.Itoa(int(rateLimited.RetryAfter.Seconds())))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrNoCredentials), errors.Is(err, domainErrors.ErrReauthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domainErrors.ErrRateLimited):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, domainErrors.ErrDuplicateNumber),
		errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrSuggestionPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusInternalServerError)
	}
}
