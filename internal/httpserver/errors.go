package httpserver

import (
	"errors"
	"net/http"

	"plugdrop/internal/domain"
	"plugdrop/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors onto the API's status codes. Anything
// unrecognized is a 500 with a generic body so internals stay internal.
func writeError(c *gin.Context, err error) {
	var (
		verr     domain.ValidationError
		aerr     domain.AuthorizationError
		conflict domain.StockConflictError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "insufficient stock",
			"productId": conflict.ProductID,
			"requested": conflict.Requested,
			"available": conflict.Available,
		})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
	case errors.As(err, &aerr):
		c.JSON(http.StatusForbidden, gin.H{"error": aerr.Reason})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
