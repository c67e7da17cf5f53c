package httpserver

import (
	"net/http"

	"plugdrop/internal/domain"
	"plugdrop/internal/service/cart"

	"github.com/gin-gonic/gin"
)

// Cart routes are customer-only: couriers and admins have no basket.
func requireCustomer(c *gin.Context) (domain.User, bool) {
	u := currentUser(c)
	if u.Role != domain.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{"error": "carts belong to customers"})
		return domain.User{}, false
	}
	return u, true
}

func getCartHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := requireCustomer(c)
		if !ok {
			return
		}
		view, err := svc.Get(c.Request.Context(), u.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func addCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := requireCustomer(c)
		if !ok {
			return
		}
		var req struct {
			ProductID string `json:"productId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
			return
		}
		if err := svc.Add(c.Request.Context(), u.ID, req.ProductID); err != nil {
			writeError(c, err)
			return
		}
		view, err := svc.Get(c.Request.Context(), u.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func setCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := requireCustomer(c)
		if !ok {
			return
		}
		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
			return
		}
		if err := svc.SetQuantity(c.Request.Context(), u.ID, c.Param("productId"), req.Quantity); err != nil {
			writeError(c, err)
			return
		}
		view, err := svc.Get(c.Request.Context(), u.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func removeCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := requireCustomer(c)
		if !ok {
			return
		}
		svc.Remove(u.ID, c.Param("productId"))
		c.Status(http.StatusNoContent)
	}
}
