package httpserver

import (
	"net/http"
	"strconv"

	"plugdrop/internal/domain"

	"github.com/gin-gonic/gin"
)

// discountPreviewHandler quotes the tier a basket would land in without
// creating anything. The storefront uses it to render the price breakdown
// before checkout.
func discountPreviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		subtotal, err := strconv.ParseInt(c.Query("subtotalCents"), 10, 64)
		if err != nil || subtotal < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subtotalCents must be a non-negative integer"})
			return
		}
		payment := domain.PaymentMethod(c.DefaultQuery("payment", string(domain.PayCrypto)))
		if payment != domain.PayCash && payment != domain.PayCrypto {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment must be cash or crypto"})
			return
		}
		rate := domain.DiscountRate(subtotal, payment)
		c.JSON(http.StatusOK, gin.H{
			"subtotalCents":   subtotal,
			"payment":         payment,
			"discountRate":    rate,
			"finalPriceCents": domain.FinalPriceCents(subtotal, rate),
		})
	}
}
