package httpserver

import (
	"log"
	"time"

	"plugdrop/internal/service/auth"
	"plugdrop/internal/service/cart"
	"plugdrop/internal/service/catalog"
	"plugdrop/internal/service/order"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps bundles the services the router dispatches to.
type Deps struct {
	Auth    *auth.Service
	Catalog *catalog.Service
	Carts   *cart.Service
	Orders  *order.Service
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/auth/register", registerHandler(deps.Auth))
	router.POST("/auth/login", loginHandler(deps.Auth))

	router.GET("/products", listProductsHandler(deps.Catalog))
	router.GET("/products/:id", getProductHandler(deps.Catalog))
	router.GET("/discount", discountPreviewHandler())

	authed := router.Group("/", authRequired(deps.Auth))
	{
		authed.POST("/auth/logout", logoutHandler(deps.Auth))
		authed.GET("/auth/me", meHandler())

		authed.POST("/products", createProductHandler(deps.Catalog))
		authed.PUT("/products/:id", updateProductHandler(deps.Catalog))
		authed.DELETE("/products/:id", deleteProductHandler(deps.Catalog))

		authed.GET("/cart", getCartHandler(deps.Carts))
		authed.POST("/cart/items", addCartItemHandler(deps.Carts))
		authed.PUT("/cart/items/:productId", setCartItemHandler(deps.Carts))
		authed.DELETE("/cart/items/:productId", removeCartItemHandler(deps.Carts))

		authed.POST("/orders", checkoutHandler(deps.Orders))
		authed.GET("/orders", listOrdersHandler(deps.Orders))
		authed.GET("/orders/:id", getOrderHandler(deps.Orders))
		authed.POST("/orders/:id/cancel", cancelOrderHandler(deps.Orders))
		authed.POST("/orders/:id/accept", acceptOrderHandler(deps.Orders))
		authed.POST("/orders/:id/status", advanceOrderHandler(deps.Orders))
		authed.POST("/orders/:id/messages", appendChatHandler(deps.Orders))
		authed.DELETE("/orders/:id", deleteOrderHandler(deps.Orders))
	}

	return router
}
