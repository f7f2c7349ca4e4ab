package routes

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/madarame/studio-api/internal/handlers"
	"github.com/madarame/studio-api/internal/middleware"
)

// CORSMiddleware tells the browser the storefront frontend may talk to us.
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware(h.Cfg.AllowedOrigin))

	// Cookie sessions carry the basket snapshot and the save-info flag.
	store := cookie.NewStore([]byte(h.Cfg.SessionSecret))
	router.Use(sessions.Sessions("madarame_session", store))

	// --- Ping Route (Public) ---
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong!"})
	})

	// --- Catalog Routes ---
	products := router.Group("/products")
	{
		products.GET("/", h.AllProducts)
		products.GET("/:id", h.ProductDetail)

		// Product management is for administrators only.
		admin := products.Group("/")
		admin.Use(middleware.AuthRequired())
		admin.Use(middleware.AdminRequired(h.DB))
		{
			admin.POST("/add", h.AddProduct)
			admin.GET("/edit/:id", h.EditProductPage)
			admin.POST("/edit/:id", h.EditProduct)
		}
	}

	// --- Basket Routes (session-scoped, anonymous OK) ---
	basket := router.Group("/basket")
	{
		basket.GET("/", h.ViewBasket)
		basket.POST("/add/:id", h.AddToBasket)
		basket.POST("/update/:id", h.UpdateBasket)
		basket.POST("/remove/:id", h.RemoveFromBasket)
	}

	// --- Checkout Routes ---
	// Auth is optional: guests check out too, but authenticated requesters
	// get profile prefill and the profile attach on success.
	checkout := router.Group("/checkout")
	checkout.Use(middleware.AuthOptional())
	{
		checkout.GET("/", h.CheckoutPage)
		checkout.POST("/", h.CheckoutSubmit)
		checkout.GET("/success/:order_number", h.CheckoutSuccess)
		checkout.GET("/check-order", h.CheckOrderPage)
		checkout.POST("/check-order", h.CheckOrder)
		checkout.POST("/cache-checkout-data", h.CacheCheckoutData)
	}

	return router
}
