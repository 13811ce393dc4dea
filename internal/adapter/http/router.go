package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jayedsikder/commerceflow-api/internal/adapter/http/middleware"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
)

type Handlers struct {
	Auth         *AuthHandler
	Catalog      *CatalogHandler
	Cart         *CartHandler
	Checkout     *CheckoutHandler
	Notification *NotificationHandler
	Order        *OrderHandler
}

func NewRouter(h Handlers, session *middleware.Session) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", session.Require(), h.Auth.Logout)
		auth.GET("/me", session.Require(), h.Auth.Me)
		auth.POST("/password-reset", h.Auth.PasswordReset)
	}

	r.GET("/products", h.Catalog.ListProducts)
	r.GET("/products/:id", h.Catalog.GetProduct)
	r.GET("/categories", h.Catalog.ListCategories)

	cart := r.Group("/cart", session.Require())
	{
		cart.GET("", h.Cart.Get)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:productId", h.Cart.UpdateQuantity)
		cart.DELETE("/items/:productId", h.Cart.RemoveItem)
		cart.DELETE("", h.Cart.Clear)
	}

	r.POST("/checkout", session.Require(), h.Checkout.Submit)

	// Server-to-server notification from the payment gateway.
	r.POST("/api/payments/ipn", h.Notification.Receive)

	// Browser redirect target after the hosted payment page.
	r.GET("/order-confirmation", session.Optional(), h.Order.Confirmation)

	r.GET("/orders/:tranId", h.Order.GetStatus)

	return r
}
