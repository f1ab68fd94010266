package routes

import (
	"github.com/akhil-ks/shopnest/controllers"
	"github.com/akhil-ks/shopnest/middleware"
	"github.com/gin-gonic/gin"
)

// initUserRoutes initializes all user-related routes
func initUserRoutes(router *gin.RouterGroup) {
	// Public routes (no authentication required)
	router.POST("/register", controllers.RegisterUser)
	router.POST("/login", controllers.LoginUser)

	// Protected user routes
	user := router.Group("/user")
	user.Use(middleware.AuthMiddleware())
	{
		// Cart
		user.GET("/cart", controllers.GetCart)
		user.POST("/cart/add", controllers.AddToCart)
		user.POST("/cart/remove", controllers.RemoveFromCart)

		// Checkout flow
		user.GET("/checkout/summary", controllers.GetCheckoutSummary)
		user.POST("/checkout/shipping", controllers.SubmitShipping)
		user.POST("/checkout/payment/confirm", controllers.ConfirmPayment)
		user.POST("/checkout/payment/retry", controllers.RetryPayment)
		user.POST("/checkout/payment/verify", controllers.VerifyPayment)

		// Orders
		user.GET("/orders", controllers.ListOrders)
		user.GET("/orders/:id", controllers.GetOrderDetails)
		user.GET("/orders/:id/confirmation", controllers.GetOrderConfirmation)
		user.GET("/orders/:id/invoice", controllers.DownloadInvoice)
	}
}
