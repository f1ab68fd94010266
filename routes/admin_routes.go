package routes

import (
	"github.com/akhil-ks/shopnest/controllers"
	"github.com/akhil-ks/shopnest/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	{
		// Public admin routes
		admin.POST("/login", controllers.AdminLogin)

		// Protected admin routes
		admin.Use(middleware.AdminMiddleware())
		{
			// Payment transactions
			admin.GET("/transactions", controllers.ListTransactions)
			admin.GET("/transactions/export", controllers.ExportTransactions)

			// Webhook events
			admin.GET("/webhooks", controllers.ListWebhookEvents)
			admin.GET("/webhooks/:id", controllers.GetWebhookEvent)
			admin.DELETE("/webhooks/:id", controllers.DeleteWebhookEvent)

			// Order fulfilment
			admin.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
		}
	}
}
