package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shopweave/promoengine/controllers"
	"github.com/shopweave/promoengine/middleware"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.Default()

	api := router.Group("/v1")
	{
		initPromotionRoutes(api)
		initAdminRoutes(api)
	}

	return router
}

// initPromotionRoutes registers the checkout-facing endpoints
func initPromotionRoutes(api *gin.RouterGroup) {
	promotions := api.Group("/promotions")
	{
		promotions.POST("/validate", controllers.ValidatePromotion)
		promotions.POST("/redeem", controllers.RedeemPromotion)
	}
}

// initAdminRoutes registers the admin management endpoints
func initAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin")
	{
		admin.POST("/login", controllers.AdminLogin)
		admin.POST("/logout", controllers.AdminLogout)

		protected := admin.Group("")
		protected.Use(middleware.AdminAuthMiddleware())
		{
			promotions := protected.Group("/promotions")
			{
				promotions.GET("", controllers.ListPromotions)
				promotions.POST("", controllers.CreatePromotion)
				promotions.GET("/:id", controllers.GetPromotion)
				promotions.PUT("/:id", controllers.UpdatePromotion)
				promotions.PATCH("/:id/status", controllers.UpdatePromotionStatus)
				promotions.DELETE("/:id", controllers.DeletePromotion)
				promotions.GET("/:id/usages", controllers.ListPromotionUsages)
				promotions.GET("/:id/usages/export", controllers.ExportPromotionUsages)
			}
		}
	}
}
