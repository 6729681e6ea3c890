package routes

import (
	"capidrive/controllers"
	"capidrive/middleware"

	"github.com/gin-gonic/gin"
)

func NotificationRoutes(r *gin.RouterGroup, deps *Deps) {
	notificationController := controllers.NewNotificationController(deps.Notifications)

	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		notifications.GET("/", notificationController.List)
		notifications.POST("/:id/read", notificationController.MarkRead)
	}
}
