package routes

import (
	"capidrive/controllers"
	"capidrive/middleware"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.RouterGroup, deps *Deps) {
	authController := controllers.NewAuthController(deps.AuthService)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)

		protected := auth.Group("/")
		protected.Use(middleware.AuthMiddleware(deps.AuthService))
		{
			protected.POST("/logout", authController.Logout)
			protected.GET("/me", authController.Me)
		}
	}
}
