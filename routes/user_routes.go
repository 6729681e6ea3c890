package routes

import (
	"capidrive/controllers"
	"capidrive/middleware"

	"github.com/gin-gonic/gin"
)

func UserRoutes(r *gin.RouterGroup, deps *Deps) {
	userController := controllers.NewUserController(deps.AuthService)

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		users.GET("/lookup", userController.Lookup)
	}
}
