package routes

import (
	"capidrive/controllers"
	"capidrive/middleware"

	"github.com/gin-gonic/gin"
)

func FolderRoutes(r *gin.RouterGroup, deps *Deps) {
	folderController := controllers.NewFolderController(deps.FolderService, deps.AccessService)

	folders := r.Group("/folders")
	folders.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		folders.POST("/", folderController.Create)
		folders.GET("/root", folderController.Root)
		folders.GET("/:id", folderController.Contents)
		folders.DELETE("/:id", folderController.Delete)

		folders.GET("/:id/download", folderController.Download)
		folders.POST("/:id/mark-viewed", folderController.MarkViewed)

		folders.POST("/:id/access", folderController.GrantAccess)
		folders.GET("/:id/access", folderController.ListAccess)
		folders.DELETE("/:id/access/:userId", folderController.RevokeAccess)
	}
}
