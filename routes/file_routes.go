package routes

import (
	"capidrive/controllers"
	"capidrive/middleware"

	"github.com/gin-gonic/gin"
)

func FileRoutes(r *gin.RouterGroup, deps *Deps) {
	fileController := controllers.NewFileController(deps.FileService, deps.AccessService, deps.Config.MaxUploadSize)
	uploadLimiter := middleware.NewUploadCooldownLimiter(
		deps.Config.UploadCooldown,
		deps.Config.LargeUploadCooldown,
		deps.Config.LargeUploadThresholdGB*1024*1024*1024,
	)

	files := r.Group("/files")
	files.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		files.POST("/upload", middleware.UploadCooldownMiddleware(uploadLimiter), fileController.Upload)
		files.GET("/", fileController.List)
		files.GET("/:id", fileController.Get)
		files.PUT("/:id", fileController.Update)
		files.DELETE("/:id", fileController.Delete)

		files.GET("/:id/download", fileController.Download)
		files.GET("/:id/thumbnail", fileController.Thumbnail)
		files.POST("/:id/move", fileController.Move)
		files.POST("/:id/mark-viewed", fileController.MarkViewed)

		files.POST("/:id/access", fileController.GrantAccess)
		files.GET("/:id/access", fileController.ListAccess)
		files.DELETE("/:id/access/:userId", fileController.RevokeAccess)
	}
}
