package routes

import (
	"capidrive/controllers"
	"capidrive/middleware"

	"github.com/gin-gonic/gin"
)

func ShareLinkRoutes(r *gin.RouterGroup, deps *Deps) {
	shareLinkController := controllers.NewShareLinkController(deps.ShareLinkService)

	links := r.Group("/share-links")
	links.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		links.POST("/", shareLinkController.Create)
		links.GET("/", shareLinkController.List)
		links.DELETE("/:id", shareLinkController.Revoke)
	}

	// Public token endpoints. Auth is optional: anonymous visitors browse
	// anyone links, authenticated visitors get promoted, and specific-user
	// links authenticate through the same middleware.
	shared := r.Group("/shared")
	shared.Use(middleware.OptionalAuthMiddleware(deps.AuthService))
	{
		shared.GET("/:token", shareLinkController.Access)
		shared.GET("/:token/folders/:folderId", shareLinkController.Browse)
		shared.GET("/:token/files/:fileId/download", shareLinkController.Download)
		shared.GET("/:token/files/:fileId/thumbnail", shareLinkController.Thumbnail)
	}
}
