package routes

import (
	"capidrive/config"
	"capidrive/middleware"
	"capidrive/services"

	"github.com/gin-gonic/gin"
)

// Deps carries the wired services the route tree needs.
type Deps struct {
	Config           *config.Config
	AuthService      *services.AuthService
	FolderService    *services.FolderService
	FileService      *services.FileService
	AccessService    *services.AccessService
	ShareLinkService *services.ShareLinkService
	Notifications    *services.NotificationService
}

func SetupRoutes(r *gin.Engine, deps *Deps) {
	// Global middleware
	r.Use(middleware.CORSMiddleware(deps.Config.CORSAllowedOrigins))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(gin.Recovery())

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		AuthRoutes(v1, deps)
		UserRoutes(v1, deps)
		FolderRoutes(v1, deps)
		FileRoutes(v1, deps)
		ShareLinkRoutes(v1, deps)
		NotificationRoutes(v1, deps)
	}
}
