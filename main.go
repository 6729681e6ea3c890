package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"capidrive/config"
	"capidrive/database"
	"capidrive/routes"
	"capidrive/services"
	"capidrive/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	app, err := NewApplication()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize application")
	}

	if err := app.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to start application")
	}
}

// Application wires config, database, storage, and the HTTP server.
type Application struct {
	config      *config.Config
	server      *http.Server
	router      *gin.Engine
	fileService *services.FileService
}

func NewApplication() (*Application, error) {
	cfg := config.LoadConfig()
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	app := &Application{
		config: cfg,
		router: router,
		server: &http.Server{
			Addr:    cfg.GetServerAddress(),
			Handler: router,
			// No write timeout: zip exports and large downloads can run long.
			ReadHeaderTimeout: 15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
	return app, nil
}

// Start connects the backing services, mounts routes, and serves until a
// shutdown signal arrives.
func (app *Application) Start() error {
	logrus.WithFields(logrus.Fields{
		"environment": app.config.Environment,
		"database":    app.config.DBName,
		"storage":     app.config.StorageProvider,
	}).Info("Starting capidrive")

	if err := database.Connect(app.config); err != nil {
		return err
	}
	if err := database.RunMigrations(); err != nil {
		return err
	}

	blobs, err := storage.NewClient(app.config)
	if err != nil {
		return err
	}

	deps := app.buildServices(blobs)
	routes.SetupRoutes(app.router, deps)
	app.router.GET("/health", healthCheckHandler())

	app.startBackgroundJobs()

	go func() {
		logrus.WithField("addr", app.server.Addr).Info("Server listening")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	app.waitForShutdown()
	return nil
}

func (app *Application) buildServices(blobs storage.StorageInterface) *routes.Deps {
	users := database.NewUserStore()
	folders := database.NewFolderStore()
	files := database.NewFileStore()
	access := database.NewAccessStore()
	links := database.NewShareLinkStore()
	notifications := database.NewNotificationStore()

	perms := services.NewPermissionService(access)
	notifier := services.NewNotificationService(notifications)
	authService := services.NewAuthService(users)
	accessService := services.NewAccessService(folders, files, access, users, perms, notifier)
	folderService := services.NewFolderService(folders, files, access, perms, accessService, blobs)
	fileService := services.NewFileService(
		files, folders, users, access, perms, accessService, blobs,
		services.NewExtensionScanner(app.config.BlockedUploadExtensions),
		services.NoopThumbnailer{},
		notifier,
		app.config.DefaultFileExpiry,
	)
	shareLinkService := services.NewShareLinkService(links, files, folders, users, access, perms, blobs)

	app.fileService = fileService

	return &routes.Deps{
		Config:           app.config,
		AuthService:      authService,
		FolderService:    folderService,
		FileService:      fileService,
		AccessService:    accessService,
		ShareLinkService: shareLinkService,
		Notifications:    notifier,
	}
}

func (app *Application) startBackgroundJobs() {
	// Expired transfer sweep
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			removed, err := app.fileService.CleanupExpired(ctx)
			cancel()
			if err != nil {
				logrus.WithError(err).Warn("Expired file cleanup failed")
				continue
			}
			if removed > 0 {
				logrus.WithField("removed", removed).Info("Expired files cleaned up")
			}
		}
	}()
}

func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logrus.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("Server forced to shutdown")
	}
	if err := database.Disconnect(ctx); err != nil {
		logrus.WithError(err).Warn("Error closing database")
	}
	logrus.Info("Server shutdown complete")
}

func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"service":   "capidrive",
			"timestamp": time.Now().Unix(),
		}
		c.JSON(http.StatusOK, health)
	}
}
