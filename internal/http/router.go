// Package http exposes the core stores over the JSON API the UI layer
// consumes. No raw storage error crosses this boundary; every failure maps
// to a short, specific message.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/dexbook/dexbook/internal/database/catalog"
	"github.com/dexbook/dexbook/internal/database/library"
	"github.com/dexbook/dexbook/internal/database/users"
	"github.com/dexbook/dexbook/internal/scan"
)

// RouterConfig carries all router dependencies, improving testability and
// keeping the parameter count down.
type RouterConfig struct {
	Catalog *catalog.Repository
	Library *library.Repository
	Users   *users.Repository
	Scanner *scan.Service
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	catalogController := NewCatalogController(cfg.Catalog)
	libraryController := NewLibraryController(cfg.Library)
	usersController := NewUsersController(cfg.Users)
	scanController := NewScanController(cfg.Scanner)

	api := router.Group("/api")
	{
		api.GET("/health", HealthCheck)

		api.POST("/users", usersController.Register)
		api.GET("/users/email-exists", usersController.EmailExists)

		api.GET("/catalog", catalogController.List)
		api.POST("/catalog", catalogController.Add)
		api.PUT("/catalog", catalogController.Upsert)
		api.GET("/catalog/uuids", catalogController.ListUUIDs)
		api.GET("/catalog/uuid/:uuid", catalogController.GetByUUID)
		api.GET("/catalog/:id", catalogController.GetByID)

		api.GET("/users/:id/library", libraryController.List)
		api.POST("/users/:id/library", libraryController.Link)
		api.GET("/users/:id/stats", libraryController.Stats)
		api.POST("/users/:id/scan", scanController.Scan)

		api.GET("/library/:id", libraryController.Get)
		api.PATCH("/library/:id", libraryController.Update)
		api.DELETE("/library/:id", libraryController.Unlink)
	}

	return router
}
