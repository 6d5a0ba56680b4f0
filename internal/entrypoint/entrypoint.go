package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dexbook/dexbook/internal/config"
	"github.com/dexbook/dexbook/internal/database"
	"github.com/dexbook/dexbook/internal/database/catalog"
	"github.com/dexbook/dexbook/internal/database/library"
	"github.com/dexbook/dexbook/internal/database/users"
	http_controllers "github.com/dexbook/dexbook/internal/http"
	"github.com/dexbook/dexbook/internal/scan"
)

// Run initializes storage, runs pending migrations, and serves the API
// until interrupted.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting dexbook v%s", version)

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer db.Close()

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Catalog: catalog.NewRepository(db.DB),
		Library: library.NewRepository(db.DB),
		Users:   users.NewRepository(db.DB),
		Scanner: scan.NewService(db.DB),
	})

	Serve(router, cfg)
}

// Serve runs the HTTP server with graceful shutdown on SIGINT/SIGTERM.
func Serve(router *gin.Engine, cfg *config.Config) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}
