package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/config"
	"darkops-lab/server/internal/database"
	logger "darkops-lab/server/internal/logging"
	"darkops-lab/server/internal/router"
	"darkops-lab/server/internal/services"

	"go.uber.org/zap"
)

func main() {
	// The server runs from server/; config/ and data/ live one level up.
	projectRoot := os.Getenv("DARKOPS_ROOT")
	if projectRoot == "" {
		projectRoot = ".."
	}

	bootstrap, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize bootstrap logger: " + err.Error())
	}
	if err := config.Init(projectRoot, bootstrap); err != nil {
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Logger
	log, err := logger.Init(projectRoot, config.Conf.Logging)
	if err != nil {
		bootstrap.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	// Initialize Database
	if !filepath.IsAbs(config.Conf.Database.Path) {
		config.Conf.Database.Path = filepath.Join(projectRoot, config.Conf.Database.Path)
	}
	if err := database.Init(log); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	// Load the attack catalog at startup
	catalogPath := config.Conf.Catalog.Path
	if !filepath.IsAbs(catalogPath) {
		catalogPath = filepath.Join(projectRoot, catalogPath)
	}
	catalog, err := models.LoadCatalog(catalogPath)
	if err != nil {
		log.Fatal("Failed to load attack catalog", zap.Error(err), zap.String("path", catalogPath))
	}
	log.Info("Attack catalog loaded", zap.Int("attacks", catalog.Len()))

	janitor := services.NewJanitor(log, config.Conf.Sessions)
	if err := janitor.Start(); err != nil {
		log.Fatal("Failed to start session janitor", zap.Error(err))
	}
	defer janitor.Stop()

	r := router.Setup(log, catalog)

	srv := &http.Server{
		Addr:              ":" + config.Conf.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening on http://localhost" + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run Gin server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shut down", zap.Error(err))
	}
}
