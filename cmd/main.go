package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"store_service/config"
	"store_service/internal/delivery"
	"store_service/internal/repository"
	"store_service/internal/storage"
	"store_service/internal/usecase"
	"store_service/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', falling back to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting Store Service...")

	// --- Database Connection ---
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connection established.")

	// --- Asset Stores ---
	imagePolicy := storage.DefaultImagePolicy(cfg.MaxUploadBytes)
	productAssets := storage.NewLocalAssetStore(cfg.UploadDir, "products", imagePolicy, logger)
	userAssets := storage.NewLocalAssetStore(cfg.UploadDir, "users", imagePolicy, logger)

	// --- Dependency Injection ---
	categoryRepo := repository.NewPostgresCategoryRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	purchaseRepo := repository.NewPostgresPurchaseRepository(database, logger)
	userRepo := repository.NewPostgresUserRepository(database, logger)
	logger.Info("Repositories initialized.")

	timeout := cfg.DBTimeout()
	categoryUseCase := usecase.NewCategoryUseCase(categoryRepo, logger, timeout)
	productUseCase := usecase.NewProductUseCase(productRepo, categoryRepo, productAssets, logger, timeout)
	purchaseUseCase := usecase.NewPurchaseUseCase(purchaseRepo, logger, timeout)
	userUseCase := usecase.NewUserUseCase(userRepo, userAssets, logger, timeout)
	logger.Info("Use cases initialized.")

	categoryHandler := delivery.NewCategoryHandler(categoryUseCase, logger)
	productHandler := delivery.NewProductHandler(productUseCase, logger)
	purchaseHandler := delivery.NewPurchaseHandler(purchaseUseCase, logger)
	userHandler := delivery.NewUserHandler(userUseCase, logger)
	logger.Info("Handlers initialized.")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	categoryHandler.RegisterRoutes(router)
	productHandler.RegisterRoutes(router)
	purchaseHandler.RegisterRoutes(router)
	userHandler.RegisterRoutes(router)

	// Saved images are served straight off the content root.
	router.Static("/uploads", cfg.UploadDir)
	logger.Info("API routes registered.")

	server := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server stopped.")
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Request received")
		c.Next()
		logger.WithFields(logrus.Fields{
			"status": c.Writer.Status(),
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Info("Request completed")
	}
}
