package config

import (
	"Go-Receipt-Vault/internal/api/handlers"
	"Go-Receipt-Vault/internal/api/routes"
	"Go-Receipt-Vault/internal/middleware"
	"Go-Receipt-Vault/internal/utils"
	"Go-Receipt-Vault/internal/utils/cache"
	"Go-Receipt-Vault/internal/utils/storage"
	"Go-Receipt-Vault/pkg/jwt"
	"Go-Receipt-Vault/pkg/product"
	"Go-Receipt-Vault/pkg/receipt"
	"Go-Receipt-Vault/pkg/search"
	"Go-Receipt-Vault/pkg/user"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	redisCache := cache.NewRedisCache()

	// Repository
	userRepository := user.NewUserRepository(db)
	receiptRepository := receipt.NewReceiptRepository(db)
	searchRepository := search.NewSearchRepository(db)
	productRepository := product.NewProductRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService)
	extractionClient := receipt.NewExtractionClient()
	duplicateDetector := receipt.NewDuplicateDetector(receiptRepository)
	receiptService := receipt.NewReceiptService(receiptRepository, duplicateDetector, extractionClient, s3)
	searchService := search.NewSearchService(searchRepository, redisCache)
	productService := product.NewProductService(productRepository)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)
	searchHandler := handlers.NewSearchHandler(searchService, validator)
	productHandler := handlers.NewProductHandler(productService)

	// routes
	routesConfig := routes.Config{
		App:            app,
		UserHandler:    userHandler,
		ReceiptHandler: receiptHandler,
		SearchHandler:  searchHandler,
		ProductHandler: productHandler,
		Middleware:     middlewares,
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
