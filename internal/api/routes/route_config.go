package routes

import (
	"Go-Receipt-Vault/internal/api/handlers"
	"Go-Receipt-Vault/internal/middleware"
	"Go-Receipt-Vault/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App            *fiber.App
	UserHandler    handlers.UserHandler
	ReceiptHandler handlers.ReceiptHandler
	SearchHandler  handlers.SearchHandler
	ProductHandler handlers.ProductHandler
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Receipts()
	c.Products()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/verify", c.UserHandler.VerifyEmail)
		user.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Me)
	}
}

func (c *Config) Receipts() {
	receipts := c.App.Group("/api/v1/receipts", c.Middleware.AuthMiddleware(c.JWTService))

	// Search routes come before :id so "search" is not taken as a receipt ID.
	receipts.Get("/search", c.SearchHandler.SearchReceipts)
	receipts.Get("/suggestions", c.SearchHandler.GetSuggestions)
	receipts.Get("/search-history", c.SearchHandler.GetSearchHistory)

	receipts.Post("", c.ReceiptHandler.CreateReceipt)
	receipts.Post("/upload", c.ReceiptHandler.UploadReceiptImage)
	receipts.Get("", c.ReceiptHandler.GetReceipts)
	receipts.Get("/:id", c.ReceiptHandler.GetReceiptDetails)
	receipts.Patch("/:id", c.ReceiptHandler.UpdateReceipt)
	receipts.Delete("/:id", c.ReceiptHandler.DeleteReceipt)
}

func (c *Config) Products() {
	products := c.App.Group("/api/v1/products", c.Middleware.AuthMiddleware(c.JWTService))
	products.Get("", c.ProductHandler.GetProducts)
	products.Get("/:id", c.ProductHandler.GetProductDetails)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
