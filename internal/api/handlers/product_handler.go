package handlers

import (
	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/internal/api/presenters"
	"Go-Receipt-Vault/pkg/product"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type (
	ProductHandler interface {
		GetProducts(c *fiber.Ctx) error
		GetProductDetails(c *fiber.Ctx) error
	}

	productHandler struct {
		productService product.ProductService
	}
)

func NewProductHandler(productService product.ProductService) ProductHandler {
	return &productHandler{productService: productService}
}

func (h *productHandler) GetProducts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	search := c.Query("search")

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	products, count, err := h.productService.GetProducts(c.Context(), userID, search, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetProducts, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"products": products,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetProducts)
}

func (h *productHandler) GetProductDetails(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	productID := c.Params("id")

	res, err := h.productService.GetProductByID(c.Context(), productID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetProducts, err)
		}
		if errors.Is(err, domain.ErrUnauthorizedAccess) {
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageUserNotAllowed, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetProducts, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProducts)
}
