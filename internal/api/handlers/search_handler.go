package handlers

import (
	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/internal/api/presenters"
	"Go-Receipt-Vault/pkg/search"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	SearchHandler interface {
		SearchReceipts(c *fiber.Ctx) error
		GetSuggestions(c *fiber.Ctx) error
		GetSearchHistory(c *fiber.Ctx) error
	}

	searchHandler struct {
		searchService search.SearchService
		validator     *validator.Validate
	}
)

func NewSearchHandler(searchService search.SearchService, validator *validator.Validate) SearchHandler {
	return &searchHandler{
		searchService: searchService,
		validator:     validator,
	}
}

func (h *searchHandler) SearchReceipts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.SearchReceiptsRequest)

	if err := c.QueryParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedQueryTooShort, err)
	}

	res, err := h.searchService.Search(c.Context(), *req, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQueryTooShort):
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedQueryTooShort, err)
		case errors.Is(err, domain.ErrInvalidCategory),
			errors.Is(err, domain.ErrInvalidPurchaseDate),
			errors.Is(err, domain.ErrInvalidAmount):
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSearchReceipts, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedSearchReceipts, nil)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSearchReceipts)
}

func (h *searchHandler) GetSuggestions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	query := c.Query("q")

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	suggestions, err := h.searchService.Suggest(c.Context(), userID, query, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetSuggestions, err)
	}

	return presenters.SuccessResponse(c, suggestions, fiber.StatusOK, domain.MessageSuccessGetSuggestions)
}

func (h *searchHandler) GetSearchHistory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	entries, err := h.searchService.GetSearchHistory(c.Context(), userID, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetSearchHistory, err)
	}

	return presenters.SuccessResponse(c, entries, fiber.StatusOK, domain.MessageSuccessGetSearchHistory)
}
