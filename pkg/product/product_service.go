package product

import (
	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/entities"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	ProductService interface {
		GetProducts(ctx context.Context, userID string, search string, page, limit int) ([]domain.ProductResponse, int64, error)
		GetProductByID(ctx context.Context, id string, userID string) (domain.ProductResponse, error)
	}

	productService struct {
		productRepository ProductRepository
	}
)

func NewProductService(productRepository ProductRepository) ProductService {
	return &productService{productRepository: productRepository}
}

func (s *productService) GetProducts(ctx context.Context, userID string, search string, page, limit int) ([]domain.ProductResponse, int64, error) {
	products, count, err := s.productRepository.GetProducts(ctx, userID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}

	var response []domain.ProductResponse
	for _, product := range products {
		response = append(response, toProductResponse(product))
	}
	return response, count, nil
}

func (s *productService) GetProductByID(ctx context.Context, id string, userID string) (domain.ProductResponse, error) {
	product, err := s.productRepository.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProductResponse{}, domain.ErrProductNotFound
		}
		return domain.ProductResponse{}, err
	}

	if product.UserID.String() != userID {
		return domain.ProductResponse{}, domain.ErrUnauthorizedAccess
	}

	return toProductResponse(product), nil
}

func toProductResponse(product *entities.Product) domain.ProductResponse {
	return domain.ProductResponse{
		ID:            product.ID.String(),
		Name:          product.Name,
		LowestPrice:   product.LowestPrice,
		HighestPrice:  product.HighestPrice,
		AveragePrice:  product.AveragePrice,
		LastSeenPrice: product.LastSeenPrice,
		LastSeenAt:    product.LastSeenAt,
		PurchaseCount: product.PurchaseCount,
	}
}
