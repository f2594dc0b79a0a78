package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessGetProducts = "products retrieved successfully"
	MessageFailedGetProducts  = "failed to retrieve products"

	ErrProductNotFound = errors.New("product not found")
)

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	LowestPrice   decimal.Decimal `json:"lowest_price"`
	HighestPrice  decimal.Decimal `json:"highest_price"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	LastSeenPrice decimal.Decimal `json:"last_seen_price"`
	LastSeenAt    time.Time       `json:"last_seen_at"`
	PurchaseCount int             `json:"purchase_count"`
}
