package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID         uuid.UUID `gorm:"uniqueIndex:idx_products_user_normalized_name,priority:1" json:"user_id"`
	Name           string    `gorm:"size:255" json:"name"`
	NormalizedName string    `gorm:"size:255;uniqueIndex:idx_products_user_normalized_name,priority:2" json:"normalized_name"`

	LowestPrice   decimal.Decimal `gorm:"type:numeric(12,2)" json:"lowest_price"`
	HighestPrice  decimal.Decimal `gorm:"type:numeric(12,2)" json:"highest_price"`
	AveragePrice  decimal.Decimal `gorm:"type:numeric(12,2)" json:"average_price"`
	LastSeenPrice decimal.Decimal `gorm:"type:numeric(12,2)" json:"last_seen_price"`
	LastSeenAt    time.Time       `json:"last_seen_at"`
	PurchaseCount int             `json:"purchase_count"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}

// RecordPrice folds one observed unit price into the running statistics.
func (p *Product) RecordPrice(price decimal.Decimal, seenAt time.Time) {
	if p.PurchaseCount == 0 || price.LessThan(p.LowestPrice) {
		p.LowestPrice = price
	}
	if p.PurchaseCount == 0 || price.GreaterThan(p.HighestPrice) {
		p.HighestPrice = price
	}
	total := p.AveragePrice.Mul(decimal.NewFromInt(int64(p.PurchaseCount))).Add(price)
	p.PurchaseCount++
	p.AveragePrice = total.Div(decimal.NewFromInt(int64(p.PurchaseCount))).Round(2)
	p.LastSeenPrice = price
	p.LastSeenAt = seenAt
}
