package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Receipt struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID     uuid.UUID `gorm:"uniqueIndex:idx_receipts_user_content_hash,priority:1" json:"user_id"`
	RawText    string    `gorm:"type:text" json:"raw_text,omitempty"`
	ParsedData string    `gorm:"type:text" json:"parsed_data,omitempty"`

	Category     string          `gorm:"size:32;index" json:"category,omitempty"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Currency     string          `gorm:"size:3" json:"currency"`
	MerchantName string          `gorm:"size:255;index" json:"merchant_name"`
	PurchaseDate time.Time       `gorm:"index" json:"purchase_date"`

	Tags  string `gorm:"type:text" json:"tags,omitempty"`
	Notes string `gorm:"type:text" json:"notes,omitempty"`

	ContentHash      string `gorm:"size:100;uniqueIndex:idx_receipts_user_content_hash,priority:2" json:"contentHash"`
	ProcessingStatus string `gorm:"size:16" json:"processingStatus"` // "pending", "processing", "completed", "failed"
	ProcessingError  string `gorm:"type:text" json:"processing_error,omitempty"`

	PaymentMethod  string          `gorm:"size:32" json:"payment_method,omitempty"`
	CardBrand      string          `gorm:"size:32" json:"card_brand,omitempty"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(12,2)" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2)" json:"discount_amount"`
	CountryCode    string          `gorm:"size:2" json:"country_code,omitempty"`

	ImageURL string `json:"image_url,omitempty"`

	User  *User          `gorm:"foreignKey:UserID"`
	Items []*ReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	Timestamp
}

type ReceiptItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ReceiptID uuid.UUID `gorm:"uniqueIndex:idx_receipt_items_receipt_position,priority:1" json:"receipt_id"`
	ProductID uuid.UUID `json:"product_id"`

	OriginalText   string          `gorm:"type:text" json:"original_text,omitempty"`
	Quantity       decimal.Decimal `gorm:"type:numeric(10,3)" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2)" json:"unit_price"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2)" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(12,2)" json:"tax_amount"`
	TotalPrice     decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_price"`
	Position       int             `gorm:"uniqueIndex:idx_receipt_items_receipt_position,priority:2" json:"position"`

	Receipt *Receipt `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Timestamp
}

// ComputeTotal recalculates TotalPrice from quantity, unit price, discount
// and tax. Must be called whenever any of those factors changes.
func (i *ReceiptItem) ComputeTotal() {
	i.TotalPrice = i.Quantity.Mul(i.UnitPrice).Sub(i.DiscountAmount).Add(i.TaxAmount).Round(2)
}
