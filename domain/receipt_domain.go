package domain

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"

	CategoryGrocery       = "grocery"
	CategoryRestaurant    = "restaurant"
	CategoryFuel          = "fuel"
	CategoryPharmacy      = "pharmacy"
	CategoryElectronics   = "electronics"
	CategoryClothing      = "clothing"
	CategoryHousehold     = "household"
	CategoryTravel        = "travel"
	CategoryEntertainment = "entertainment"
	CategoryOther         = "other"

	DuplicateTypeExact   = "exact"
	DuplicateTypeSimilar = "similar"

	CodeDuplicateReceipt = "DUPLICATE_RECEIPT"
)

var (
	MessageSuccessCreateReceipt = "receipt created successfully"
	MessageSuccessGetReceipts   = "receipts retrieved successfully"
	MessageSuccessUpdateReceipt = "receipt updated successfully"
	MessageSuccessDeleteReceipt = "receipt deleted successfully"
	MessageSuccessUploadImage   = "receipt image uploaded successfully"

	MessageFailedCreateReceipt  = "failed to create receipt"
	MessageFailedExtractReceipt = "failed to extract receipt data"
	MessageFailedGetReceipts    = "failed to retrieve receipts"
	MessageFailedUpdateReceipt  = "failed to update receipt"
	MessageFailedDeleteReceipt  = "failed to delete receipt"
	MessageFailedUploadImage    = "failed to upload receipt image"
	MessageDuplicateReceipt     = "duplicate receipt detected"

	ErrExtractionFailed    = errors.New("extraction service could not produce usable data")
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrInvalidCategory     = errors.New("invalid receipt category")
	ErrInvalidPurchaseDate = errors.New("invalid purchase date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUnauthorizedAccess  = errors.New("unauthorized access to receipt")
)

// Categories lists every accepted receipt category.
var Categories = []string{
	CategoryGrocery, CategoryRestaurant, CategoryFuel, CategoryPharmacy,
	CategoryElectronics, CategoryClothing, CategoryHousehold, CategoryTravel,
	CategoryEntertainment, CategoryOther,
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ItemizedCategory reports whether line items are persisted for a category.
func ItemizedCategory(category string) bool {
	return category == CategoryGrocery || category == CategoryPharmacy
}

type (
	// ExtractedItem is one line the extraction service produced.
	ExtractedItem struct {
		Name           string          `json:"name"`
		OriginalText   string          `json:"original_text"`
		Quantity       decimal.Decimal `json:"quantity"`
		UnitPrice      decimal.Decimal `json:"unit_price"`
		DiscountAmount decimal.Decimal `json:"discount_amount"`
		TaxAmount      decimal.Decimal `json:"tax_amount"`
	}

	// ExtractionResult is the full typed contract with the extraction
	// service. Subtotal and tax are pointers so an absent value is
	// distinguishable from an extracted zero.
	ExtractionResult struct {
		MerchantName      string           `json:"merchant_name"`
		PurchaseDate      time.Time        `json:"purchase_date"`
		TotalAmount       decimal.Decimal  `json:"total_amount"`
		SubtotalAmount    *decimal.Decimal `json:"subtotal_amount,omitempty"`
		TaxAmount         *decimal.Decimal `json:"tax_amount,omitempty"`
		DiscountAmount    *decimal.Decimal `json:"discount_amount,omitempty"`
		Currency          string           `json:"currency"`
		RawText           string           `json:"raw_text"`
		SuggestedCategory string           `json:"suggested_category,omitempty"`
		Items             []ExtractedItem  `json:"items,omitempty"`
		PaymentMethod     string           `json:"payment_method,omitempty"`
		CardBrand         string           `json:"card_brand,omitempty"`
		CountryCode       string           `json:"country_code,omitempty"`
		Confidence        float64          `json:"confidence"`
	}

	// DuplicateCheck is the outcome of the duplicate detector. ContentHash
	// is always set so a novel receipt can store it.
	DuplicateCheck struct {
		IsDuplicate bool            `json:"is_duplicate"`
		Type        string          `json:"type,omitempty"`
		Reason      string          `json:"reason,omitempty"`
		Existing    *ReceiptSummary `json:"existing,omitempty"`
		ContentHash string          `json:"-"`
	}

	// ReceiptSummary is the deliberately reduced view of a conflicting
	// receipt returned with a duplicate conflict.
	ReceiptSummary struct {
		ID           string          `json:"id"`
		MerchantName string          `json:"merchant_name"`
		PurchaseDate time.Time       `json:"purchase_date"`
		Amount       decimal.Decimal `json:"amount"`
		Currency     string          `json:"currency"`
		CreatedAt    time.Time       `json:"created_at"`
	}

	CreateReceiptRequest struct {
		ImageRef       string   `json:"image_ref" validate:"required"`
		Category       string   `json:"category" validate:"omitempty"`
		Notes          string   `json:"notes" validate:"omitempty,max=2000"`
		Tags           []string `json:"tags" validate:"omitempty,dive,max=64"`
		ForceDuplicate bool     `json:"force_duplicate"`
		CaptureSource  string   `json:"capture_source" validate:"omitempty,oneof=camera gallery import"`
		OnDeviceOCR    bool     `json:"on_device_ocr"`
		Locale         string   `json:"locale" validate:"omitempty,bcp47_language_tag"`
	}

	UpdateReceiptRequest struct {
		Category     string   `json:"category" validate:"omitempty"`
		Notes        string   `json:"notes" validate:"omitempty,max=2000"`
		Tags         []string `json:"tags" validate:"omitempty,dive,max=64"`
		MerchantName string   `json:"merchant_name" validate:"omitempty,max=255"`
		Amount       string   `json:"amount" validate:"omitempty"`
		PurchaseDate string   `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	}

	UploadReceiptImageRequest struct {
		Image *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	UploadReceiptImageResponse struct {
		ObjectKey string `json:"object_key"`
		ImageURL  string `json:"image_url"`
	}

	ReceiptItemResponse struct {
		ID             string          `json:"id"`
		ProductID      string          `json:"product_id"`
		ProductName    string          `json:"product_name,omitempty"`
		OriginalText   string          `json:"original_text,omitempty"`
		Quantity       decimal.Decimal `json:"quantity"`
		UnitPrice      decimal.Decimal `json:"unit_price"`
		DiscountAmount decimal.Decimal `json:"discount_amount"`
		TaxAmount      decimal.Decimal `json:"tax_amount"`
		TotalPrice     decimal.Decimal `json:"total_price"`
		Position       int             `json:"position"`
	}

	ReceiptResponse struct {
		ID               string                `json:"id"`
		Category         string                `json:"category,omitempty"`
		Amount           decimal.Decimal       `json:"amount"`
		Currency         string                `json:"currency"`
		MerchantName     string                `json:"merchant_name"`
		PurchaseDate     time.Time             `json:"purchase_date"`
		Tags             []string              `json:"tags,omitempty"`
		Notes            string                `json:"notes,omitempty"`
		ContentHash      string                `json:"contentHash"`
		ProcessingStatus string                `json:"processingStatus"`
		PaymentMethod    string                `json:"payment_method,omitempty"`
		CardBrand        string                `json:"card_brand,omitempty"`
		TaxAmount        decimal.Decimal       `json:"tax_amount"`
		DiscountAmount   decimal.Decimal       `json:"discount_amount"`
		CountryCode      string                `json:"country_code,omitempty"`
		ImageURL         string                `json:"image_url,omitempty"`
		Items            []ReceiptItemResponse `json:"items,omitempty"`
		CreatedAt        time.Time             `json:"created_at"`
	}
)

// DuplicateError is the structured conflict a duplicate submission produces.
// It is a decision point rather than a failure: the caller may retry with
// force_duplicate set.
type DuplicateError struct {
	Code     string         `json:"code"`
	Type     string         `json:"duplicate_type"`
	Reason   string         `json:"reason"`
	Existing ReceiptSummary `json:"existing_receipt"`
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}
