package receipt

import (
	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/internal/utils"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type (
	// ExtractionClient is the boundary with the external recognition
	// pipeline that turns a stored receipt image into structured fields.
	ExtractionClient interface {
		Extract(ctx context.Context, objectKey string, locale string) (*domain.ExtractionResult, error)
	}

	httpExtractionClient struct {
		baseURL string
		client  *http.Client
		group   singleflight.Group
	}
)

func NewExtractionClient() ExtractionClient {
	return &httpExtractionClient{
		baseURL: utils.GetConfig("AI_MODEL_URL"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Extract calls the extraction service. Concurrent calls for the same object
// key share one in-flight request via singleflight, so near-simultaneous
// re-submissions of the same image do not fan out to the service.
func (c *httpExtractionClient) Extract(ctx context.Context, objectKey string, locale string) (*domain.ExtractionResult, error) {
	v, err, _ := c.group.Do(objectKey, func() (interface{}, error) {
		return c.extract(ctx, objectKey, locale)
	})
	if err != nil {
		return nil, err
	}

	// Copy so concurrent callers sharing the flight never alias one result.
	result := *v.(*domain.ExtractionResult)
	return &result, nil
}

type extractionWireItem struct {
	Name           string          `json:"name"`
	OriginalText   string          `json:"original_text"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
}

type extractionWireResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		MerchantName      string               `json:"merchant_name"`
		PurchaseDate      string               `json:"purchase_date"`
		TotalAmount       decimal.Decimal      `json:"total_amount"`
		SubtotalAmount    *decimal.Decimal     `json:"subtotal_amount"`
		TaxAmount         *decimal.Decimal     `json:"tax_amount"`
		DiscountAmount    *decimal.Decimal     `json:"discount_amount"`
		Currency          string               `json:"currency"`
		RawText           string               `json:"raw_text"`
		SuggestedCategory string               `json:"suggested_category"`
		Items             []extractionWireItem `json:"items"`
		PaymentMethod     string               `json:"payment_method"`
		CardBrand         string               `json:"card_brand"`
		CountryCode       string               `json:"country_code"`
		Confidence        float64              `json:"confidence"`
	} `json:"data"`
}

func (c *httpExtractionClient) extract(ctx context.Context, objectKey string, locale string) (*domain.ExtractionResult, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: extraction service URL not configured", domain.ErrExtractionFailed)
	}

	requestBody, err := json.Marshal(map[string]string{
		"image_path": objectKey,
		"locale":     locale,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and transport failures follow the same failure path
		// as an extraction-reported error.
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: extraction service returned %s - %s",
			domain.ErrExtractionFailed, resp.Status, string(bodyBytes))
	}

	var wire extractionWireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: malformed extraction response: %v", domain.ErrExtractionFailed, err)
	}

	if !wire.Success {
		if wire.Error != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrExtractionFailed, wire.Error)
		}
		return nil, domain.ErrExtractionFailed
	}

	result := &domain.ExtractionResult{
		MerchantName:      wire.Data.MerchantName,
		TotalAmount:       wire.Data.TotalAmount,
		SubtotalAmount:    wire.Data.SubtotalAmount,
		TaxAmount:         wire.Data.TaxAmount,
		DiscountAmount:    wire.Data.DiscountAmount,
		Currency:          wire.Data.Currency,
		RawText:           wire.Data.RawText,
		SuggestedCategory: wire.Data.SuggestedCategory,
		PaymentMethod:     wire.Data.PaymentMethod,
		CardBrand:         wire.Data.CardBrand,
		CountryCode:       wire.Data.CountryCode,
		Confidence:        wire.Data.Confidence,
	}

	if wire.Data.PurchaseDate != "" {
		purchaseDate, err := time.Parse("2006-01-02", wire.Data.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad purchase date %q", domain.ErrExtractionFailed, wire.Data.PurchaseDate)
		}
		result.PurchaseDate = purchaseDate
	}

	for _, item := range wire.Data.Items {
		result.Items = append(result.Items, domain.ExtractedItem{
			Name:           item.Name,
			OriginalText:   item.OriginalText,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			TaxAmount:      item.TaxAmount,
		})
	}

	return result, nil
}
