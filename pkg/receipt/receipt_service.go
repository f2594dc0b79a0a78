package receipt

import (
	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/entities"
	"Go-Receipt-Vault/internal/utils/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	ReceiptService interface {
		CreateReceipt(ctx context.Context, req domain.CreateReceiptRequest, userID string) (domain.ReceiptResponse, error)
		GetReceipts(ctx context.Context, userID string, category string, status string, page, limit int) ([]domain.ReceiptResponse, int64, error)
		GetReceiptByID(ctx context.Context, id string, userID string) (domain.ReceiptResponse, error)
		UpdateReceipt(ctx context.Context, id string, req domain.UpdateReceiptRequest, userID string) (domain.ReceiptResponse, error)
		DeleteReceipt(ctx context.Context, id string, userID string) error
		UploadReceiptImage(ctx context.Context, req domain.UploadReceiptImageRequest, userID string) (domain.UploadReceiptImageResponse, error)
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		duplicateDetector DuplicateDetector
		extractionClient  ExtractionClient
		s3                storage.AwsS3
	}
)

func NewReceiptService(receiptRepository ReceiptRepository, duplicateDetector DuplicateDetector, extractionClient ExtractionClient, s3 storage.AwsS3) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		duplicateDetector: duplicateDetector,
		extractionClient:  extractionClient,
		s3:                s3,
	}
}

// CreateReceipt drives the full ingestion flow: normalize the image
// reference, extract, detect duplicates, resolve the category, then persist
// the receipt and its line items as one transaction. No receipt row exists
// for a failed extraction or an unforced duplicate.
func (s *receiptService) CreateReceipt(ctx context.Context, req domain.CreateReceiptRequest, userID string) (domain.ReceiptResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ReceiptResponse{}, domain.ErrParseUUID
	}

	if req.Category != "" && !domain.ValidCategory(req.Category) {
		return domain.ReceiptResponse{}, domain.ErrInvalidCategory
	}

	objectKey := s.s3.GetObjectKeyFromLink(req.ImageRef)

	data, err := s.extractionClient.Extract(ctx, objectKey, req.Locale)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}

	check, err := s.duplicateDetector.FindDuplicate(ctx, userID, *data)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}

	contentHash := check.ContentHash
	if check.IsDuplicate {
		if !req.ForceDuplicate {
			return domain.ReceiptResponse{}, &domain.DuplicateError{
				Code:     domain.CodeDuplicateReceipt,
				Type:     check.Type,
				Reason:   check.Reason,
				Existing: *check.Existing,
			}
		}
		// Forced insert: break the uniqueness key so the original digest's
		// constraint stays intact.
		contentHash = fmt.Sprintf("%s-%d", contentHash, time.Now().UnixMilli())
	}

	category := s.resolveCategory(req.Category, data)

	receipt := s.buildReceipt(userUUID, req, data, category, contentHash, objectKey)

	err = s.receiptRepository.WithTransaction(ctx, func(tx ReceiptRepository) error {
		if err := tx.CreateReceipt(ctx, receipt); err != nil {
			return err
		}

		receipt.ProcessingStatus = domain.StatusProcessing
		if err := tx.UpdateReceipt(ctx, receipt); err != nil {
			return err
		}

		if domain.ItemizedCategory(category) && len(data.Items) > 0 {
			if err := s.persistItems(ctx, tx, receipt, data); err != nil {
				return err
			}
		}

		receipt.ProcessingStatus = domain.StatusCompleted
		return tx.UpdateReceipt(ctx, receipt)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent submission won the insert race; the unique index
			// is the final arbiter. Reclassify as the same conflict the
			// detector would have reported.
			return domain.ReceiptResponse{}, s.raceConflict(ctx, userID, check.ContentHash)
		}
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("content_hash", contentHash).
			Str("step", "persist").
			Msg("receipt ingestion transaction rolled back")
		return domain.ReceiptResponse{}, err
	}

	return s.toReceiptResponse(receipt, true), nil
}

func (s *receiptService) resolveCategory(requested string, data *domain.ExtractionResult) string {
	if requested != "" {
		return requested
	}
	if data.SuggestedCategory != "" && domain.ValidCategory(data.SuggestedCategory) {
		return data.SuggestedCategory
	}
	return ClassifyText(data.RawText)
}

func (s *receiptService) buildReceipt(userUUID uuid.UUID, req domain.CreateReceiptRequest, data *domain.ExtractionResult, category, contentHash, objectKey string) *entities.Receipt {
	parsedData, _ := json.Marshal(data)

	receipt := &entities.Receipt{
		ID:               uuid.New(),
		UserID:           userUUID,
		RawText:          data.RawText,
		ParsedData:       string(parsedData),
		Category:         category,
		Amount:           data.TotalAmount,
		Currency:         data.Currency,
		MerchantName:     CanonicalMerchantName(data.MerchantName),
		PurchaseDate:     data.PurchaseDate,
		Tags:             strings.Join(req.Tags, ","),
		Notes:            req.Notes,
		ContentHash:      contentHash,
		ProcessingStatus: domain.StatusPending,
		PaymentMethod:    data.PaymentMethod,
		CardBrand:        data.CardBrand,
		CountryCode:      data.CountryCode,
		ImageURL:         s.s3.GetPublicLinkKey(objectKey),
	}
	if data.TaxAmount != nil {
		receipt.TaxAmount = *data.TaxAmount
	}
	if data.DiscountAmount != nil {
		receipt.DiscountAmount = *data.DiscountAmount
	}
	return receipt
}

// persistItems writes every extracted line against the new receipt,
// resolving or creating the referenced product and folding its unit price
// into the product's running statistics. Runs inside the receipt
// transaction; any failure rolls the whole receipt back.
func (s *receiptService) persistItems(ctx context.Context, tx ReceiptRepository, receipt *entities.Receipt, data *domain.ExtractionResult) error {
	seenAt := data.PurchaseDate
	if seenAt.IsZero() {
		seenAt = time.Now()
	}

	for position, extracted := range data.Items {
		product, err := s.resolveProduct(ctx, tx, receipt.UserID, extracted.Name)
		if err != nil {
			return err
		}

		product.RecordPrice(extracted.UnitPrice, seenAt)
		if err := tx.SaveProduct(ctx, product); err != nil {
			return err
		}

		item := &entities.ReceiptItem{
			ID:             uuid.New(),
			ReceiptID:      receipt.ID,
			ProductID:      product.ID,
			OriginalText:   extracted.OriginalText,
			Quantity:       extracted.Quantity,
			UnitPrice:      extracted.UnitPrice,
			DiscountAmount: extracted.DiscountAmount,
			TaxAmount:      extracted.TaxAmount,
			Position:       position + 1,
		}
		item.ComputeTotal()

		if err := tx.CreateReceiptItem(ctx, item); err != nil {
			return err
		}
		item.Product = product
		receipt.Items = append(receipt.Items, item)
	}
	return nil
}

func (s *receiptService) resolveProduct(ctx context.Context, tx ReceiptRepository, userID uuid.UUID, name string) (*entities.Product, error) {
	normalized := NormalizeProductName(name)

	product, err := tx.GetProductByNormalizedName(ctx, userID.String(), normalized)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product = &entities.Product{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           name,
		NormalizedName: normalized,
	}
	if err := tx.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *receiptService) raceConflict(ctx context.Context, userID string, contentHash string) error {
	existing, err := s.receiptRepository.GetReceiptByContentHash(ctx, userID, contentHash)
	if err != nil {
		return gorm.ErrDuplicatedKey
	}
	return &domain.DuplicateError{
		Code:     domain.CodeDuplicateReceipt,
		Type:     domain.DuplicateTypeExact,
		Reason:   "a receipt with identical content already exists",
		Existing: *summarizeReceipt(existing),
	}
}

func (s *receiptService) GetReceipts(ctx context.Context, userID string, category string, status string, page, limit int) ([]domain.ReceiptResponse, int64, error) {
	receipts, count, err := s.receiptRepository.GetReceipts(ctx, userID, category, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	var response []domain.ReceiptResponse
	for _, receipt := range receipts {
		response = append(response, s.toReceiptResponse(receipt, false))
	}
	return response, count, nil
}

func (s *receiptService) GetReceiptByID(ctx context.Context, id string, userID string) (domain.ReceiptResponse, error) {
	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptResponse{}, domain.ErrReceiptNotFound
		}
		return domain.ReceiptResponse{}, err
	}

	if receipt.UserID.String() != userID {
		return domain.ReceiptResponse{}, domain.ErrUnauthorizedAccess
	}

	return s.toReceiptResponse(receipt, true), nil
}

func (s *receiptService) UpdateReceipt(ctx context.Context, id string, req domain.UpdateReceiptRequest, userID string) (domain.ReceiptResponse, error) {
	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptResponse{}, domain.ErrReceiptNotFound
		}
		return domain.ReceiptResponse{}, err
	}

	if receipt.UserID.String() != userID {
		return domain.ReceiptResponse{}, domain.ErrUnauthorizedAccess
	}

	if req.Category != "" {
		if !domain.ValidCategory(req.Category) {
			return domain.ReceiptResponse{}, domain.ErrInvalidCategory
		}
		receipt.Category = req.Category
	}
	if req.Notes != "" {
		receipt.Notes = req.Notes
	}
	if req.Tags != nil {
		receipt.Tags = strings.Join(req.Tags, ",")
	}
	if req.MerchantName != "" {
		receipt.MerchantName = CanonicalMerchantName(req.MerchantName)
	}
	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil || amount.IsNegative() {
			return domain.ReceiptResponse{}, domain.ErrInvalidAmount
		}
		receipt.Amount = amount.Round(2)
	}
	if req.PurchaseDate != "" {
		purchaseDate, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			return domain.ReceiptResponse{}, domain.ErrInvalidPurchaseDate
		}
		receipt.PurchaseDate = purchaseDate
	}

	if err := s.receiptRepository.UpdateReceipt(ctx, receipt); err != nil {
		return domain.ReceiptResponse{}, err
	}

	return s.toReceiptResponse(receipt, true), nil
}

func (s *receiptService) DeleteReceipt(ctx context.Context, id string, userID string) error {
	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrReceiptNotFound
		}
		return err
	}

	if receipt.UserID.String() != userID {
		return domain.ErrUnauthorizedAccess
	}

	if receipt.ImageURL != "" {
		objectKey := s.s3.GetObjectKeyFromLink(receipt.ImageURL)
		if objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
	}

	return s.receiptRepository.DeleteReceipt(ctx, id)
}

func (s *receiptService) UploadReceiptImage(ctx context.Context, req domain.UploadReceiptImageRequest, userID string) (domain.UploadReceiptImageResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.UploadReceiptImageResponse{}, domain.ErrParseUUID
	}

	fileName := fmt.Sprintf("receipt-%s", uuid.New().String())
	objectKey, err := s.s3.UploadFile(fileName, req.Image, "receipts", storage.AllowImage...)
	if err != nil {
		return domain.UploadReceiptImageResponse{}, err
	}

	return domain.UploadReceiptImageResponse{
		ObjectKey: objectKey,
		ImageURL:  s.s3.GetPublicLinkKey(objectKey),
	}, nil
}

func (s *receiptService) toReceiptResponse(receipt *entities.Receipt, includeItems bool) domain.ReceiptResponse {
	response := domain.ReceiptResponse{
		ID:               receipt.ID.String(),
		Category:         receipt.Category,
		Amount:           receipt.Amount,
		Currency:         receipt.Currency,
		MerchantName:     receipt.MerchantName,
		PurchaseDate:     receipt.PurchaseDate,
		Notes:            receipt.Notes,
		ContentHash:      receipt.ContentHash,
		ProcessingStatus: receipt.ProcessingStatus,
		PaymentMethod:    receipt.PaymentMethod,
		CardBrand:        receipt.CardBrand,
		TaxAmount:        receipt.TaxAmount,
		DiscountAmount:   receipt.DiscountAmount,
		CountryCode:      receipt.CountryCode,
		ImageURL:         receipt.ImageURL,
		CreatedAt:        receipt.CreatedAt,
	}
	if receipt.Tags != "" {
		response.Tags = strings.Split(receipt.Tags, ",")
	}
	if !includeItems {
		return response
	}
	for _, item := range receipt.Items {
		itemResponse := domain.ReceiptItemResponse{
			ID:             item.ID.String(),
			ProductID:      item.ProductID.String(),
			OriginalText:   item.OriginalText,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			TaxAmount:      item.TaxAmount,
			TotalPrice:     item.TotalPrice,
			Position:       item.Position,
		}
		if item.Product != nil {
			itemResponse.ProductName = item.Product.Name
		}
		response.Items = append(response.Items, itemResponse)
	}
	return response
}
